package analysis

import (
	"fmt"

	"github.com/ewilliams-labs/cadence/internal/core/domain"
	"gonum.org/v1/gonum/floats"
)

// Autocorrelate returns r where r[lag] = sum over i of x[i]*x[i+lag], for lag
// in [0, len(x)). r[0] is the signal energy and bounds every other lag.
func Autocorrelate(x []float64) ([]float64, error) {
	if len(x) < 2 {
		return nil, fmt.Errorf("analysis: autocorrelate %d values: %w", len(x), domain.ErrInsufficientData)
	}
	n := len(x)
	r := make([]float64, n)
	for lag := range n {
		r[lag] = floats.Dot(x[:n-lag], x[lag:])
	}
	return r, nil
}
