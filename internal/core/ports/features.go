package ports

import (
	"context"
	"fmt"

	"github.com/ewilliams-labs/cadence/internal/core/domain"
)

// FeatureProvider infers coarse audio features from an external source.
type FeatureProvider interface {
	CoarseFeatures(ctx context.Context, ref domain.AudioRef) (domain.AudioFeatures, error)
}

// InferenceError reports a failed coarse feature lookup.
type InferenceError struct {
	Provider string
	TrackID  string
	Err      error
}

func (e *InferenceError) Error() string {
	if e.TrackID == "" {
		return fmt.Sprintf("%s: infer features: %v", e.Provider, e.Err)
	}
	return fmt.Sprintf("%s: infer features for %s: %v", e.Provider, e.TrackID, e.Err)
}

func (e *InferenceError) Unwrap() error {
	return e.Err
}

// NoFeatures is a FeatureProvider that returns zero-valued features. It lets
// local analysis run without an external inference source.
type NoFeatures struct{}

func (NoFeatures) CoarseFeatures(context.Context, domain.AudioRef) (domain.AudioFeatures, error) {
	return domain.AudioFeatures{}, nil
}
