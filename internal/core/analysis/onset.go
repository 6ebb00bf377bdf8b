package analysis

import (
	"math"

	"github.com/ewilliams-labs/cadence/internal/core/domain"
)

// Onset is a detected note or percussion attack.
type Onset struct {
	// Time in seconds from the start of the signal.
	Time float64
	// Strength is the spectral flux at the onset frame.
	Strength float64
	// Frame is the index of the analysis frame the onset was found in.
	Frame int
}

// thresholdFloor keeps numerical noise in otherwise silent signals from
// producing onsets.
const thresholdFloor = 1e-6

// DetectOnsets finds onsets as local peaks of positive spectral flux that
// clear an adaptive threshold. Onsets are returned in ascending time order and
// are at least MinOnsetInterval apart.
func (e *Engine) DetectOnsets(samples domain.Samples) []Onset {
	p := e.params
	mags := spectrogram(samples.Data, p.OnsetWindow, p.OnsetHop)
	if len(mags) < 2 {
		return nil
	}

	flux := spectralFlux(mags)
	rate := float64(samples.Rate())
	minGap := int(math.Ceil(p.MinOnsetInterval * rate / float64(p.OnsetHop)))

	var onsets []Onset
	last := -minGap
	for i, f := range flux {
		if f <= thresholdFloor || f <= p.ThresholdMultiplier*localMean(flux, i, p.ThresholdRadius) {
			continue
		}
		if !isLocalPeak(flux, i) {
			continue
		}
		if i-last < minGap {
			continue
		}
		onsets = append(onsets, Onset{
			Time:     float64(i*p.OnsetHop) / rate,
			Strength: f,
			Frame:    i,
		})
		last = i
	}
	return onsets
}

// spectralFlux is the L2 norm of the half-wave rectified magnitude difference
// between consecutive frames. flux[0] is zero.
func spectralFlux(mags [][]float64) []float64 {
	flux := make([]float64, len(mags))
	for i := 1; i < len(mags); i++ {
		var sum float64
		prev, cur := mags[i-1], mags[i]
		for k := range cur {
			if d := cur[k] - prev[k]; d > 0 {
				sum += d * d
			}
		}
		flux[i] = math.Sqrt(sum)
	}
	return flux
}

func localMean(x []float64, i, radius int) float64 {
	lo := max(0, i-radius)
	hi := min(len(x)-1, i+radius)
	var sum float64
	for _, v := range x[lo : hi+1] {
		sum += v
	}
	return sum / float64(hi-lo+1)
}

func isLocalPeak(x []float64, i int) bool {
	if i > 0 && x[i] < x[i-1] {
		return false
	}
	if i < len(x)-1 && x[i] <= x[i+1] {
		return false
	}
	return true
}
