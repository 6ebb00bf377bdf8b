package analysis

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/ewilliams-labs/cadence/internal/core/domain"
)

// Krumhansl-Kessler key profiles, tonic first.
var (
	majorProfile = []float64{6.35, 2.23, 3.48, 2.33, 4.38, 4.09, 2.52, 5.19, 2.39, 3.66, 2.29, 2.88}
	minorProfile = []float64{6.33, 2.68, 3.52, 5.38, 2.60, 3.53, 2.54, 4.75, 3.98, 2.69, 3.34, 3.17}
)

// EstimateKey correlates the mean chroma of samples against the major and
// minor profiles rotated to every tonic and returns the best match.
//
// The confidence is max(0.5, r) for the winning Pearson correlation r, capped
// at 1. It replaces the ratio of the best profile score to max(chroma): that
// score is an unnormalised dot product whose magnitude grows with signal
// level, so the ratio is unbounded. Pearson r is bounded and independent of
// gain. A silent or too-short signal yields domain.FallbackKey.
func (e *Engine) EstimateKey(samples domain.Samples) domain.KeyEstimate {
	return EstimateKeyFromChroma(e.Chromagram(samples))
}

// EstimateKeyFromChroma is EstimateKey over a precomputed chromagram.
func EstimateKeyFromChroma(chroma []ChromaVector) domain.KeyEstimate {
	if len(chroma) == 0 {
		return domain.FallbackKey()
	}

	mean := make([]float64, 12)
	for _, v := range chroma {
		floats.Add(mean, v[:])
	}
	floats.Scale(1/float64(len(chroma)), mean)
	if floats.Max(mean) <= 0 {
		return domain.FallbackKey()
	}

	best := math.Inf(-1)
	tonic, mode := -1, domain.ModeMajor
	rotated := make([]float64, 12)
	for _, candidate := range []struct {
		mode    int
		profile []float64
	}{
		{domain.ModeMajor, majorProfile},
		{domain.ModeMinor, minorProfile},
	} {
		for t := range 12 {
			rotate(rotated, candidate.profile, t)
			r := stat.Correlation(mean, rotated, nil)
			if math.IsNaN(r) {
				continue
			}
			if r > best {
				best, tonic, mode = r, t, candidate.mode
			}
		}
	}
	if tonic < 0 {
		return domain.FallbackKey()
	}

	return domain.KeyEstimate{
		Key:        domain.PitchClasses[tonic],
		Mode:       mode,
		Confidence: clamp01(max(0.5, best)),
	}
}

// rotate writes profile shifted so that its tonic lands on pitch class t.
func rotate(dst, profile []float64, t int) {
	for i := range dst {
		dst[i] = profile[(i-t+12)%12]
	}
}
