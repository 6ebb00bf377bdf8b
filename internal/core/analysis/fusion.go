package analysis

import "github.com/ewilliams-labs/cadence/internal/core/domain"

// Fuse overrides the coarse BPM with the local tempo estimate, and the coarse
// key and mode with the local key estimate, each only when its confidence is
// strictly above threshold. All other coarse fields pass through.
func Fuse(coarse domain.AudioFeatures, tempo domain.TempoEstimate, key domain.KeyEstimate, threshold float64) domain.AudioFeatures {
	out := coarse
	if tempo.Confidence > threshold {
		out.BPM = tempo.BPM
	}
	if key.Confidence > threshold {
		out.Key = key.Key
		out.Mode = key.Mode
	}
	return out
}

// Fuse applies the package-level Fuse with the engine's confidence threshold.
func (e *Engine) Fuse(coarse domain.AudioFeatures, tempo domain.TempoEstimate, key domain.KeyEstimate) domain.AudioFeatures {
	return Fuse(coarse, tempo, key, e.params.ConfidenceThreshold)
}
