// Package analysis derives tempo and key descriptors from decoded mono audio
// and fuses them with coarse externally inferred features.
//
// Every estimator is a pure function of its input. Tempo and key estimation
// never fail: when the signal cannot support an estimate they return
// domain.FallbackTempo or domain.FallbackKey.
package analysis

import "github.com/ewilliams-labs/cadence/internal/core/domain"

// Params holds the fixed analysis constants.
type Params struct {
	// Onset detection short-time spectrum.
	OnsetWindow int
	OnsetHop    int
	// Adaptive threshold: an onset frame's flux must exceed
	// ThresholdMultiplier times the mean flux of the 2*ThresholdRadius+1
	// surrounding frames.
	ThresholdRadius     int
	ThresholdMultiplier float64
	// MinOnsetInterval is the minimum gap in seconds between two onsets.
	MinOnsetInterval float64

	ChromaFrame  int
	MinFrequency float64
	MaxFrequency float64
	TuningA4     float64

	// ConfidenceThreshold is the local confidence above which fused
	// features prefer local tempo/key over the coarse estimate.
	ConfidenceThreshold float64
}

func DefaultParams() Params {
	return Params{
		OnsetWindow:         1024,
		OnsetHop:            512,
		ThresholdRadius:     8,
		ThresholdMultiplier: 1.5,
		MinOnsetInterval:    0.05,
		ChromaFrame:         2048,
		MinFrequency:        55,
		MaxFrequency:        5000,
		TuningA4:            440,
		ConfidenceThreshold: 0.8,
	}
}

// Engine bundles the estimators under one set of Params. It holds no mutable
// state and is safe for concurrent use.
type Engine struct {
	params Params
}

// NewEngine returns an Engine. Zero-valued fields in p take their default.
func NewEngine(p Params) *Engine {
	d := DefaultParams()
	if p.OnsetWindow <= 0 {
		p.OnsetWindow = d.OnsetWindow
	}
	if p.OnsetHop <= 0 {
		p.OnsetHop = d.OnsetHop
	}
	if p.ThresholdRadius <= 0 {
		p.ThresholdRadius = d.ThresholdRadius
	}
	if p.ThresholdMultiplier <= 0 {
		p.ThresholdMultiplier = d.ThresholdMultiplier
	}
	if p.MinOnsetInterval <= 0 {
		p.MinOnsetInterval = d.MinOnsetInterval
	}
	if p.ChromaFrame <= 0 {
		p.ChromaFrame = d.ChromaFrame
	}
	if p.MinFrequency <= 0 {
		p.MinFrequency = d.MinFrequency
	}
	if p.MaxFrequency <= p.MinFrequency {
		p.MaxFrequency = d.MaxFrequency
	}
	if p.TuningA4 <= 0 {
		p.TuningA4 = d.TuningA4
	}
	if p.ConfidenceThreshold <= 0 {
		p.ConfidenceThreshold = d.ConfidenceThreshold
	}
	return &Engine{params: p}
}

func (e *Engine) Params() Params {
	return e.params
}

// Analyze estimates tempo and key for samples and fuses them into coarse.
func (e *Engine) Analyze(samples domain.Samples, coarse domain.AudioFeatures) (domain.AudioFeatures, domain.TempoEstimate, domain.KeyEstimate) {
	tempo := e.EstimateTempo(samples)
	key := e.EstimateKey(samples)
	return e.Fuse(coarse, tempo, key), tempo, key
}
