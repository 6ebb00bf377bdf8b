package analysis

import (
	"math"

	"github.com/ewilliams-labs/cadence/internal/core/domain"
)

// EstimateTempo estimates the dominant tempo of samples and marks each onset
// as a beat. The beat period is the shortest strong lag of the onset pulse
// train's autocorrelation, refined to a fraction of a frame. Silence, too few
// onsets, or a periodicity-free onset pattern yield domain.FallbackTempo.
func (e *Engine) EstimateTempo(samples domain.Samples) domain.TempoEstimate {
	if len(samples.Data) == 0 {
		return domain.FallbackTempo()
	}
	onsets := e.DetectOnsets(samples)
	if len(onsets) < 2 {
		return domain.FallbackTempo()
	}

	ac, err := Autocorrelate(pulseTrain(onsets))
	if err != nil || ac[0] <= 0 {
		return domain.FallbackTempo()
	}

	lag, ok := beatLag(ac)
	if !ok {
		return domain.FallbackTempo()
	}

	period := (float64(lag) + peakOffset(ac, lag)) * float64(e.params.OnsetHop) / float64(samples.Rate())
	bpm := normalizeBPM(60 / period)
	if period <= 0 || math.IsNaN(bpm) || math.IsInf(bpm, 0) {
		return domain.FallbackTempo()
	}

	return domain.TempoEstimate{
		BPM:        bpm,
		Confidence: clamp01(ac[lag] / ac[0]),
		Beats:      beats(onsets, bpm),
	}
}

// pulseTrain places a triangular pulse at each onset on the frame grid,
// starting one frame before the first onset. The pulse spans the neighbouring
// frames so a beat period that alternates between two adjacent lags still
// correlates at both.
func pulseTrain(onsets []Onset) []float64 {
	first := onsets[0].Frame - 1
	train := make([]float64, onsets[len(onsets)-1].Frame-first+2)
	for _, o := range onsets {
		i := o.Frame - first
		train[i-1] += smearWeight
		train[i]++
		train[i+1] += smearWeight
	}
	return train
}

const (
	smearWeight = 0.5
	// A shorter lag wins over the strongest one when it reaches this share of
	// the peak, so whole multiples of the beat do not mask it.
	peakShare = 0.9
)

// beatLag returns the shortest local maximum of ac in (0, len/2) whose value
// reaches peakShare of the strongest local maximum.
func beatLag(ac []float64) (int, bool) {
	var candidates []int
	var peak float64
	for l := 1; l < len(ac)/2; l++ {
		if ac[l] <= 0 || ac[l] < ac[l-1] || ac[l] < ac[l+1] {
			continue
		}
		candidates = append(candidates, l)
		peak = max(peak, ac[l])
	}
	for _, l := range candidates {
		if ac[l] >= peakShare*peak {
			return l, true
		}
	}
	return 0, false
}

// peakOffset refines lag by fitting a parabola through its neighbours. The
// result lies in [-0.5, 0.5].
func peakOffset(ac []float64, lag int) float64 {
	y0, y1, y2 := ac[lag-1], ac[lag], ac[lag+1]
	d := y0 - 2*y1 + y2
	if d >= 0 {
		return 0
	}
	return max(-0.5, min(0.5, 0.5*(y0-y2)/d))
}

// normalizeBPM folds octave errors into [domain.MinBPM, domain.MaxBPM].
func normalizeBPM(bpm float64) float64 {
	if bpm <= 0 || math.IsInf(bpm, 0) {
		return bpm
	}
	for bpm < domain.MinBPM {
		bpm *= 2
	}
	for bpm > domain.MaxBPM {
		bpm /= 2
	}
	return bpm
}

func beats(onsets []Onset, bpm float64) []domain.Beat {
	var strongest float64
	for _, o := range onsets {
		strongest = max(strongest, o.Strength)
	}

	out := make([]domain.Beat, len(onsets))
	for i, o := range onsets {
		conf := 0.0
		if strongest > 0 {
			conf = o.Strength / strongest
		}
		out[i] = domain.Beat{
			Start:      o.Time,
			Duration:   60 / bpm,
			Confidence: clamp01(conf),
		}
	}
	return out
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
