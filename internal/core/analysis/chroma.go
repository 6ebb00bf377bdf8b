package analysis

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
	"gonum.org/v1/gonum/floats"

	"github.com/ewilliams-labs/cadence/internal/core/domain"
)

// ChromaVector is the spectral energy folded into the twelve pitch classes,
// indexed like domain.PitchClasses (C = 0).
type ChromaVector [12]float64

// Chromagram returns one ChromaVector per non-overlapping ChromaFrame-sized
// frame of samples. Only spectral bins between MinFrequency and MaxFrequency
// contribute. A signal shorter than one frame yields an empty chromagram.
func (e *Engine) Chromagram(samples domain.Samples) []ChromaVector {
	size := e.params.ChromaFrame
	if len(samples.Data) < size {
		return []ChromaVector{}
	}

	classes := e.binPitchClasses(size, samples.Rate())
	coeffs := window.Hann(size)
	frame := make([]float64, size)

	numFrames := len(samples.Data) / size
	out := make([]ChromaVector, numFrames)
	for i := range numFrames {
		floats.MulTo(frame, samples.Data[i*size:(i+1)*size], coeffs)
		spectrum := fft.FFTReal(frame)

		var v ChromaVector
		for k, pc := range classes {
			if pc < 0 {
				continue
			}
			mag := cmplx.Abs(spectrum[k])
			v[pc] += mag * mag
		}
		out[i] = v
	}
	return out
}

// binPitchClasses maps each positive-frequency FFT bin to its pitch class,
// or -1 when the bin is outside the analysed band.
func (e *Engine) binPitchClasses(size, rate int) []int {
	classes := make([]int, size/2+1)
	for k := range classes {
		f := float64(k) * float64(rate) / float64(size)
		if k == 0 || f < e.params.MinFrequency || f > e.params.MaxFrequency {
			classes[k] = -1
			continue
		}
		midi := int(math.Round(12*math.Log2(f/e.params.TuningA4) + 69))
		classes[k] = ((midi % 12) + 12) % 12
	}
	return classes
}
