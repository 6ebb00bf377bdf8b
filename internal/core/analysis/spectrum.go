package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
	"gonum.org/v1/gonum/floats"
)

// spectrogram returns the Hann-windowed magnitude spectrum (positive
// frequencies, size/2+1 bins) of each frame. Frames start every hop samples;
// a trailing partial frame is dropped.
func spectrogram(signal []float64, size, hop int) [][]float64 {
	if size <= 0 || hop <= 0 || len(signal) < size {
		return nil
	}

	numFrames := (len(signal)-size)/hop + 1
	coeffs := window.Hann(size)
	frame := make([]float64, size)
	bins := size/2 + 1

	out := make([][]float64, numFrames)
	for i := range numFrames {
		start := i * hop
		floats.MulTo(frame, signal[start:start+size], coeffs)

		spectrum := fft.FFTReal(frame)
		mags := make([]float64, bins)
		for k := range bins {
			mags[k] = cmplx.Abs(spectrum[k])
		}
		out[i] = mags
	}
	return out
}
