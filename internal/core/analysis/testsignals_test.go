package analysis

import (
	"math"
	"math/rand/v2"

	"github.com/ewilliams-labs/cadence/internal/core/domain"
)

const testRate = domain.DefaultSampleRate

// clickTrack places 32-sample unit clicks every period samples starting at
// offset.
func clickTrack(seconds float64, offset, period int) domain.Samples {
	data := make([]float64, int(seconds*testRate))
	for start := offset; start+32 <= len(data); start += period {
		for i := range 32 {
			data[start+i] = 1
		}
	}
	return domain.Samples{Data: data, SampleRate: testRate}
}

// chord sums sines at the given frequencies. amps[i] scales freqs[i]; missing
// amplitudes default to 1.
func chord(seconds float64, freqs []float64, amps ...float64) domain.Samples {
	data := make([]float64, int(seconds*testRate))
	for j, f := range freqs {
		a := 1.0
		if j < len(amps) {
			a = amps[j]
		}
		for i := range data {
			data[i] += a * math.Sin(2*math.Pi*f*float64(i)/testRate)
		}
	}
	return domain.Samples{Data: data, SampleRate: testRate}
}

func noise(seconds float64, seed uint64) domain.Samples {
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	data := make([]float64, int(seconds*testRate))
	for i := range data {
		data[i] = r.Float64()*2 - 1
	}
	return domain.Samples{Data: data, SampleRate: testRate}
}

func silence(seconds float64) domain.Samples {
	return domain.Samples{Data: make([]float64, int(seconds*testRate)), SampleRate: testRate}
}
