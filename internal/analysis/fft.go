package analysis

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// Spectrum returns the magnitude of the first half of the FFT of data
// after removing its mean and zero-padding it to a power of two.
func Spectrum(data []float64) []float64 {
	if len(data) < 2 {
		return nil
	}

	n := 1
	for n < len(data) {
		n *= 2
	}

	mean := 0.0
	for _, v := range data {
		mean += v
	}
	mean /= float64(len(data))

	padded := make([]float64, n)
	for i, v := range data {
		padded[i] = v - mean
	}

	spectrum := fft.FFTReal(padded)
	ps := make([]float64, n/2)
	for i := range ps {
		ps[i] = cmplx.Abs(spectrum[i])
	}
	return ps
}

// DominantFrequency returns the frequency (in 1/time units of dt) of the
// strongest non-DC bin, or 0 when the signal has no oscillation.
func DominantFrequency(data []float64, dt float64) float64 {
	ps := Spectrum(data)
	if len(ps) < 2 || dt <= 0 {
		return 0
	}

	maxPower := 0.0
	maxIdx := 0
	for i := 1; i < len(ps); i++ {
		if ps[i] > maxPower {
			maxPower = ps[i]
			maxIdx = i
		}
	}
	if maxIdx == 0 || maxPower < 1e-12 {
		return 0
	}

	n := 2 * len(ps)
	return float64(maxIdx) / (float64(n) * dt)
}

// ZeroCrossings counts sign changes in data. Exact zeros do not count as a
// sign of their own.
func ZeroCrossings(data []float64) int {
	crossings := 0
	prev := 0.0
	for _, v := range data {
		if v == 0 || math.IsNaN(v) {
			continue
		}
		if prev != 0 && math.Signbit(v) != math.Signbit(prev) {
			crossings++
		}
		prev = v
	}
	return crossings
}
