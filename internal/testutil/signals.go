// Package testutil provides synthetic signals and assertions shared by the
// pitch detection tests.
package testutil

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Default tolerances for various test scenarios.
const (
	// PitchToleranceHz is the accepted error for pure tones
	PitchToleranceHz = 5.0
	DefaultTolerance = 1e-9
)

// Sine returns n samples of a unit-amplitude sine at freq Hz.
func Sine(freq, sampleRate float64, n int) []float64 {
	return SineWithAmplitude(freq, sampleRate, n, 1.0)
}

// SineWithAmplitude returns n samples of amplitude*sin(2*pi*freq*t).
func SineWithAmplitude(freq, sampleRate float64, n int, amplitude float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = amplitude * math.Sin(2.0*math.Pi*freq*float64(i)/sampleRate)
	}
	return out
}

// Harmonic returns a tone with the given harmonic amplitudes; amps[0] is the
// fundamental.
func Harmonic(freq, sampleRate float64, n int, amps ...float64) []float64 {
	out := make([]float64, n)
	for h, a := range amps {
		f := freq * float64(h+1)
		for i := range out {
			out[i] += a * math.Sin(2.0*math.Pi*f*float64(i)/sampleRate)
		}
	}
	return out
}

// Noise returns n uniform samples in [-amplitude, amplitude] from a fixed seed.
func Noise(n int, amplitude float64, seed uint64) []float64 {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	out := make([]float64, n)
	for i := range out {
		out[i] = amplitude * (2.0*rng.Float64() - 1.0)
	}
	return out
}

// Float32 narrows samples to float32.
func Float32(samples []float64) []float32 {
	out := make([]float32, len(samples))
	for i, s := range samples {
		out[i] = float32(s)
	}
	return out
}

// AssertNoNaNOrInf verifies that no elements in the slice are NaN or Inf.
func AssertNoNaNOrInf(t *testing.T, s []float64) bool {
	t.Helper()
	for i, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return assert.Fail(t, "non-finite value", "s[%d] = %v", i, v)
		}
	}
	return true
}

// AssertAllInRange verifies that all elements are within [min, max].
func AssertAllInRange(t *testing.T, s []float64, minVal, maxVal float64) bool {
	t.Helper()
	for i, v := range s {
		if v < minVal || v > maxVal {
			return assert.Fail(t, "value out of range",
				"s[%d]=%f is outside range [%f, %f]", i, v, minVal, maxVal)
		}
	}
	return true
}
