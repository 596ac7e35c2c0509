package pitch

import (
	"github.com/RyanBlaney/sonido-pitch/algorithms/common"
	"github.com/RyanBlaney/sonido-pitch/algorithms/tonal"
)

const (
	// MinFrequency is the lowest pitch reported, in Hz.
	MinFrequency = tonal.MinFrequency

	// MaxFrequency is the highest pitch reported, in Hz.
	MaxFrequency = tonal.MaxFrequency

	// DefaultThreshold is the YIN absolute threshold used by DetectPitch.
	DefaultThreshold = tonal.DefaultThreshold

	// NoPitch is returned when no pitch was detected.
	NoPitch = -1.0

	// NoClarity is returned when the buffer carries no energy.
	NoClarity = 0.0
)

// DetectPitch returns the fundamental frequency of samples in Hz, or NoPitch.
func DetectPitch(samples []float64, sampleRate float64) float64 {
	return DetectPitchWithThreshold(samples, sampleRate, DefaultThreshold)
}

// DetectPitchWithThreshold is DetectPitch with a caller-supplied YIN
// threshold. Lower thresholds demand a more periodic signal.
func DetectPitchWithThreshold(samples []float64, sampleRate, threshold float64) float64 {
	params := tonal.DefaultPitchDetectionParams(sampleRate)
	params.Threshold = threshold
	params.ComputeClarity = false

	result := tonal.Yin(samples, params)
	if !result.Voiced {
		return NoPitch
	}
	return result.Pitch
}

// CalculateRMS returns the root mean square amplitude of samples, 0 when empty.
func CalculateRMS(samples []float64) float64 {
	return common.RMS(samples)
}

// GetPitchClarity returns a periodicity confidence in [0, 1], NoClarity when
// the buffer carries no energy.
func GetPitchClarity(samples []float64, sampleRate float64) float64 {
	return tonal.PitchClarity(samples, sampleRate)
}
