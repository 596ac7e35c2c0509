package pitch

// Float32 entry points for callers holding audio as float32 (Web Audio,
// most capture APIs). Samples are widened to float64 before analysis.

// DetectPitchFloat32 is DetectPitch for float32 samples.
func DetectPitchFloat32(samples []float32, sampleRate float64) float64 {
	return DetectPitch(widen(samples), sampleRate)
}

// DetectPitchWithThresholdFloat32 is DetectPitchWithThreshold for float32 samples.
func DetectPitchWithThresholdFloat32(samples []float32, sampleRate, threshold float64) float64 {
	return DetectPitchWithThreshold(widen(samples), sampleRate, threshold)
}

// CalculateRMSFloat32 is CalculateRMS for float32 samples.
func CalculateRMSFloat32(samples []float32) float64 {
	return CalculateRMS(widen(samples))
}

// GetPitchClarityFloat32 is GetPitchClarity for float32 samples.
func GetPitchClarityFloat32(samples []float32, sampleRate float64) float64 {
	return GetPitchClarity(widen(samples), sampleRate)
}

func widen(samples []float32) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = float64(s)
	}
	return out
}
