package tonal

import (
	"math"

	"github.com/RyanBlaney/sonido-pitch/algorithms/common"
	"github.com/RyanBlaney/sonido-pitch/algorithms/stats"
)

// PitchClarity scores how strongly periodic samples are within the default
// detection band, in [0, 1]. It is independent of the YIN estimate.
func PitchClarity(samples []float64, sampleRate float64) float64 {
	return PitchClarityInRange(samples, sampleRate, MinFrequency, MaxFrequency)
}

// PitchClarityInRange is the peak of the autocorrelation of the first half of
// samples over the lags matching [minFreq, maxFreq], divided by the zero-lag
// energy of that half and clamped to [0, 1].
//
// Lags are floor(sampleRate/maxFreq) up to, not including,
// min(floor(sampleRate/minFreq), len(samples)/2). A half window with energy
// below machine epsilon scores 0.
func PitchClarityInRange(samples []float64, sampleRate, minFreq, maxFreq float64) float64 {
	if len(samples) < MinSamples {
		return 0.0
	}

	half := len(samples) / 2
	minLag := lagFloor(sampleRate / maxFreq)
	maxLag := min(lagFloor(sampleRate/minFreq), half)

	result, err := stats.NewAutoCorrelation(minLag, maxLag).Compute(samples, half)
	if err != nil {
		return 0.0
	}
	// also rejects NaN energy
	if !(result.ZeroLagEnergy >= common.Epsilon) {
		return 0.0
	}

	clarity := result.Normalized()
	if math.IsNaN(clarity) {
		return 0.0
	}
	return common.Clamp(clarity, 0.0, 1.0)
}

// lagFloor truncates a lag towards zero, saturating NaN and negatives at 0
// and huge values at MaxInt.
func lagFloor(x float64) int {
	if !(x > 0) {
		return 0
	}
	if x >= math.MaxInt {
		return math.MaxInt
	}
	return int(x)
}
