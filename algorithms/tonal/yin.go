package tonal

import (
	"math"

	"github.com/RyanBlaney/sonido-pitch/algorithms/spectral"
)

// Detection band and defaults shared by the YIN estimator and the clarity
// estimator.
const (
	MinFrequency     = 60.0   // Hz
	MaxFrequency     = 2000.0 // Hz
	DefaultThreshold = 0.1

	// MinRMS is the silence floor: quieter buffers are not analyzed
	MinRMS = 0.01

	// MinSamples is the shortest buffer that can be analyzed
	MinSamples = 2

	// the threshold scan starts here; lags 0 and 1 are trivially small
	minSearchLag = 2
)

// DifferenceFunction computes the YIN squared-difference function
//
//	d[tau] = sum_{i=0}^{H-1} (x[i] - x[i+tau])^2,  H = len(x)/2
//
// for tau in [0, H). Accumulation is sequential per lag. Cost is O(H^2).
func DifferenceFunction(samples []float64) []float64 {
	half := len(samples) / 2
	diff := make([]float64, half)

	for tau := range half {
		sum := 0.0
		for i := range half {
			delta := samples[i] - samples[i+tau]
			sum += delta * delta
		}
		diff[tau] = sum
	}

	return diff
}

// DifferenceFunctionFFT computes the same function as DifferenceFunction in
// O(N log N) by expanding the square:
//
//	d[tau] = e0 + e[tau] - 2 r[tau]
//
// where e0 is the energy of x[0:H], e[tau] the energy of x[tau:tau+H] and
// r[tau] the cross-correlation of the two, obtained through the FFT.
// Results differ from the direct form by rounding only; negative rounding
// residue is clamped to 0.
func DifferenceFunctionFFT(samples []float64, f *spectral.FFT) []float64 {
	half := len(samples) / 2
	diff := make([]float64, half)
	if half == 0 {
		return diff
	}
	if f == nil {
		f = spectral.NewFFT()
	}

	// prefix[k] = sum of x[i]^2 for i < k
	prefix := make([]float64, len(samples)+1)
	for i, s := range samples {
		prefix[i+1] = prefix[i] + s*s
	}

	corr := f.CrossCorrelate(samples[:half], samples, half)
	e0 := prefix[half]

	for tau := 1; tau < half; tau++ {
		eTau := prefix[tau+half] - prefix[tau]
		d := e0 + eTau - 2.0*corr[tau]
		if d < 0 {
			d = 0
		}
		diff[tau] = d
	}

	return diff
}

// CumulativeMeanNormalizedDifference turns a difference function into the
// YIN detection function:
//
//	cmndf[0]   = 1
//	cmndf[tau] = d[tau] * tau / sum_{j=1}^{tau} d[j]
//
// Entries whose running sum is not positive are 1.
func CumulativeMeanNormalizedDifference(diff []float64) []float64 {
	cmndf := make([]float64, len(diff))
	if len(diff) == 0 {
		return cmndf
	}

	cmndf[0] = 1.0
	runningSum := 0.0

	for tau := 1; tau < len(diff); tau++ {
		runningSum += diff[tau]
		if runningSum > 0 {
			cmndf[tau] = diff[tau] * float64(tau) / runningSum
		} else {
			cmndf[tau] = 1.0
		}
	}

	return cmndf
}

// AbsoluteThreshold scans cmndf from lag 2 for the first value below
// threshold, then follows the dip down while the next value is strictly
// smaller. It reports false when no lag falls below the threshold.
func AbsoluteThreshold(cmndf []float64, threshold float64) (int, bool) {
	for tau := minSearchLag; tau < len(cmndf); tau++ {
		if cmndf[tau] < threshold {
			for tau+1 < len(cmndf) && cmndf[tau+1] < cmndf[tau] {
				tau++
			}
			return tau, true
		}
	}
	return 0, false
}

// ValidateFrequency converts a period in samples to Hz and reports whether it
// lies inside [minFreq, maxFreq].
func ValidateFrequency(sampleRate, tau, minFreq, maxFreq float64) (float64, bool) {
	frequency := sampleRate / tau
	if math.IsNaN(frequency) || frequency < minFreq || frequency > maxFreq {
		return frequency, false
	}
	return frequency, true
}
