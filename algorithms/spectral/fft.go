package spectral

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"

	"github.com/RyanBlaney/sonido-pitch/algorithms/common"
)

// FFT provides Fast Fourier Transform functionality
type FFT struct {
	// No state needed for now
}

// NewFFT creates a new FFT calculator
func NewFFT() *FFT {
	return &FFT{}
}

// Compute computes Fast Fourier Transform using mjibson/go-dsp
func (f *FFT) Compute(x []float64) []complex128 {
	if len(x) == 0 {
		return []complex128{}
	}

	// mjibson/go-dsp handles all sizes efficiently, including non-power-of-2
	return fft.FFTReal(x)
}

// ComputeInverseReal computes inverse FFT and returns real part only
func (f *FFT) ComputeInverseReal(x []complex128) []float64 {
	if len(x) == 0 {
		return []float64{}
	}

	result := fft.IFFT(x)
	realResult := make([]float64, len(result))

	for i, val := range result {
		realResult[i] = real(val)
	}

	return realResult
}

// CrossCorrelate returns c[lag] = sum_i template[i] * signal[i+lag] for
// lag in [0, lags), treating samples past the end of signal as zero.
//
// Both inputs are zero padded to a power of two of at least
// len(template)+len(signal), so the circular correlation never wraps into
// the non-negative lags.
func (f *FFT) CrossCorrelate(template, signal []float64, lags int) []float64 {
	if lags <= 0 {
		return []float64{}
	}
	if len(template) == 0 || len(signal) == 0 {
		return make([]float64, lags)
	}

	size := common.NextPowerOfTwo(len(template) + len(signal))

	paddedTemplate := make([]float64, size)
	copy(paddedTemplate, template)
	paddedSignal := make([]float64, size)
	copy(paddedSignal, signal)

	templateSpectrum := f.Compute(paddedTemplate)
	signalSpectrum := f.Compute(paddedSignal)

	product := make([]complex128, size)
	for k := range product {
		product[k] = cmplx.Conj(templateSpectrum[k]) * signalSpectrum[k]
	}

	full := f.ComputeInverseReal(product)

	out := make([]float64, lags)
	copy(out, full[:min(lags, size)])
	return out
}
