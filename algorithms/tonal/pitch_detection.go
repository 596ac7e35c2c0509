package tonal

import (
	"errors"
	"fmt"
	"math"

	"github.com/RyanBlaney/sonido-pitch/algorithms/common"
	"github.com/RyanBlaney/sonido-pitch/algorithms/spectral"
	"github.com/RyanBlaney/sonido-pitch/algorithms/temporal"
	"github.com/RyanBlaney/sonido-pitch/logging"
)

var (
	// ErrInvalidSampleRate reports a sample rate that is not a positive finite number
	ErrInvalidSampleRate = errors.New("invalid sample rate")

	// ErrInvalidThreshold reports a YIN threshold outside (0, 1)
	ErrInvalidThreshold = errors.New("invalid threshold")

	// ErrInvalidRange reports a frequency band with MinFreq <= 0 or MaxFreq <= MinFreq
	ErrInvalidRange = errors.New("invalid frequency range")

	// ErrInvalidMethod reports an unknown DifferenceMethod
	ErrInvalidMethod = errors.New("invalid difference method")
)

// DifferenceMethod selects how the difference function is computed
type DifferenceMethod string

const (
	// DifferenceDirect is the O(N^2) sequential sum
	DifferenceDirect DifferenceMethod = "direct"

	// DifferenceFFT expands the square and correlates through the FFT
	DifferenceFFT DifferenceMethod = "fft"
)

// NoPitchReason tells why a frame produced no pitch
type NoPitchReason int

const (
	ReasonNone NoPitchReason = iota
	ReasonTooShort
	ReasonSilent
	ReasonNoThresholdCrossing
	ReasonOutOfRange
)

func (r NoPitchReason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonTooShort:
		return "too_short"
	case ReasonSilent:
		return "silent"
	case ReasonNoThresholdCrossing:
		return "no_threshold_crossing"
	case ReasonOutOfRange:
		return "out_of_range"
	default:
		return "unknown"
	}
}

// MarshalText lets reasons appear by name in JSON output
func (r NoPitchReason) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// PitchDetectionParams contains parameters for pitch detection
type PitchDetectionParams struct {
	SampleRate float64 `json:"sample_rate"`

	// YIN absolute threshold on the CMNDF, in (0, 1)
	Threshold float64 `json:"threshold"`

	// Frequency range constraints
	MinFreq float64 `json:"min_freq"` // Minimum frequency (Hz)
	MaxFreq float64 `json:"max_freq"` // Maximum frequency (Hz)

	// Buffers with a lower RMS are treated as silence
	MinRMS float64 `json:"min_rms"`

	DifferenceMethod DifferenceMethod `json:"difference_method"`

	// Also compute the autocorrelation clarity score for each frame
	ComputeClarity bool `json:"compute_clarity"`
}

// DefaultPitchDetectionParams returns the standard YIN configuration for a
// sample rate.
func DefaultPitchDetectionParams(sampleRate float64) PitchDetectionParams {
	return PitchDetectionParams{
		SampleRate:       sampleRate,
		Threshold:        DefaultThreshold,
		MinFreq:          MinFrequency,
		MaxFreq:          MaxFrequency,
		MinRMS:           MinRMS,
		DifferenceMethod: DifferenceDirect,
		ComputeClarity:   true,
	}
}

// Validate checks that the parameters describe a usable detector
func (p PitchDetectionParams) Validate() error {
	if !(p.SampleRate > 0) || math.IsInf(p.SampleRate, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidSampleRate, p.SampleRate)
	}
	if !(p.Threshold > 0 && p.Threshold < 1) {
		return fmt.Errorf("%w: %v not in (0, 1)", ErrInvalidThreshold, p.Threshold)
	}
	if !(p.MinFreq > 0) || !(p.MaxFreq > p.MinFreq) {
		return fmt.Errorf("%w: [%v, %v]", ErrInvalidRange, p.MinFreq, p.MaxFreq)
	}
	if p.MinRMS < 0 {
		return fmt.Errorf("min rms must not be negative, got %v", p.MinRMS)
	}
	switch p.DifferenceMethod {
	case DifferenceDirect, DifferenceFFT:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidMethod, p.DifferenceMethod)
	}
	return nil
}

// PitchDetectionResult contains the outcome of analyzing one buffer
type PitchDetectionResult struct {
	// Pitch in Hz; meaningful only when Voiced
	Pitch  float64       `json:"pitch"`
	Voiced bool          `json:"voiced"`
	Reason NoPitchReason `json:"reason"`

	// Integer lag chosen by the threshold search and its refined value
	Tau        int     `json:"tau"`
	RefinedTau float64 `json:"refined_tau"`

	// CMNDF value at Tau; lower means more periodic
	Aperiodicity float64 `json:"aperiodicity"`

	Clarity float64 `json:"clarity"`
	RMS     float64 `json:"rms"`

	Threshold float64 `json:"threshold"`
}

// Yin runs the YIN estimator over samples with params as given. Parameters
// are not validated: a threshold outside (0, 1) or a non-positive sample rate
// simply yields no pitch, which is what the sentinel API relies on.
// Clarity is not computed here.
func Yin(samples []float64, params PitchDetectionParams) *PitchDetectionResult {
	return yin(samples, params, nil)
}

func yin(samples []float64, params PitchDetectionParams, f *spectral.FFT) *PitchDetectionResult {
	result := &PitchDetectionResult{
		Threshold: params.Threshold,
	}

	gate := temporal.NewEnergyGate(MinSamples, params.MinRMS).Check(samples)
	result.RMS = gate.RMS
	switch gate.Reason {
	case temporal.GateTooShort:
		result.Reason = ReasonTooShort
		return result
	case temporal.GateSilent:
		result.Reason = ReasonSilent
		return result
	}

	var diff []float64
	if params.DifferenceMethod == DifferenceFFT {
		diff = DifferenceFunctionFFT(samples, f)
	} else {
		diff = DifferenceFunction(samples)
	}

	cmndf := CumulativeMeanNormalizedDifference(diff)

	tau, ok := AbsoluteThreshold(cmndf, params.Threshold)
	if !ok {
		result.Reason = ReasonNoThresholdCrossing
		return result
	}

	result.Tau = tau
	result.Aperiodicity = cmndf[tau]
	result.RefinedTau = common.ParabolicInterpolation(cmndf, tau)

	frequency, ok := ValidateFrequency(params.SampleRate, result.RefinedTau, params.MinFreq, params.MaxFreq)
	if !ok {
		result.Reason = ReasonOutOfRange
		return result
	}

	result.Pitch = frequency
	result.Voiced = true
	return result
}

// PitchDetector implements the YIN fundamental frequency estimator with an
// optional autocorrelation clarity score.
//
// References:
// - de Cheveigné, A., Kawahara, H. (2002). "YIN, a fundamental frequency estimator for speech and music"
//
// A PitchDetector holds no per-call state and is safe for concurrent use
// once configured.
type PitchDetector struct {
	params PitchDetectionParams
	fft    *spectral.FFT
	logger logging.Logger
}

// NewPitchDetector creates a new pitch detector with default parameters
func NewPitchDetector(sampleRate float64) (*PitchDetector, error) {
	return NewPitchDetectorWithParams(DefaultPitchDetectionParams(sampleRate))
}

// NewPitchDetectorWithParams creates a pitch detector with custom parameters
func NewPitchDetectorWithParams(params PitchDetectionParams) (*PitchDetector, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	return &PitchDetector{
		params: params,
		fft:    spectral.NewFFT(),
		logger: &logging.NoOpLogger{},
	}, nil
}

// SetLogger attaches a logger. Call before sharing the detector.
func (pd *PitchDetector) SetLogger(logger logging.Logger) {
	if logger == nil {
		logger = &logging.NoOpLogger{}
	}
	pd.logger = logger.WithFields(logging.Fields{
		"component": "pitch_detector",
	})
}

// DetectPitch analyzes one buffer
func (pd *PitchDetector) DetectPitch(samples []float64) *PitchDetectionResult {
	result := yin(samples, pd.params, pd.fft)

	if pd.params.ComputeClarity {
		result.Clarity = PitchClarityInRange(samples, pd.params.SampleRate, pd.params.MinFreq, pd.params.MaxFreq)
	}

	if !result.Voiced {
		pd.logger.Debug("No pitch detected", logging.Fields{
			"reason":  result.Reason.String(),
			"samples": len(samples),
			"rms":     result.RMS,
		})
	}

	return result
}

// GetParameters returns the detector configuration
func (pd *PitchDetector) GetParameters() PitchDetectionParams {
	return pd.params
}
