package temporal

import (
	"math"

	"github.com/RyanBlaney/sonido-pitch/algorithms/common"
)

// GateReason explains the outcome of an energy gate check
type GateReason int

const (
	GateOpen GateReason = iota
	GateTooShort
	GateSilent
)

func (r GateReason) String() string {
	switch r {
	case GateOpen:
		return "open"
	case GateTooShort:
		return "too_short"
	case GateSilent:
		return "silent"
	default:
		return "unknown"
	}
}

// GateResult is the outcome of EnergyGate.Check
type GateResult struct {
	Open   bool       `json:"open"`
	Reason GateReason `json:"reason"`
	RMS    float64    `json:"rms"` // 0 when the buffer was too short to measure
}

// EnergyGate rejects buffers that are too short or too quiet to analyze.
// It is cheap (O(N)) and meant to run ahead of quadratic analysis stages.
type EnergyGate struct {
	minSamples int
	minRMS     float64
}

// NewEnergyGate creates a gate that needs at least minSamples samples and an
// RMS of at least minRMS over the whole buffer.
func NewEnergyGate(minSamples int, minRMS float64) *EnergyGate {
	return &EnergyGate{
		minSamples: minSamples,
		minRMS:     minRMS,
	}
}

// Check measures the buffer and reports whether it may be analyzed
func (g *EnergyGate) Check(signal []float64) GateResult {
	if len(signal) < g.minSamples {
		return GateResult{Reason: GateTooShort}
	}

	rms := common.RMS(signal)
	if rms < g.minRMS {
		return GateResult{Reason: GateSilent, RMS: rms}
	}

	return GateResult{Open: true, Reason: GateOpen, RMS: rms}
}

// GetMinRMS returns the RMS floor
func (g *EnergyGate) GetMinRMS() float64 {
	return g.minRMS
}

// RMSToDB converts an RMS amplitude to dBFS, clamping at floor
func RMSToDB(rms, floor float64) float64 {
	if rms < floor {
		rms = floor
	}
	return 20.0 * math.Log10(rms)
}
