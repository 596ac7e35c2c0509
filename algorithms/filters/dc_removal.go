package filters

import (
	"fmt"
	"math"
)

// DCBlocker is a one-pole, one-zero high-pass filter that removes the DC
// offset (and slow drift) from a signal:
//
//	y[n] = x[n] - x[n-1] + R*y[n-1]
//
// Reference: Julius O. Smith III, "Introduction to Digital Filters with Audio
// Applications", DC Blocker. https://ccrma.stanford.edu/~jos/filters/DC_Blocker.html
type DCBlocker struct {
	pole float64 // R, in (0, 1)

	x1 float64
	y1 float64
}

// NewDCBlocker creates a blocker with a -3 dB cutoff near cutoffHz, using the
// small-angle design R = 1 - 2*pi*fc/fs.
func NewDCBlocker(sampleRate, cutoffHz float64) (*DCBlocker, error) {
	if !(sampleRate > 0) {
		return nil, fmt.Errorf("sample rate must be positive, got %v", sampleRate)
	}
	if !(cutoffHz > 0) || cutoffHz >= sampleRate/2 {
		return nil, fmt.Errorf("cutoff %v Hz must be in (0, %v)", cutoffHz, sampleRate/2)
	}

	pole := 1.0 - 2.0*math.Pi*cutoffHz/sampleRate
	pole = math.Min(math.Max(pole, 0.001), 0.999)

	return &DCBlocker{pole: pole}, nil
}

// Process filters one sample
func (dc *DCBlocker) Process(x float64) float64 {
	y := x - dc.x1 + dc.pole*dc.y1
	dc.x1 = x
	dc.y1 = y
	return y
}

// ProcessBuffer filters a whole buffer into a new slice, carrying state over
// from previous calls.
func (dc *DCBlocker) ProcessBuffer(input []float64) []float64 {
	output := make([]float64, len(input))
	for i, x := range input {
		output[i] = dc.Process(x)
	}
	return output
}

// Reset clears the filter state. Call it between unrelated signals.
func (dc *DCBlocker) Reset() {
	dc.x1 = 0
	dc.y1 = 0
}

// GetPole returns R
func (dc *DCBlocker) GetPole() float64 {
	return dc.pole
}

// CutoffFrequency inverts the design formula: fc = (1-R)*fs/(2*pi)
func (dc *DCBlocker) CutoffFrequency(sampleRate float64) float64 {
	return (1.0 - dc.pole) * sampleRate / (2.0 * math.Pi)
}
