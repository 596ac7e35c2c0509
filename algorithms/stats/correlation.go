package stats

import (
	"fmt"

	"github.com/tphakala/simd/f64"
)

// CorrelationResult contains autocorrelation values over a lag range and the
// strongest lag found in it.
type CorrelationResult struct {
	// Correlations[k] is the correlation at Lags[k]
	Correlations []float64 `json:"correlations"`
	Lags         []int     `json:"lags"`

	// Peak correlation information. PeakLag and PeakIndex are -1 when no lag
	// rose above the peak floor.
	PeakCorrelation float64 `json:"peak_correlation"`
	PeakLag         int     `json:"peak_lag"`
	PeakIndex       int     `json:"peak_index"`

	// ZeroLagEnergy is the correlation at lag 0, sum of x[i]^2 over the window
	ZeroLagEnergy float64 `json:"zero_lag_energy"`
	Window        int     `json:"window"`
}

// Normalized returns PeakCorrelation / ZeroLagEnergy, or 0 when the window
// carries no energy.
func (r *CorrelationResult) Normalized() float64 {
	if r.ZeroLagEnergy <= 0 {
		return 0.0
	}
	return r.PeakCorrelation / r.ZeroLagEnergy
}

// AutoCorrelation computes the raw autocorrelation (no mean removal, no
// length scaling) of the first window samples of a signal:
//
//	r(lag) = sum_{i=0}^{window-1-lag} x[i] * x[i+lag]
//
// for every lag in [minLag, maxLag). Lags at or past the window are skipped.
//
// References:
// - Rabiner, L.R. (1977). "On the use of autocorrelation analysis for pitch detection"
type AutoCorrelation struct {
	minLag int
	maxLag int

	// Only correlations strictly above the floor can become the peak
	peakFloor float64
}

// NewAutoCorrelation creates an autocorrelation calculator over [minLag, maxLag)
// with a peak floor of 0, so anti-correlated lags never win.
func NewAutoCorrelation(minLag, maxLag int) *AutoCorrelation {
	if minLag < 0 {
		minLag = 0
	}
	return &AutoCorrelation{
		minLag:    minLag,
		maxLag:    maxLag,
		peakFloor: 0.0,
	}
}

// Compute calculates the autocorrelation over the configured lag range using
// the first window samples of signal.
func (ac *AutoCorrelation) Compute(signal []float64, window int) (*CorrelationResult, error) {
	if window < 0 || window > len(signal) {
		return nil, fmt.Errorf("window %d out of range for signal of length %d", window, len(signal))
	}

	maxLag := min(ac.maxLag, window)
	numLags := max(maxLag-ac.minLag, 0)

	result := &CorrelationResult{
		Correlations:    make([]float64, 0, numLags),
		Lags:            make([]int, 0, numLags),
		PeakCorrelation: ac.peakFloor,
		PeakLag:         -1,
		PeakIndex:       -1,
		ZeroLagEnergy:   LagProduct(signal, window, 0),
		Window:          window,
	}

	for lag := ac.minLag; lag < maxLag; lag++ {
		corr := LagProduct(signal, window, lag)

		result.Correlations = append(result.Correlations, corr)
		result.Lags = append(result.Lags, lag)

		if corr > result.PeakCorrelation {
			result.PeakCorrelation = corr
			result.PeakLag = lag
			result.PeakIndex = len(result.Correlations) - 1
		}
	}

	return result, nil
}

// LagProduct returns sum_{i=0}^{window-1-lag} x[i] * x[i+lag]. It returns 0
// when the overlap is empty. The caller guarantees window <= len(signal).
func LagProduct(signal []float64, window, lag int) float64 {
	n := window - lag
	if n <= 0 || lag < 0 {
		return 0.0
	}
	return f64.DotProduct(signal[:n], signal[lag:lag+n])
}

// GetLagRange returns the configured [min, max) lag range
func (ac *AutoCorrelation) GetLagRange() (int, int) {
	return ac.minLag, ac.maxLag
}
