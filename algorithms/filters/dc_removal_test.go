package filters

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/sonido-pitch/algorithms/common"
)

func TestDCBlocker_RemovesOffset(t *testing.T) {
	const sampleRate = 8000.0

	dc, err := NewDCBlocker(sampleRate, 10)
	require.NoError(t, err)

	signal := make([]float64, 16000)
	for i := range signal {
		signal[i] = 0.5 + 0.2*math.Sin(2*math.Pi*440*float64(i)/sampleRate)
	}

	out := dc.ProcessBuffer(signal)
	require.Len(t, out, len(signal))

	settled := out[len(out)/2:]
	assert.InDelta(t, 0.0, common.Mean(settled), 0.01)
	assert.InDelta(t, 0.2/math.Sqrt2, common.RMS(settled), 0.01)
}

func TestDCBlocker_CutoffRoundTrip(t *testing.T) {
	dc, err := NewDCBlocker(44100, 20)
	require.NoError(t, err)
	assert.InDelta(t, 20.0, dc.CutoffFrequency(44100), 1e-9)
	assert.Less(t, dc.GetPole(), 1.0)
}

func TestDCBlocker_Reset(t *testing.T) {
	dc, err := NewDCBlocker(8000, 10)
	require.NoError(t, err)

	first := dc.ProcessBuffer([]float64{1, 1, 1})
	dc.Reset()
	second := dc.ProcessBuffer([]float64{1, 1, 1})
	assert.Equal(t, first, second)
	assert.Equal(t, 1.0, first[0])
}

func TestNewDCBlocker_Invalid(t *testing.T) {
	_, err := NewDCBlocker(0, 10)
	assert.Error(t, err)
	_, err = NewDCBlocker(8000, 0)
	assert.Error(t, err)
	_, err = NewDCBlocker(8000, 4000)
	assert.Error(t, err)
}
