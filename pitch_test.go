package pitch

import (
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/sonido-pitch/internal/testutil"
)

func TestDetectPitch_Sine440(t *testing.T) {
	samples := testutil.Sine(440, 44100, 2048)
	detected := DetectPitch(samples, 44100)
	assert.InDelta(t, 440.0, detected, testutil.PitchToleranceHz, "expected ~440Hz, got %f", detected)
}

func TestDetectPitch_Sine220(t *testing.T) {
	samples := testutil.Sine(220, 44100, 2048)
	detected := DetectPitch(samples, 44100)
	assert.InDelta(t, 220.0, detected, testutil.PitchToleranceHz, "expected ~220Hz, got %f", detected)
}

func TestDetectPitch_Sines(t *testing.T) {
	tests := []struct {
		freq       float64
		sampleRate float64
		size       int
	}{
		{80, 44100, 2048},
		{100, 44100, 2048},
		{330, 44100, 2048},
		{880, 44100, 2048},
		{1000, 44100, 2048},
		{440, 48000, 2048},
		{200, 8000, 1024},
		{150, 16000, 4096},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%.0fHz@%.0f", tt.freq, tt.sampleRate), func(t *testing.T) {
			samples := testutil.Sine(tt.freq, tt.sampleRate, tt.size)
			detected := DetectPitch(samples, tt.sampleRate)
			assert.InDelta(t, tt.freq, detected, testutil.PitchToleranceHz)
		})
	}
}

func TestDetectPitch_HarmonicTone(t *testing.T) {
	samples := testutil.Harmonic(196, 44100, 4096, 0.6, 0.3, 0.15)
	detected := DetectPitch(samples, 44100)
	assert.InDelta(t, 196.0, detected, testutil.PitchToleranceHz)
}

func TestDetectPitch_Silence(t *testing.T) {
	samples := make([]float64, 2048)
	assert.Equal(t, -1.0, DetectPitch(samples, 44100))
}

func TestDetectPitch_ZeroBuffersOfAnyLength(t *testing.T) {
	for _, n := range []int{2, 3, 4, 17, 256, 1000, 4096} {
		assert.Equal(t, NoPitch, DetectPitch(make([]float64, n), 44100), "length %d", n)
	}
}

func TestDetectPitch_TooShort(t *testing.T) {
	assert.Equal(t, NoPitch, DetectPitch(nil, 44100))
	assert.Equal(t, NoPitch, DetectPitch([]float64{}, 44100))
	assert.Equal(t, NoPitch, DetectPitch([]float64{0.9}, 44100))
}

func TestDetectPitch_TinyBuffersDoNotPanic(t *testing.T) {
	for n := 2; n <= 8; n++ {
		samples := testutil.Sine(3000, 44100, n)
		assert.NotPanics(t, func() {
			_ = DetectPitch(samples, 44100)
			_ = GetPitchClarity(samples, 44100)
		}, "length %d", n)
	}
}

func TestDetectPitch_BelowEnergyGate(t *testing.T) {
	// RMS of a sine is amplitude/sqrt(2)
	quiet := testutil.SineWithAmplitude(440, 44100, 2048, 0.01)
	assert.Equal(t, NoPitch, DetectPitch(quiet, 44100))

	audible := testutil.SineWithAmplitude(440, 44100, 2048, 0.02)
	assert.InDelta(t, 440.0, DetectPitch(audible, 44100), testutil.PitchToleranceHz)
}

func TestDetectPitch_AmplitudeInvariant(t *testing.T) {
	loud := DetectPitch(testutil.SineWithAmplitude(330, 44100, 2048, 1.0), 44100)
	soft := DetectPitch(testutil.SineWithAmplitude(330, 44100, 2048, 0.05), 44100)
	assert.InDelta(t, loud, soft, 1e-6)
}

func TestDetectPitch_OutOfBandRejected(t *testing.T) {
	// both produce a clear CMNDF dip, at periods that map outside [60, 2000] Hz
	high := testutil.Sine(3000, 44100, 2048)
	assert.Equal(t, NoPitch, DetectPitch(high, 44100))

	low := testutil.Sine(40, 44100, 8192)
	assert.Equal(t, NoPitch, DetectPitch(low, 44100))
}

func TestDetectPitch_Noise(t *testing.T) {
	noise := testutil.Noise(2048, 0.5, 7)
	assert.Equal(t, NoPitch, DetectPitch(noise, 44100))
}

func TestDetectPitch_InvalidSampleRate(t *testing.T) {
	samples := testutil.Sine(440, 44100, 2048)
	assert.Equal(t, NoPitch, DetectPitch(samples, 0))
	assert.Equal(t, NoPitch, DetectPitch(samples, -44100))
	assert.Equal(t, NoPitch, DetectPitch(samples, math.NaN()))
}

func TestDetectPitchWithThreshold(t *testing.T) {
	samples := testutil.Sine(440, 44100, 2048)

	assert.InDelta(t, 440.0, DetectPitchWithThreshold(samples, 44100, 0.2), testutil.PitchToleranceHz)
	assert.Equal(t, DetectPitch(samples, 44100), DetectPitchWithThreshold(samples, 44100, DefaultThreshold))

	// CMNDF is never negative, so nothing can fall below 0
	assert.Equal(t, NoPitch, DetectPitchWithThreshold(samples, 44100, 0))
}

func TestDetectPitchWithThreshold_LooseThresholdAcceptsNoise(t *testing.T) {
	noise := testutil.Noise(2048, 0.5, 11)
	assert.Equal(t, NoPitch, DetectPitchWithThreshold(noise, 44100, 0.1))
	// a threshold above every CMNDF value accepts the first searched lag
	detected := DetectPitchWithThreshold(noise, 44100, 100)
	if detected != NoPitch {
		assert.GreaterOrEqual(t, detected, MinFrequency)
		assert.LessOrEqual(t, detected, MaxFrequency)
	}
}

func TestDetectPitch_Deterministic(t *testing.T) {
	samples := testutil.Harmonic(261.6, 44100, 2048, 1.0, 0.5)
	first := DetectPitch(samples, 44100)
	firstClarity := GetPitchClarity(samples, 44100)
	for range 5 {
		assert.Equal(t, first, DetectPitch(samples, 44100))
		assert.Equal(t, firstClarity, GetPitchClarity(samples, 44100))
	}
}

func TestDetectPitch_DoesNotModifyInput(t *testing.T) {
	samples := testutil.Sine(440, 44100, 1024)
	original := append([]float64(nil), samples...)
	_ = DetectPitch(samples, 44100)
	_ = GetPitchClarity(samples, 44100)
	assert.Equal(t, original, samples)
}

func TestDetectPitch_Concurrent(t *testing.T) {
	freqs := []float64{110, 220, 440, 880}
	want := make([]float64, len(freqs))
	for i, f := range freqs {
		want[i] = DetectPitch(testutil.Sine(f, 44100, 2048), 44100)
	}

	var wg sync.WaitGroup
	got := make([][]float64, 8)
	for w := range got {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, f := range freqs {
				got[w] = append(got[w], DetectPitch(testutil.Sine(f, 44100, 2048), 44100))
			}
		}()
	}
	wg.Wait()

	for w := range got {
		assert.Equal(t, want, got[w], "worker %d", w)
	}
}

func TestCalculateRMS(t *testing.T) {
	assert.Equal(t, 0.0, CalculateRMS(nil))
	assert.Equal(t, 0.0, CalculateRMS([]float64{}))
	assert.InDelta(t, 1.0, CalculateRMS([]float64{1.0, -1.0, 1.0, -1.0}), 0.01)
	assert.InDelta(t, 0.5, CalculateRMS([]float64{0.5, -0.5}), 1e-12)
	assert.InDelta(t, math.Sqrt(0.5), CalculateRMS(testutil.Sine(441, 44100, 44100)), 1e-6)
}

func TestGetPitchClarity_Range(t *testing.T) {
	inputs := map[string][]float64{
		"empty":     nil,
		"single":    {0.3},
		"pair":      {1, -1},
		"zeros":     make([]float64, 512),
		"sine":      testutil.Sine(440, 44100, 2048),
		"noise":     testutil.Noise(2048, 1.0, 3),
		"constant":  {0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5},
		"nan":       {math.NaN(), 1, -1, 0.5},
		"inf":       {math.Inf(1), 1, -1, 0.5},
		"impulse":   append([]float64{1}, make([]float64, 1023)...),
		"ramp":      {0, 0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7},
		"clipped":   {1, 1, 1, -1, -1, -1, 1, 1, 1, -1, -1, -1},
		"short_low": testutil.Sine(100, 8000, 64),
	}

	for name, samples := range inputs {
		for _, rate := range []float64{0, 1000, 8000, 44100, 96000} {
			c := GetPitchClarity(samples, rate)
			assert.GreaterOrEqual(t, c, 0.0, "%s @ %v", name, rate)
			assert.LessOrEqual(t, c, 1.0, "%s @ %v", name, rate)
		}
	}
}

func TestGetPitchClarity_NegligibleEnergy(t *testing.T) {
	assert.Equal(t, NoClarity, GetPitchClarity(make([]float64, 2048), 44100))
	assert.Equal(t, NoClarity, GetPitchClarity([]float64{1e-200, 1e-200, 0, 0}, 44100))
}

func TestGetPitchClarity_PeriodicVersusNoise(t *testing.T) {
	sine := GetPitchClarity(testutil.Sine(440, 44100, 2048), 44100)
	noise := GetPitchClarity(testutil.Noise(2048, 1.0, 5), 44100)

	assert.Greater(t, sine, 0.8)
	assert.Less(t, noise, 0.3)
}

func TestFloat32EntryPoints(t *testing.T) {
	samples := testutil.Sine(440, 44100, 2048)
	samples32 := testutil.Float32(samples)

	assert.InDelta(t, DetectPitch(samples, 44100), DetectPitchFloat32(samples32, 44100), 0.01)
	assert.InDelta(t, DetectPitchWithThreshold(samples, 44100, 0.15),
		DetectPitchWithThresholdFloat32(samples32, 44100, 0.15), 0.01)
	assert.InDelta(t, CalculateRMS(samples), CalculateRMSFloat32(samples32), 1e-6)
	assert.InDelta(t, GetPitchClarity(samples, 44100), GetPitchClarityFloat32(samples32, 44100), 1e-4)

	assert.Equal(t, NoPitch, DetectPitchFloat32(nil, 44100))
	require.Equal(t, 0.0, CalculateRMSFloat32(nil))
}

func BenchmarkDetectPitch(b *testing.B) {
	samples := testutil.Sine(440, 44100, 2048)
	b.ReportAllocs()
	for b.Loop() {
		_ = DetectPitch(samples, 44100)
	}
}

func BenchmarkGetPitchClarity(b *testing.B) {
	samples := testutil.Sine(440, 44100, 2048)
	b.ReportAllocs()
	for b.Loop() {
		_ = GetPitchClarity(samples, 44100)
	}
}
