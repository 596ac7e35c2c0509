package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/sonido-pitch/algorithms/tonal"
	"github.com/RyanBlaney/sonido-pitch/transcode"
)

func writeParamsFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "params.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadParams_Overlay(t *testing.T) {
	base := tonal.DefaultPitchDetectionParams(44100)
	path := writeParamsFile(t, `{"threshold": 0.15, "max_freq": 1000, "difference_method": "fft"}`)

	params, err := loadParams(path, base)
	require.NoError(t, err)

	assert.Equal(t, 0.15, params.Threshold)
	assert.Equal(t, 1000.0, params.MaxFreq)
	assert.Equal(t, tonal.DifferenceFFT, params.DifferenceMethod)
	assert.Equal(t, base.SampleRate, params.SampleRate)
	assert.Equal(t, base.MinFreq, params.MinFreq)
}

func TestLoadParams_Errors(t *testing.T) {
	base := tonal.DefaultPitchDetectionParams(44100)

	_, err := loadParams(filepath.Join(t.TempDir(), "missing.json"), base)
	assert.ErrorContains(t, err, "failed to read params file")

	_, err = loadParams(writeParamsFile(t, `{"threshold":`), base)
	assert.ErrorContains(t, err, "failed to parse params file")

	_, err = loadParams(writeParamsFile(t, `{"threshold": 1.5}`), base)
	assert.ErrorIs(t, err, tonal.ErrInvalidThreshold)

	_, err = loadParams(writeParamsFile(t, `{"difference_method": "wavelet"}`), base)
	assert.ErrorIs(t, err, tonal.ErrInvalidMethod)
}

func testReport(summaryOnly bool) *report {
	data := &transcode.AudioData{
		Source:     "tone.wav",
		SampleRate: 8000,
		Channels:   1,
		Duration:   500 * time.Millisecond,
	}
	results := []tonal.FrameResult{
		{Index: 0, Offset: 0, Time: 0, PitchDetectionResult: &tonal.PitchDetectionResult{
			Pitch: 220, Voiced: true, Clarity: 0.9, RMS: 0.5,
		}},
		{Index: 1, Offset: 1024, Time: 0.128, PitchDetectionResult: &tonal.PitchDetectionResult{
			Pitch: -1, Reason: tonal.ReasonSilent,
		}},
	}
	return newReport(data, tonal.DefaultPitchDetectionParams(8000), 2048, 1024, results, summaryOnly)
}

func TestNewReport(t *testing.T) {
	r := testReport(false)
	assert.Equal(t, 2, r.Summary.Frames)
	assert.Equal(t, 1, r.Summary.VoicedFrames)
	assert.Equal(t, 220.0, r.Summary.MedianPitch)
	assert.Equal(t, 0.5, r.Duration)
	assert.Len(t, r.Frames, 2)

	assert.Empty(t, testReport(true).Frames)
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeTable(&buf, testReport(false)))

	out := buf.String()
	assert.Contains(t, out, "PITCH (Hz)")
	assert.Contains(t, out, "220.00")
	assert.Contains(t, out, "voiced")
	assert.Contains(t, out, "silent")
	assert.Contains(t, out, "tone.wav (8000 Hz, 0.50s)")
	assert.Contains(t, out, "1 / 2")
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, testReport(true)))

	out := buf.String()
	assert.Contains(t, out, `"source": "tone.wav"`)
	assert.Contains(t, out, `"voiced_frames": 1`)
	assert.NotContains(t, out, `"frames": [`)
}

func TestStatus(t *testing.T) {
	assert.Equal(t, "-", status(nil))
	assert.Equal(t, "voiced", status(&tonal.PitchDetectionResult{Voiced: true}))
	assert.Equal(t, "out_of_range", status(&tonal.PitchDetectionResult{Reason: tonal.ReasonOutOfRange}))
}
