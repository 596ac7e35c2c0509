package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/RyanBlaney/sonido-pitch/algorithms/temporal"
	"github.com/RyanBlaney/sonido-pitch/algorithms/tonal"
	"github.com/RyanBlaney/sonido-pitch/transcode"
)

// dB floor for printing frame levels
const levelFloor = 1e-6

// report is the CLI output document
type report struct {
	Source     string                     `json:"source"`
	SampleRate int                        `json:"sample_rate"`
	Channels   int                        `json:"channels"`
	Duration   float64                    `json:"duration"`
	FrameSize  int                        `json:"frame_size"`
	HopSize    int                        `json:"hop_size"`
	Params     tonal.PitchDetectionParams `json:"params"`
	Summary    tonal.PitchSummary         `json:"summary"`
	Frames     []tonal.FrameResult        `json:"frames,omitempty"`
}

func newReport(data *transcode.AudioData, params tonal.PitchDetectionParams, frameSize, hopSize int, results []tonal.FrameResult, summaryOnly bool) *report {
	r := &report{
		Source:     data.Source,
		SampleRate: data.SampleRate,
		Channels:   data.Channels,
		Duration:   data.Duration.Seconds(),
		FrameSize:  frameSize,
		HopSize:    hopSize,
		Params:     params,
		Summary:    tonal.SummarizeFrames(results),
	}
	if !summaryOnly {
		r.Frames = results
	}
	return r
}

// loadParams overlays a JSON parameter file on base. Fields missing from the
// file keep their base value.
func loadParams(path string, base tonal.PitchDetectionParams) (tonal.PitchDetectionParams, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("failed to read params file: %w", err)
	}

	params := base
	if err := json.Unmarshal(raw, &params); err != nil {
		return base, fmt.Errorf("failed to parse params file %s: %w", path, err)
	}

	if err := params.Validate(); err != nil {
		return base, fmt.Errorf("params file %s: %w", path, err)
	}

	return params, nil
}

func writeJSON(w io.Writer, r *report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

func writeTable(w io.Writer, r *report) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	if len(r.Frames) > 0 {
		fmt.Fprintln(tw, "TIME\tPITCH (Hz)\tCLARITY\tLEVEL (dB)\tSTATUS")
		for _, f := range r.Frames {
			pitch := "-"
			if f.Voiced {
				pitch = fmt.Sprintf("%.2f", f.Pitch)
			}
			fmt.Fprintf(tw, "%.3f\t%s\t%.3f\t%.1f\t%s\n",
				f.Time, pitch, f.Clarity, temporal.RMSToDB(f.RMS, levelFloor), status(f.PitchDetectionResult))
		}
		fmt.Fprintln(tw)
	}

	s := r.Summary
	fmt.Fprintf(tw, "Source:\t%s (%d Hz, %.2fs)\n", r.Source, r.SampleRate, r.Duration)
	fmt.Fprintf(tw, "Voiced frames:\t%d / %d\n", s.VoicedFrames, s.Frames)
	if s.VoicedFrames > 0 {
		fmt.Fprintf(tw, "Median pitch:\t%.2f Hz\n", s.MedianPitch)
		fmt.Fprintf(tw, "Mean pitch:\t%.2f Hz\n", s.MeanPitch)
		fmt.Fprintf(tw, "Range:\t%.2f - %.2f Hz\n", s.MinPitch, s.MaxPitch)
	}
	fmt.Fprintf(tw, "Mean clarity:\t%.3f\n", s.MeanClarity)

	return tw.Flush()
}

func status(r *tonal.PitchDetectionResult) string {
	if r == nil {
		return "-"
	}
	if r.Voiced {
		return "voiced"
	}
	return r.Reason.String()
}
