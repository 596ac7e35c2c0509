package tonal

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/RyanBlaney/sonido-pitch/algorithms/common"
)

// FrameResult is the pitch analysis of one frame of a longer signal
type FrameResult struct {
	Index  int     `json:"index"`
	Offset int     `json:"offset"`
	Time   float64 `json:"time"` // seconds from the start of the signal

	*PitchDetectionResult
}

// PitchSummary aggregates frame results. Pitch statistics cover voiced
// frames only.
type PitchSummary struct {
	Frames       int     `json:"frames"`
	VoicedFrames int     `json:"voiced_frames"`
	MeanPitch    float64 `json:"mean_pitch"`
	MedianPitch  float64 `json:"median_pitch"`
	MinPitch     float64 `json:"min_pitch"`
	MaxPitch     float64 `json:"max_pitch"`
	MeanClarity  float64 `json:"mean_clarity"`
}

// AnalyzeFrames runs the detector over every frame on up to workers
// goroutines (GOMAXPROCS when workers <= 0). Each frame is analyzed on its
// own; nothing carries over between frames. Results are in frame order.
func (pd *PitchDetector) AnalyzeFrames(ctx context.Context, frames []common.Frame, workers int) ([]FrameResult, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]FrameResult, len(frames))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, frame := range frames {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = FrameResult{
				Index:                frame.Index,
				Offset:               frame.Offset,
				Time:                 float64(frame.Offset) / pd.params.SampleRate,
				PitchDetectionResult: pd.DetectPitch(frame.Samples),
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

// SummarizeFrames computes aggregate pitch statistics
func SummarizeFrames(results []FrameResult) PitchSummary {
	summary := PitchSummary{Frames: len(results)}
	if len(results) == 0 {
		return summary
	}

	pitches := make([]float64, 0, len(results))
	clarities := make([]float64, 0, len(results))

	for _, r := range results {
		if r.PitchDetectionResult == nil {
			continue
		}
		clarities = append(clarities, r.Clarity)
		if r.Voiced {
			pitches = append(pitches, r.Pitch)
		}
	}

	summary.VoicedFrames = len(pitches)
	summary.MeanClarity = common.Mean(clarities)

	if len(pitches) > 0 {
		summary.MeanPitch = common.Mean(pitches)
		summary.MedianPitch = common.Percentile(pitches, 0.5)
		summary.MinPitch = common.Percentile(pitches, 0)
		summary.MaxPitch = common.Percentile(pitches, 1)
	}

	return summary
}
