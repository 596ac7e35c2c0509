// Command pitch-detect reports the fundamental frequency of an audio file
// frame by frame.
//
// Usage:
//
//	pitch-detect voice.wav
//	pitch-detect -frame 4096 -hop 1024 -threshold 0.15 voice.wav
//	pitch-detect -method fft -json -summary song.mp3       # non-WAV input needs ffmpeg
//	pitch-detect -params params.json -channel 0 stereo.wav
//	pitch-detect -dc-cutoff 20 hum.wav
//
// Every frame is analyzed on its own; no smoothing is applied across frames.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/RyanBlaney/sonido-pitch/algorithms/common"
	"github.com/RyanBlaney/sonido-pitch/algorithms/filters"
	"github.com/RyanBlaney/sonido-pitch/algorithms/tonal"
	"github.com/RyanBlaney/sonido-pitch/logging"
	"github.com/RyanBlaney/sonido-pitch/transcode"
)

const (
	defaultFrameSize = 2048
	defaultHopSize   = 1024
	minRequiredArgs  = 1
)

func main() {
	if err := run(); err != nil {
		logging.Error(err, "pitch-detect failed")
		os.Exit(1)
	}
}

func run() error {
	frameSize := flag.Int("frame", defaultFrameSize, "Analysis frame size in samples")
	hopSize := flag.Int("hop", defaultHopSize, "Hop between frames in samples")
	threshold := flag.Float64("threshold", tonal.DefaultThreshold, "YIN threshold in (0, 1)")
	method := flag.String("method", string(tonal.DifferenceDirect), "Difference function: direct or fft")
	paramsPath := flag.String("params", "", "JSON file with detection parameters (overrides -threshold and -method)")
	channel := flag.Int("channel", transcode.DownmixChannels, "Channel to analyze, -1 to downmix")
	maxDuration := flag.Duration("max-duration", 0, "Only analyze the first part of the file (e.g. 30s)")
	dcCutoff := flag.Float64("dc-cutoff", 0, "High-pass the signal at this frequency (Hz) before analysis, 0 to disable")
	ffmpegPath := flag.String("ffmpeg", "ffmpeg", "Path to ffmpeg for non-WAV input")
	workers := flag.Int("workers", 0, "Concurrent frame workers, 0 for GOMAXPROCS")
	jsonOut := flag.Bool("json", false, "Write JSON instead of a table")
	summaryOnly := flag.Bool("summary", false, "Only print the summary")
	logLevel := flag.String("log-level", "warn", "Log level: debug, info, warn, error")
	flag.Parse()

	level, err := logging.ParseLevel(*logLevel)
	if err != nil {
		return err
	}
	logging.SetLevel(level)

	args := flag.Args()
	if len(args) < minRequiredArgs {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] input\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		return fmt.Errorf("insufficient arguments")
	}
	inputPath := args[0]

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	decoderConfig := transcode.DefaultDecoderConfig()
	decoderConfig.Channel = *channel
	decoderConfig.MaxDuration = *maxDuration
	decoderConfig.FFmpegPath = *ffmpegPath

	start := time.Now()
	audioData, err := transcode.NewDecoder(decoderConfig).DecodeFile(ctx, inputPath)
	if err != nil {
		return err
	}

	if *dcCutoff > 0 {
		blocker, err := filters.NewDCBlocker(float64(audioData.SampleRate), *dcCutoff)
		if err != nil {
			return err
		}
		audioData.PCM = blocker.ProcessBuffer(audioData.PCM)
	}

	params := tonal.DefaultPitchDetectionParams(float64(audioData.SampleRate))
	params.Threshold = *threshold
	params.DifferenceMethod = tonal.DifferenceMethod(*method)
	if *paramsPath != "" {
		params, err = loadParams(*paramsPath, params)
		if err != nil {
			return err
		}
	}

	detector, err := tonal.NewPitchDetectorWithParams(params)
	if err != nil {
		return err
	}
	detector.SetLogger(logging.GetGlobalLogger())

	window, err := common.NewSlidingWindow(*frameSize, *hopSize)
	if err != nil {
		return err
	}

	frames := window.Frames(audioData.PCM)
	if len(frames) == 0 {
		return fmt.Errorf("%s: %d samples is shorter than one %d-sample frame", inputPath, len(audioData.PCM), *frameSize)
	}

	results, err := detector.AnalyzeFrames(ctx, frames, *workers)
	if err != nil {
		return err
	}

	report := newReport(audioData, params, *frameSize, *hopSize, results, *summaryOnly)

	logging.Info("Analysis completed", logging.Fields{
		"input":   inputPath,
		"frames":  len(results),
		"elapsed": time.Since(start).Seconds(),
	})

	if *jsonOut {
		return writeJSON(os.Stdout, report)
	}
	return writeTable(os.Stdout, report)
}
