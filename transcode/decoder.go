package transcode

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/RyanBlaney/sonido-pitch/logging"
)

// DownmixChannels selects averaging all channels into one
const DownmixChannels = -1

// pcmFormatTag is the WAVE_FORMAT_PCM tag in the fmt chunk
const pcmFormatTag = 1

var (
	ErrNoSamples = errors.New("no audio samples decoded")

	// ErrUnsupportedWAV marks WAV files that are not integer PCM (IEEE
	// float, A-law, ...). DecodeFile sends them through ffmpeg instead.
	ErrUnsupportedWAV = errors.New("unsupported WAV encoding")
)

// AudioData represents decoded mono audio
type AudioData struct {
	PCM        []float64     `json:"-"` // mono samples in [-1, 1]
	SampleRate int           `json:"sample_rate"`
	Channels   int           `json:"channels"` // source channel count, 0 when unknown
	BitDepth   int           `json:"bit_depth,omitempty"`
	Duration   time.Duration `json:"duration"`
	Source     string        `json:"source"`
	Format     string        `json:"format"` // "wav" or "ffmpeg"
}

// DecoderConfig holds decoder configuration
type DecoderConfig struct {
	// Channel to analyze, or DownmixChannels to average all of them
	Channel int `json:"channel"`

	// MaxDuration truncates decoded audio; 0 means no limit
	MaxDuration time.Duration `json:"max_duration"`

	// Used for non-WAV inputs only
	FFmpegPath       string        `json:"ffmpeg_path"`
	TargetSampleRate int           `json:"target_sample_rate"`
	Timeout          time.Duration `json:"timeout"`
}

// DefaultDecoderConfig returns default decoder configuration
func DefaultDecoderConfig() *DecoderConfig {
	return &DecoderConfig{
		Channel:          DownmixChannels,
		MaxDuration:      0,
		FFmpegPath:       "ffmpeg", // Assume in PATH
		TargetSampleRate: 44100,
		Timeout:          30 * time.Second,
	}
}

// Decoder loads audio files as mono float64 PCM. WAV files are read natively,
// everything else goes through ffmpeg.
type Decoder struct {
	config *DecoderConfig
	logger logging.Logger
}

// NewDecoder creates a new audio decoder
func NewDecoder(config *DecoderConfig) *Decoder {
	if config == nil {
		config = DefaultDecoderConfig()
	}
	return &Decoder{
		config: config,
		logger: logging.WithFields(logging.Fields{"component": "audio_decoder"}),
	}
}

// SetLogger replaces the decoder's logger
func (d *Decoder) SetLogger(logger logging.Logger) {
	if logger == nil {
		logger = &logging.NoOpLogger{}
	}
	d.logger = logger.WithFields(logging.Fields{"component": "audio_decoder"})
}

// DecodeFile decodes an audio file and returns mono PCM data
func (d *Decoder) DecodeFile(ctx context.Context, filename string) (*AudioData, error) {
	logger := d.logger.WithFields(logging.Fields{
		"function": "DecodeFile",
		"filename": filename,
	})

	logger.Debug("Starting audio file decode")

	if strings.EqualFold(filepath.Ext(filename), ".wav") {
		f, err := os.Open(filename)
		if err != nil {
			return nil, fmt.Errorf("failed to open input file: %w", err)
		}
		defer f.Close()

		data, err := d.DecodeWAV(f)
		switch {
		case errors.Is(err, ErrUnsupportedWAV):
			logger.Debug("WAV is not integer PCM, falling back to ffmpeg", logging.Fields{
				"error": err.Error(),
			})
		case err != nil:
			return nil, fmt.Errorf("%s: %w", filename, err)
		default:
			data.Source = filename
			return data, nil
		}
	}

	return d.decodeFileWithFFmpeg(ctx, filename, logger)
}

// DecodeWAV decodes an integer PCM WAV stream. Other encodings return an
// error wrapping ErrUnsupportedWAV; decode those files with ffmpeg.
func (d *Decoder) DecodeWAV(r io.ReadSeeker) (*AudioData, error) {
	decoder := wav.NewDecoder(r)
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("invalid WAV file")
	}
	if decoder.WavAudioFormat != pcmFormatTag {
		return nil, fmt.Errorf("%w: format tag %d, convert to PCM or decode with ffmpeg",
			ErrUnsupportedWAV, decoder.WavAudioFormat)
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to read PCM data: %w", err)
	}
	if buf.Format == nil || buf.Format.NumChannels <= 0 || buf.Format.SampleRate <= 0 {
		return nil, fmt.Errorf("WAV file has no usable format chunk")
	}

	bitDepth := int(decoder.BitDepth)
	samples, err := d.intBufferToMono(buf, bitDepth)
	if err != nil {
		return nil, err
	}

	data := d.finish(samples, buf.Format.SampleRate, buf.Format.NumChannels, "wav")
	data.BitDepth = bitDepth

	if len(data.PCM) == 0 {
		return nil, ErrNoSamples
	}

	d.logger.Debug("WAV decode completed", logging.Fields{
		"sample_rate": data.SampleRate,
		"channels":    data.Channels,
		"bit_depth":   bitDepth,
		"samples":     len(data.PCM),
	})

	return data, nil
}

// intBufferToMono scales integer PCM to [-1, 1] and reduces it to one channel
func (d *Decoder) intBufferToMono(buf *audio.IntBuffer, bitDepth int) ([]float64, error) {
	channels := buf.Format.NumChannels
	if d.config.Channel != DownmixChannels && (d.config.Channel < 0 || d.config.Channel >= channels) {
		return nil, fmt.Errorf("channel %d out of range for %d-channel input", d.config.Channel, channels)
	}
	if bitDepth <= 0 || bitDepth > 32 {
		return nil, fmt.Errorf("unsupported bit depth %d", bitDepth)
	}

	// 8-bit WAV is unsigned, wider depths are signed
	offset := 0.0
	scale := float64(int64(1) << (bitDepth - 1))
	if bitDepth == 8 {
		offset = 128.0
		scale = 128.0
	}

	frames := len(buf.Data) / channels
	mono := make([]float64, frames)

	for i := range frames {
		frame := buf.Data[i*channels : (i+1)*channels]
		if d.config.Channel != DownmixChannels {
			mono[i] = (float64(frame[d.config.Channel]) - offset) / scale
			continue
		}
		sum := 0.0
		for _, v := range frame {
			sum += (float64(v) - offset) / scale
		}
		mono[i] = sum / float64(channels)
	}

	return mono, nil
}

// finish applies MaxDuration and fills in the bookkeeping fields
func (d *Decoder) finish(samples []float64, sampleRate, channels int, format string) *AudioData {
	if d.config.MaxDuration > 0 {
		limit := int(d.config.MaxDuration.Seconds() * float64(sampleRate))
		if limit < len(samples) {
			samples = samples[:limit]
		}
	}

	return &AudioData{
		PCM:        samples,
		SampleRate: sampleRate,
		Channels:   channels,
		Duration:   time.Duration(len(samples)) * time.Second / time.Duration(sampleRate),
		Format:     format,
	}
}

func (d *Decoder) decodeFileWithFFmpeg(ctx context.Context, filename string, logger logging.Logger) (*AudioData, error) {
	if d.config.TargetSampleRate <= 0 {
		return nil, fmt.Errorf("target sample rate must be positive: %d", d.config.TargetSampleRate)
	}

	args := d.buildFFmpegArgs(filename)

	if d.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.config.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, d.config.FFmpegPath, args...)

	logger.Debug("Running ffmpeg command", logging.Fields{
		"args": strings.Join(args, " "),
	})

	startTime := time.Now()
	output, err := cmd.Output()
	if err != nil {
		var exitError *exec.ExitError
		if errors.As(err, &exitError) {
			logger.Error(err, "FFmpeg decode failed", logging.Fields{
				"stderr": string(exitError.Stderr),
			})
			return nil, fmt.Errorf("ffmpeg decode failed: %w, stderr: %s", err, string(exitError.Stderr))
		}
		return nil, fmt.Errorf("ffmpeg decode failed: %w", err)
	}

	samples := bytesToFloat64(output)
	if len(samples) == 0 {
		return nil, ErrNoSamples
	}

	data := d.finish(samples, d.config.TargetSampleRate, 0, "ffmpeg")
	data.Source = filename

	logger.Debug("FFmpeg decode completed", logging.Fields{
		"output_bytes": len(output),
		"decode_time":  time.Since(startTime).Seconds(),
		"samples":      len(data.PCM),
	})

	return data, nil
}

// buildFFmpegArgs asks ffmpeg for mono f64le at the target rate on stdout
func (d *Decoder) buildFFmpegArgs(filename string) []string {
	args := []string{
		"-v", "error",
		"-i", filename,
		"-vn",
		"-map", "0:a:0?",
	}

	if d.config.MaxDuration > 0 {
		args = append(args, "-t", fmt.Sprintf("%.3f", d.config.MaxDuration.Seconds()))
	}

	if d.config.Channel != DownmixChannels {
		args = append(args, "-af", fmt.Sprintf("pan=mono|c0=c%d", d.config.Channel))
	}

	args = append(args,
		"-f", "f64le", // Output raw float64 little-endian
		"-ac", "1",
		"-ar", strconv.Itoa(d.config.TargetSampleRate),
		"pipe:1",
	)

	return args
}

// bytesToFloat64 converts raw little-endian float64 bytes, dropping a
// trailing partial sample
func bytesToFloat64(data []byte) []float64 {
	sampleCount := len(data) / 8
	if sampleCount == 0 {
		return nil
	}

	samples := make([]float64, sampleCount)
	for i := range sampleCount {
		bits := binary.LittleEndian.Uint64(data[i*8 : i*8+8])
		samples[i] = math.Float64frombits(bits)
	}

	return samples
}

// GetConfig returns decoder configuration information
func (d *Decoder) GetConfig() map[string]any {
	return map[string]any{
		"channel":            d.config.Channel,
		"max_duration":       d.config.MaxDuration,
		"ffmpeg_path":        d.config.FFmpegPath,
		"target_sample_rate": d.config.TargetSampleRate,
		"timeout":            d.config.Timeout,
	}
}
