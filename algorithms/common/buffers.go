package common

import "fmt"

// Frame is one fixed-size analysis window cut from a longer signal.
type Frame struct {
	Index   int       `json:"index"`
	Offset  int       `json:"offset"` // position of Samples[0] in the source signal
	Samples []float64 `json:"-"`
}

// SlidingWindow cuts a signal into fixed-size frames advancing by hopSize.
// Frames share memory with the source signal and must not be modified.
type SlidingWindow struct {
	windowSize int
	hopSize    int
}

// NewSlidingWindow creates a new sliding window
func NewSlidingWindow(windowSize, hopSize int) (*SlidingWindow, error) {
	if windowSize <= 0 {
		return nil, fmt.Errorf("window size must be positive, got %d", windowSize)
	}
	if hopSize <= 0 {
		return nil, fmt.Errorf("hop size must be positive, got %d", hopSize)
	}

	return &SlidingWindow{
		windowSize: windowSize,
		hopSize:    hopSize,
	}, nil
}

// Frames returns every complete frame of signal. A trailing partial frame is
// dropped; a signal shorter than the window yields no frames.
func (sw *SlidingWindow) Frames(signal []float64) []Frame {
	if len(signal) < sw.windowSize {
		return nil
	}

	numFrames := (len(signal)-sw.windowSize)/sw.hopSize + 1
	frames := make([]Frame, 0, numFrames)

	for i := range numFrames {
		start := i * sw.hopSize
		frames = append(frames, Frame{
			Index:   i,
			Offset:  start,
			Samples: signal[start : start+sw.windowSize : start+sw.windowSize],
		})
	}

	return frames
}

// GetWindowSize returns the window size
func (sw *SlidingWindow) GetWindowSize() int {
	return sw.windowSize
}

// GetHopSize returns the hop size
func (sw *SlidingWindow) GetHopSize() int {
	return sw.hopSize
}
