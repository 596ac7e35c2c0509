// Package pitch estimates the fundamental frequency of a mono audio buffer
// with the YIN algorithm and scores how periodic the buffer is with a
// normalized autocorrelation.
//
// # Quick Start
//
//	hz := pitch.DetectPitch(samples, 44100)
//	if hz == pitch.NoPitch {
//	    // too short, too quiet, aperiodic or outside [60, 2000] Hz
//	}
//	confidence := pitch.GetPitchClarity(samples, 44100)
//
// The functions in this package are pure: they keep no state between calls,
// apply no window to the buffer and are safe to call concurrently on
// independent buffers. Failure to detect is reported in-band with [NoPitch]
// (-1.0) and [NoClarity] (0.0).
//
// For the reason a buffer was rejected, the refined lag, or FFT-based
// difference computation, use the detector in algorithms/tonal directly:
//
//	detector, err := tonal.NewPitchDetector(44100)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result := detector.DetectPitch(samples)
//	fmt.Println(result.Voiced, result.Reason, result.Pitch, result.Clarity)
package pitch
