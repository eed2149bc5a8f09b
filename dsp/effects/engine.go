package effects

import (
	"fmt"

	"github.com/cwbudde/algo-fx/dsp/core"
)

// StereoProcessor processes one stereo frame.
type StereoProcessor interface {
	ProcessFrame(left, right float64) (float64, float64)
}

// Engine is the full per-engine contract used by chains, stream adapters and
// measurement code.
type Engine interface {
	StereoProcessor

	// Initialize reallocates rate-dependent buffers and clears state.
	Initialize(sampleRate float64) error
	ProcessLeft(x float64) float64
	ProcessRight(x float64) float64
	ProcessStereoInPlace(left, right []float64) error
	Reset()
}

// ProcessStereoInPlace runs p over paired buffers frame by frame.
// Both buffers must have the same length.
func ProcessStereoInPlace(name string, p StereoProcessor, left, right []float64) error {
	if err := core.CheckStereo(name, left, right); err != nil {
		return err
	}

	for i := range left {
		left[i], right[i] = p.ProcessFrame(left[i], right[i])
	}

	return nil
}

// ProcessInterleavedInPlace runs p over an interleaved (L, R, L, R, ...)
// buffer. The buffer length must be even.
func ProcessInterleavedInPlace(name string, p StereoProcessor, buf []float64) error {
	if len(buf)%2 != 0 {
		return fmt.Errorf("%s: interleaved buffer length must be even: %d", name, len(buf))
	}

	for i := 0; i < len(buf); i += 2 {
		buf[i], buf[i+1] = p.ProcessFrame(buf[i], buf[i+1])
	}

	return nil
}
