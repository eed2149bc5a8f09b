package stream

import (
	"sync"

	"github.com/gopxl/beep"

	"github.com/cwbudde/algo-fx/dsp/effects"
)

// Streamer runs a stereo engine over the frames of a source streamer.
//
// Stream and Update serialize on an internal mutex, which lets a control
// goroutine change engine parameters while a player pulls audio.
type Streamer struct {
	mu     sync.Mutex
	src    beep.Streamer
	engine effects.StereoProcessor
	frames uint64
}

// New wraps src so that every frame passes through engine.
func New(src beep.Streamer, engine effects.StereoProcessor) *Streamer {
	return &Streamer{src: src, engine: engine}
}

// Stream fills samples from the source and processes the frames that were
// produced. It follows the beep.Streamer contract: a drained source
// returns (0, false).
func (s *Streamer) Stream(samples [][2]float64) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.src == nil {
		return 0, false
	}

	n, ok := s.src.Stream(samples)
	if s.engine == nil {
		return n, ok
	}

	for i := range samples[:n] {
		samples[i][0], samples[i][1] = s.engine.ProcessFrame(samples[i][0], samples[i][1])
	}

	s.frames += uint64(n)

	return n, ok
}

// Err reports the error of the source streamer.
func (s *Streamer) Err() error {
	if s.src == nil {
		return nil
	}

	return s.src.Err()
}

// Update runs fn while holding the stream lock. Use it to change engine
// parameters from outside the audio goroutine.
func (s *Streamer) Update(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
}

// Frames returns the number of frames processed so far.
func (s *Streamer) Frames() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.frames
}

// Reset clears the engine state when it supports resetting, and the
// frame counter.
func (s *Streamer) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r, ok := s.engine.(interface{ Reset() }); ok {
		r.Reset()
	}

	s.frames = 0
}

var _ beep.Streamer = (*Streamer)(nil)
