// Package lfo provides the sine phase accumulator that drives the modulated
// effects. The oscillator separates reading from advancing so that a stereo
// engine can read the same value for both channels of a frame and advance
// once afterwards.
package lfo

import (
	"math"
	"math/rand"

	"github.com/cwbudde/algo-fx/dsp/core"
)

const (
	twoPi             = 2 * math.Pi
	defaultSampleRate = 44100.0
)

// LFO is a sine oscillator with phase in [0, 2π).
type LFO struct {
	phase      float64
	rate       float64
	sampleRate float64
	inc        float64
}

// New returns an LFO at phase 0.
func New(sampleRate, rateHz float64) *LFO {
	return NewWithPhase(sampleRate, rateHz, 0)
}

// NewWithPhase returns an LFO starting at phase (radians, wrapped to [0, 2π)).
func NewWithPhase(sampleRate, rateHz, phase float64) *LFO {
	l := &LFO{}
	l.sampleRate = sanitizeSampleRate(sampleRate)
	l.rate = sanitizeRate(rateHz, 0)
	l.SetPhase(phase)
	l.updateIncrement()
	return l
}

// NewRandomPhase returns an LFO whose starting phase is drawn once from rng.
// A nil rng starts at phase 0.
func NewRandomPhase(sampleRate, rateHz float64, rng *rand.Rand) *LFO {
	phase := 0.0
	if rng != nil {
		phase = rng.Float64() * twoPi
	}
	return NewWithPhase(sampleRate, rateHz, phase)
}

// Value returns sin(phase) without advancing.
func (l *LFO) Value() float64 {
	return math.Sin(l.phase)
}

// ValueInRange maps Value from [-1, 1] onto [lo, hi].
func (l *LFO) ValueInRange(lo, hi float64) float64 {
	return lo + (l.Value()+1)*0.5*(hi-lo)
}

// Advance moves the phase forward by one sample.
func (l *LFO) Advance() {
	l.phase = wrap(l.phase + l.inc)
}

// Phase returns the current phase in radians.
func (l *LFO) Phase() float64 { return l.phase }

// SetPhase sets the phase, wrapping it into [0, 2π). Non-finite input is ignored.
func (l *LFO) SetPhase(phase float64) {
	if !core.IsFinite(phase) {
		return
	}
	l.phase = wrap(phase)
}

// Rate returns the oscillation rate in Hz.
func (l *LFO) Rate() float64 { return l.rate }

// SetRate changes the rate. The phase is kept, so the change is heard from the
// next Advance on.
func (l *LFO) SetRate(rateHz float64) {
	l.rate = sanitizeRate(rateHz, l.rate)
	l.updateIncrement()
}

// SampleRate returns the sample rate in Hz.
func (l *LFO) SampleRate() float64 { return l.sampleRate }

// SetSampleRate changes the sample rate without touching the phase.
func (l *LFO) SetSampleRate(sampleRate float64) {
	l.sampleRate = sanitizeSampleRate(sampleRate)
	l.updateIncrement()
}

func (l *LFO) updateIncrement() {
	l.inc = twoPi * l.rate / l.sampleRate
}

func wrap(phase float64) float64 {
	phase = math.Mod(phase, twoPi)
	if phase < 0 {
		phase += twoPi
	}
	// Mod of a value just below 0 can round up to exactly 2π.
	if phase >= twoPi {
		phase = 0
	}
	return phase
}

func sanitizeSampleRate(sampleRate float64) float64 {
	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		return defaultSampleRate
	}
	return sampleRate
}

func sanitizeRate(rate, fallback float64) float64 {
	if !core.IsFinite(rate) {
		return fallback
	}
	return math.Max(0, rate)
}
