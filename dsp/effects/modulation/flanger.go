package modulation

import (
	"fmt"
	"math"

	"github.com/GeoffreyPlitt/debuggo"

	"github.com/cwbudde/algo-fx/dsp/core"
	"github.com/cwbudde/algo-fx/dsp/delay"
	"github.com/cwbudde/algo-fx/dsp/effects"
	"github.com/cwbudde/algo-fx/dsp/filter/biquad"
	"github.com/cwbudde/algo-fx/dsp/lfo"
)

var flangerDebug = debuggo.Debug("fx:flanger")

const (
	defaultFlangerMaxDelaySeconds = 0.015
	maxFlangerMaxDelaySeconds     = 0.1
	minFlangerRateHz              = 0.02
	maxFlangerRateHz              = 10.0
	maxFlangerFeedback            = 0.999
	flangerRightPhase             = math.Pi / 2
)

// FlangerParams holds the realtime flanger controls.
type FlangerParams struct {
	Depth    float64 // fraction of the maximum delay, [0, 1]
	RateHz   float64 // [0.02, 10]
	Feedback float64 // [0, 0.999]
	Wet      float64
	Dry      float64
	Stereo   bool // right channel uses its own quadrature LFO
}

// DefaultFlangerParams returns the factory settings.
func DefaultFlangerParams() FlangerParams {
	return FlangerParams{
		Depth:  0.1,
		RateHz: 0.5,
		Wet:    0,
		Dry:    1,
	}
}

// FlangerOption mutates flanger construction parameters.
type FlangerOption func(*flangerConfig) error

type flangerConfig struct {
	params          FlangerParams
	maxDelaySeconds float64
}

// WithFlangerParams sets the initial controls. Values are validated.
func WithFlangerParams(p FlangerParams) FlangerOption {
	return func(cfg *flangerConfig) error {
		if err := core.ValidateRange("flanger depth", p.Depth, 0, 1); err != nil {
			return err
		}
		if err := core.ValidatePositive("flanger rate", p.RateHz); err != nil {
			return err
		}
		if err := core.ValidateRange("flanger feedback", p.Feedback, 0, maxFlangerFeedback); err != nil {
			return err
		}
		cfg.params = p
		return nil
	}
}

// WithFlangerMaxDelay sets the delay reached at full depth, in seconds.
func WithFlangerMaxDelay(seconds float64) FlangerOption {
	return func(cfg *flangerConfig) error {
		if seconds <= 0 || seconds > maxFlangerMaxDelaySeconds || !core.IsFinite(seconds) {
			return fmt.Errorf("flanger max delay must be in (0, %g] seconds: %f", maxFlangerMaxDelaySeconds, seconds)
		}
		cfg.maxDelaySeconds = seconds
		return nil
	}
}

// Flanger is a stereo flanger/vibrato. Each channel sweeps a short
// fractional delay between 0 and Depth*maxDelay with a sine LFO; the delayed
// signal is fed back, mixed with the dry input and high-passed at 30 Hz.
// With Wet=1, Dry=0 and no feedback it acts as a vibrato.
//
// This processor is stereo, real-time safe, and not thread-safe.
type Flanger struct {
	sampleRate      float64
	maxDelaySeconds float64
	params          FlangerParams
	depthSamples    float64

	leftLine, rightLine *delay.FractionalLine
	leftLFO, rightLFO   *lfo.LFO
	leftFB, rightFB     float64

	guard    effects.FrameGuard
	highPass *biquad.Filter
}

// NewFlanger creates a flanger with DefaultFlangerParams and optional overrides.
func NewFlanger(sampleRate float64, opts ...FlangerOption) (*Flanger, error) {
	if err := core.ValidateSampleRate("flanger", sampleRate); err != nil {
		return nil, err
	}

	cfg := flangerConfig{
		params:          DefaultFlangerParams(),
		maxDelaySeconds: defaultFlangerMaxDelaySeconds,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	left, err := delay.NewFractionalLine(cfg.maxDelaySeconds, sampleRate)
	if err != nil {
		return nil, err
	}
	right, err := delay.NewFractionalLine(cfg.maxDelaySeconds, sampleRate)
	if err != nil {
		return nil, err
	}

	f := &Flanger{
		sampleRate:      sampleRate,
		maxDelaySeconds: cfg.maxDelaySeconds,
		leftLine:        left,
		rightLine:       right,
		leftLFO:         lfo.NewWithPhase(sampleRate, cfg.params.RateHz, 0),
		rightLFO:        lfo.NewWithPhase(sampleRate, cfg.params.RateHz, flangerRightPhase),
		highPass:        effects.NewHighPass(sampleRate, effects.FlangerHighPassHz, effects.FlangerHighPassQ),
	}
	f.SetParams(cfg.params)
	flangerDebug("created: sampleRate=%g maxDelay=%gs", sampleRate, cfg.maxDelaySeconds)

	return f, nil
}

// Initialize reallocates the delay lines for sampleRate and clears all state.
func (f *Flanger) Initialize(sampleRate float64) error {
	if err := core.ValidateSampleRate("flanger", sampleRate); err != nil {
		return err
	}
	f.sampleRate = sampleRate
	f.leftLine.Resize(sampleRate)
	f.rightLine.Resize(sampleRate)
	f.leftLFO.SetSampleRate(sampleRate)
	f.rightLFO.SetSampleRate(sampleRate)
	f.highPass.SetSampleRate(sampleRate)
	f.highPass.SetCoefficients(biquad.HighPass2, effects.FlangerHighPassHz, effects.FlangerHighPassQ, 1)
	f.Reset()
	f.SetParams(f.params)
	flangerDebug("initialized: sampleRate=%g", sampleRate)
	return nil
}

// SetParams clamps p into range and applies it.
func (f *Flanger) SetParams(p FlangerParams) {
	old := f.params
	p.Depth = core.Clamp(core.FiniteOr(p.Depth, old.Depth), 0, 1)
	p.RateHz = core.Clamp(core.FiniteOr(p.RateHz, old.RateHz), minFlangerRateHz, maxFlangerRateHz)
	p.Feedback = core.Clamp(core.FiniteOr(p.Feedback, old.Feedback), 0, maxFlangerFeedback)
	p.Wet = math.Max(core.FiniteOr(p.Wet, old.Wet), 0)
	p.Dry = math.Max(core.FiniteOr(p.Dry, old.Dry), 0)
	f.params = p

	f.depthSamples = p.Depth * f.maxDelaySeconds * f.sampleRate
	f.leftLFO.SetRate(p.RateHz)
	f.rightLFO.SetRate(p.RateHz)
}

// Params returns the applied (clamped) controls.
func (f *Flanger) Params() FlangerParams { return f.params }

// SampleRate returns the sample rate in Hz.
func (f *Flanger) SampleRate() float64 { return f.sampleRate }

// OrderViolations returns the number of out-of-order channel calls seen.
func (f *Flanger) OrderViolations() uint64 { return f.guard.OrderViolations() }

// ProcessLeft processes the left sample of a frame.
func (f *Flanger) ProcessLeft(x float64) float64 {
	f.guard.Left()
	return f.highPass.ProcessLeft(f.process(f.leftLine, &f.leftFB, f.leftLFO, x))
}

// ProcessRight processes the right sample of a frame and advances the LFOs.
func (f *Flanger) ProcessRight(x float64) float64 {
	y := f.highPass.ProcessRight(f.process(f.rightLine, &f.rightFB, f.rightModulator(), x))
	if f.guard.Right() {
		f.advance()
	}
	return y
}

// ProcessFrame processes one stereo frame.
func (f *Flanger) ProcessFrame(l, r float64) (float64, float64) {
	l = f.process(f.leftLine, &f.leftFB, f.leftLFO, l)
	r = f.process(f.rightLine, &f.rightFB, f.rightModulator(), r)
	f.advance()
	return f.highPass.ProcessFrame(l, r)
}

// ProcessStereoInPlace processes paired buffers in place.
func (f *Flanger) ProcessStereoInPlace(left, right []float64) error {
	return effects.ProcessStereoInPlace("flanger", f, left, right)
}

// Reset clears delay lines, feedback registers and the output filter.
func (f *Flanger) Reset() {
	f.leftLine.Reset()
	f.rightLine.Reset()
	f.leftFB, f.rightFB = 0, 0
	f.highPass.Reset()
	f.guard.Reset()
}

func (f *Flanger) rightModulator() *lfo.LFO {
	if f.params.Stereo {
		return f.rightLFO
	}
	return f.leftLFO
}

func (f *Flanger) process(line *delay.FractionalLine, fb *float64, mod *lfo.LFO, x float64) float64 {
	p := &f.params
	in := x + p.Feedback*(*fb)
	delayed := line.Process(in, mod.ValueInRange(0, 1)*f.depthSamples)
	*fb = core.FlushDenormals(delayed)
	return effects.Mix(x, delayed, p.Dry, p.Wet)
}

func (f *Flanger) advance() {
	f.leftLFO.Advance()
	f.rightLFO.Advance()
}
