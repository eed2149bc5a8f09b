package modulation

import (
	"fmt"

	"github.com/GeoffreyPlitt/debuggo"

	"github.com/cwbudde/algo-fx/dsp/core"
	"github.com/cwbudde/algo-fx/dsp/effects"
	"github.com/cwbudde/algo-fx/dsp/filter/biquad"
	"github.com/cwbudde/algo-fx/dsp/lfo"
)

var phaserDebug = debuggo.Debug("fx:phaser")

const (
	// MaxPhaserStages is the largest stage count; each stage is a pair of
	// first-order allpasses.
	MaxPhaserStages = 3

	minPhaserRateHz   = 0.02
	maxPhaserRateHz   = 10.0
	maxPhaserFeedback = 0.9
)

// phaserCorners holds the sweep range of each allpass as (low, high) Hz pairs.
var phaserCorners = [2 * MaxPhaserStages][2]float64{
	{16, 1600},
	{33, 3300},
	{48, 4800},
	{98, 9800},
	{160, 16000},
	{260, 20480},
}

// PhaserParams holds the realtime phaser controls.
type PhaserParams struct {
	RateHz    float64
	Depth     float64 // [0, 1]
	Stages    int     // [1, 3]
	Offset    float64 // sweep centre shift, [-1, 1]
	Feedback  float64 // [0, 0.9]
	Intensity float64 // [0, 1]
}

// DefaultPhaserParams returns the factory settings.
func DefaultPhaserParams() PhaserParams {
	return PhaserParams{
		RateHz:    0.5,
		Depth:     0.5,
		Stages:    3,
		Offset:    0,
		Feedback:  0,
		Intensity: 0,
	}
}

// PhaserOption mutates phaser construction parameters.
type PhaserOption func(*phaserConfig) error

type phaserConfig struct {
	params     PhaserParams
	outputHigh bool
}

// WithPhaserParams sets the initial controls. Values are validated.
func WithPhaserParams(p PhaserParams) PhaserOption {
	return func(cfg *phaserConfig) error {
		if err := core.ValidatePositive("phaser rate", p.RateHz); err != nil {
			return err
		}
		if err := core.ValidateRange("phaser depth", p.Depth, 0, 1); err != nil {
			return err
		}
		if p.Stages < 1 || p.Stages > MaxPhaserStages {
			return fmt.Errorf("phaser stages must be in [1, %d]: %d", MaxPhaserStages, p.Stages)
		}
		if err := core.ValidateRange("phaser offset", p.Offset, -1, 1); err != nil {
			return err
		}
		if err := core.ValidateRange("phaser feedback", p.Feedback, 0, maxPhaserFeedback); err != nil {
			return err
		}
		if err := core.ValidateRange("phaser intensity", p.Intensity, 0, 1); err != nil {
			return err
		}
		cfg.params = p
		return nil
	}
}

// WithPhaserOutputHighPass enables a 25 Hz high-pass on the output.
func WithPhaserOutputHighPass(enabled bool) PhaserOption {
	return func(cfg *phaserConfig) error {
		cfg.outputHigh = enabled
		return nil
	}
}

// Phaser sweeps up to six first-order allpasses with one shared LFO. The
// allpass output is fed back into its input and blended with the dry signal
// by Intensity.
//
// This processor is stereo, real-time safe, and not thread-safe.
type Phaser struct {
	sampleRate float64
	params     PhaserParams

	allpasses       *biquad.Cascade
	mod             *lfo.LFO
	leftFB, rightFB float64

	guard    effects.FrameGuard
	highPass *biquad.Filter
}

// NewPhaser creates a phaser with DefaultPhaserParams and optional overrides.
func NewPhaser(sampleRate float64, opts ...PhaserOption) (*Phaser, error) {
	if err := core.ValidateSampleRate("phaser", sampleRate); err != nil {
		return nil, err
	}

	cfg := phaserConfig{params: DefaultPhaserParams()}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	p := &Phaser{
		sampleRate: sampleRate,
		allpasses:  biquad.NewCascade(sampleRate, len(phaserCorners)),
		mod:        lfo.New(sampleRate, cfg.params.RateHz),
	}
	for i, corner := range phaserCorners {
		p.allpasses.SetStage(i, biquad.AllPass1, corner[0], 0, 1)
	}
	if cfg.outputHigh {
		p.highPass = effects.NewHighPass(sampleRate, effects.OutputHighPassHz, effects.PhaserHighPassQ)
	}
	p.SetParams(cfg.params)
	phaserDebug("created: sampleRate=%g stages=%d", sampleRate, p.params.Stages)

	return p, nil
}

// Initialize adopts sampleRate and clears all state.
func (p *Phaser) Initialize(sampleRate float64) error {
	if err := core.ValidateSampleRate("phaser", sampleRate); err != nil {
		return err
	}
	p.sampleRate = sampleRate
	p.allpasses.SetSampleRate(sampleRate)
	p.mod.SetSampleRate(sampleRate)
	if p.highPass != nil {
		p.highPass.SetSampleRate(sampleRate)
		p.highPass.SetCoefficients(biquad.HighPass2, effects.OutputHighPassHz, effects.PhaserHighPassQ, 1)
	}
	p.Reset()
	phaserDebug("initialized: sampleRate=%g", sampleRate)
	return nil
}

// SetParams clamps params into range and applies them.
func (p *Phaser) SetParams(params PhaserParams) {
	old := p.params
	params.RateHz = core.Clamp(core.FiniteOr(params.RateHz, old.RateHz), minPhaserRateHz, maxPhaserRateHz)
	params.Depth = core.Clamp(core.FiniteOr(params.Depth, old.Depth), 0, 1)
	params.Stages = core.ClampInt(params.Stages, 1, MaxPhaserStages)
	params.Offset = core.Clamp(core.FiniteOr(params.Offset, old.Offset), -1, 1)
	params.Feedback = core.Clamp(core.FiniteOr(params.Feedback, old.Feedback), 0, maxPhaserFeedback)
	params.Intensity = core.Clamp(core.FiniteOr(params.Intensity, old.Intensity), 0, 1)
	p.params = params

	p.mod.SetRate(params.RateHz)
	p.allpasses.SetActive(2 * params.Stages)
}

// Params returns the applied (clamped) controls.
func (p *Phaser) Params() PhaserParams { return p.params }

// SampleRate returns the sample rate in Hz.
func (p *Phaser) SampleRate() float64 { return p.sampleRate }

// LFOPhase returns the sweep oscillator phase in radians.
func (p *Phaser) LFOPhase() float64 { return p.mod.Phase() }

// OrderViolations returns the number of out-of-order channel calls seen.
func (p *Phaser) OrderViolations() uint64 { return p.guard.OrderViolations() }

// ProcessLeft processes the left sample of a frame.
func (p *Phaser) ProcessLeft(x float64) float64 {
	p.guard.Left()
	p.sweep()
	y := p.process(x, &p.leftFB, false)
	if p.highPass != nil {
		y = p.highPass.ProcessLeft(y)
	}
	return y
}

// ProcessRight processes the right sample of a frame and advances the LFO.
func (p *Phaser) ProcessRight(x float64) float64 {
	p.sweep()
	y := p.process(x, &p.rightFB, true)
	if p.highPass != nil {
		y = p.highPass.ProcessRight(y)
	}
	if p.guard.Right() {
		p.mod.Advance()
	}
	return y
}

// ProcessFrame processes one stereo frame.
func (p *Phaser) ProcessFrame(l, r float64) (float64, float64) {
	p.sweep()
	l = p.process(l, &p.leftFB, false)
	r = p.process(r, &p.rightFB, true)
	if p.highPass != nil {
		l, r = p.highPass.ProcessFrame(l, r)
	}
	p.mod.Advance()
	return l, r
}

// ProcessStereoInPlace processes paired buffers in place.
func (p *Phaser) ProcessStereoInPlace(left, right []float64) error {
	return effects.ProcessStereoInPlace("phaser", p, left, right)
}

// Reset clears the allpass histories and feedback registers. The LFO phase
// is kept.
func (p *Phaser) Reset() {
	p.allpasses.Reset()
	p.leftFB, p.rightFB = 0, 0
	if p.highPass != nil {
		p.highPass.Reset()
	}
	p.guard.Reset()
}

// SweepPosition returns the current position t in [0, 1] between the low
// and high corner of every allpass.
func (p *Phaser) SweepPosition() float64 {
	v := core.Clamp(p.mod.Value()*p.params.Depth+p.params.Offset, -1, 1)
	return v/2 + 0.5
}

// sweep retunes the active allpasses to the current LFO position.
func (p *Phaser) sweep() {
	t := p.SweepPosition()
	for i := 0; i < p.allpasses.Active(); i++ {
		corner := phaserCorners[i]
		p.allpasses.SetStage(i, biquad.AllPass1, core.Lerp(corner[0], corner[1], t), 0, 1)
	}
}

func (p *Phaser) process(x float64, fb *float64, right bool) float64 {
	in := x + p.params.Feedback*(*fb)

	var phased float64
	if right {
		phased = p.allpasses.ProcessRight(in)
	} else {
		phased = p.allpasses.ProcessLeft(in)
	}
	*fb = core.FlushDenormals(phased)

	half := p.params.Intensity / 2
	return (1-half)*x + half*phased
}
