package modulation

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/GeoffreyPlitt/debuggo"

	"github.com/cwbudde/algo-fx/dsp/core"
	"github.com/cwbudde/algo-fx/dsp/delay"
	"github.com/cwbudde/algo-fx/dsp/effects"
	"github.com/cwbudde/algo-fx/dsp/filter/biquad"
	"github.com/cwbudde/algo-fx/dsp/lfo"
)

var chorusDebug = debuggo.Debug("fx:chorus")

const (
	// MaxChorusVoices is the number of voices allocated per channel.
	MaxChorusVoices = 5

	minChorusDelayMs  = 0.1
	maxChorusDelayMs  = 50.0
	maxChorusDepthMs  = 25.0
	minChorusRateHz   = 0.02
	maxChorusRateHz   = 10.0
	maxChorusFeedback = 0.999

	// Longest delay plus half the deepest sweep, with headroom.
	chorusLineSeconds = 0.1
)

// ChorusParams holds the realtime chorus controls.
type ChorusParams struct {
	DelayMs  float64 // base delay, [0.1, 50]
	Feedback float64 // [0, 0.999]
	DepthMs  float64 // peak-to-peak sweep, [0, 25]
	RateHz   float64 // [0.02, 10]
	Wet      float64
	Dry      float64
	Mono     bool // right channel follows the left modulators
	Voices   int  // [1, 5]
}

// DefaultChorusParams returns the factory settings.
func DefaultChorusParams() ChorusParams {
	return ChorusParams{
		DelayMs:  15,
		Feedback: 0,
		DepthMs:  5,
		RateHz:   0.5,
		Wet:      0.5,
		Dry:      0.5,
		Voices:   3,
	}
}

// SetMix sets Wet to mix and Dry to 1-mix.
func (p *ChorusParams) SetMix(mix float64) {
	p.Dry, p.Wet = effects.MixGains(mix)
}

// ChorusOption mutates chorus construction parameters.
type ChorusOption func(*chorusConfig) error

type chorusConfig struct {
	params     ChorusParams
	seed       int64
	seeded     bool
	outputHigh bool
}

// WithChorusParams sets the initial controls. Values are validated.
func WithChorusParams(p ChorusParams) ChorusOption {
	return func(cfg *chorusConfig) error {
		if err := core.ValidateRange("chorus delay (ms)", p.DelayMs, minChorusDelayMs, maxChorusDelayMs); err != nil {
			return err
		}
		if err := core.ValidateRange("chorus depth (ms)", p.DepthMs, 0, maxChorusDepthMs); err != nil {
			return err
		}
		if err := core.ValidatePositive("chorus rate", p.RateHz); err != nil {
			return err
		}
		if err := core.ValidateRange("chorus feedback", p.Feedback, 0, maxChorusFeedback); err != nil {
			return err
		}
		if p.Voices < 1 || p.Voices > MaxChorusVoices {
			return fmt.Errorf("chorus voices must be in [1, %d]: %d", MaxChorusVoices, p.Voices)
		}
		cfg.params = p
		return nil
	}
}

// WithChorusVoices sets the number of active voices in [1, 5].
func WithChorusVoices(voices int) ChorusOption {
	return func(cfg *chorusConfig) error {
		if voices < 1 || voices > MaxChorusVoices {
			return fmt.Errorf("chorus voices must be in [1, %d]: %d", MaxChorusVoices, voices)
		}
		cfg.params.Voices = voices
		return nil
	}
}

// WithChorusSeed seeds the random LFO start phases so output is reproducible.
// Without it the seed is drawn from the global source.
func WithChorusSeed(seed int64) ChorusOption {
	return func(cfg *chorusConfig) error {
		cfg.seed = seed
		cfg.seeded = true
		return nil
	}
}

// WithChorusOutputHighPass enables a 25 Hz high-pass on the output.
func WithChorusOutputHighPass(enabled bool) ChorusOption {
	return func(cfg *chorusConfig) error {
		cfg.outputHigh = enabled
		return nil
	}
}

type chorusChannel struct {
	lines    [MaxChorusVoices]*delay.FractionalLine
	lfos     [MaxChorusVoices]*lfo.LFO
	feedback float64
}

// Chorus is a stereo multi-voice chorus. Each voice reads a fractional delay
// line at the base delay offset by its own sine LFO; the voice average is
// fed back into the input and blended with the dry signal.
//
// This processor is stereo, real-time safe, and not thread-safe.
type Chorus struct {
	sampleRate float64
	params     ChorusParams

	delaySamples float64
	depthSamples float64
	maxOffset    float64

	left, right chorusChannel
	guard       effects.FrameGuard
	highPass    *biquad.Filter
}

// NewChorus creates a chorus with DefaultChorusParams and optional overrides.
func NewChorus(sampleRate float64, opts ...ChorusOption) (*Chorus, error) {
	if err := core.ValidateSampleRate("chorus", sampleRate); err != nil {
		return nil, err
	}

	cfg := chorusConfig{params: DefaultChorusParams()}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}
	if !cfg.seeded {
		cfg.seed = rand.Int63()
	}

	c := &Chorus{sampleRate: sampleRate}
	rng := rand.New(rand.NewSource(cfg.seed))
	for _, ch := range []*chorusChannel{&c.left, &c.right} {
		for i := range ch.lines {
			line, err := delay.NewFractionalLine(chorusLineSeconds, sampleRate)
			if err != nil {
				return nil, err
			}
			ch.lines[i] = line
			ch.lfos[i] = lfo.NewRandomPhase(sampleRate, cfg.params.RateHz, rng)
		}
	}
	if cfg.outputHigh {
		c.highPass = effects.NewHighPass(sampleRate, effects.OutputHighPassHz, effects.OutputHighPassQ)
	}

	c.SetParams(cfg.params)
	chorusDebug("created: sampleRate=%g seed=%d voices=%d", sampleRate, cfg.seed, c.params.Voices)

	return c, nil
}

// Initialize reallocates the delay lines for sampleRate and clears all state.
// LFO phases are kept.
func (c *Chorus) Initialize(sampleRate float64) error {
	if err := core.ValidateSampleRate("chorus", sampleRate); err != nil {
		return err
	}
	c.sampleRate = sampleRate
	for _, ch := range []*chorusChannel{&c.left, &c.right} {
		for i := range ch.lines {
			ch.lines[i].Resize(sampleRate)
			ch.lfos[i].SetSampleRate(sampleRate)
		}
		ch.feedback = 0
	}
	if c.highPass != nil {
		c.highPass.SetSampleRate(sampleRate)
		c.highPass.SetCoefficients(biquad.HighPass2, effects.OutputHighPassHz, effects.OutputHighPassQ, 1)
		c.highPass.Reset()
	}
	c.guard.Reset()
	c.SetParams(c.params)
	chorusDebug("initialized: sampleRate=%g", sampleRate)
	return nil
}

// SetParams clamps p into range and applies it. Non-finite values keep the
// previous setting.
func (c *Chorus) SetParams(p ChorusParams) {
	old := c.params
	p.DelayMs = core.Clamp(core.FiniteOr(p.DelayMs, old.DelayMs), minChorusDelayMs, maxChorusDelayMs)
	p.DepthMs = core.Clamp(core.FiniteOr(p.DepthMs, old.DepthMs), 0, maxChorusDepthMs)
	p.RateHz = core.Clamp(core.FiniteOr(p.RateHz, old.RateHz), minChorusRateHz, maxChorusRateHz)
	p.Feedback = core.Clamp(core.FiniteOr(p.Feedback, old.Feedback), 0, maxChorusFeedback)
	p.Wet = math.Max(core.FiniteOr(p.Wet, old.Wet), 0)
	p.Dry = math.Max(core.FiniteOr(p.Dry, old.Dry), 0)
	p.Voices = core.ClampInt(p.Voices, 1, MaxChorusVoices)
	c.params = p

	c.delaySamples = p.DelayMs / 1000 * c.sampleRate
	c.depthSamples = p.DepthMs / 1000 * c.sampleRate
	c.maxOffset = math.Max(c.delaySamples-1, 0)

	for i := 0; i < MaxChorusVoices; i++ {
		c.left.lfos[i].SetRate(p.RateHz)
		c.right.lfos[i].SetRate(p.RateHz)
	}
}

// Params returns the applied (clamped) controls.
func (c *Chorus) Params() ChorusParams { return c.params }

// SampleRate returns the sample rate in Hz.
func (c *Chorus) SampleRate() float64 { return c.sampleRate }

// OrderViolations returns the number of out-of-order channel calls seen.
func (c *Chorus) OrderViolations() uint64 { return c.guard.OrderViolations() }

// ProcessLeft processes the left sample of a frame. It must precede the
// matching ProcessRight call.
func (c *Chorus) ProcessLeft(x float64) float64 {
	c.guard.Left()
	y := c.process(&c.left, &c.left, x)
	if c.highPass != nil {
		y = c.highPass.ProcessLeft(y)
	}
	return y
}

// ProcessRight processes the right sample of a frame and advances the LFOs.
func (c *Chorus) ProcessRight(x float64) float64 {
	y := c.process(&c.right, c.rightModulators(), x)
	if c.highPass != nil {
		y = c.highPass.ProcessRight(y)
	}
	if c.guard.Right() {
		c.advance()
	}
	return y
}

// ProcessFrame processes one stereo frame.
func (c *Chorus) ProcessFrame(l, r float64) (float64, float64) {
	l = c.process(&c.left, &c.left, l)
	r = c.process(&c.right, c.rightModulators(), r)
	if c.highPass != nil {
		l, r = c.highPass.ProcessFrame(l, r)
	}
	c.advance()
	return l, r
}

// ProcessStereoInPlace processes paired buffers in place.
func (c *Chorus) ProcessStereoInPlace(left, right []float64) error {
	return effects.ProcessStereoInPlace("chorus", c, left, right)
}

// Reset clears delay lines, feedback registers and the output filter.
// LFO phases are kept.
func (c *Chorus) Reset() {
	for _, ch := range []*chorusChannel{&c.left, &c.right} {
		for _, line := range ch.lines {
			line.Reset()
		}
		ch.feedback = 0
	}
	if c.highPass != nil {
		c.highPass.Reset()
	}
	c.guard.Reset()
}

func (c *Chorus) rightModulators() *chorusChannel {
	if c.params.Mono {
		return &c.left
	}
	return &c.right
}

// process runs one channel. mod supplies the LFOs, which differ from ch only
// in mono mode.
func (c *Chorus) process(ch, mod *chorusChannel, x float64) float64 {
	p := &c.params
	in := x + p.Wet*p.Feedback*ch.feedback

	sum := 0.0
	for i := 0; i < p.Voices; i++ {
		offset := core.Clamp(mod.lfos[i].Value()*c.depthSamples/2, -c.maxOffset, c.maxOffset)
		sum += ch.lines[i].Process(in, c.delaySamples+offset)
	}
	avg := sum / float64(p.Voices)
	ch.feedback = core.FlushDenormals(avg)

	return effects.Mix(x, avg, p.Dry, p.Wet)
}

func (c *Chorus) advance() {
	for i := 0; i < MaxChorusVoices; i++ {
		c.left.lfos[i].Advance()
		c.right.lfos[i].Advance()
	}
}
