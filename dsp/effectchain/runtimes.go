package effectchain

import (
	"fmt"

	"github.com/cwbudde/algo-fx/dsp/core"
	"github.com/cwbudde/algo-fx/dsp/delay"
	"github.com/cwbudde/algo-fx/dsp/effects"
	"github.com/cwbudde/algo-fx/dsp/effects/filtering"
	"github.com/cwbudde/algo-fx/dsp/effects/modulation"
	"github.com/cwbudde/algo-fx/dsp/effects/spatial"
	"github.com/cwbudde/algo-fx/dsp/filter/biquad"
)

// Node parameters left out of a document keep the engine's current value,
// so partial reloads only touch what they name.

type filterRuntime struct {
	*filtering.Filter
}

func (r *filterRuntime) Configure(ctx Context, p Params) error {
	err := syncSampleRate(r.Filter, r.SampleRate(), ctx)
	if err != nil {
		return err
	}

	cur := r.Params()
	t, ok, err := filterType(p)
	if err != nil {
		return err
	}
	if ok {
		cur.Type = t
	}
	cur.CutoffHz = p.GetNum("cutoff", cur.CutoffHz)
	cur.Resonance = p.GetNum("resonance", p.GetNum("q", cur.Resonance))
	cur.Gain = p.GetNum("gain", cur.Gain)
	if p.Has("gainDb") {
		cur.Gain = core.DBToLinear(p.GetNum("gainDb", 0))
	}
	r.SetParams(cur)

	return nil
}

func (r *filterRuntime) Validate(p Params) error {
	_, _, err := filterType(p)
	return err
}

func filterType(p Params) (biquad.Type, bool, error) {
	id := p.GetStr("type", "")
	if id == "" {
		return 0, false, nil
	}
	t, err := biquad.ParseType(id)
	if err != nil {
		return 0, false, err
	}
	return t, true, nil
}

type chorusRuntime struct {
	*modulation.Chorus
}

func (r *chorusRuntime) Configure(ctx Context, p Params) error {
	err := syncSampleRate(r.Chorus, r.SampleRate(), ctx)
	if err != nil {
		return err
	}

	cur := r.Params()
	cur.DelayMs = p.GetNum("delayMs", cur.DelayMs)
	cur.DepthMs = p.GetNum("depthMs", cur.DepthMs)
	cur.RateHz = p.GetNum("rateHz", cur.RateHz)
	cur.Feedback = p.GetNum("feedback", cur.Feedback)
	cur.Wet = p.GetNum("wet", cur.Wet)
	cur.Dry = p.GetNum("dry", cur.Dry)
	if p.Has("mix") {
		cur.SetMix(p.GetNum("mix", 0.5))
	}
	cur.Mono = p.GetBool("mono", cur.Mono)
	cur.Voices = p.GetInt("voices", cur.Voices)
	r.SetParams(cur)

	return nil
}

type flangerRuntime struct {
	*modulation.Flanger
}

func (r *flangerRuntime) Configure(ctx Context, p Params) error {
	err := syncSampleRate(r.Flanger, r.SampleRate(), ctx)
	if err != nil {
		return err
	}

	cur := r.Params()
	cur.Depth = p.GetNum("depth", cur.Depth)
	cur.RateHz = p.GetNum("rateHz", cur.RateHz)
	cur.Feedback = p.GetNum("feedback", cur.Feedback)
	cur.Wet = p.GetNum("wet", cur.Wet)
	cur.Dry = p.GetNum("dry", cur.Dry)
	if p.Has("mix") {
		cur.Dry, cur.Wet = effects.MixGains(p.GetNum("mix", 0.5))
	}
	cur.Stereo = p.GetBool("stereo", cur.Stereo)
	r.SetParams(cur)

	return nil
}

type phaserRuntime struct {
	*modulation.Phaser
}

func (r *phaserRuntime) Configure(ctx Context, p Params) error {
	err := syncSampleRate(r.Phaser, r.SampleRate(), ctx)
	if err != nil {
		return err
	}

	cur := r.Params()
	cur.RateHz = p.GetNum("rateHz", cur.RateHz)
	cur.Depth = p.GetNum("depth", cur.Depth)
	cur.Stages = p.GetInt("stages", cur.Stages)
	cur.Offset = p.GetNum("offset", cur.Offset)
	cur.Feedback = p.GetNum("feedback", cur.Feedback)
	cur.Intensity = p.GetNum("intensity", cur.Intensity)
	r.SetParams(cur)

	return nil
}

type disperserRuntime struct {
	*filtering.Disperser
}

func (r *disperserRuntime) Configure(ctx Context, p Params) error {
	err := syncSampleRate(r.Disperser, r.SampleRate(), ctx)
	if err != nil {
		return err
	}

	cur := r.Params()
	cur.FrequencyHz = p.GetNum("frequency", cur.FrequencyHz)
	cur.Spread = p.GetNum("spread", cur.Spread)
	cur.Resonance = p.GetNum("resonance", cur.Resonance)
	cur.Amount = p.GetInt("amount", cur.Amount)
	r.SetParams(cur)

	return nil
}

type midSideRuntime struct {
	*spatial.MidSideMixer
}

func (r *midSideRuntime) Configure(ctx Context, p Params) error {
	err := syncSampleRate(r.MidSideMixer, r.SampleRate(), ctx)
	if err != nil {
		return err
	}

	cur := r.Params()
	mode, ok, err := midSideMode(p)
	if err != nil {
		return err
	}
	if ok {
		cur.Mode = mode
	}
	cur.MidMix = p.GetNum("mid", cur.MidMix)
	cur.SideMix = p.GetNum("side", cur.SideMix)
	cur.LeftRightMix = p.GetNum("balance", cur.LeftRightMix)
	r.SetParams(cur)

	return nil
}

func (r *midSideRuntime) Validate(p Params) error {
	_, _, err := midSideMode(p)
	return err
}

func midSideMode(p Params) (spatial.Mode, bool, error) {
	s := p.GetStr("mode", "")
	if s == "" {
		return 0, false, nil
	}
	mode, err := spatial.ParseMode(s)
	if err != nil {
		return 0, false, err
	}
	return mode, true, nil
}

const (
	defaultAllpassMaxDelayMs = 100.0
	defaultAllpassDelayMs    = 5.0
	defaultAllpassGain       = 0.5
)

// allpassRuntime exposes a delay.Allpass as a chain node. Its delay is set
// in milliseconds and converted at the current sample rate.
type allpassRuntime struct {
	ap         *delay.Allpass
	sampleRate float64
	delayMs    float64
}

func newAllpassRuntime(sampleRate, maxSeconds float64) (*allpassRuntime, error) {
	ap, err := delay.NewAllpass(maxSeconds, sampleRate, 1, defaultAllpassGain)
	if err != nil {
		return nil, err
	}

	r := &allpassRuntime{ap: ap, sampleRate: sampleRate, delayMs: defaultAllpassDelayMs}
	r.apply(defaultAllpassGain)

	return r, nil
}

func (r *allpassRuntime) Configure(ctx Context, p Params) error {
	err := syncSampleRate(r, r.sampleRate, ctx)
	if err != nil {
		return err
	}

	r.delayMs = core.Clamp(p.GetNum("delayMs", r.delayMs), 0, 1e6)
	r.apply(p.GetNum("gain", r.ap.Gain()))

	return nil
}

func (r *allpassRuntime) apply(gain float64) {
	samples := int(r.delayMs*r.sampleRate/1000 + 0.5)
	r.ap.SetParams(samples, gain)
}

func (r *allpassRuntime) Initialize(sampleRate float64) error {
	err := core.ValidateSampleRate("allpass", sampleRate)
	if err != nil {
		return err
	}

	r.sampleRate = sampleRate
	r.ap.Resize(sampleRate)
	r.apply(r.ap.Gain())

	return nil
}

func (r *allpassRuntime) ProcessLeft(x float64) float64  { return r.ap.ProcessLeft(x) }
func (r *allpassRuntime) ProcessRight(x float64) float64 { return r.ap.ProcessRight(x) }

func (r *allpassRuntime) ProcessFrame(l, rr float64) (float64, float64) {
	return r.ap.ProcessFrame(l, rr)
}

func (r *allpassRuntime) ProcessStereoInPlace(left, right []float64) error {
	return effects.ProcessStereoInPlace("allpass", r, left, right)
}

func (r *allpassRuntime) Reset() { r.ap.Reset() }

// syncSampleRate re-initializes e when the chain context moved to a new
// sample rate since e was built.
func syncSampleRate(e effects.Engine, current float64, ctx Context) error {
	if ctx.SampleRate == current {
		return nil
	}

	err := e.Initialize(ctx.SampleRate)
	if err != nil {
		return fmt.Errorf("sample rate %g: %w", ctx.SampleRate, err)
	}

	return nil
}
