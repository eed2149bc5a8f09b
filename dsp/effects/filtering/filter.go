package filtering

import (
	"fmt"

	"github.com/GeoffreyPlitt/debuggo"

	"github.com/cwbudde/algo-fx/dsp/core"
	"github.com/cwbudde/algo-fx/dsp/effects"
	"github.com/cwbudde/algo-fx/dsp/filter/biquad"
)

var filterDebug = debuggo.Debug("fx:filter")

const (
	minCutoffHz  = 20.0
	maxCutoffHz  = 20000.0
	minResonance = 0.5
	maxResonance = 30.0
	maxGainDB    = 30.0
)

// Params holds the realtime filter controls.
type Params struct {
	Type      biquad.Type
	CutoffHz  float64 // [20, 20000]
	Resonance float64 // Q, [0.5, 30]
	Gain      float64 // linear, shelves and peak only
}

// DefaultParams returns the factory settings.
func DefaultParams() Params {
	return Params{
		Type:      biquad.LowPass2,
		CutoffHz:  5000,
		Resonance: 0.707,
		Gain:      1,
	}
}

// FilterOption mutates filter construction parameters.
type FilterOption func(*filterConfig) error

type filterConfig struct {
	params     Params
	outputHigh bool
}

// WithFilterParams sets the initial controls. Values are validated.
func WithFilterParams(p Params) FilterOption {
	return func(cfg *filterConfig) error {
		if !p.Type.Valid() {
			return fmt.Errorf("filter type is invalid: %d", int(p.Type))
		}
		if err := core.ValidateRange("filter cutoff", p.CutoffHz, minCutoffHz, maxCutoffHz); err != nil {
			return err
		}
		if err := core.ValidateRange("filter resonance", p.Resonance, minResonance, maxResonance); err != nil {
			return err
		}
		if err := core.ValidatePositive("filter gain", p.Gain); err != nil {
			return err
		}
		cfg.params = p
		return nil
	}
}

// WithFilterOutputHighPass enables a 25 Hz high-pass after the filter.
func WithFilterOutputHighPass(enabled bool) FilterOption {
	return func(cfg *filterConfig) error {
		cfg.outputHigh = enabled
		return nil
	}
}

// Filter is a stereo multi-mode biquad engine. Changing the filter type
// clears the biquad history so a topology switch never rings out through
// mismatched state. Cutoff, resonance and gain changes keep the history.
//
// This processor is stereo, real-time safe, and not thread-safe.
type Filter struct {
	sampleRate float64
	params     Params
	biquad     *biquad.Filter
	highPass   *biquad.Filter
}

// NewFilter creates a filter engine with DefaultParams and optional overrides.
func NewFilter(sampleRate float64, opts ...FilterOption) (*Filter, error) {
	if err := core.ValidateSampleRate("filter", sampleRate); err != nil {
		return nil, err
	}

	cfg := filterConfig{params: DefaultParams()}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	f := &Filter{
		sampleRate: sampleRate,
		params:     cfg.params,
		biquad:     biquad.NewFilter(sampleRate),
	}
	if cfg.outputHigh {
		f.highPass = effects.NewHighPass(sampleRate, effects.OutputHighPassHz, effects.OutputHighPassQ)
	}
	f.design()
	filterDebug("created: sampleRate=%g type=%s cutoff=%g", sampleRate, f.params.Type, f.params.CutoffHz)

	return f, nil
}

// Initialize redesigns the filter for sampleRate and clears its state.
func (f *Filter) Initialize(sampleRate float64) error {
	if err := core.ValidateSampleRate("filter", sampleRate); err != nil {
		return err
	}
	f.sampleRate = sampleRate
	f.biquad.SetSampleRate(sampleRate)
	f.design()
	if f.highPass != nil {
		f.highPass.SetSampleRate(sampleRate)
		f.highPass.SetCoefficients(biquad.HighPass2, effects.OutputHighPassHz, effects.OutputHighPassQ, 1)
	}
	f.Reset()
	filterDebug("initialized: sampleRate=%g", sampleRate)
	return nil
}

// SetParams clamps p into range and applies it. A type change resets the
// filter history; an invalid type keeps the current one.
func (f *Filter) SetParams(p Params) {
	old := f.params
	if !p.Type.Valid() {
		p.Type = old.Type
	}
	p.CutoffHz = core.Clamp(core.FiniteOr(p.CutoffHz, old.CutoffHz), minCutoffHz, maxCutoffHz)
	p.Resonance = core.Clamp(core.FiniteOr(p.Resonance, old.Resonance), minResonance, maxResonance)
	p.Gain = core.Clamp(core.FiniteOr(p.Gain, old.Gain), core.DBToLinear(-maxGainDB), core.DBToLinear(maxGainDB))

	if p.Type != old.Type {
		f.biquad.Reset()
		filterDebug("type changed: %s -> %s", old.Type, p.Type)
	}
	f.params = p
	f.design()
}

// Params returns the applied (clamped) controls.
func (f *Filter) Params() Params { return f.params }

// SampleRate returns the sample rate in Hz.
func (f *Filter) SampleRate() float64 { return f.sampleRate }

// Coefficients returns the current biquad coefficients.
func (f *Filter) Coefficients() biquad.Coefficients { return f.biquad.Coefficients }

// ProcessLeft processes one left-channel sample.
func (f *Filter) ProcessLeft(x float64) float64 {
	y := f.biquad.ProcessLeft(x)
	if f.highPass != nil {
		y = f.highPass.ProcessLeft(y)
	}
	return y
}

// ProcessRight processes one right-channel sample.
func (f *Filter) ProcessRight(x float64) float64 {
	y := f.biquad.ProcessRight(x)
	if f.highPass != nil {
		y = f.highPass.ProcessRight(y)
	}
	return y
}

// ProcessFrame processes one stereo frame.
func (f *Filter) ProcessFrame(l, r float64) (float64, float64) {
	l, r = f.biquad.ProcessFrame(l, r)
	if f.highPass != nil {
		l, r = f.highPass.ProcessFrame(l, r)
	}
	return l, r
}

// ProcessStereoInPlace processes paired buffers in place.
func (f *Filter) ProcessStereoInPlace(left, right []float64) error {
	if err := core.CheckStereo("filter", left, right); err != nil {
		return err
	}
	f.biquad.ProcessBlockLeft(left)
	f.biquad.ProcessBlockRight(right)
	if f.highPass != nil {
		f.highPass.ProcessBlockLeft(left)
		f.highPass.ProcessBlockRight(right)
	}
	return nil
}

// Reset clears the filter history.
func (f *Filter) Reset() {
	f.biquad.Reset()
	if f.highPass != nil {
		f.highPass.Reset()
	}
}

func (f *Filter) design() {
	q := f.params.Resonance
	if f.params.Type == biquad.AllPass2 {
		q = biquad.ClampAllpassQ(q)
	}
	f.biquad.SetCoefficients(f.params.Type, f.params.CutoffHz, q, f.params.Gain)
}
