package filtering

import (
	"fmt"

	"github.com/GeoffreyPlitt/debuggo"

	"github.com/cwbudde/algo-fx/dsp/core"
	"github.com/cwbudde/algo-fx/dsp/effects"
	"github.com/cwbudde/algo-fx/dsp/filter/biquad"
)

var disperserDebug = debuggo.Debug("fx:disperser")

const (
	// MaxDisperserStages is the capacity of the allpass bank.
	MaxDisperserStages = biquad.DefaultMaxStages

	minDisperserFreqHz    = 500.0
	maxDisperserFreqHz    = 12000.0
	minDisperserResonance = 0.707
	maxDisperserResonance = 10.0

	// Edges of the spread range and the per-stage frequency clamp.
	spreadLowHz     = 300.0
	stageLowHz      = 400.0
	stageHighHz     = 15000.0
	disperserHPFreq = 30.0
)

// DisperserParams holds the realtime disperser controls.
type DisperserParams struct {
	FrequencyHz float64 // [500, 12000]
	Spread      float64 // [0, 1], fraction of FrequencyHz
	Resonance   float64 // allpass Q, [0.707, 10]
	Amount      int     // active stages, [1, 200]
}

// DefaultDisperserParams returns the factory settings.
func DefaultDisperserParams() DisperserParams {
	return DisperserParams{
		FrequencyHz: 1000,
		Spread:      0.1,
		Resonance:   0.707,
		Amount:      100,
	}
}

// DisperserOption mutates disperser construction parameters.
type DisperserOption func(*DisperserParams) error

// WithDisperserParams sets the initial controls. Values are validated.
func WithDisperserParams(p DisperserParams) DisperserOption {
	return func(cfg *DisperserParams) error {
		if err := core.ValidateRange("disperser frequency", p.FrequencyHz, minDisperserFreqHz, maxDisperserFreqHz); err != nil {
			return err
		}
		if err := core.ValidateRange("disperser spread", p.Spread, 0, 1); err != nil {
			return err
		}
		if err := core.ValidateRange("disperser resonance", p.Resonance, minDisperserResonance, maxDisperserResonance); err != nil {
			return err
		}
		if p.Amount < 1 || p.Amount > MaxDisperserStages {
			return fmt.Errorf("disperser amount must be in [1, %d]: %d", MaxDisperserStages, p.Amount)
		}
		*cfg = p
		return nil
	}
}

// Disperser runs the input through Amount second-order allpasses whose
// centre frequencies fan out around FrequencyHz, followed by a 30 Hz
// high-pass.
//
// Stages above the active amount keep their history when the amount
// shrinks; re-enabling them resumes from that state.
//
// This processor is stereo, real-time safe, and not thread-safe.
type Disperser struct {
	sampleRate float64
	params     DisperserParams
	allpasses  *biquad.Cascade
	highPass   *biquad.Filter
}

// NewDisperser creates a disperser with DefaultDisperserParams and optional
// overrides. The full bank is allocated up front.
func NewDisperser(sampleRate float64, opts ...DisperserOption) (*Disperser, error) {
	if err := core.ValidateSampleRate("disperser", sampleRate); err != nil {
		return nil, err
	}

	params := DefaultDisperserParams()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&params); err != nil {
			return nil, err
		}
	}

	d := &Disperser{
		sampleRate: sampleRate,
		params:     params,
		allpasses:  biquad.NewCascade(sampleRate, MaxDisperserStages),
		highPass:   effects.NewHighPass(sampleRate, disperserHPFreq, effects.DisperserHighPassQ),
	}
	d.retune()
	disperserDebug("created: sampleRate=%g freq=%g amount=%d", sampleRate, params.FrequencyHz, params.Amount)

	return d, nil
}

// Initialize retunes every stage for sampleRate and clears all state.
func (d *Disperser) Initialize(sampleRate float64) error {
	if err := core.ValidateSampleRate("disperser", sampleRate); err != nil {
		return err
	}
	d.sampleRate = sampleRate
	d.allpasses.SetSampleRate(sampleRate)
	d.highPass.SetSampleRate(sampleRate)
	d.highPass.SetCoefficients(biquad.HighPass2, disperserHPFreq, effects.DisperserHighPassQ, 1)
	d.retune()
	d.Reset()
	disperserDebug("initialized: sampleRate=%g", sampleRate)
	return nil
}

// SetParams clamps p into range and retunes the active stages. No stage
// history is cleared.
func (d *Disperser) SetParams(p DisperserParams) {
	old := d.params
	p.FrequencyHz = core.Clamp(core.FiniteOr(p.FrequencyHz, old.FrequencyHz), minDisperserFreqHz, maxDisperserFreqHz)
	p.Spread = core.Clamp(core.FiniteOr(p.Spread, old.Spread), 0, 1)
	p.Resonance = core.Clamp(core.FiniteOr(p.Resonance, old.Resonance), minDisperserResonance, maxDisperserResonance)
	p.Amount = core.ClampInt(p.Amount, 1, MaxDisperserStages)
	d.params = p
	d.retune()
}

// Params returns the applied (clamped) controls.
func (d *Disperser) Params() DisperserParams { return d.params }

// SampleRate returns the sample rate in Hz.
func (d *Disperser) SampleRate() float64 { return d.sampleRate }

// Active returns the number of processed allpass stages.
func (d *Disperser) Active() int { return d.allpasses.Active() }

// Cascade exposes the allpass bank for response analysis.
func (d *Disperser) Cascade() *biquad.Cascade { return d.allpasses }

// StageFrequency returns the centre frequency of stage i for the current
// controls.
func (d *Disperser) StageFrequency(i int) float64 {
	return stageFrequency(d.params, i)
}

// ProcessLeft processes one left-channel sample.
func (d *Disperser) ProcessLeft(x float64) float64 {
	return d.highPass.ProcessLeft(d.allpasses.ProcessLeft(x))
}

// ProcessRight processes one right-channel sample.
func (d *Disperser) ProcessRight(x float64) float64 {
	return d.highPass.ProcessRight(d.allpasses.ProcessRight(x))
}

// ProcessFrame processes one stereo frame.
func (d *Disperser) ProcessFrame(l, r float64) (float64, float64) {
	return d.highPass.ProcessFrame(d.allpasses.ProcessFrame(l, r))
}

// ProcessStereoInPlace processes paired buffers in place.
func (d *Disperser) ProcessStereoInPlace(left, right []float64) error {
	return effects.ProcessStereoInPlace("disperser", d, left, right)
}

// Reset clears the history of every stage and the output filter.
func (d *Disperser) Reset() {
	d.allpasses.Reset()
	d.highPass.Reset()
}

func (d *Disperser) retune() {
	p := d.params
	q := biquad.ClampAllpassQ(p.Resonance)
	for i := 0; i < p.Amount; i++ {
		d.allpasses.SetStage(i, biquad.AllPass2, stageFrequency(p, i), q, 1)
	}
	d.allpasses.SetActive(p.Amount)
}

// stageFrequency places stage i on a line through the spread range. Stages
// in the lower half fall below the range and pile up at the 400 Hz floor.
func stageFrequency(p DisperserParams, i int) float64 {
	if p.Spread <= 0 {
		return p.FrequencyHz
	}
	half := p.FrequencyHz * p.Spread / 2
	lo := max(p.FrequencyHz-half, spreadLowHz)
	hi := min(p.FrequencyHz+half, stageHighHz)
	pos := float64(i-p.Amount/2) / (float64(p.Amount) / 2)
	return core.Clamp(lo+(hi-lo)*pos, stageLowHz, stageHighHz)
}
