package biquad

import "github.com/cwbudde/algo-fx/dsp/core"

// DefaultMaxStages is the capacity of a cascade built with maxStages <= 0.
const DefaultMaxStages = 200

// Cascade is a fixed-capacity series of stereo biquads of which the first
// Active sections are processed. Sections beyond the active count keep
// their coefficients and history untouched.
type Cascade struct {
	stages []Filter
	active int
}

// NewCascade preallocates maxStages pass-through sections at sampleRate.
// All sections start active.
func NewCascade(sampleRate float64, maxStages int) *Cascade {
	if maxStages <= 0 {
		maxStages = DefaultMaxStages
	}
	c := &Cascade{stages: make([]Filter, maxStages), active: maxStages}
	for i := range c.stages {
		c.stages[i].Coefficients = Passthrough()
		c.stages[i].SetSampleRate(sampleRate)
	}
	return c
}

// Len returns the section capacity.
func (c *Cascade) Len() int { return len(c.stages) }

// Active returns the number of processed sections.
func (c *Cascade) Active() int { return c.active }

// SetActive sets the number of processed sections, clamped to [0, Len].
func (c *Cascade) SetActive(n int) {
	c.active = core.ClampInt(n, 0, len(c.stages))
}

// SetSampleRate changes the design rate of every section.
func (c *Cascade) SetSampleRate(sampleRate float64) {
	for i := range c.stages {
		c.stages[i].SetSampleRate(sampleRate)
	}
}

// SetStage redesigns section i. Out-of-range indices are ignored.
func (c *Cascade) SetStage(i int, t Type, freq, q, gain float64) {
	if i < 0 || i >= len(c.stages) {
		return
	}
	c.stages[i].SetCoefficients(t, freq, q, gain)
}

// Stage returns section i for inspection, or nil if i is out of range.
func (c *Cascade) Stage(i int) *Filter {
	if i < 0 || i >= len(c.stages) {
		return nil
	}
	return &c.stages[i]
}

// ProcessLeft runs x through the active sections on the left channel.
func (c *Cascade) ProcessLeft(x float64) float64 {
	for i := 0; i < c.active; i++ {
		x = c.stages[i].ProcessLeft(x)
	}
	return x
}

// ProcessRight runs x through the active sections on the right channel.
func (c *Cascade) ProcessRight(x float64) float64 {
	for i := 0; i < c.active; i++ {
		x = c.stages[i].ProcessRight(x)
	}
	return x
}

// ProcessFrame runs one stereo frame through the active sections.
func (c *Cascade) ProcessFrame(l, r float64) (float64, float64) {
	for i := 0; i < c.active; i++ {
		l, r = c.stages[i].ProcessFrame(l, r)
	}
	return l, r
}

// Reset clears the history of every section, active or not.
func (c *Cascade) Reset() {
	for i := range c.stages {
		c.stages[i].Reset()
	}
}
