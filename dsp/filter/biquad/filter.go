package biquad

import (
	"github.com/cwbudde/algo-fx/dsp/core"
)

// Coefficients holds one second-order section. A0..A2 are the feed-forward
// taps, B0 and B1 the feedback taps for y[n-1] and y[n-2]. C0 scales the
// filtered signal and D0 mixes in the unfiltered input.
type Coefficients struct {
	A0, A1, A2 float64
	B0, B1     float64
	C0, D0     float64
}

// State is the Direct Form I history of one channel.
type State struct {
	X1, X2 float64
	Y1, Y2 float64
}

// Filter is a stereo biquad with independent left and right history.
type Filter struct {
	Coefficients

	sampleRate  float64
	left, right State
}

// NewFilter returns a pass-through filter at sampleRate.
func NewFilter(sampleRate float64) *Filter {
	f := &Filter{Coefficients: Passthrough()}
	f.SetSampleRate(sampleRate)
	return f
}

// SampleRate returns the rate used by SetCoefficients.
func (f *Filter) SampleRate() float64 { return f.sampleRate }

// SetSampleRate changes the design sample rate. Invalid rates are ignored.
// Existing coefficients are kept; call SetCoefficients to redesign.
func (f *Filter) SetSampleRate(sampleRate float64) {
	if sampleRate > 0 && core.IsFinite(sampleRate) {
		f.sampleRate = sampleRate
	}
}

// SetCoefficients redesigns the filter as topology t. State is kept.
func (f *Filter) SetCoefficients(t Type, freq, q, gain float64) {
	f.Coefficients = Design(t, freq, q, gain, f.sampleRate)
}

// SetRawCoefficients installs externally computed coefficients.
func (f *Filter) SetRawCoefficients(c Coefficients) {
	f.Coefficients = c
}

// Reset zeroes both channel histories.
func (f *Filter) Reset() {
	f.left = State{}
	f.right = State{}
}

// State returns the left and right channel histories.
func (f *Filter) State() (left, right State) {
	return f.left, f.right
}

// SetState restores channel histories saved with State.
func (f *Filter) SetState(left, right State) {
	f.left, f.right = left, right
}

// ProcessLeft filters one left-channel sample.
func (f *Filter) ProcessLeft(x float64) float64 {
	return f.process(&f.left, x)
}

// ProcessRight filters one right-channel sample.
func (f *Filter) ProcessRight(x float64) float64 {
	return f.process(&f.right, x)
}

// ProcessFrame filters one stereo frame.
func (f *Filter) ProcessFrame(l, r float64) (float64, float64) {
	return f.process(&f.left, l), f.process(&f.right, r)
}

// ProcessBlockLeft filters buf in place on the left channel.
func (f *Filter) ProcessBlockLeft(buf []float64) {
	for i, x := range buf {
		buf[i] = f.process(&f.left, x)
	}
}

// ProcessBlockRight filters buf in place on the right channel.
func (f *Filter) ProcessBlockRight(buf []float64) {
	for i, x := range buf {
		buf[i] = f.process(&f.right, x)
	}
}

func (f *Filter) process(s *State, x float64) float64 {
	c := &f.Coefficients
	y := c.A0*x + c.A1*s.X1 + c.A2*s.X2 - c.B0*s.Y1 - c.B1*s.Y2

	s.X2 = s.X1
	s.X1 = x
	s.Y2 = s.Y1
	s.Y1 = core.FlushDenormals(y)

	return c.C0*y + c.D0*x
}
