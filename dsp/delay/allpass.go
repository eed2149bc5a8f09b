package delay

import "github.com/cwbudde/algo-fx/dsp/core"

// MaxAllpassGain bounds the allpass coefficient away from the unstable edge.
const MaxAllpassGain = 0.999

// Allpass is a stereo delaying Schroeder allpass:
//
//	y(n) = -g*x(n) + x(n-d) + g*y(n-d)
type Allpass struct {
	left, right ring
	delay       int
	gain        float64
}

// NewAllpass returns an allpass holding maxSeconds of history per channel.
func NewAllpass(maxSeconds, sampleRate float64, delaySamples int, gain float64) (*Allpass, error) {
	left, err := newRing("allpass", maxSeconds, sampleRate)
	if err != nil {
		return nil, err
	}
	right, err := newRing("allpass", maxSeconds, sampleRate)
	if err != nil {
		return nil, err
	}
	a := &Allpass{left: left, right: right}
	a.SetParams(delaySamples, gain)
	return a, nil
}

// SetParams sets the delay (clamped to [1, MaxDelay]) and the gain
// (clamped to ±MaxAllpassGain).
func (a *Allpass) SetParams(delaySamples int, gain float64) {
	a.delay = core.ClampInt(delaySamples, 1, a.MaxDelay())
	a.gain = core.Clamp(core.FiniteOr(gain, a.gain), -MaxAllpassGain, MaxAllpassGain)
}

// Delay returns the delay in samples.
func (a *Allpass) Delay() int { return a.delay }

// Gain returns the allpass coefficient.
func (a *Allpass) Gain() float64 { return a.gain }

// MaxDelay returns the largest usable delay in samples.
func (a *Allpass) MaxDelay() int {
	if len(a.left.x) < 2 {
		return 1
	}
	return len(a.left.x) - 2
}

// Resize reallocates both channels for a new sample rate and re-clamps the delay.
func (a *Allpass) Resize(sampleRate float64) {
	a.left.resize(sampleRate)
	a.right.resize(sampleRate)
	a.delay = core.ClampInt(a.delay, 1, a.MaxDelay())
}

// Reset clears both channels.
func (a *Allpass) Reset() {
	a.left.reset()
	a.right.reset()
}

// ProcessLeft filters one left-channel sample.
func (a *Allpass) ProcessLeft(x float64) float64 { return a.process(&a.left, x) }

// ProcessRight filters one right-channel sample.
func (a *Allpass) ProcessRight(x float64) float64 { return a.process(&a.right, x) }

// ProcessFrame filters one stereo frame.
func (a *Allpass) ProcessFrame(l, r float64) (float64, float64) {
	return a.process(&a.left, l), a.process(&a.right, r)
}

func (a *Allpass) process(ch *ring, x float64) float64 {
	if !ch.sized("allpass") {
		return 0
	}
	t := ch.tap(a.delay)
	y := -a.gain*x + ch.x[t] + a.gain*ch.y[t]
	ch.x[ch.writePos] = x
	ch.y[ch.writePos] = core.FlushDenormals(y)
	ch.advance()
	return y
}
