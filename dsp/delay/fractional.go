package delay

import (
	"math"

	"github.com/cwbudde/algo-fx/dsp/core"
)

// FractionalLine is a delay line read at non-integer delays by linear
// interpolation between the two neighbouring input taps.
type FractionalLine struct {
	ring
}

// NewFractionalLine returns a line holding maxSeconds of history at sampleRate.
func NewFractionalLine(maxSeconds, sampleRate float64) (*FractionalLine, error) {
	r, err := newRing("fractional line", maxSeconds, sampleRate)
	if err != nil {
		return nil, err
	}
	return &FractionalLine{ring: r}, nil
}

// Len returns the buffer length in samples.
func (l *FractionalLine) Len() int { return len(l.x) }

// MaxDelay returns the largest delay Process honors.
func (l *FractionalLine) MaxDelay() float64 {
	if len(l.x) < 1 {
		return 0
	}
	return float64(len(l.x) - 1)
}

// Resize reallocates the buffers for a new sample rate and clears them.
func (l *FractionalLine) Resize(sampleRate float64) {
	l.resize(sampleRate)
	lineDebug("fractional line resized: sampleRate=%g len=%d", sampleRate, len(l.x))
}

// Reset clears the history without reallocating.
func (l *FractionalLine) Reset() { l.reset() }

// Process writes x and returns the input delayed by delaySamples.
// A delay with zero fractional part returns the exact tap.
func (l *FractionalLine) Process(x, delaySamples float64) float64 {
	if !l.sized("fractional line") {
		return 0
	}

	d := core.Clamp(core.FiniteOr(delaySamples, 0), 0, l.MaxDelay())
	whole := math.Floor(d)
	frac := d - whole
	di := int(whole)

	l.x[l.writePos] = x
	out := l.x[l.tap(di)]
	if frac > 0 {
		out = out*(1-frac) + l.x[l.tap(di+1)]*frac
	}
	l.y[l.writePos] = out
	l.advance()
	return out
}
