package delay

import "github.com/cwbudde/algo-fx/dsp/core"

// FeedbackLine is an integer delay with a recursive output path:
//
//	y(n) = x(n-d) + feedback*y(n-1-d)
type FeedbackLine struct {
	ring
	feedback float64
}

// NewFeedbackLine returns a line holding maxSeconds of history at sampleRate.
// feedback is clamped to [0, 1].
func NewFeedbackLine(maxSeconds, sampleRate, feedback float64) (*FeedbackLine, error) {
	r, err := newRing("feedback line", maxSeconds, sampleRate)
	if err != nil {
		return nil, err
	}
	l := &FeedbackLine{ring: r}
	l.SetFeedback(feedback)
	return l, nil
}

// SetFeedback sets the output feedback gain, clamped to [0, 1].
func (l *FeedbackLine) SetFeedback(feedback float64) {
	l.feedback = core.Clamp(core.FiniteOr(feedback, l.feedback), 0, 1)
}

// Feedback returns the current feedback gain.
func (l *FeedbackLine) Feedback() float64 { return l.feedback }

// Len returns the buffer length in samples.
func (l *FeedbackLine) Len() int { return len(l.x) }

// MaxDelay returns the largest delay Process honors.
func (l *FeedbackLine) MaxDelay() int {
	if len(l.x) < 2 {
		return 0
	}
	return len(l.x) - 2
}

// Resize reallocates the buffers for a new sample rate and clears them.
func (l *FeedbackLine) Resize(sampleRate float64) {
	l.resize(sampleRate)
	lineDebug("feedback line resized: sampleRate=%g len=%d", sampleRate, len(l.x))
}

// Reset clears the history without reallocating.
func (l *FeedbackLine) Reset() { l.reset() }

// Process writes x and returns the delayed, fed back output for delaySamples.
func (l *FeedbackLine) Process(x float64, delaySamples int) float64 {
	if !l.sized("feedback line") {
		return 0
	}

	d := core.ClampInt(delaySamples, 0, l.MaxDelay())
	l.x[l.writePos] = x
	out := l.x[l.tap(d)] + l.feedback*l.y[l.tap(d+1)]
	l.y[l.writePos] = core.FlushDenormals(out)
	l.advance()
	return out
}
