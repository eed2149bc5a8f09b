// Package delay provides the circular delay lines used by the modulation
// effects: an integer line with built-in feedback, a linearly interpolated
// fractional line and a delaying Schroeder allpass.
//
// Lines are sized once from a maximum delay in seconds and a sample rate and
// only reallocated by Resize. Requested delays are clamped at the call
// boundary so indexing never leaves the buffer.
package delay

import (
	"math"

	"github.com/GeoffreyPlitt/debuggo"

	"github.com/cwbudde/algo-fx/dsp/core"
	"github.com/cwbudde/algo-fx/internal/fxdebug"
)

var lineDebug = debuggo.Debug("fx:delay")

// ring is the circular storage shared by the line types.
type ring struct {
	x          []float64
	y          []float64
	writePos   int
	maxSeconds float64
	sampleRate float64
}

func newRing(kind string, maxSeconds, sampleRate float64) (ring, error) {
	if err := core.ValidatePositive(kind+" max delay", maxSeconds); err != nil {
		return ring{}, err
	}
	if err := core.ValidateSampleRate(kind, sampleRate); err != nil {
		return ring{}, err
	}

	r := ring{maxSeconds: maxSeconds}
	r.resize(sampleRate)
	lineDebug("%s sized: maxSeconds=%g sampleRate=%g len=%d", kind, maxSeconds, sampleRate, len(r.x))
	return r, nil
}

// capacityFor returns the buffer length that holds maxSeconds of history plus
// the two guard taps the readers need.
func capacityFor(maxSeconds, sampleRate float64) int {
	return int(math.Ceil(maxSeconds*sampleRate)) + 2
}

func (r *ring) resize(sampleRate float64) {
	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		return
	}
	r.sampleRate = sampleRate
	n := capacityFor(r.maxSeconds, sampleRate)
	r.x = core.EnsureLen(r.x, n)
	r.y = core.EnsureLen(r.y, n)
	r.reset()
}

func (r *ring) reset() {
	core.Zero(r.x)
	core.Zero(r.y)
	r.writePos = 0
}

func (r *ring) sized(kind string) bool {
	ok := len(r.x) > 0
	fxdebug.Assertf(ok, "%s processed before it was sized", kind)
	return ok
}

// tap returns the index of the sample written delay steps before writePos.
func (r *ring) tap(delay int) int {
	idx := r.writePos - delay
	if idx < 0 {
		idx += len(r.x)
	}
	return idx
}

func (r *ring) advance() {
	r.writePos++
	if r.writePos >= len(r.x) {
		r.writePos = 0
	}
}
