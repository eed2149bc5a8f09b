package effects

import "github.com/cwbudde/algo-fx/dsp/filter/biquad"

// Output high-pass settings used by the engines to strip DC and subsonic
// build-up from modulated feedback paths.
const (
	OutputHighPassHz   = 25.0
	OutputHighPassQ    = 0.707
	FlangerHighPassHz  = 30.0
	FlangerHighPassQ   = 0.75
	PhaserHighPassQ    = 0.8
	DisperserHighPassQ = 0.707
)

// NewHighPass returns a stereo second-order high-pass at cutoff Hz.
func NewHighPass(sampleRate, cutoff, q float64) *biquad.Filter {
	f := biquad.NewFilter(sampleRate)
	f.SetCoefficients(biquad.HighPass2, cutoff, q, 1)
	return f
}
