// Package biquad provides the second-order IIR filter used by the effect
// engines: closed-form coefficient design for eleven topologies, a stereo
// Direct Form I runtime and a cascade of sections for allpass dispersion.
//
// Coefficients follow the feed-forward/feedback naming
//
//	y  = A0*x + A1*x[n-1] + A2*x[n-2] - B0*y[n-1] - B1*y[n-2]
//	out = C0*y + D0*x
//
// where C0 scales the filtered path and D0 adds the dry input. Plain filters
// use C0 = 1, D0 = 0; the shelving designs use the dry path to reach their
// boost or cut.
package biquad
