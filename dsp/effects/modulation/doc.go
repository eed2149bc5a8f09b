// Package modulation provides the LFO-driven stereo effects.
//
// Included engines:
//   - Chorus: up to five modulated delay voices per channel with
//     random-phase LFOs and a feedback register.
//   - Flanger: single modulated short delay per channel with feedback,
//     quadrature right-channel LFO and a fixed output high-pass.
//   - Phaser: cascade of swept first-order allpasses mixed with the dry signal.
//
// Engines share their modulators between channels and advance them once per
// stereo frame.
package modulation
