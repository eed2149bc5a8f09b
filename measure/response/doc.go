// Package response measures the steady-state frequency response of stereo
// effect engines by driving them with sine tones and estimating the output
// tone level from a Hann-windowed FFT.
//
// Tone levels are taken from the energy of the windowed main lobe, so
// tones between bin centres are measured without scalloping loss. For
// engines with time-varying modulation the result is the average level
// over the analysis window.
package response
