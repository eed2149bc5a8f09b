// Package effectchain runs stereo effect engines in series from a JSON
// document.
//
// A Registry maps type names to factories; DefaultRegistry knows filter,
// chorus, flanger, phaser, disperser, midside and allpass. Each node may be
// bypassed, and the chain-level "blend" parameter mixes a node's output
// with its input.
package effectchain
