// Package effects defines the contracts shared by the stereo effect engines
// and a few helpers they build on.
//
// Subpackages:
//   - github.com/cwbudde/algo-fx/dsp/effects/modulation: Chorus, Flanger, Phaser
//   - github.com/cwbudde/algo-fx/dsp/effects/filtering: Filter, Disperser
//   - github.com/cwbudde/algo-fx/dsp/effects/spatial: MidSideMixer
//
// Every engine processes one stereo frame per call through ProcessFrame.
// The per-channel ProcessLeft/ProcessRight pair is kept for hosts that
// deliver channels separately; engines with shared modulators use a
// [FrameGuard] so the modulators advance exactly once per left-then-right
// pair. All hot paths are allocation free.
package effects
