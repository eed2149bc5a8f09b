// Package spatial provides stereo image processors.
//
// MidSideMixer rebalances a stereo signal either through its mid (sum) and
// side (difference) components or by folding one channel into the other.
// Both modes are a single 2x2 gain matrix, so the block path runs on
// algo-vecmath kernels.
package spatial
