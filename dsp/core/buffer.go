package core

import "fmt"

// EnsureLen returns a slice of length n, reusing buf's backing array when
// it is large enough. Non-positive n yields an empty slice.
func EnsureLen(buf []float64, n int) []float64 {
	switch {
	case n <= 0:
		return buf[:0]
	case cap(buf) >= n:
		return buf[:n]
	default:
		return make([]float64, n)
	}
}

// Zero clears buf.
func Zero(buf []float64) { clear(buf) }

// CopyInto copies the common prefix of src into dst and returns its length.
func CopyInto(dst, src []float64) int {
	return copy(dst, src[:min(len(dst), len(src))])
}

// CheckStereo reports an error naming the caller when a stereo buffer pair
// has unequal lengths.
func CheckStereo(name string, left, right []float64) error {
	if len(left) != len(right) {
		return fmt.Errorf("%s: left and right buffers must have equal length: %d != %d",
			name, len(left), len(right))
	}
	return nil
}
