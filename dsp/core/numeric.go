package core

import (
	"fmt"
	"math"
)

// Clamp limits value to the inclusive range [min, max].
// The bounds may be given in either order.
func Clamp(value, min, max float64) float64 {
	if min > max {
		min, max = max, min
	}

	if value < min {
		return min
	}

	if value > max {
		return max
	}

	return value
}

// ClampInt limits value to the inclusive range [min, max].
func ClampInt(value, min, max int) int {
	if min > max {
		min, max = max, min
	}

	if value < min {
		return min
	}

	if value > max {
		return max
	}

	return value
}

// IsFinite reports whether x is neither NaN nor ±Inf.
func IsFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// FiniteOr returns x when it is finite and fallback otherwise.
// Parameter setters use it to keep the last known good value.
func FiniteOr(x, fallback float64) float64 {
	if IsFinite(x) {
		return x
	}

	return fallback
}

// Lerp interpolates linearly between a and b by t.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// FlushDenormals converts tiny denormal-like values to exact zero.
// This can reduce denormal-related CPU slowdowns in hot DSP loops.
func FlushDenormals(x float64) float64 {
	const epsilon = 1e-30
	if x > -epsilon && x < epsilon {
		return 0
	}

	return x
}

// DBToLinear converts dB to linear amplitude (20*log10 convention).
func DBToLinear(db float64) float64 {
	return math.Pow(10, db/20)
}

// LinearToDB converts linear amplitude to dB (20*log10 convention).
// Returns -Inf for zero and NaN for negative values.
func LinearToDB(linear float64) float64 {
	if linear < 0 {
		return math.NaN()
	}

	if linear == 0 {
		return math.Inf(-1)
	}

	return 20 * math.Log10(linear)
}

// ValidateSampleRate returns an error for non-positive or non-finite rates.
// name prefixes the message, e.g. "chorus".
func ValidateSampleRate(name string, sampleRate float64) error {
	return ValidatePositive(name+" sample rate", sampleRate)
}

// ValidatePositive returns an error unless value is finite and > 0.
func ValidatePositive(name string, value float64) error {
	if value <= 0 || !IsFinite(value) {
		return fmt.Errorf("%s must be > 0 and finite: %f", name, value)
	}

	return nil
}

// ValidateRange returns an error unless value is finite and within
// [lo, hi].
func ValidateRange(name string, value, lo, hi float64) error {
	if value < lo || value > hi || !IsFinite(value) {
		return fmt.Errorf("%s must be in [%g, %g]: %f", name, lo, hi, value)
	}

	return nil
}
