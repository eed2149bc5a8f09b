package effects

import (
	vecmath "github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-fx/dsp/core"
)

// MixGains splits a single mix control in [0, 1] into dry and wet gains.
func MixGains(mix float64) (dry, wet float64) {
	mix = core.Clamp(core.FiniteOr(mix, 1), 0, 1)
	return 1 - mix, mix
}

// mixNorm returns the factor that keeps dry+wet from exceeding unity gain.
func mixNorm(dry, wet float64) float64 {
	if sum := dry + wet; sum > 1 {
		return 1 / sum
	}
	return 1
}

// Mix blends a dry and a processed sample. When dry+wet exceeds 1 the
// result is divided by dry+wet.
func Mix(x, y, dry, wet float64) float64 {
	return (dry*x + wet*y) * mixNorm(dry, wet)
}

// MixBlock blends wetBuf into dst, which holds the dry signal, with the same
// renormalization as Mix. wetBuf is scaled in place. Buffers must have equal
// length; the shorter length is used otherwise.
func MixBlock(dst, wetBuf []float64, dry, wet float64) {
	n := min(len(dst), len(wetBuf))
	dst, wetBuf = dst[:n], wetBuf[:n]

	norm := mixNorm(dry, wet)
	vecmath.ScaleBlock(dst, dst, dry*norm)
	vecmath.ScaleBlock(wetBuf, wetBuf, wet*norm)
	vecmath.AddBlockInPlace(dst, wetBuf)
}
