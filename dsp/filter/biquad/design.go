package biquad

import (
	"math"

	"github.com/cwbudde/algo-fx/dsp/core"
)

const (
	minQ         = 1e-3
	minGain      = 1e-6
	maxCutoffRel = 0.49
	minCutoffHz  = 1e-3
)

// Design returns the coefficients of topology t. gain is a linear amplitude
// factor used by the shelving and peak designs and ignored otherwise.
//
// freq is clamped to (0, 0.49*sampleRate], q to at least 1e-3 and gain to at
// least 1e-6. An invalid sample rate or unknown type yields a pass-through.
func Design(t Type, freq, q, gain, sampleRate float64) Coefficients {
	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		return Passthrough()
	}

	switch t {
	case LowPass1:
		return LowPass1Coefficients(freq, sampleRate)
	case LowPass2:
		return LowPass2Coefficients(freq, q, sampleRate)
	case HighPass1:
		return HighPass1Coefficients(freq, sampleRate)
	case HighPass2:
		return HighPass2Coefficients(freq, q, sampleRate)
	case BandPass:
		return BandPassCoefficients(freq, q, sampleRate)
	case Notch:
		return NotchCoefficients(freq, q, sampleRate)
	case AllPass1:
		return AllPass1Coefficients(freq, sampleRate)
	case AllPass2:
		return AllPass2Coefficients(freq, q, sampleRate)
	case LowShelf:
		return LowShelfCoefficients(freq, gain, sampleRate)
	case HighShelf:
		return HighShelfCoefficients(freq, gain, sampleRate)
	case Peak:
		return PeakCoefficients(freq, q, gain, sampleRate)
	default:
		return Passthrough()
	}
}

// Passthrough returns unity coefficients.
func Passthrough() Coefficients {
	return Coefficients{A0: 1, C0: 1}
}

// LowPass1Coefficients designs a one-pole lowpass.
func LowPass1Coefficients(freq, sampleRate float64) Coefficients {
	theta := 2 * math.Pi * clampFreq(freq, sampleRate) / sampleRate
	gamma := math.Cos(theta) / (1 + math.Sin(theta))

	return Coefficients{
		A0: (1 - gamma) / 2,
		A1: (1 - gamma) / 2,
		B0: -gamma,
		C0: 1,
	}
}

// HighPass1Coefficients designs a one-pole highpass.
func HighPass1Coefficients(freq, sampleRate float64) Coefficients {
	theta := 2 * math.Pi * clampFreq(freq, sampleRate) / sampleRate
	gamma := math.Cos(theta) / (1 + math.Sin(theta))

	return Coefficients{
		A0: (1 + gamma) / 2,
		A1: -(1 + gamma) / 2,
		B0: -gamma,
		C0: 1,
	}
}

// LowPass2Coefficients designs a resonant two-pole lowpass with unity DC gain.
func LowPass2Coefficients(freq, q, sampleRate float64) Coefficients {
	beta, gamma := secondOrderTerms(freq, q, sampleRate)
	a1 := 0.5 + beta - gamma

	return Coefficients{
		A0: a1 / 2,
		A1: a1,
		A2: a1 / 2,
		B0: -2 * gamma,
		B1: 2 * beta,
		C0: 1,
	}
}

// HighPass2Coefficients designs a resonant two-pole highpass with unity
// gain at Nyquist.
func HighPass2Coefficients(freq, q, sampleRate float64) Coefficients {
	beta, gamma := secondOrderTerms(freq, q, sampleRate)
	a1 := 0.5 + beta + gamma

	return Coefficients{
		A0: a1 / 2,
		A1: -a1,
		A2: a1 / 2,
		B0: -2 * gamma,
		B1: 2 * beta,
		C0: 1,
	}
}

// BandPassCoefficients designs a constant-peak bandpass centred on freq.
func BandPassCoefficients(freq, q, sampleRate float64) Coefficients {
	k, q := prewarp(freq, sampleRate), clampQ(q)
	delta := k*k*q + k + q

	return Coefficients{
		A0: k / delta,
		A2: -k / delta,
		B0: 2 * q * (k*k - 1) / delta,
		B1: (k*k*q - k + q) / delta,
		C0: 1,
	}
}

// NotchCoefficients designs a band-reject filter centred on freq.
func NotchCoefficients(freq, q, sampleRate float64) Coefficients {
	k, q := prewarp(freq, sampleRate), clampQ(q)
	delta := k*k*q + k + q
	edge := q * (k*k + 1) / delta
	mid := 2 * q * (k*k - 1) / delta

	return Coefficients{
		A0: edge,
		A1: mid,
		A2: edge,
		B0: mid,
		B1: (k*k*q - k + q) / delta,
		C0: 1,
	}
}

// AllPass1Coefficients designs a first-order allpass with its 90° point at freq.
func AllPass1Coefficients(freq, sampleRate float64) Coefficients {
	t := prewarp(freq, sampleRate)
	alpha := (t - 1) / (t + 1)

	return Coefficients{
		A0: alpha,
		A1: 1,
		B0: alpha,
		C0: 1,
	}
}

// AllPass2Coefficients designs a second-order allpass centred on freq with
// bandwidth freq/q.
func AllPass2Coefficients(freq, q, sampleRate float64) Coefficients {
	freq = clampFreq(freq, sampleRate)
	bw := clampFreq(freq/clampQ(q), sampleRate)
	t := math.Tan(math.Pi * bw / sampleRate)
	alpha := (t - 1) / (t + 1)
	beta := -math.Cos(2 * math.Pi * freq / sampleRate)
	mid := beta * (1 - alpha)

	return Coefficients{
		A0: -alpha,
		A1: mid,
		A2: 1,
		B0: mid,
		B1: -alpha,
		C0: 1,
	}
}

// LowShelfCoefficients designs a first-order low shelf. gain is the linear
// amplitude reached at DC.
func LowShelfCoefficients(freq, gain, sampleRate float64) Coefficients {
	theta := 2 * math.Pi * clampFreq(freq, sampleRate) / sampleRate
	u := clampGain(gain)
	beta := 4 / (1 + u)
	delta := beta * math.Tan(theta/2)
	gamma := (1 - delta) / (1 + delta)

	return Coefficients{
		A0: (1 - gamma) / 2,
		A1: (1 - gamma) / 2,
		B0: -gamma,
		C0: u - 1,
		D0: 1,
	}
}

// HighShelfCoefficients designs a first-order high shelf. gain is the linear
// amplitude reached at Nyquist.
func HighShelfCoefficients(freq, gain, sampleRate float64) Coefficients {
	theta := 2 * math.Pi * clampFreq(freq, sampleRate) / sampleRate
	u := clampGain(gain)
	beta := (1 + u) / 4
	delta := beta * math.Tan(theta/2)
	gamma := (1 - delta) / (1 + delta)

	return Coefficients{
		A0: (1 + gamma) / 2,
		A1: -(1 + gamma) / 2,
		B0: -gamma,
		C0: u - 1,
		D0: 1,
	}
}

// PeakCoefficients designs a peaking equalizer with linear gain at freq.
// Boost and cut use separate forms so the response stays at unity far from
// the centre frequency.
func PeakCoefficients(freq, q, gain, sampleRate float64) Coefficients {
	k, q := prewarp(freq, sampleRate), clampQ(q)
	v := clampGain(gain)
	kk := k * k

	d0 := 1 + k/q + kk
	e := 1 + k/(q*v) + kk
	alpha := 1 + v*k/q + kk
	beta := 2 * (kk - 1)
	y := 1 - v*k/q + kk
	d := 1 - k/q + kk
	p := 1 - k/(q*v) + kk

	if v >= 1 {
		return Coefficients{
			A0: alpha / d0,
			A1: beta / d0,
			A2: y / d0,
			B0: beta / d0,
			B1: d / d0,
			C0: 1,
		}
	}

	return Coefficients{
		A0: d0 / e,
		A1: beta / e,
		A2: d / e,
		B0: beta / e,
		B1: p / e,
		C0: 1,
	}
}

// ClampAllpassQ limits q to [1, 1000], the usable range for second-order
// allpass sections driven from a resonance control.
func ClampAllpassQ(q float64) float64 {
	return core.Clamp(core.FiniteOr(q, 1), 1, 1000)
}

func secondOrderTerms(freq, q, sampleRate float64) (beta, gamma float64) {
	theta := 2 * math.Pi * clampFreq(freq, sampleRate) / sampleRate
	halfD := 0.5 / clampQ(q)
	s := halfD * math.Sin(theta)
	beta = 0.5 * (1 - s) / (1 + s)
	gamma = (0.5 + beta) * math.Cos(theta)
	return beta, gamma
}

func prewarp(freq, sampleRate float64) float64 {
	return math.Tan(math.Pi * clampFreq(freq, sampleRate) / sampleRate)
}

func clampFreq(freq, sampleRate float64) float64 {
	return core.Clamp(core.FiniteOr(freq, minCutoffHz), minCutoffHz, maxCutoffRel*sampleRate)
}

func clampQ(q float64) float64 {
	return math.Max(core.FiniteOr(q, minQ), minQ)
}

func clampGain(gain float64) float64 {
	return math.Max(core.FiniteOr(gain, 1), minGain)
}
