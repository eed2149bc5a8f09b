package response

import (
	"errors"
	"fmt"
	"math"
	"math/bits"

	algofft "github.com/MeKo-Christian/algo-fft"
	vecmath "github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-fx/dsp/core"
	"github.com/cwbudde/algo-fx/dsp/effects"
)

const (
	defaultFFTSize   = 8192
	defaultAmplitude = 0.5
	minFFTSize       = 64

	// mainLobeBins is the half-width of the bins summed around a tone. A
	// Hann main lobe spans +-2 bins; one more catches most scalloping spill.
	mainLobeBins = 3
)

// ErrNoTone is returned when a tone frequency falls outside (0, Nyquist).
var ErrNoTone = errors.New("tone frequency out of range")

// Config holds measurement parameters.
type Config struct {
	SampleRate float64
	FFTSize    int     // analysis length, power of two; default 8192
	Settle     int     // frames discarded before analysis; default FFTSize
	Amplitude  float64 // test tone peak amplitude; default 0.5
}

// Point is the measured gain of both channels at one frequency.
type Point struct {
	FreqHz  float64
	LeftDB  float64
	RightDB float64
}

type forwardPlan interface {
	Forward(dst, src []complex128) error
}

// Analyzer owns the FFT plan and scratch buffers for repeated tone
// measurements. It is not thread-safe.
type Analyzer struct {
	cfg    Config
	plan   forwardPlan
	window []float64
	winPow float64

	windowed []float64
	in, bins []complex128
	re, im   []float64
	power    []float64
	left     []float64
	right    []float64
	tone     []float64
}

// NewAnalyzer validates cfg, fills in defaults and plans the FFT.
func NewAnalyzer(cfg Config) (*Analyzer, error) {
	if err := core.ValidateSampleRate("response", cfg.SampleRate); err != nil {
		return nil, err
	}

	if cfg.FFTSize == 0 {
		cfg.FFTSize = defaultFFTSize
	}

	if cfg.FFTSize < minFFTSize || bits.OnesCount(uint(cfg.FFTSize)) != 1 {
		return nil, fmt.Errorf("response fft size must be a power of two >= %d: %d", minFFTSize, cfg.FFTSize)
	}

	if cfg.Settle <= 0 {
		cfg.Settle = cfg.FFTSize
	}

	if cfg.Amplitude == 0 {
		cfg.Amplitude = defaultAmplitude
	}

	if err := core.ValidatePositive("response amplitude", cfg.Amplitude); err != nil {
		return nil, err
	}

	plan, err := algofft.NewPlan64(cfg.FFTSize)
	if err != nil {
		return nil, fmt.Errorf("response: fft plan: %w", err)
	}

	n := cfg.FFTSize
	half := n/2 + 1
	a := &Analyzer{
		cfg:      cfg,
		plan:     plan,
		window:   hann(n),
		windowed: make([]float64, n),
		in:       make([]complex128, n),
		bins:     make([]complex128, n),
		re:       make([]float64, half),
		im:       make([]float64, half),
		power:    make([]float64, half),
		left:     make([]float64, n),
		right:    make([]float64, n),
		tone:     make([]float64, cfg.Settle+n),
	}

	sq := make([]float64, n)
	vecmath.MulBlock(sq, a.window, a.window)
	for _, v := range sq {
		a.winPow += v
	}

	return a, nil
}

// Config returns the effective configuration.
func (a *Analyzer) Config() Config { return a.cfg }

// BinHz returns the FFT bin spacing.
func (a *Analyzer) BinHz() float64 { return a.cfg.SampleRate / float64(a.cfg.FFTSize) }

// ToneAmplitude estimates the peak amplitude of the tone at freqHz in the
// first FFTSize samples of signal. Shorter signals are zero padded.
func (a *Analyzer) ToneAmplitude(signal []float64, freqHz float64) (float64, error) {
	nyquist := a.cfg.SampleRate / 2
	if freqHz <= 0 || freqHz >= nyquist || !core.IsFinite(freqHz) {
		return 0, fmt.Errorf("%w: %g Hz (nyquist %g)", ErrNoTone, freqHz, nyquist)
	}

	n := a.cfg.FFTSize
	core.Zero(a.windowed)
	m := core.CopyInto(a.windowed, signal)
	vecmath.MulBlockInPlace(a.windowed[:m], a.window[:m])

	for i, v := range a.windowed {
		a.in[i] = complex(v, 0)
	}

	if err := a.plan.Forward(a.bins, a.in); err != nil {
		return 0, fmt.Errorf("response: fft: %w", err)
	}

	for i := range a.re {
		a.re[i] = real(a.bins[i])
		a.im[i] = imag(a.bins[i])
	}
	vecmath.Power(a.power, a.re, a.im)

	centre := int(math.Round(freqHz / a.BinHz()))
	lo := max(centre-mainLobeBins, 1)
	hi := min(centre+mainLobeBins, len(a.power)-1)

	energy := 0.0
	for k := lo; k <= hi; k++ {
		energy += a.power[k]
	}

	// Parseval: a sine of amplitude A leaves N*A^2*sum(w^2)/4 in the
	// positive-frequency half.
	return math.Sqrt(4 * energy / (float64(n) * a.winPow)), nil
}

// ToneLevelDB is ToneAmplitude in dB relative to a full-scale (amplitude 1)
// sine.
func (a *Analyzer) ToneLevelDB(signal []float64, freqHz float64) (float64, error) {
	amp, err := a.ToneAmplitude(signal, freqHz)
	if err != nil {
		return 0, err
	}

	return core.LinearToDB(amp), nil
}

// Measure drives proc with an identical sine on both channels at each
// frequency and returns the output level relative to the input. Engines
// implementing Reset are reset before every tone.
func (a *Analyzer) Measure(proc effects.StereoProcessor, freqs []float64) ([]Point, error) {
	points := make([]Point, 0, len(freqs))
	for _, f := range freqs {
		p, err := a.measureTone(proc, f)
		if err != nil {
			return points, err
		}
		points = append(points, p)
	}

	return points, nil
}

type resetter interface {
	Reset()
}

func (a *Analyzer) measureTone(proc effects.StereoProcessor, freqHz float64) (Point, error) {
	if freqHz <= 0 || freqHz >= a.cfg.SampleRate/2 || !core.IsFinite(freqHz) {
		return Point{}, fmt.Errorf("%w: %g Hz", ErrNoTone, freqHz)
	}

	if r, ok := proc.(resetter); ok {
		r.Reset()
	}

	w := 2 * math.Pi * freqHz / a.cfg.SampleRate
	for i := range a.tone {
		a.tone[i] = a.cfg.Amplitude * math.Sin(w*float64(i))
	}

	settle := a.cfg.Settle
	for i := 0; i < settle; i++ {
		proc.ProcessFrame(a.tone[i], a.tone[i])
	}

	for i := range a.left {
		x := a.tone[settle+i]
		a.left[i], a.right[i] = proc.ProcessFrame(x, x)
	}

	ref, err := a.ToneAmplitude(a.tone[settle:], freqHz)
	if err != nil {
		return Point{}, err
	}

	l, err := a.ToneAmplitude(a.left, freqHz)
	if err != nil {
		return Point{}, err
	}

	r, err := a.ToneAmplitude(a.right, freqHz)
	if err != nil {
		return Point{}, err
	}

	return Point{
		FreqHz:  freqHz,
		LeftDB:  core.LinearToDB(l / ref),
		RightDB: core.LinearToDB(r / ref),
	}, nil
}

// Measure is a one-shot Analyzer.Measure.
func Measure(proc effects.StereoProcessor, freqs []float64, cfg Config) ([]Point, error) {
	a, err := NewAnalyzer(cfg)
	if err != nil {
		return nil, err
	}

	return a.Measure(proc, freqs)
}

// LogFrequencies returns n frequencies spaced logarithmically from lo to hi
// inclusive.
func LogFrequencies(lo, hi float64, n int) []float64 {
	if n <= 0 || lo <= 0 || hi <= 0 {
		return nil
	}

	if n == 1 {
		return []float64{lo}
	}

	freqs := make([]float64, n)
	ratio := math.Log(hi / lo)
	for i := range freqs {
		freqs[i] = lo * math.Exp(ratio*float64(i)/float64(n-1))
	}
	freqs[n-1] = hi

	return freqs
}

// hann returns a symmetric Hann window of length n.
func hann(n int) []float64 {
	w := make([]float64, n)
	if n == 1 {
		w[0] = 1
		return w
	}

	for i := range w {
		w[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n-1))
	}

	return w
}
