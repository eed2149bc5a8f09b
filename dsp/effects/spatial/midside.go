package spatial

import (
	"fmt"
	"math"

	"github.com/GeoffreyPlitt/debuggo"
	vecmath "github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-fx/dsp/core"
	"github.com/cwbudde/algo-fx/dsp/effects"
)

var midSideDebug = debuggo.Debug("fx:midside")

const (
	defaultMidMix  = 1.0
	defaultSideMix = 1.0

	maxMixGain = 2.0
)

// Mode selects how a MidSideMixer interprets its controls.
type Mode int

const (
	// ModeMidSide scales the mid (sum) and side (difference) signals.
	ModeMidSide Mode = iota
	// ModeLeftRight folds one channel into the other with a constant-power
	// balance control.
	ModeLeftRight
)

// String returns the mode identifier.
func (m Mode) String() string {
	switch m {
	case ModeMidSide:
		return "midside"
	case ModeLeftRight:
		return "leftright"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode maps "midside" or "leftright" to a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "midside", "ms":
		return ModeMidSide, nil
	case "leftright", "lr":
		return ModeLeftRight, nil
	}
	return 0, fmt.Errorf("midside mixer: unknown mode %q", s)
}

// MidSideParams holds the mixer controls. MidMix and SideMix apply in
// ModeMidSide; LeftRightMix applies in ModeLeftRight.
type MidSideParams struct {
	Mode         Mode
	MidMix       float64 // [0, 2]
	SideMix      float64 // [0, 2]
	LeftRightMix float64 // [-1, 1], negative folds right into left
}

// DefaultMidSideParams returns unity mid/side settings.
func DefaultMidSideParams() MidSideParams {
	return MidSideParams{
		Mode:    ModeMidSide,
		MidMix:  defaultMidMix,
		SideMix: defaultSideMix,
	}
}

// MidSideOption mutates mixer construction parameters.
type MidSideOption func(*MidSideParams) error

// WithMidSideParams sets the initial controls. Values are validated.
func WithMidSideParams(p MidSideParams) MidSideOption {
	return func(cfg *MidSideParams) error {
		if p.Mode != ModeMidSide && p.Mode != ModeLeftRight {
			return fmt.Errorf("midside mixer mode is invalid: %d", int(p.Mode))
		}
		if err := core.ValidateRange("midside mixer mid mix", p.MidMix, 0, maxMixGain); err != nil {
			return err
		}
		if err := core.ValidateRange("midside mixer side mix", p.SideMix, 0, maxMixGain); err != nil {
			return err
		}
		if err := core.ValidateRange("midside mixer left/right mix", p.LeftRightMix, -1, 1); err != nil {
			return err
		}
		*cfg = p
		return nil
	}
}

// MidSideMixer is a memoryless stereo matrix. Both modes reduce to
//
//	L' = ll*L + rl*R
//	R' = lr*L + rr*R
//
// With MidMix = SideMix = 1 or LeftRightMix = 0 the mixer is the identity.
//
// This processor is stereo, real-time safe, and not thread-safe.
type MidSideMixer struct {
	sampleRate float64
	params     MidSideParams

	ll, rl, lr, rr float64

	guard    effects.FrameGuard
	lastLeft float64

	scratch [2][core.DefaultBlockSize]float64
}

// NewMidSideMixer creates a mixer with DefaultMidSideParams and optional
// overrides. The sample rate is only validated and reported.
func NewMidSideMixer(sampleRate float64, opts ...MidSideOption) (*MidSideMixer, error) {
	if err := core.ValidateSampleRate("midside mixer", sampleRate); err != nil {
		return nil, err
	}

	params := DefaultMidSideParams()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&params); err != nil {
			return nil, err
		}
	}

	m := &MidSideMixer{sampleRate: sampleRate}
	m.SetParams(params)
	midSideDebug("created: mode=%s", params.Mode)

	return m, nil
}

// Initialize records sampleRate. The mixer has no rate-dependent state.
func (m *MidSideMixer) Initialize(sampleRate float64) error {
	if err := core.ValidateSampleRate("midside mixer", sampleRate); err != nil {
		return err
	}
	m.sampleRate = sampleRate
	return nil
}

// SetParams clamps p into range and recomputes the matrix. An invalid mode
// keeps the current one.
func (m *MidSideMixer) SetParams(p MidSideParams) {
	old := m.params
	if p.Mode != ModeMidSide && p.Mode != ModeLeftRight {
		p.Mode = old.Mode
	}
	p.MidMix = core.Clamp(core.FiniteOr(p.MidMix, old.MidMix), 0, maxMixGain)
	p.SideMix = core.Clamp(core.FiniteOr(p.SideMix, old.SideMix), 0, maxMixGain)
	p.LeftRightMix = core.Clamp(core.FiniteOr(p.LeftRightMix, old.LeftRightMix), -1, 1)
	m.params = p

	switch p.Mode {
	case ModeMidSide:
		sum := (p.MidMix + p.SideMix) / 2
		diff := (p.MidMix - p.SideMix) / 2
		m.ll, m.rl = sum, diff
		m.lr, m.rr = diff, sum
	case ModeLeftRight:
		sin, cos := math.Sincos(math.Abs(p.LeftRightMix) * math.Pi / 2)
		switch {
		case p.LeftRightMix < 0:
			m.ll, m.rl = 1, sin
			m.lr, m.rr = 0, cos
		case p.LeftRightMix > 0:
			m.ll, m.rl = cos, 0
			m.lr, m.rr = sin, 1
		default:
			m.ll, m.rl = 1, 0
			m.lr, m.rr = 0, 1
		}
	}
}

// Params returns the applied (clamped) controls.
func (m *MidSideMixer) Params() MidSideParams { return m.params }

// SampleRate returns the sample rate in Hz.
func (m *MidSideMixer) SampleRate() float64 { return m.sampleRate }

// Matrix returns the gains (ll, rl, lr, rr) described on MidSideMixer.
func (m *MidSideMixer) Matrix() (ll, rl, lr, rr float64) {
	return m.ll, m.rl, m.lr, m.rr
}

// ProcessFrame processes one stereo frame.
func (m *MidSideMixer) ProcessFrame(l, r float64) (float64, float64) {
	return m.ll*l + m.rl*r, m.lr*l + m.rr*r
}

// ProcessLeft returns the left output of a frame and remembers x for the
// following ProcessRight. The right input is not known yet, so the rl*R
// term is omitted; use ProcessFrame when both channels are available.
func (m *MidSideMixer) ProcessLeft(x float64) float64 {
	m.guard.Left()
	m.lastLeft = x
	return m.ll * x
}

// ProcessRight returns the right output of the frame opened by ProcessLeft,
// including the lr*L term from the remembered left input. Called out of
// order it falls back to rr*x.
func (m *MidSideMixer) ProcessRight(x float64) float64 {
	if !m.guard.Right() {
		return m.rr * x
	}
	return m.lr*m.lastLeft + m.rr*x
}

// OrderViolations returns the number of out-of-order channel calls seen.
func (m *MidSideMixer) OrderViolations() uint64 { return m.guard.OrderViolations() }

// ProcessStereoInPlace applies the matrix to paired buffers in place,
// DefaultBlockSize frames at a time.
func (m *MidSideMixer) ProcessStereoInPlace(left, right []float64) error {
	if err := core.CheckStereo("midside mixer", left, right); err != nil {
		return err
	}

	for start := 0; start < len(left); start += core.DefaultBlockSize {
		end := min(start+core.DefaultBlockSize, len(left))
		l, r := left[start:end], right[start:end]
		fromR := m.scratch[0][:len(l)]
		fromL := m.scratch[1][:len(l)]

		vecmath.ScaleBlock(fromR, r, m.rl)
		vecmath.ScaleBlock(fromL, l, m.lr)
		vecmath.ScaleBlock(l, l, m.ll)
		vecmath.AddBlockInPlace(l, fromR)
		vecmath.ScaleBlock(r, r, m.rr)
		vecmath.AddBlockInPlace(r, fromL)
	}

	return nil
}

// Reset forgets a half-processed per-channel frame.
func (m *MidSideMixer) Reset() {
	m.guard.Reset()
	m.lastLeft = 0
}
