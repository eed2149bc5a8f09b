package effectchain

import "github.com/cwbudde/algo-fx/dsp/effects"

// stubRuntime is a minimal Runtime implementation for testing.
type stubRuntime struct {
	configureErr    error
	validateErr     error
	configureCalls  int
	initializeCalls int
	resetCalls      int
	lastCtx         Context
	lastParams      Params
	lastSampleRate  float64
}

func (s *stubRuntime) Configure(ctx Context, params Params) error {
	s.configureCalls++
	s.lastCtx = ctx
	s.lastParams = params

	return s.configureErr
}

func (s *stubRuntime) Validate(_ Params) error { return s.validateErr }

func (s *stubRuntime) Initialize(sampleRate float64) error {
	s.initializeCalls++
	s.lastSampleRate = sampleRate

	return nil
}

func (s *stubRuntime) ProcessLeft(x float64) float64  { return x }
func (s *stubRuntime) ProcessRight(x float64) float64 { return x }

func (s *stubRuntime) ProcessFrame(l, r float64) (float64, float64) { return l, r }

func (s *stubRuntime) ProcessStereoInPlace(_, _ []float64) error { return nil }

func (s *stubRuntime) Reset() { s.resetCalls++ }

// gainRuntime multiplies both channels by a fixed gain.
type gainRuntime struct {
	stubRuntime
	gain float64
}

func (g *gainRuntime) Configure(_ Context, params Params) error {
	g.gain = params.GetNum("gain", 1.0)

	return nil
}

func (g *gainRuntime) ProcessFrame(l, r float64) (float64, float64) {
	return l * g.gain, r * g.gain
}

func (g *gainRuntime) ProcessStereoInPlace(left, right []float64) error {
	return effects.ProcessStereoInPlace("gain", g, left, right)
}

// addRuntime adds a constant to both channels (for testing node order).
type addRuntime struct {
	stubRuntime
	value float64
}

func (a *addRuntime) Configure(_ Context, params Params) error {
	a.value = params.GetNum("value", 0)

	return nil
}

func (a *addRuntime) ProcessFrame(l, r float64) (float64, float64) {
	return l + a.value, r + a.value
}

func (a *addRuntime) ProcessStereoInPlace(left, right []float64) error {
	return effects.ProcessStereoInPlace("add", a, left, right)
}

// swapRuntime exchanges the channels.
type swapRuntime struct {
	stubRuntime
}

func (s *swapRuntime) ProcessFrame(l, r float64) (float64, float64) { return r, l }

func (s *swapRuntime) ProcessStereoInPlace(left, right []float64) error {
	return effects.ProcessStereoInPlace("swap", s, left, right)
}

// testRegistry creates a registry with simple test effects.
func testRegistry() *Registry {
	r := NewRegistry()

	r.MustRegister("stub", func(_ Context, _ Params) (Runtime, error) {
		return &stubRuntime{}, nil
	})
	r.MustRegister("gain", func(_ Context, _ Params) (Runtime, error) {
		return &gainRuntime{gain: 1.0}, nil
	})
	r.MustRegister("add", func(_ Context, _ Params) (Runtime, error) {
		return &addRuntime{}, nil
	})
	r.MustRegister("swap", func(_ Context, _ Params) (Runtime, error) {
		return &swapRuntime{}, nil
	})

	return r
}
