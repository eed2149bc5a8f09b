package modulation

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-fx/dsp/delay"
	"github.com/cwbudde/algo-fx/dsp/effects"
	"github.com/cwbudde/algo-fx/internal/fxdebug"
	"github.com/cwbudde/algo-fx/internal/testutil"
)

const testSampleRate = 44100.0

func newTestChorus(t *testing.T, p ChorusParams, seed int64) *Chorus {
	t.Helper()
	c, err := NewChorus(testSampleRate, WithChorusParams(p), WithChorusSeed(seed))
	if err != nil {
		t.Fatalf("NewChorus() error = %v", err)
	}
	return c
}

func TestNewChorusValidation(t *testing.T) {
	if _, err := NewChorus(0); err == nil {
		t.Fatal("expected error for zero sample rate")
	}
	if _, err := NewChorus(testSampleRate, WithChorusVoices(6)); err == nil {
		t.Fatal("expected error for 6 voices")
	}

	p := DefaultChorusParams()
	p.DelayMs = 80
	if _, err := NewChorus(testSampleRate, WithChorusParams(p)); err == nil {
		t.Fatal("expected error for 80 ms delay")
	}

	p = DefaultChorusParams()
	p.Feedback = math.NaN()
	if _, err := NewChorus(testSampleRate, WithChorusParams(p)); err == nil {
		t.Fatal("expected error for NaN feedback")
	}
}

func TestChorusZeroDepthIsFixedDelay(t *testing.T) {
	p := DefaultChorusParams()
	p.DepthMs = 0
	p.DelayMs = 10
	p.Feedback = 0.3
	p.Wet = 0.6
	p.Dry = 0.4

	slow := p
	slow.RateHz = 0.05
	fast := p
	fast.RateHz = 9

	a := newTestChorus(t, slow, 1)
	b := newTestChorus(t, fast, 99)

	ref, err := delay.NewFractionalLine(chorusLineSeconds, testSampleRate)
	if err != nil {
		t.Fatal(err)
	}
	d := p.DelayMs / 1000 * testSampleRate
	reg := 0.0

	in := testutil.DeterministicNoise(4, 0.5, 2048)
	for i, x := range in {
		la, _ := a.ProcessFrame(x, x)
		lb, _ := b.ProcessFrame(x, x)

		delayed := ref.Process(x+p.Wet*p.Feedback*reg, d)
		reg = delayed
		want := effects.Mix(x, delayed, p.Dry, p.Wet)

		if diff := math.Abs(la - want); diff > 1e-12 {
			t.Fatalf("sample %d mismatch: got=%g want=%g diff=%g", i, la, want, diff)
		}
		if la != lb {
			t.Fatalf("sample %d depends on rate: %g vs %g", i, la, lb)
		}
	}
}

func TestChorusSeedIsReproducible(t *testing.T) {
	p := DefaultChorusParams()
	a := newTestChorus(t, p, 7)
	b := newTestChorus(t, p, 7)
	c := newTestChorus(t, p, 8)

	in := testutil.DeterministicSine(330, testSampleRate, 0.8, 4096)
	differs := false
	for i, x := range in {
		la, ra := a.ProcessFrame(x, x)
		lb, rb := b.ProcessFrame(x, x)
		lc, _ := c.ProcessFrame(x, x)
		if la != lb || ra != rb {
			t.Fatalf("sample %d: same seed diverged", i)
		}
		if la != lc {
			differs = true
		}
	}
	if !differs {
		t.Fatal("different seeds produced identical output")
	}
}

func TestChorusMonoMatchesChannels(t *testing.T) {
	p := DefaultChorusParams()
	p.Mono = true
	p.Feedback = 0.5
	c := newTestChorus(t, p, 3)

	for i, x := range testutil.DeterministicNoise(9, 1, 1024) {
		l, r := c.ProcessFrame(x, x)
		if l != r {
			t.Fatalf("sample %d: mono chorus split channels: %g vs %g", i, l, r)
		}
	}
}

func TestChorusStereoDecorrelates(t *testing.T) {
	c := newTestChorus(t, DefaultChorusParams(), 3)
	differs := false
	for _, x := range testutil.DeterministicSine(500, testSampleRate, 1, 4096) {
		l, r := c.ProcessFrame(x, x)
		if l != r {
			differs = true
		}
	}
	if !differs {
		t.Fatal("stereo chorus produced identical channels")
	}
}

func TestChorusSplitCallsMatchFrame(t *testing.T) {
	p := DefaultChorusParams()
	p.Feedback = 0.4
	a, err := NewChorus(testSampleRate, WithChorusParams(p), WithChorusSeed(11), WithChorusOutputHighPass(true))
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewChorus(testSampleRate, WithChorusParams(p), WithChorusSeed(11), WithChorusOutputHighPass(true))
	if err != nil {
		t.Fatal(err)
	}

	left, right := testutil.StereoNoise(5, 1, 1024)
	for i := range left {
		wl, wr := a.ProcessFrame(left[i], right[i])
		gl := b.ProcessLeft(left[i])
		gr := b.ProcessRight(right[i])
		if gl != wl || gr != wr {
			t.Fatalf("frame %d mismatch: got=(%g,%g) want=(%g,%g)", i, gl, gr, wl, wr)
		}
	}
	if b.OrderViolations() != 0 {
		t.Fatalf("violations = %d, want 0", b.OrderViolations())
	}
}

func TestChorusOrderViolationCounted(t *testing.T) {
	if fxdebug.Enabled {
		t.Skip("order violations panic in debug builds")
	}
	c := newTestChorus(t, DefaultChorusParams(), 1)
	c.ProcessRight(0)
	c.ProcessLeft(0)
	c.ProcessRight(0)
	if c.OrderViolations() != 1 {
		t.Fatalf("violations = %d, want 1", c.OrderViolations())
	}
}

func TestChorusStereoInPlaceMatchesFrame(t *testing.T) {
	p := DefaultChorusParams()
	a := newTestChorus(t, p, 21)
	b := newTestChorus(t, p, 21)

	left, right := testutil.StereoNoise(12, 1, 512)
	wantL, wantR := testutil.Clone(left), testutil.Clone(right)
	for i := range wantL {
		wantL[i], wantR[i] = a.ProcessFrame(wantL[i], wantR[i])
	}

	if err := b.ProcessStereoInPlace(left, right); err != nil {
		t.Fatal(err)
	}
	testutil.RequireSliceNearlyEqual(t, left, wantL, 0)
	testutil.RequireSliceNearlyEqual(t, right, wantR, 0)

	if err := b.ProcessStereoInPlace(left, right[:10]); err == nil {
		t.Fatal("expected length mismatch error")
	}
}

func TestChorusResetSilences(t *testing.T) {
	p := DefaultChorusParams()
	p.Feedback = 0.9
	c := newTestChorus(t, p, 2)
	for _, x := range testutil.DeterministicNoise(1, 1, 4096) {
		c.ProcessFrame(x, -x)
	}
	c.Reset()
	for i := 0; i < 4096; i++ {
		l, r := c.ProcessFrame(0, 0)
		if l != 0 || r != 0 {
			t.Fatalf("sample %d after reset: (%g, %g), want silence", i, l, r)
		}
	}
}

func TestChorusSetParamsClamps(t *testing.T) {
	c := newTestChorus(t, DefaultChorusParams(), 1)

	p := c.Params()
	p.DelayMs = 500
	p.DepthMs = -3
	p.Voices = 9
	p.Feedback = 2
	p.RateHz = math.Inf(1)
	c.SetParams(p)

	got := c.Params()
	if got.DelayMs != maxChorusDelayMs || got.DepthMs != 0 || got.Voices != MaxChorusVoices || got.Feedback != maxChorusFeedback {
		t.Fatalf("params not clamped: %+v", got)
	}
	if got.RateHz != DefaultChorusParams().RateHz {
		t.Fatalf("non-finite rate replaced last good value: %g", got.RateHz)
	}

	p.SetMix(0.25)
	if p.Wet != 0.25 || p.Dry != 0.75 {
		t.Fatalf("SetMix(0.25) = wet %g dry %g", p.Wet, p.Dry)
	}
}

func TestChorusInitialize(t *testing.T) {
	c := newTestChorus(t, DefaultChorusParams(), 1)
	if err := c.Initialize(-1); err == nil {
		t.Fatal("expected error for negative sample rate")
	}
	if err := c.Initialize(96000); err != nil {
		t.Fatal(err)
	}
	if c.SampleRate() != 96000 {
		t.Fatalf("sample rate = %g, want 96000", c.SampleRate())
	}
	out := make([]float64, 1024)
	for i, x := range testutil.DeterministicSine(220, 96000, 1, len(out)) {
		out[i], _ = c.ProcessFrame(x, x)
	}
	testutil.RequireFinite(t, out)
}

func BenchmarkChorusProcessFrame(b *testing.B) {
	c, err := NewChorus(48000, WithChorusSeed(1), WithChorusVoices(5))
	if err != nil {
		b.Fatal(err)
	}
	l, r := 0.0, 0.0
	for i := 0; i < b.N; i++ {
		l, r = c.ProcessFrame(0.5-l*0.1, 0.5-r*0.1)
	}
}
