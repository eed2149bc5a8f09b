package biquad

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-fx/internal/testutil"
)

func TestFilter_PassthroughByDefault(t *testing.T) {
	f := NewFilter(sr)
	in := testutil.DeterministicNoise(1, 1, 64)
	out := testutil.Clone(in)
	f.ProcessBlockLeft(out)
	testutil.RequireSliceNearlyEqual(t, out, in, 0)
}

func TestFilter_LowpassScenario(t *testing.T) {
	f := NewFilter(sr)
	f.SetCoefficients(LowPass2, 1000, 0.707, 1)

	const settle = 200
	n := 4410

	low := testutil.DeterministicSine(100, sr, 1, n)
	f.ProcessBlockLeft(low)
	peak := testutil.PeakAbs(low[settle:])
	if math.Abs(peak-1) > 0.05 {
		t.Fatalf("100 Hz amplitude = %g, want 1 within 5%%", peak)
	}

	f.Reset()
	high := testutil.DeterministicSine(10000, sr, 1, n)
	f.ProcessBlockLeft(high)
	if db := 20 * math.Log10(testutil.PeakAbs(high[settle:])); db > -12 {
		t.Fatalf("10 kHz level = %.2f dB, want <= -12", db)
	}
}

func TestFilter_HighCutoffIsNearPassthrough(t *testing.T) {
	f := NewFilter(sr)
	f.SetCoefficients(LowPass2, 30000, 0.707, 1)

	in := testutil.DeterministicSine(100, sr, 1, 2000)
	out := testutil.Clone(in)
	f.ProcessBlockLeft(out)

	diff, err := testutil.MaxAbsDiff(out[200:], in[200:])
	if err != nil {
		t.Fatal(err)
	}
	if diff > 0.02 {
		t.Fatalf("max diff = %g, want <= 0.02", diff)
	}
}

func TestFilter_NotchSuppressesCentre(t *testing.T) {
	const fc = 1000.0
	n := 8820
	skip := 4410

	level := func(freq float64) float64 {
		f := NewFilter(sr)
		f.SetCoefficients(Notch, fc, 1, 1)
		in := testutil.DeterministicSine(freq, sr, 1, n)
		out := testutil.Clone(in)
		f.ProcessBlockRight(out)
		return testutil.RMS(out[skip:])
	}

	ratio := 20 * math.Log10(level(fc)/level(2*fc))
	if ratio > -20 {
		t.Fatalf("notch suppression = %.2f dB, want < -20", ratio)
	}
}

func TestFilter_ChannelsIndependent(t *testing.T) {
	f := NewFilter(sr)
	f.SetCoefficients(LowPass2, 500, 2, 1)

	ref := NewFilter(sr)
	ref.SetCoefficients(LowPass2, 500, 2, 1)

	in := testutil.DeterministicNoise(3, 1, 128)
	for i, x := range in {
		l, r := f.ProcessFrame(x, 0)
		if want := ref.ProcessLeft(x); l != want {
			t.Fatalf("sample %d mismatch: got=%g want=%g diff=%g", i, l, want, l-want)
		}
		if r != 0 {
			t.Fatalf("sample %d leaked into right channel: %g", i, r)
		}
	}
}

func TestFilter_ImpulseResponsePreservesState(t *testing.T) {
	f := NewFilter(sr)
	f.SetCoefficients(Peak, 2000, 1, 2)
	f.ProcessFrame(0.3, -0.1)
	l, r := f.State()

	ir := f.ImpulseResponse(64)
	if len(ir) != 64 {
		t.Fatalf("len = %d, want 64", len(ir))
	}
	if ir[0] != f.A0 {
		t.Fatalf("ir[0] = %g, want A0 = %g", ir[0], f.A0)
	}

	l2, r2 := f.State()
	if l != l2 || r != r2 {
		t.Fatalf("state changed: %+v %+v -> %+v %+v", l, r, l2, r2)
	}
	if f.ImpulseResponse(0) != nil {
		t.Fatal("ImpulseResponse(0) should be nil")
	}
}

func TestFilter_ImpulseMatchesResponse(t *testing.T) {
	f := NewFilter(sr)
	f.SetCoefficients(LowShelf, 300, 0.707, 3)

	ir := f.ImpulseResponse(8192)
	dc := 0.0
	for _, v := range ir {
		dc += v
	}
	if !almostEqual(dc, 3, 1e-6) {
		t.Fatalf("sum of impulse response = %g, want 3", dc)
	}
}

func TestFilter_FlushesDenormals(t *testing.T) {
	f := NewFilter(sr)
	f.SetCoefficients(LowPass1, 1000, 0.707, 1)
	f.ProcessLeft(1e-200)
	l, _ := f.State()
	if l.Y1 != 0 {
		t.Fatalf("Y1 = %g, want flushed to 0", l.Y1)
	}
}

func TestCascade_AllpassKeepsMagnitude(t *testing.T) {
	c := NewCascade(sr, 16)
	for i := 0; i < c.Len(); i++ {
		c.SetStage(i, AllPass2, 500+float64(i)*400, 2, 1)
	}
	c.SetActive(10)

	for _, f := range []float64{50, 1000, 8000} {
		if db := c.MagnitudeDB(f, sr); !almostEqual(db, 0, 1e-8) {
			t.Fatalf("cascade at %g Hz = %g dB, want 0", f, db)
		}
	}
}

func TestCascade_InactiveStagesUntouched(t *testing.T) {
	c := NewCascade(sr, 8)
	for i := 0; i < c.Len(); i++ {
		c.SetStage(i, AllPass2, 1000, 1, 1)
	}
	c.SetActive(8)
	for _, x := range testutil.DeterministicNoise(5, 1, 32) {
		c.ProcessFrame(x, x)
	}
	saved, _ := c.Stage(6).State()

	c.SetActive(3)
	for _, x := range testutil.DeterministicNoise(6, 1, 32) {
		c.ProcessFrame(x, x)
	}
	got, _ := c.Stage(6).State()
	if got != saved {
		t.Fatalf("inactive stage state changed: %+v -> %+v", saved, got)
	}
}

func TestCascade_SetActiveClamps(t *testing.T) {
	c := NewCascade(sr, 0)
	if c.Len() != DefaultMaxStages {
		t.Fatalf("Len = %d, want %d", c.Len(), DefaultMaxStages)
	}
	c.SetActive(500)
	if c.Active() != DefaultMaxStages {
		t.Fatalf("Active = %d, want %d", c.Active(), DefaultMaxStages)
	}
	c.SetActive(-1)
	if c.Active() != 0 {
		t.Fatalf("Active = %d, want 0", c.Active())
	}
	if y := c.ProcessLeft(0.5); y != 0.5 {
		t.Fatalf("empty cascade output = %g, want 0.5", y)
	}
}

func TestCascade_StageOutOfRange(t *testing.T) {
	c := NewCascade(sr, 4)
	for _, i := range []int{-1, 4, 100} {
		if st := c.Stage(i); st != nil {
			t.Fatalf("Stage(%d) = %p, want nil", i, st)
		}
		c.SetStage(i, LowPass2, 1000, 0.707, 1)
	}
	if st := c.Stage(3); st == nil || st.Coefficients != Passthrough() {
		t.Fatalf("Stage(3) should be an untouched pass-through section")
	}
}

func BenchmarkFilter_ProcessFrame(b *testing.B) {
	f := NewFilter(48000)
	f.SetCoefficients(LowPass2, 1000, 0.707, 1)
	l, r := 0.1, -0.1
	for i := 0; i < b.N; i++ {
		l, r = f.ProcessFrame(l+0.5, r-0.5)
	}
}
