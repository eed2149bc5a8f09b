package delay

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-fx/internal/fxdebug"
	"github.com/cwbudde/algo-fx/internal/testutil"
)

func TestConstructorValidation(t *testing.T) {
	if _, err := NewFeedbackLine(0, 44100, 0); err == nil {
		t.Fatal("expected error for zero max delay")
	}
	if _, err := NewFractionalLine(1, -1); err == nil {
		t.Fatal("expected error for negative sample rate")
	}
	if _, err := NewAllpass(math.NaN(), 44100, 10, 0.5); err == nil {
		t.Fatal("expected error for NaN max delay")
	}
	for _, sr := range []float64{0, math.Inf(1)} {
		if _, err := NewAllpass(0.01, sr, 10, 0.5); err == nil {
			t.Fatalf("expected allpass error for sample rate %v", sr)
		}
	}
}

func TestAllpassSizesBothChannels(t *testing.T) {
	a, err := NewAllpass(0.02, 1000, 5, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	if len(a.left.x) != 22 || len(a.right.x) != len(a.left.x) {
		t.Fatalf("channel sizes: left=%d right=%d want 22", len(a.left.x), len(a.right.x))
	}
}

func TestResizeClearsHistory(t *testing.T) {
	l, err := NewFeedbackLine(0.1, 100, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 20; i++ {
		l.Process(1, 3)
	}

	for _, sr := range []float64{50, 200} {
		l.Resize(sr)
		for i := 0; i < 5; i++ {
			if v := l.Process(0, 3); v != 0 {
				t.Fatalf("sample %d after resize to %g = %g, want 0", i, sr, v)
			}
		}
	}
}

func TestLineSizing(t *testing.T) {
	l, err := NewFractionalLine(0.015, 48000)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := l.Len(), 720+2; got != want {
		t.Fatalf("Len = %d, want %d", got, want)
	}

	l.Resize(96000)
	if got, want := l.Len(), 1440+2; got != want {
		t.Fatalf("Len after resize = %d, want %d", got, want)
	}
}

func TestFractionalIntegerDelayIsExact(t *testing.T) {
	const d = 7
	l, err := NewFractionalLine(0.01, 1000)
	if err != nil {
		t.Fatal(err)
	}

	in := testutil.Impulse(32, 0)
	for i, x := range in {
		got := l.Process(x, d)
		want := 0.0
		if i == d {
			want = 1
		}
		if got != want {
			t.Fatalf("sample %d mismatch: got=%g want=%g", i, got, want)
		}
	}
}

func TestFractionalInterpolates(t *testing.T) {
	l, err := NewFractionalLine(0.01, 1000)
	if err != nil {
		t.Fatal(err)
	}

	out := make([]float64, 8)
	for i, x := range testutil.Impulse(8, 0) {
		out[i] = l.Process(x, 2.25)
	}
	want := []float64{0, 0, 0.75, 0.25, 0, 0, 0, 0}
	testutil.RequireSliceNearlyEqual(t, out, want, 1e-12)
}

func TestFractionalClampsDelay(t *testing.T) {
	l, err := NewFractionalLine(0.004, 1000)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 20; i++ {
		v := l.Process(1, 1e9)
		if math.IsNaN(v) {
			t.Fatalf("sample %d is NaN", i)
		}
		l.Process(1, -5)
	}
}

func TestFeedbackLineEchoes(t *testing.T) {
	const (
		d  = 4
		fb = 0.5
	)
	l, err := NewFeedbackLine(0.1, 100, fb)
	if err != nil {
		t.Fatal(err)
	}

	out := make([]float64, 20)
	for i, x := range testutil.Impulse(len(out), 0) {
		out[i] = l.Process(x, d)
	}

	want := make([]float64, len(out))
	want[d] = 1
	want[2*d+1] = fb
	want[3*d+2] = fb * fb
	testutil.RequireSliceNearlyEqual(t, out, want, 1e-12)
}

func TestFeedbackLineClampsFeedback(t *testing.T) {
	l, err := NewFeedbackLine(0.1, 100, 3)
	if err != nil {
		t.Fatal(err)
	}
	if l.Feedback() != 1 {
		t.Fatalf("feedback = %g, want 1", l.Feedback())
	}
	l.SetFeedback(-2)
	if l.Feedback() != 0 {
		t.Fatalf("feedback = %g, want 0", l.Feedback())
	}
}

func TestResetClearsHistory(t *testing.T) {
	l, err := NewFeedbackLine(0.1, 100, 0.9)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		l.Process(1, 2)
	}
	l.Reset()
	for i := 0; i < 5; i++ {
		if v := l.Process(0, 2); v != 0 {
			t.Fatalf("sample %d after reset = %g, want 0", i, v)
		}
	}
}

func TestAllpassImpulse(t *testing.T) {
	const (
		d = 3
		g = 0.5
	)
	a, err := NewAllpass(0.1, 100, d, g)
	if err != nil {
		t.Fatal(err)
	}

	out := make([]float64, 10)
	for i, x := range testutil.Impulse(len(out), 0) {
		out[i] = a.ProcessLeft(x)
	}

	// h(0) = -g, h(d) = 1 - g^2, h(2d) = g(1 - g^2)
	want := make([]float64, len(out))
	want[0] = -g
	want[d] = 1 - g*g
	want[2*d] = g * (1 - g*g)
	want[3*d] = g * g * (1 - g*g)
	testutil.RequireSliceNearlyEqual(t, out, want, 1e-12)
}

func TestAllpassPreservesEnergy(t *testing.T) {
	a, err := NewAllpass(0.05, 1000, 7, 0.7)
	if err != nil {
		t.Fatal(err)
	}

	energy := 0.0
	for _, x := range testutil.Impulse(4000, 0) {
		y := a.ProcessRight(x)
		energy += y * y
	}
	if math.Abs(energy-1) > 1e-6 {
		t.Fatalf("impulse energy = %g, want 1", energy)
	}
}

func TestAllpassChannelsIndependent(t *testing.T) {
	a, err := NewAllpass(0.05, 1000, 2, 0.3)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		_, r := a.ProcessFrame(1, 0)
		if r != 0 {
			t.Fatalf("frame %d right = %g, want 0", i, r)
		}
	}
}

func TestUnsizedLineIsSilent(t *testing.T) {
	if fxdebug.Enabled {
		t.Skip("unsized lines panic in debug builds")
	}
	var l FractionalLine
	if v := l.Process(1, 3); v != 0 {
		t.Fatalf("unsized line returned %g, want 0", v)
	}
	var f FeedbackLine
	if v := f.Process(1, 3); v != 0 {
		t.Fatalf("unsized line returned %g, want 0", v)
	}
}

func BenchmarkFractionalLine(b *testing.B) {
	l, err := NewFractionalLine(0.05, 48000)
	if err != nil {
		b.Fatal(err)
	}
	x := 0.0
	for i := 0; i < b.N; i++ {
		x = l.Process(x*0.5+1, 123.4)
	}
}
