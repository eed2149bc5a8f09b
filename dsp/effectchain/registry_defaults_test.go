package effectchain

import (
	"testing"

	"github.com/cwbudde/algo-fx/dsp/core"
	"github.com/cwbudde/algo-fx/dsp/effects/filtering"
	"github.com/cwbudde/algo-fx/dsp/effects/modulation"
	"github.com/cwbudde/algo-fx/dsp/filter/biquad"
	"github.com/cwbudde/algo-fx/internal/testutil"
)

const fullChain = `{"nodes":[
	{"id":"hp","type":"filter","params":{"type":"hp2","cutoff":80,"q":0.707}},
	{"id":"eq","type":"filter","params":{"type":"peak","cutoff":2500,"q":1.5,"gainDb":4}},
	{"id":"ch","type":"chorus","params":{"seed":7,"voices":4,"mix":0.4,"depthMs":4}},
	{"id":"fl","type":"flanger","bypassed":true,"params":{"depth":0.5}},
	{"id":"ph","type":"phaser","params":{"rateHz":0.8,"depth":0.7,"intensity":0.6,"feedback":0.3}},
	{"id":"ds","type":"disperser","params":{"frequency":1500,"amount":24,"spread":0.4,"blend":0.5}},
	{"id":"ap","type":"allpass","params":{"delayMs":3,"gain":0.6}},
	{"id":"ms","type":"midside","params":{"mid":1,"side":1.4}}
]}`

func TestDefaultRegistry(t *testing.T) {
	t.Parallel()

	expectedTypes := []string{"allpass", "chorus", "disperser", "filter", "flanger", "midside", "phaser"}

	reg := DefaultRegistry()

	got := reg.Types()
	if len(got) != len(expectedTypes) {
		t.Fatalf("Types() = %v, want %v", got, expectedTypes)
	}

	for i, effectType := range expectedTypes {
		if got[i] != effectType {
			t.Errorf("DefaultRegistry type %d = %s, want %s", i, got[i], effectType)
		}
	}
}

func TestDefaultRegistryCreatesRuntimes(t *testing.T) {
	t.Parallel()

	ctx := Context{SampleRate: 44100}
	reg := DefaultRegistry()

	for _, effectType := range reg.Types() {
		t.Run(effectType, func(t *testing.T) {
			t.Parallel()

			factory := reg.Lookup(effectType)
			if factory == nil {
				t.Fatalf("no factory for %s", effectType)
			}

			rt, err := factory(ctx, Params{Type: effectType})
			if err != nil {
				t.Fatalf("factory(%s) error = %v", effectType, err)
			}

			err = rt.Configure(ctx, Params{Type: effectType})
			if err != nil {
				t.Fatalf("Configure(%s) error = %v", effectType, err)
			}

			left, right := testutil.StereoNoise(3, 0.5, 512)

			err = rt.ProcessStereoInPlace(left, right)
			if err != nil {
				t.Fatalf("ProcessStereoInPlace(%s) error = %v", effectType, err)
			}

			testutil.RequireFinite(t, left)
			testutil.RequireFinite(t, right)
		})
	}
}

func TestDefaultRegistryMapsParams(t *testing.T) {
	t.Parallel()

	c := New(Context{SampleRate: 48000}, DefaultRegistry())

	err := c.LoadJSON([]byte(fullChain))
	if err != nil {
		t.Fatalf("LoadJSON() error = %v", err)
	}

	eq := c.Node("eq").(*filterRuntime).Params()
	if eq.Type != biquad.Peak || eq.CutoffHz != 2500 || eq.Resonance != 1.5 {
		t.Fatalf("filter params = %+v", eq)
	}

	ch := c.Node("ch").(*chorusRuntime).Params()
	if ch.Voices != 4 || ch.Wet != 0.4 || ch.DepthMs != 4 {
		t.Fatalf("chorus params = %+v", ch)
	}

	ds := c.Node("ds").(*disperserRuntime).Params()
	want := filtering.DisperserParams{FrequencyHz: 1500, Spread: 0.4, Resonance: 0.707, Amount: 24}
	if ds != want {
		t.Fatalf("disperser params = %+v, want %+v", ds, want)
	}

	ap := c.Node("ap").(*allpassRuntime)
	if ap.ap.Delay() != 144 || ap.ap.Gain() != 0.6 {
		t.Fatalf("allpass delay=%d gain=%g, want 144 0.6", ap.ap.Delay(), ap.ap.Gain())
	}

	err = c.LoadJSON([]byte(`{"nodes":[{"id":"ch","type":"chorus","params":{"rateHz":2}}]}`))
	if err != nil {
		t.Fatal(err)
	}

	ch2 := c.Node("ch").(*chorusRuntime).Params()
	wantCh := ch
	wantCh.RateHz = 2
	if ch2 != wantCh {
		t.Fatalf("partial reload: got %+v want %+v", ch2, wantCh)
	}
}

func TestDefaultRegistryFailedReloadKeepsParams(t *testing.T) {
	t.Parallel()

	docs := []string{
		`{"nodes":[{"id":"f","type":"filter","params":{"cutoff":200}},{"id":"x","type":"reverb"}]}`,
		`{"nodes":[{"id":"f","type":"filter","params":{"cutoff":200}},{"id":"ms","type":"midside","params":{"mode":"surround"}}]}`,
		`{"nodes":[{"id":"f","type":"filter","params":{"cutoff":200,"type":"bogus"}},{"id":"ms","type":"midside"}]}`,
	}

	for _, doc := range docs {
		c := New(Context{SampleRate: 48000}, DefaultRegistry())

		err := c.LoadJSON([]byte(`{"nodes":[{"id":"f","type":"filter","params":{"type":"lp2","cutoff":1000}},{"id":"ms","type":"midside","params":{"side":0.5}}]}`))
		if err != nil {
			t.Fatalf("LoadJSON() error = %v", err)
		}
		before := c.Node("f").(*filterRuntime).Params()
		msBefore := c.Node("ms").(*midSideRuntime).Params()

		if err := c.LoadJSON([]byte(doc)); err == nil {
			t.Fatalf("expected error for %s", doc)
		}

		if got := c.Node("f").(*filterRuntime).Params(); got != before {
			t.Fatalf("failed reload changed filter: got %+v want %+v", got, before)
		}
		if got := c.Node("ms").(*midSideRuntime).Params(); got != msBefore {
			t.Fatalf("failed reload changed mixer: got %+v want %+v", got, msBefore)
		}
	}
}

func TestDefaultChainBlockMatchesFrames(t *testing.T) {
	t.Parallel()

	a := New(Context{SampleRate: 48000}, DefaultRegistry())
	b := New(Context{SampleRate: 48000}, DefaultRegistry())

	for _, c := range []*Chain{a, b} {
		err := c.LoadJSON([]byte(fullChain))
		if err != nil {
			t.Fatal(err)
		}
	}

	left, right := testutil.StereoNoise(12, 0.5, 1000)
	wantL, wantR := testutil.Clone(left), testutil.Clone(right)

	for i := range wantL {
		wantL[i], wantR[i] = a.ProcessFrame(wantL[i], wantR[i])
	}

	err := b.ProcessStereoInPlace(left, right)
	if err != nil {
		t.Fatal(err)
	}

	testutil.RequireSliceNearlyEqual(t, left, wantL, 1e-9)
	testutil.RequireSliceNearlyEqual(t, right, wantR, 1e-9)
}

func TestDefaultChainBlendedBlockSizes(t *testing.T) {
	t.Parallel()

	const doc = `{"nodes":[
		{"id":"ch","type":"chorus","params":{"seed":3,"blend":0.5}},
		{"id":"ph","type":"phaser","params":{"blend":0.25}}
	]}`

	ref := New(Context{SampleRate: 48000}, DefaultRegistry())
	if err := ref.LoadJSON([]byte(doc)); err != nil {
		t.Fatal(err)
	}

	left, right := testutil.StereoNoise(50, 0.5, 7)
	wantL, wantR := testutil.Clone(left), testutil.Clone(right)
	for i := range wantL {
		wantL[i], wantR[i] = ref.ProcessFrame(wantL[i], wantR[i])
	}

	for _, blockSize := range []int{1, 7, 64, 256} {
		ctx := NewContext(core.WithSampleRate(48000), core.WithBlockSize(blockSize))
		if ctx.BlockSize != blockSize {
			t.Fatalf("NewContext block size: got=%d want=%d", ctx.BlockSize, blockSize)
		}

		c := New(ctx, DefaultRegistry())
		if err := c.LoadJSON([]byte(doc)); err != nil {
			t.Fatal(err)
		}

		l, r := testutil.Clone(left), testutil.Clone(right)
		if err := c.ProcessStereoInPlace(l, r); err != nil {
			t.Fatal(err)
		}

		testutil.RequireSliceNearlyEqual(t, l, wantL, 1e-9)
		testutil.RequireSliceNearlyEqual(t, r, wantR, 1e-9)
	}
}

func TestNewContextDefaults(t *testing.T) {
	t.Parallel()

	ctx := NewContext(core.WithSampleRate(-1), core.WithBlockSize(0))
	if ctx.SampleRate != 44100 || ctx.BlockSize != core.DefaultBlockSize {
		t.Fatalf("invalid options should keep defaults: got %+v", ctx)
	}
}

func TestDefaultRegistrySampleRateChange(t *testing.T) {
	t.Parallel()

	c := New(Context{SampleRate: 44100}, DefaultRegistry())

	err := c.LoadJSON([]byte(`{"nodes":[{"id":"ph","type":"phaser"},{"id":"fl","type":"flanger"}]}`))
	if err != nil {
		t.Fatal(err)
	}

	err = c.Initialize(96000)
	if err != nil {
		t.Fatal(err)
	}

	if sr := c.Node("ph").(*phaserRuntime).SampleRate(); sr != 96000 {
		t.Fatalf("phaser sample rate = %g, want 96000", sr)
	}
	if sr := c.Node("fl").(*flangerRuntime).SampleRate(); sr != 96000 {
		t.Fatalf("flanger sample rate = %g, want 96000", sr)
	}
	if got := c.Node("fl").(*flangerRuntime).Params(); got != modulation.DefaultFlangerParams() {
		t.Fatalf("flanger params changed by Initialize: %+v", got)
	}
}
