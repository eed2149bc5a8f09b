package effectchain

import (
	"github.com/cwbudde/algo-fx/dsp/effects/filtering"
	"github.com/cwbudde/algo-fx/dsp/effects/modulation"
	"github.com/cwbudde/algo-fx/dsp/effects/spatial"
)

// DefaultRegistry returns a Registry pre-populated with all built-in effect runtimes.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	r.MustRegister("filter", func(ctx Context, p Params) (Runtime, error) {
		fx, err := filtering.NewFilter(ctx.SampleRate,
			filtering.WithFilterOutputHighPass(p.GetBool("outputHighPass", false)))
		if err != nil {
			return nil, err
		}

		return &filterRuntime{fx}, nil
	})
	r.MustRegister("chorus", func(ctx Context, p Params) (Runtime, error) {
		opts := []modulation.ChorusOption{
			modulation.WithChorusOutputHighPass(p.GetBool("outputHighPass", false)),
		}
		if p.Has("seed") {
			opts = append(opts, modulation.WithChorusSeed(int64(p.GetInt("seed", 0))))
		}

		fx, err := modulation.NewChorus(ctx.SampleRate, opts...)
		if err != nil {
			return nil, err
		}

		return &chorusRuntime{fx}, nil
	})
	r.MustRegister("flanger", func(ctx Context, p Params) (Runtime, error) {
		var opts []modulation.FlangerOption
		if p.Has("maxDelayMs") {
			opts = append(opts, modulation.WithFlangerMaxDelay(p.GetNum("maxDelayMs", 15)/1000))
		}

		fx, err := modulation.NewFlanger(ctx.SampleRate, opts...)
		if err != nil {
			return nil, err
		}

		return &flangerRuntime{fx}, nil
	})
	r.MustRegister("phaser", func(ctx Context, p Params) (Runtime, error) {
		fx, err := modulation.NewPhaser(ctx.SampleRate,
			modulation.WithPhaserOutputHighPass(p.GetBool("outputHighPass", false)))
		if err != nil {
			return nil, err
		}

		return &phaserRuntime{fx}, nil
	})
	r.MustRegister("disperser", func(ctx Context, _ Params) (Runtime, error) {
		fx, err := filtering.NewDisperser(ctx.SampleRate)
		if err != nil {
			return nil, err
		}

		return &disperserRuntime{fx}, nil
	})
	r.MustRegister("midside", func(ctx Context, _ Params) (Runtime, error) {
		fx, err := spatial.NewMidSideMixer(ctx.SampleRate)
		if err != nil {
			return nil, err
		}

		return &midSideRuntime{fx}, nil
	})
	r.MustRegister("allpass", func(ctx Context, p Params) (Runtime, error) {
		return newAllpassRuntime(ctx.SampleRate, p.GetNum("maxDelayMs", defaultAllpassMaxDelayMs)/1000)
	})

	return r
}
