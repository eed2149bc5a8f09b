// Command fxinfo prints frequency responses of filters, effect engines and
// effect chains.
//
// Usage:
//
//	fxinfo [flags]
//
// Without -engine or -chain it prints the analytic response of a single
// biquad section. With -engine or -chain it drives a sine sweep through the
// processor and reports the measured level per channel.
//
// Examples:
//
//	fxinfo -type lp2 -cutoff 1000 -q 0.707
//	fxinfo -type peak -cutoff 3000 -q 2 -gain 2 -freqs 1000,3000,6000
//	fxinfo -engine disperser -rate 44100
//	fxinfo -chain chain.json -points 16 -block 128
//	fxinfo -list
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-fx/dsp/core"
	"github.com/cwbudde/algo-fx/dsp/effectchain"
	"github.com/cwbudde/algo-fx/dsp/filter/biquad"
	"github.com/cwbudde/algo-fx/measure/response"
)

type options struct {
	filterType string
	cutoff     float64
	q          float64
	gain       float64
	sampleRate float64
	blockSize  int
	freqs      string
	points     int
	fftSize    int
	engine     string
	chain      string
	list       bool
	verbose    bool
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		logrus.WithError(err).Error("fxinfo failed")
		os.Exit(1)
	}
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options

	fs := flag.NewFlagSet("fxinfo", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.filterType, "type", "lp2", "biquad type ("+strings.Join(typeNames(), ", ")+")")
	fs.Float64Var(&o.cutoff, "cutoff", 1000, "biquad cutoff or centre frequency in Hz")
	fs.Float64Var(&o.q, "q", 0.707, "biquad quality factor")
	fs.Float64Var(&o.gain, "gain", 1, "linear gain for shelf and peak types")
	fs.Float64Var(&o.sampleRate, "rate", 48000, "sample rate in Hz")
	fs.IntVar(&o.blockSize, "block", core.DefaultBlockSize, "block size used by blended chain nodes")
	fs.StringVar(&o.freqs, "freqs", "", "comma separated frequencies in Hz (default: log spaced 20 Hz - 20 kHz)")
	fs.IntVar(&o.points, "points", 10, "number of log spaced frequencies when -freqs is empty")
	fs.IntVar(&o.fftSize, "fft", 8192, "FFT size for measured responses (power of two)")
	fs.StringVar(&o.engine, "engine", "", "measure a built-in engine with default parameters")
	fs.StringVar(&o.chain, "chain", "", "measure the effect chain described by a JSON file")
	fs.BoolVar(&o.list, "list", false, "list biquad types and engine names")
	fs.BoolVar(&o.verbose, "v", false, "verbose diagnostics")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: fxinfo [flags]\n\n")
		fmt.Fprintf(stderr, "Prints analytic biquad responses or measured engine and chain responses.\n\n")
		fmt.Fprintf(stderr, "Flags:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  fxinfo -type hp2 -cutoff 200\n")
		fmt.Fprintf(stderr, "  fxinfo -engine phaser -freqs 100,1000,10000\n")
		fmt.Fprintf(stderr, "  fxinfo -chain chain.json\n")
	}

	if err := fs.Parse(args); err != nil {
		return o, err
	}

	if o.engine != "" && o.chain != "" {
		return o, errors.New("-engine and -chain are mutually exclusive")
	}
	if err := core.ValidateSampleRate("fxinfo", o.sampleRate); err != nil {
		return o, err
	}
	if o.blockSize <= 0 {
		return o, fmt.Errorf("-block must be > 0: %d", o.blockSize)
	}

	return o, nil
}

func run(args []string, stdout, stderr io.Writer) error {
	o, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	log := logrus.New()
	log.SetOutput(stderr)
	if o.verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	if o.list {
		return printList(stdout)
	}

	freqs, err := frequencies(o)
	if err != nil {
		return err
	}

	log.WithFields(logrus.Fields{
		"sampleRate":  o.sampleRate,
		"frequencies": len(freqs),
	}).Debug("resolved frequencies")

	switch {
	case o.chain != "":
		data, err := os.ReadFile(o.chain)
		if err != nil {
			return fmt.Errorf("read chain: %w", err)
		}
		return measureChain(stdout, log, o, freqs, func(c *effectchain.Chain) error {
			return c.LoadJSON(data)
		})
	case o.engine != "":
		name := strings.ToLower(strings.TrimSpace(o.engine))
		return measureChain(stdout, log, o, freqs, func(c *effectchain.Chain) error {
			return c.Load([]effectchain.Params{{ID: name, Type: name}})
		})
	default:
		return printAnalytic(stdout, log, o, freqs)
	}
}

func typeNames() []string {
	types := biquad.Types()
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = t.String()
	}
	return names
}

func printList(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "filter types: %s\n", strings.Join(typeNames(), " ")); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "engines: %s\n", strings.Join(effectchain.DefaultRegistry().Types(), " "))
	return err
}

func frequencies(o options) ([]float64, error) {
	if strings.TrimSpace(o.freqs) == "" {
		hi := math.Min(20000, o.sampleRate*0.45)
		freqs := response.LogFrequencies(20, hi, o.points)
		if freqs == nil {
			return nil, fmt.Errorf("cannot build %d frequencies below %g Hz", o.points, hi)
		}
		return freqs, nil
	}

	var freqs []float64
	for _, field := range strings.Split(o.freqs, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		f, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid frequency %q: %w", field, err)
		}
		if f <= 0 || f >= o.sampleRate/2 {
			return nil, fmt.Errorf("frequency must be in (0, %g): %g", o.sampleRate/2, f)
		}
		freqs = append(freqs, f)
	}
	if len(freqs) == 0 {
		return nil, errors.New("no frequencies given")
	}
	return freqs, nil
}

func printAnalytic(w io.Writer, log *logrus.Logger, o options, freqs []float64) error {
	t, err := biquad.ParseType(o.filterType)
	if err != nil {
		return err
	}
	if !(o.sampleRate > 0) || !(o.cutoff > 0) || o.cutoff >= o.sampleRate/2 {
		return fmt.Errorf("cutoff must be in (0, %g): %g", o.sampleRate/2, o.cutoff)
	}

	c := biquad.Design(t, o.cutoff, o.q, o.gain, o.sampleRate)
	log.WithFields(logrus.Fields{
		"type":   t.String(),
		"cutoff": o.cutoff,
		"q":      o.q,
		"a0":     c.A0,
		"a1":     c.A1,
		"a2":     c.A2,
		"b0":     c.B0,
		"b1":     c.B1,
	}).Debug("designed biquad")

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintf(tw, "Freq [Hz]\tMagnitude [dB]\tPhase [deg]\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(tw, "---------\t--------------\t-----------\n"); err != nil {
		return err
	}
	for _, f := range freqs {
		if _, err := fmt.Fprintf(tw, "%.1f\t%.2f\t%.1f\n",
			f,
			c.MagnitudeDB(f, o.sampleRate),
			c.Phase(f, o.sampleRate)*180/math.Pi,
		); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func measureChain(w io.Writer, log *logrus.Logger, o options, freqs []float64, load func(*effectchain.Chain) error) error {
	ctx := effectchain.NewContext(core.WithSampleRate(o.sampleRate), core.WithBlockSize(o.blockSize))
	chain := effectchain.New(ctx, effectchain.DefaultRegistry())
	if err := load(chain); err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"nodes":      strings.Join(chain.IDs(), ","),
		"sampleRate": ctx.SampleRate,
		"blockSize":  ctx.BlockSize,
		"fftSize":    o.fftSize,
	}).Info("measuring chain")

	points, err := response.Measure(chain, freqs, response.Config{
		SampleRate: ctx.SampleRate,
		FFTSize:    o.fftSize,
	})
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintf(tw, "Freq [Hz]\tLeft [dB]\tRight [dB]\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(tw, "---------\t---------\t----------\n"); err != nil {
		return err
	}
	for _, p := range points {
		if _, err := fmt.Fprintf(tw, "%.1f\t%.2f\t%.2f\n", p.FreqHz, p.LeftDB, p.RightDB); err != nil {
			return err
		}
	}
	return tw.Flush()
}
