package biquad_test

import (
	"fmt"

	"github.com/cwbudde/algo-fx/dsp/filter/biquad"
)

func ExampleFilter_ProcessFrame() {
	f := biquad.NewFilter(48000)
	f.SetRawCoefficients(biquad.Coefficients{A0: 0.5, A1: 0.5, C0: 1})

	for i := range 3 {
		var x float64
		if i == 0 {
			x = 1
		}
		l, r := f.ProcessFrame(x, x/2)
		fmt.Printf("frame %d: %.2f %.2f\n", i, l, r)
	}
	// Output:
	// frame 0: 0.50 0.25
	// frame 1: 0.50 0.25
	// frame 2: 0.00 0.00
}

func ExampleCoefficients_MagnitudeDB() {
	c := biquad.Design(biquad.LowPass2, 1000, 0.707, 1, 48000)

	for _, freq := range []float64{100, 1000, 10000} {
		fmt.Printf("%5.0f Hz: %+.1f dB\n", freq, c.MagnitudeDB(freq, 48000))
	}
	// Output:
	//   100 Hz: -0.0 dB
	//  1000 Hz: -3.0 dB
	// 10000 Hz: -42.7 dB
}

func ExampleParseType() {
	t, err := biquad.ParseType("peak")
	fmt.Println(t, err, t.UsesGain())
	// Output:
	// peak <nil> true
}
