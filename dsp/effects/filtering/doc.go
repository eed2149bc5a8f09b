// Package filtering provides the static-filter engines.
//
//   - Filter: one stereo biquad of any [biquad.Type] with type-change reset
//     and an optional 25 Hz output high-pass.
//   - Disperser: a bank of up to 200 second-order allpasses spread around a
//     centre frequency, smearing transients without changing the magnitude
//     response.
package filtering
