// Package fxdebug holds the fail-fast checks that are compiled into debug
// builds only. Build with -tags fxdebug to turn contract violations such as
// unsized delay lines or out-of-order channel calls into panics.
package fxdebug

import "fmt"

// Assertf panics with a formatted message when cond is false and the
// package was built with the fxdebug tag. Release builds return immediately.
func Assertf(cond bool, format string, args ...any) {
	if !Enabled || cond {
		return
	}

	panic(fmt.Sprintf("fxdebug: "+format, args...))
}
