//go:build fxdebug

package fxdebug

// Enabled reports whether fail-fast checks are active.
const Enabled = true
