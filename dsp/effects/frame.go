package effects

import "github.com/cwbudde/algo-fx/internal/fxdebug"

// FrameGuard tracks the left-then-right call order of per-channel
// processing. An engine calls Left at the start of ProcessLeft and advances
// its shared modulators only when Right returns true.
//
// Out-of-order calls are counted and never advance the modulators, so N
// frames delivered right-before-left yield N-1 advances instead of N.
// Debug builds panic on the first violation.
type FrameGuard struct {
	pending    bool
	violations uint64
}

// Left marks the start of a frame.
func (g *FrameGuard) Left() {
	if g.pending {
		g.violate("left channel processed twice without right")
	}
	g.pending = true
}

// Right closes the frame opened by Left and reports whether the shared
// modulators should advance.
func (g *FrameGuard) Right() bool {
	if !g.pending {
		g.violate("right channel processed before left")
		return false
	}
	g.pending = false
	return true
}

// Pending reports whether a left call is waiting for its right call.
func (g *FrameGuard) Pending() bool { return g.pending }

// OrderViolations returns the number of out-of-order calls seen.
func (g *FrameGuard) OrderViolations() uint64 { return g.violations }

// Reset forgets a half-processed frame. The violation count is kept.
func (g *FrameGuard) Reset() { g.pending = false }

func (g *FrameGuard) violate(msg string) {
	g.violations++
	fxdebug.Assertf(false, "%s (violation %d)", msg, g.violations)
}
