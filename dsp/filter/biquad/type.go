package biquad

import (
	"fmt"
	"strings"
)

// Type selects a filter topology.
type Type int

const (
	LowPass1 Type = iota
	LowPass2
	HighPass1
	HighPass2
	BandPass
	Notch
	AllPass1
	AllPass2
	LowShelf
	HighShelf
	Peak
)

var typeIDs = [...]string{
	LowPass1:  "lp1",
	LowPass2:  "lp2",
	HighPass1: "hp1",
	HighPass2: "hp2",
	BandPass:  "bp",
	Notch:     "notch",
	AllPass1:  "ap1",
	AllPass2:  "ap2",
	LowShelf:  "ls",
	HighShelf: "hs",
	Peak:      "peak",
}

// Types lists every topology in declaration order.
func Types() []Type {
	out := make([]Type, len(typeIDs))
	for i := range out {
		out[i] = Type(i)
	}
	return out
}

// String returns the short identifier of t, e.g. "lp2".
func (t Type) String() string {
	if t < 0 || int(t) >= len(typeIDs) {
		return fmt.Sprintf("Type(%d)", int(t))
	}
	return typeIDs[t]
}

// Valid reports whether t names a known topology.
func (t Type) Valid() bool {
	return t >= 0 && int(t) < len(typeIDs)
}

// FirstOrder reports whether t designs a single-pole section.
func (t Type) FirstOrder() bool {
	switch t {
	case LowPass1, HighPass1, AllPass1, LowShelf, HighShelf:
		return true
	default:
		return false
	}
}

// UsesGain reports whether the gain argument affects the design.
func (t Type) UsesGain() bool {
	return t == LowShelf || t == HighShelf || t == Peak
}

// ParseType maps an identifier such as "hp2" or "notch" to its Type.
func ParseType(id string) (Type, error) {
	id = strings.ToLower(strings.TrimSpace(id))
	for i, name := range typeIDs {
		if name == id {
			return Type(i), nil
		}
	}
	return 0, fmt.Errorf("biquad: unknown filter type %q", id)
}
