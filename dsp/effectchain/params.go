package effectchain

import (
	"math"
	"strings"
)

// Params holds the parsed parameters for a single chain node.
type Params struct {
	ID       string
	Type     string
	Bypassed bool
	Num      map[string]float64
	Str      map[string]string
}

// GetNum safely extracts a numeric parameter, returning def if missing or invalid.
func (p Params) GetNum(key string, def float64) float64 {
	if p.Num == nil {
		return def
	}

	v, ok := p.Num[key]
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return def
	}

	return v
}

// GetInt extracts a numeric parameter rounded to the nearest integer.
func (p Params) GetInt(key string, def int) int {
	v := p.GetNum(key, math.NaN())
	if math.IsNaN(v) {
		return def
	}

	return int(math.Round(v))
}

// GetBool extracts a boolean parameter. JSON booleans are stored as 1 and 0;
// any non-zero number is true.
func (p Params) GetBool(key string, def bool) bool {
	v := p.GetNum(key, math.NaN())
	if math.IsNaN(v) {
		return def
	}

	return v != 0
}

// GetStr extracts a string parameter, trimmed and lower-cased. Missing or
// blank values return def.
func (p Params) GetStr(key, def string) string {
	if p.Str == nil {
		return def
	}

	v := strings.ToLower(strings.TrimSpace(p.Str[key]))
	if v == "" {
		return def
	}

	return v
}

// Has reports whether key is present as a number or a string.
func (p Params) Has(key string) bool {
	if _, ok := p.Num[key]; ok {
		return true
	}
	_, ok := p.Str[key]
	return ok
}
