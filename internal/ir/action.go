package ir

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ActionSpec is the raw, parsed form of one action entry under a trigger.
// Params holds the kind-specific keys exactly as decoded from the item file.
type ActionSpec struct {
	Kind       string
	DelayTicks int
	Params     Params
	Conditions []Condition
}

// Params holds kind-specific action parameters.
// Values come from YAML or CUE decoding, so numbers may arrive as any of
// int, int64, uint64 or float64.
type Params map[string]any

// Float returns the parameter as float64, or def when absent or not numeric.
func (p Params) Float(key string, def float64) float64 {
	v, ok := p[key]
	if !ok {
		return def
	}
	if f, ok := toFloat(v); ok {
		return f
	}
	return def
}

// Int returns the parameter as int, truncating fractional values.
func (p Params) Int(key string, def int) int {
	v, ok := p[key]
	if !ok {
		return def
	}
	if f, ok := toFloat(v); ok {
		return int(f)
	}
	return def
}

// String returns the parameter as a string. Non-string scalars are
// formatted with fmt.
func (p Params) String(key string, def string) string {
	v, ok := p[key]
	if !ok || v == nil {
		return def
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Has reports whether key is present.
func (p Params) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// ToFloat converts a decoded scalar to float64.
// Numeric strings are accepted.
func ToFloat(v any) (float64, bool) { return toFloat(v) }

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return n, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
