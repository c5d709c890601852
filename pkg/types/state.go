package types

import (
	"encoding/json"
	"maps"
	"math"
	"strconv"
	"strings"
)

// ParameterState is a point-in-time snapshot of every monitored quantity on
// one component. Values are float64 for physical quantities or a short status
// string for categorical parameters (e.g. "OPEN"/"CLOSED").
type ParameterState map[string]any

// Number returns the named parameter as a float64. Numeric strings are
// parsed; non-finite and categorical values report ok=false.
func (st ParameterState) Number(key string) (float64, bool) {
	v, ok := st[key]
	if !ok {
		return 0, false
	}
	return CoerceValue(v)
}

// NumberOr returns the named parameter or def when it is absent or not a
// finite number.
func (st ParameterState) NumberOr(key string, def float64) float64 {
	if v, ok := st.Number(key); ok {
		return v
	}
	return def
}

// Status returns the named parameter as a categorical status string.
func (st ParameterState) Status(key string) (string, bool) {
	s, ok := st[key].(string)
	return s, ok
}

// StatusOr returns the named status or def when absent.
func (st ParameterState) StatusOr(key, def string) string {
	if s, ok := st.Status(key); ok && s != "" {
		return s
	}
	return def
}

// Clone returns a shallow copy. Values are scalars so a shallow copy is a
// full copy.
func (st ParameterState) Clone() ParameterState {
	if st == nil {
		return ParameterState{}
	}
	return ParameterState(maps.Clone(map[string]any(st)))
}

// Merged returns a copy of st with the overlays applied in order, later
// overlays winning on key conflicts.
func (st ParameterState) Merged(overlays ...ParameterState) ParameterState {
	out := st.Clone()
	for _, o := range overlays {
		for k, v := range o {
			out[k] = v
		}
	}
	return out
}

// CoerceValue converts a mixed-type reading into a finite float64. It accepts
// Go numbers, json.Number and numeric strings; everything else, including
// NaN and ±Inf, reports ok=false.
func CoerceValue(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	case bool:
		if n {
			f = 1
		}
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Gap records a live reading that could not be used and the reason it was
// dropped. Gaps are recovered by falling back to baseline values; they are
// logged, never returned as errors.
type Gap struct {
	Key    string
	Value  any
	Reason string
}

// CoerceReadings normalizes a raw live-readings mapping: numeric values (and
// numeric strings) become float64, non-numeric strings pass through as
// categorical statuses, and everything unusable is dropped and reported as a
// gap.
func CoerceReadings(raw map[string]any) (ParameterState, []Gap) {
	if len(raw) == 0 {
		return ParameterState{}, nil
	}
	st := make(ParameterState, len(raw))
	var gaps []Gap
	for k, v := range raw {
		if v == nil {
			gaps = append(gaps, Gap{Key: k, Value: v, Reason: "null value"})
			continue
		}
		if f, ok := CoerceValue(v); ok {
			st[k] = f
			continue
		}
		if s, ok := v.(string); ok {
			s = strings.TrimSpace(s)
			if s == "" {
				gaps = append(gaps, Gap{Key: k, Value: v, Reason: "empty string"})
				continue
			}
			// Numeric-looking strings that still failed coercion are
			// non-finite ("NaN", "Inf"), which is a gap, not a status.
			if _, err := strconv.ParseFloat(s, 64); err == nil {
				gaps = append(gaps, Gap{Key: k, Value: v, Reason: "not a finite number"})
				continue
			}
			// categorical status, e.g. "OPEN"/"CLOSED"
			st[k] = s
			continue
		}
		gaps = append(gaps, Gap{Key: k, Value: v, Reason: "not a finite number"})
	}
	return st, gaps
}
