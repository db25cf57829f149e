// Package otp reads trip-planning responses from an OpenTripPlanner engine.
// Fields are read through Fragment accessors that report absence instead of
// failing, and the version-specific encodings are resolved by the adapters
// in adapters.go.
package otp

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Fragment is one decoded JSON object from an engine response.
// A nil Fragment is valid and behaves as an empty object.
type Fragment map[string]any

// AsFragment converts a decoded JSON value to a Fragment.
func AsFragment(v any) (Fragment, bool) {
	switch o := v.(type) {
	case Fragment:
		return o, true
	case map[string]any:
		return Fragment(o), true
	default:
		return nil, false
	}
}

// Has reports whether key is present with a non-null value.
func (f Fragment) Has(key string) bool {
	v, ok := f[key]
	return ok && v != nil
}

// Value returns the raw value stored under key.
func (f Fragment) Value(key string) (any, bool) {
	v, ok := f[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// String returns key as a string. Numbers are rendered in their JSON form.
func (f Fragment) String(key string) (string, bool) {
	v, ok := f.Value(key)
	if !ok {
		return "", false
	}
	return asString(v)
}

// Float returns key as a float64. Numeric strings are accepted.
func (f Fragment) Float(key string) (float64, bool) {
	v, ok := f.Value(key)
	if !ok {
		return 0, false
	}
	return asFloat(v)
}

// Int64 returns key as an int64, truncating fractional values.
func (f Fragment) Int64(key string) (int64, bool) {
	v, ok := f.Value(key)
	if !ok {
		return 0, false
	}
	if n, ok := v.(json.Number); ok {
		if i, err := n.Int64(); err == nil {
			return i, true
		}
	}
	fl, ok := asFloat(v)
	if !ok {
		return 0, false
	}
	return int64(fl), true
}

// Bool returns key as a bool. The strings "true" and "false" are accepted.
func (f Fragment) Bool(key string) (bool, bool) {
	v, ok := f.Value(key)
	if !ok {
		return false, false
	}
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(b))
		return parsed, err == nil
	default:
		return false, false
	}
}

// Object returns key as a nested Fragment.
func (f Fragment) Object(key string) (Fragment, bool) {
	v, ok := f.Value(key)
	if !ok {
		return nil, false
	}
	return AsFragment(v)
}

// Array returns key as a JSON array.
func (f Fragment) Array(key string) ([]any, bool) {
	v, ok := f.Value(key)
	if !ok {
		return nil, false
	}
	arr, ok := v.([]any)
	return arr, ok
}

// Objects returns the object elements of the array stored under key.
// Elements that are not objects are skipped.
func (f Fragment) Objects(key string) ([]Fragment, bool) {
	arr, ok := f.Array(key)
	if !ok {
		return nil, false
	}
	out := make([]Fragment, 0, len(arr))
	for _, item := range arr {
		if o, ok := AsFragment(item); ok {
			out = append(out, o)
		}
	}
	return out, true
}

// Path walks nested objects and returns the value at the last key.
func (f Fragment) Path(keys ...string) (any, bool) {
	if len(keys) == 0 {
		return nil, false
	}
	cur := f
	for _, k := range keys[:len(keys)-1] {
		next, ok := cur.Object(k)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur.Value(keys[len(keys)-1])
}

// At returns the nested object at keys, or nil when any step is missing.
func (f Fragment) At(keys ...string) Fragment {
	cur := f
	for _, k := range keys {
		next, ok := cur.Object(k)
		if !ok {
			return nil
		}
		cur = next
	}
	return cur
}

func asString(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case json.Number:
		return s.String(), true
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64), true
	case int:
		return strconv.Itoa(s), true
	case int64:
		return strconv.FormatInt(s, 10), true
	default:
		return "", false
	}
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
