package repository

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Loose casts over values decoded from untrusted JSON. A key that is missing or
// null takes the fallback; composite values (objects, lists) count as missing.

func field(m map[string]any, keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v, true
		}
	}

	return nil, false
}

func str(m map[string]any, fallback string, keys ...string) string {
	v, ok := field(m, keys...)
	if !ok {
		return fallback
	}

	s, ok := castString(v)
	if !ok {
		return fallback
	}

	return s
}

func castString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case bool:
		if t {
			return "1", true
		}
		return "", true
	default:
		return "", false
	}
}

func integer(m map[string]any, fallback int64, keys ...string) int64 {
	v, ok := field(m, keys...)
	if !ok {
		return fallback
	}

	return castInt(v)
}

func castInt(v any) int64 {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		f, err := t.Float64()
		if err != nil {
			return 0
		}
		return floatToInt(f)
	case float64:
		return floatToInt(t)
	case int:
		return int64(t)
	case int64:
		return t
	case bool:
		if t {
			return 1
		}
		return 0
	case string:
		return leadingInt(t)
	default:
		return 0
	}
}

func floatToInt(f float64) int64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	if f > math.MaxInt64 {
		return math.MaxInt64
	}
	if f < math.MinInt64 {
		return math.MinInt64
	}

	return int64(f)
}

// leadingInt parses the numeric prefix of s ("12abc" is 12, "abc" is 0).
func leadingInt(s string) int64 {
	s = strings.TrimSpace(s)
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return floatToInt(f)
	}

	end := 0
	for end < len(s) {
		c := s[end]
		if (c >= '0' && c <= '9') || (end == 0 && (c == '-' || c == '+')) {
			end++
			continue
		}
		break
	}

	i, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return 0
	}

	return i
}

func boolean(m map[string]any, fallback bool, keys ...string) bool {
	v, ok := field(m, keys...)
	if !ok {
		return fallback
	}

	return truthy(v)
}

func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t != "" && t != "0"
	case json.Number:
		f, err := t.Float64()
		return err == nil && f != 0
	case float64:
		return t != 0
	case int:
		return t != 0
	case int64:
		return t != 0
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return v != nil
	}
}

// number returns v as a float when it is numeric (a number or a numeric string).
func number(m map[string]any, key string) (float64, bool) {
	v, ok := field(m, key)
	if !ok {
		return 0, false
	}

	switch t := v.(type) {
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func objects(m map[string]any, key string) []map[string]any {
	list, ok := m[key].([]any)
	if !ok {
		return nil
	}

	out := make([]map[string]any, 0, len(list))
	for _, el := range list {
		if obj, ok := el.(map[string]any); ok {
			out = append(out, obj)
		}
	}

	return out
}
