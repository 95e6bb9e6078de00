package querydoc

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/kailas-cloud/fts/internal/domain"
	"github.com/kailas-cloud/fts/internal/domain/search/geo"
)

func stringValue(m map[string]any, key string) (string, error) {
	s, ok := m[key].(string)
	if !ok {
		return "", domain.InvalidArgument("%s must be a string, got %T", key, m[key])
	}
	return s, nil
}

func stringList(m map[string]any, key string) ([]string, error) {
	switch v := m[key].(type) {
	case []string:
		return v, nil
	case []any:
		out := make([]string, 0, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, domain.InvalidArgument("%s[%d] must be a string, got %T", key, i, item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, domain.InvalidArgument("%s must be a list of strings, got %T", key, m[key])
	}
}

// intValue reads an optional integer. JSON integers arrive as int64 or
// uint64 (see normalizeNumbers) and YAML integers as int or uint64.
func intValue(m map[string]any, key string) (int, bool, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return 0, false, nil
	}
	switch n := v.(type) {
	case int:
		return n, true, nil
	case int64:
		if n < math.MinInt || n > math.MaxInt {
			return 0, false, domain.InvalidArgument("%s out of range: %d", key, n)
		}
		return int(n), true, nil
	case uint64:
		if n > math.MaxInt {
			return 0, false, domain.InvalidArgument("%s out of range: %d", key, n)
		}
		return int(n), true, nil
	case float64:
		if n != math.Trunc(n) || n < math.MinInt || n > math.MaxInt {
			return 0, false, domain.InvalidArgument("%s must be an integer, got %v", key, v)
		}
		return int(n), true, nil
	default:
		return 0, false, domain.InvalidArgument("%s must be an integer, got %v", key, v)
	}
}

// uintValue reads an optional non-negative integer over the full uint64
// range, as carried by mutation tokens.
func uintValue(m map[string]any, key string) (uint64, bool, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return 0, false, nil
	}
	switch n := v.(type) {
	case uint64:
		return n, true, nil
	case int:
		if n >= 0 {
			return uint64(n), true, nil
		}
	case int64:
		if n >= 0 {
			return uint64(n), true, nil
		}
	case float64:
		// Exact up to 2^53 only.
		if n >= 0 && n == math.Trunc(n) && n <= 1<<53 {
			return uint64(n), true, nil
		}
	default:
		return 0, false, domain.InvalidArgument("%s must be an integer, got %T", key, v)
	}
	return 0, false, domain.InvalidArgument("%s must be a non-negative integer, got %v", key, v)
}

// normalizeNumbers replaces the json.Number values of a decoded document
// with int64, uint64 or float64, whichever holds the literal exactly.
func normalizeNumbers(v any) any {
	switch x := v.(type) {
	case map[string]any:
		for k, item := range x {
			x[k] = normalizeNumbers(item)
		}
		return x
	case []any:
		for i, item := range x {
			x[i] = normalizeNumbers(item)
		}
		return x
	case json.Number:
		if n, err := strconv.ParseInt(x.String(), 10, 64); err == nil {
			return n
		}
		if n, err := strconv.ParseUint(x.String(), 10, 64); err == nil {
			return n
		}
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	default:
		return v
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}

// location accepts [lon, lat] and {"lon": .., "lat": ..}.
func location(v any) (*geo.Location, error) {
	switch loc := v.(type) {
	case []any:
		if len(loc) != 2 {
			return nil, domain.InvalidArgument("location must be [lon, lat]")
		}
		lon, ok1 := toFloat(loc[0])
		lat, ok2 := toFloat(loc[1])
		if !ok1 || !ok2 {
			return nil, domain.InvalidArgument("location must be numeric")
		}
		return geo.Point(lon, lat), nil
	case map[string]any:
		lon, ok1 := toFloat(loc["lon"])
		lat, ok2 := toFloat(loc["lat"])
		if !ok1 || !ok2 {
			return nil, domain.InvalidArgument("location must have numeric lon and lat")
		}
		return geo.Point(lon, lat), nil
	default:
		return nil, domain.InvalidArgument("location has unsupported type %T", v)
	}
}
