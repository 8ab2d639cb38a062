// Package normalize maps heterogeneous upstream market-data documents
// into one canonical output schema, independent of which provider
// produced the data.
//
// Canonical records use provider-independent field names. Monetary
// values are tagged with unit "USD". Numeric fields are either a finite
// float or explicitly absent (nil pointer / dropped line item); NaN,
// Infinity and defaulted business values such as a zero market cap
// never appear in output.
package normalize

import (
	"encoding/json"
	"math"
	"strings"
)

// Provider tags the upstream source of a raw document.
type Provider string

const (
	// ProviderPolygon is Polygon.io.
	ProviderPolygon Provider = "polygon"

	// ProviderYahoo is Yahoo Finance.
	ProviderYahoo Provider = "yahoo"
)

// getString extracts a non-empty string field, nil when absent.
func getString(doc map[string]any, key string) *string {
	if v, ok := doc[key].(string); ok && v != "" {
		return &v
	}
	return nil
}

// getMap extracts a nested object field.
func getMap(doc map[string]any, key string) map[string]any {
	if v, ok := doc[key].(map[string]any); ok {
		return v
	}
	return nil
}

// getSlice extracts a nested array field.
func getSlice(doc map[string]any, key string) []any {
	if v, ok := doc[key].([]any); ok {
		return v
	}
	return nil
}

// asFloat converts a JSON value to a finite float64. Non-numeric values
// and NaN/±Inf are rejected.
func asFloat(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// getFloat extracts a finite numeric field, nil when absent or
// non-finite.
func getFloat(doc map[string]any, key string) *float64 {
	if f, ok := asFloat(doc[key]); ok {
		return &f
	}
	return nil
}

// getInt extracts an integral numeric field, nil when absent.
func getInt(doc map[string]any, key string) *int64 {
	if f, ok := asFloat(doc[key]); ok {
		n := int64(f)
		return &n
	}
	return nil
}

// round2 rounds to two decimal places.
func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// canonicalKey converts a human-readable line-item label to a
// lowercase-underscored key ("Total Revenue" -> "total_revenue").
func canonicalKey(label string) string {
	var b strings.Builder
	b.Grow(len(label))

	lastUnderscore := true // trim leading separators
	for _, r := range strings.ToLower(label) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}

	return strings.TrimSuffix(b.String(), "_")
}
