package plan

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Pick returns the value of the first alias present in m with a non-null value.
func Pick(m map[string]any, aliases ...string) any {
	for _, k := range aliases {
		if v, ok := m[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

// CoerceInt converts v to an integer. Integral numbers and numeric strings
// are accepted; fractional values are truncated. Empty strings, null, NaN,
// infinities, values outside the 32-bit range, booleans and anything
// non-numeric yield nil.
func CoerceInt(v any) *int {
	var f float64
	switch n := v.(type) {
	case nil, bool:
		return nil
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case float64:
		f = n
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return nil
		}
		f = parsed
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return nil
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f > math.MaxInt32 || f < math.MinInt32 {
		return nil
	}
	i := int(math.Trunc(f))
	return &i
}

// CoerceString converts a scalar to its string form. Strings are trimmed;
// an empty result, null, arrays and objects yield nil.
func CoerceString(v any) *string {
	s, ok := scalarString(v)
	if !ok {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// scalarString stringifies strings, numbers and booleans.
func scalarString(v any) (string, bool) {
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
		return strconv.FormatBool(t), true
	}
	return "", false
}
