// Package dealpricing turns deals and their product associations into
// display-ready products. Everything here is pure: no I/O, no shared state,
// and malformed input degrades to a fallback instead of an error.
package dealpricing

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	amountNoise = regexp.MustCompile(`[^0-9.,\-]`)
	floatPrefix = regexp.MustCompile(`^-?(\d+\.?\d*|\.\d+)`)
	intPrefix   = regexp.MustCompile(`^[+-]?\d+`)
)

// ParseAmount normalizes a price or quantity that may arrive as a number,
// numeric text ("Rp 1,250.50") or driver bytes. It returns nil when no finite
// number can be read.
func ParseAmount(v any) *float64 {
	switch x := v.(type) {
	case nil:
		return nil
	case string:
		return parseAmountString(x)
	case []byte:
		return parseAmountString(string(x))
	case json.Number:
		return parseAmountString(x.String())
	case *string:
		if x == nil {
			return nil
		}
		return parseAmountString(*x)
	case *float64:
		if x == nil {
			return nil
		}
		return finite(*x)
	case *int:
		if x == nil {
			return nil
		}
		return finite(float64(*x))
	}
	if f, ok := numeric(v); ok {
		return finite(f)
	}
	return nil
}

// ParseInteger reads a whole number. Numbers are truncated toward zero and
// text follows parseInt rules: optional leading space and sign, then digits.
func ParseInteger(v any) *int {
	switch x := v.(type) {
	case nil:
		return nil
	case string:
		return parseIntegerString(x)
	case []byte:
		return parseIntegerString(string(x))
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return parseIntegerString(x.String())
		}
		return truncate(f)
	case *string:
		if x == nil {
			return nil
		}
		return parseIntegerString(*x)
	case *int:
		if x == nil {
			return nil
		}
		n := *x
		return &n
	case *float64:
		if x == nil {
			return nil
		}
		return truncate(*x)
	}
	if f, ok := numeric(v); ok {
		return truncate(f)
	}
	return nil
}

func parseAmountString(s string) *float64 {
	cleaned := strings.ReplaceAll(amountNoise.ReplaceAllString(s, ""), ",", "")
	m := floatPrefix.FindString(cleaned)
	if m == "" {
		return nil
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return nil
	}
	return finite(f)
}

func parseIntegerString(s string) *int {
	if s == "" {
		return nil
	}
	m := intPrefix.FindString(strings.TrimLeft(s, " \t\n\r\v\f"))
	if m == "" {
		return nil
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return nil
	}
	return &n
}

func numeric(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	}
	return 0, false
}

func finite(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func truncate(f float64) *int {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	t := math.Trunc(f)
	if t > math.MaxInt64 || t < math.MinInt64 {
		return nil
	}
	n := int(t)
	return &n
}
