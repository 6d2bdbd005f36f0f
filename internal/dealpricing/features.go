package dealpricing

import (
	"encoding/json"
	"strconv"
	"strings"
)

// ParseKeyFeatures accepts a feature list stored as a JSON array, as
// comma/newline separated prose, or already as a slice. Missing or empty
// input returns nil, which callers treat as "no data".
func ParseKeyFeatures(raw any) []string {
	switch x := raw.(type) {
	case nil:
		return nil
	case []string:
		return cleanFeatures(x)
	case []any:
		return cleanFeatures(stringsOf(x))
	case string:
		return parseFeatureText(x)
	case []byte:
		return parseFeatureText(string(x))
	case json.RawMessage:
		return parseFeatureText(string(x))
	case *string:
		if x == nil {
			return nil
		}
		return parseFeatureText(*x)
	}
	return nil
}

func parseFeatureText(s string) []string {
	if s == "" {
		return nil
	}

	var decoded any
	if err := json.Unmarshal([]byte(s), &decoded); err == nil {
		if arr, ok := decoded.([]any); ok {
			return cleanFeatures(stringsOf(arr))
		}
	}

	return cleanFeatures(strings.FieldsFunc(s, func(r rune) bool {
		return r == '\n' || r == ','
	}))
}

func stringsOf(items []any) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		switch v := it.(type) {
		case string:
			out = append(out, v)
		case float64:
			out = append(out, strconv.FormatFloat(v, 'f', -1, 64))
		case bool:
			out = append(out, strconv.FormatBool(v))
		}
	}
	return out
}

func cleanFeatures(items []string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if t := strings.TrimSpace(it); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// ParseSpecifications returns a specification object. JSON object text is
// decoded; any other text is handed back unchanged so it can still be shown
// as free text. Missing or unsupported input yields an empty object.
func ParseSpecifications(raw any) any {
	switch x := raw.(type) {
	case nil:
		return map[string]any{}
	case map[string]any:
		return x
	case map[string]string:
		return x
	case string:
		return parseSpecText(x)
	case []byte:
		return parseSpecText(string(x))
	case json.RawMessage:
		return parseSpecText(string(x))
	case *string:
		if x == nil {
			return map[string]any{}
		}
		return parseSpecText(*x)
	}
	return map[string]any{}
}

func parseSpecText(s string) any {
	if s == "" {
		return map[string]any{}
	}
	var decoded any
	if err := json.Unmarshal([]byte(s), &decoded); err == nil {
		if obj, ok := decoded.(map[string]any); ok {
			return obj
		}
	}
	return s
}
