package docstore

import (
	"strconv"
	"strings"
)

// Field readers for loosely shaped stored documents. Records written by older
// clients mix numbers and strings freely, so every reader tolerates both.

// String returns m[key] as text. Numbers are formatted without a trailing ".0".
func String(m map[string]interface{}, key string) string {
	switch v := m[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	case bool:
		return strconv.FormatBool(v)
	}
	return ""
}

// Int returns m[key] as an int, parsing numeric strings. ok is false when the
// field is absent or not a number.
func Int(m map[string]interface{}, key string) (int, bool) {
	switch v := m[key].(type) {
	case float64:
		return int(v), true
	case int64:
		return int(v), true
	case int:
		return v, true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err == nil {
			return n, true
		}
	}
	return 0, false
}

func Bool(m map[string]interface{}, key string) bool {
	switch v := m[key].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	}
	return false
}

// Map returns the nested object at key, or nil.
func Map(m map[string]interface{}, key string) map[string]interface{} {
	if v, ok := m[key].(map[string]interface{}); ok {
		return v
	}
	return nil
}

// Strings returns a list of strings. A single string becomes a one-element
// list; objects keyed "0","1",... (how some clients stored arrays) are read
// in key order.
func Strings(m map[string]interface{}, key string) []string {
	var out []string
	switch v := m[key].(type) {
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
	case []string:
		for _, s := range v {
			if s != "" {
				out = append(out, s)
			}
		}
	case string:
		if v != "" {
			out = append(out, v)
		}
	case map[string]interface{}:
		for i := 0; ; i++ {
			s, ok := v[strconv.Itoa(i)].(string)
			if !ok {
				break
			}
			out = append(out, s)
		}
	}
	return out
}

// Maps returns a list of nested objects, accepting the same array-as-object
// shape as Strings.
func Maps(m map[string]interface{}, key string) []map[string]interface{} {
	var out []map[string]interface{}
	switch v := m[key].(type) {
	case []interface{}:
		for _, item := range v {
			if obj, ok := item.(map[string]interface{}); ok {
				out = append(out, obj)
			}
		}
	case map[string]interface{}:
		for i := 0; ; i++ {
			obj, ok := v[strconv.Itoa(i)].(map[string]interface{})
			if !ok {
				break
			}
			out = append(out, obj)
		}
	}
	return out
}
