package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Stringify renders a recorded entry value for display. Lists join with a
// comma, byte slices decode as UTF-8, and nil becomes the empty string.
func Stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case []string:
		return strings.Join(v, ", ")
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, Stringify(item))
		}
		return strings.Join(parts, ", ")
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case bool:
		if v {
			return "1"
		}
		return ""
	default:
		return fmt.Sprint(value)
	}
}

// ToNumber coerces a recorded value to a float, reporting whether the
// conversion succeeded. Strings are trimmed of common currency noise first.
func ToNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case nil:
		return 0, false
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case string:
		cleaned := strings.TrimSpace(v)
		cleaned = strings.TrimLeft(cleaned, "$€£¥ ")
		cleaned = strings.ReplaceAll(cleaned, ",", "")
		f, err := strconv.ParseFloat(cleaned, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
