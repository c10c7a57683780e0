package lead

import (
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// Text renders a resolved value for display, case-insensitive comparison and
// substring matching. Numbers format without a trailing ".0" so "85" matches
// a score of 85.
func Text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case time.Time:
		return t.Format(time.RFC3339)
	default:
		return ""
	}
}

// Numeric coerces a resolved value to a float for comparison. Strings parse
// best-effort; anything unparsable reports false and the caller decides what
// an undefined number means in its context.
func Numeric(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case bool:
		if t {
			return 1, true
		}
		return 0, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// Instant coerces a resolved value to a timestamp. String values go through
// the lenient parser so ISO dates, slash dates and RFC layouts all compare.
func Instant(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		trimmed := strings.TrimSpace(t)
		if trimmed == "" {
			return time.Time{}, false
		}
		parsed, err := dateparse.ParseAny(trimmed)
		if err != nil {
			return time.Time{}, false
		}
		return parsed, true
	default:
		return time.Time{}, false
	}
}

// Truthy coerces a resolved value to a boolean. Unresolved and unknown
// values are false.
func Truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "yes", "y", "1":
			return true
		}
		return false
	case float64:
		return t != 0
	case int:
		return t != 0
	case int64:
		return t != 0
	default:
		return false
	}
}
