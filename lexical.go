package flowdsl

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Duration literals are restricted to a single unit: 500ms, 2s, 1m. The
// stdlib time.ParseDuration is deliberately not used here because it accepts
// forms the grammar must reject (1h30m, 1.5s, negatives).
var durationPattern = regexp.MustCompile(`^(\d+)(ms|s|m)$`)

const (
	millisPerSecond = 1000
	millisPerMinute = 60 * millisPerSecond
)

// ParseDurationMillis converts a duration literal to integer milliseconds.
func ParseDurationMillis(literal string) (int64, error) {
	m := durationPattern.FindStringSubmatch(strings.TrimSpace(literal))
	if m == nil {
		return 0, fmt.Errorf("invalid duration %q: expected <number>(ms|s|m)", literal)
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", literal, err)
	}
	switch m[2] {
	case "s":
		return n * millisPerSecond, nil
	case "m":
		return n * millisPerMinute, nil
	default:
		return n, nil
	}
}

// FormatDurationMillis renders milliseconds using the largest unit that
// divides evenly, so ParseDurationMillis(FormatDurationMillis(d)) == d for
// every non-negative d.
func FormatDurationMillis(millis int64) string {
	switch {
	case millis > 0 && millis%millisPerMinute == 0:
		return strconv.FormatInt(millis/millisPerMinute, 10) + "m"
	case millis > 0 && millis%millisPerSecond == 0:
		return strconv.FormatInt(millis/millisPerSecond, 10) + "s"
	default:
		return strconv.FormatInt(millis, 10) + "ms"
	}
}

// ParseScalar converts a literal value token to a typed value: quoted string,
// boolean, integer, decimal, or bare token (kept as string).
func ParseScalar(token string) any {
	token = strings.TrimSpace(token)
	if len(token) >= 2 {
		if (token[0] == '"' && token[len(token)-1] == '"') ||
			(token[0] == '\'' && token[len(token)-1] == '\'') {
			return token[1 : len(token)-1]
		}
	}
	switch token {
	case "true":
		return true
	case "false":
		return false
	}
	if n, err := strconv.ParseInt(token, 10, 64); err == nil {
		return n
	}
	// Non-finite floats have no stable literal form; nan/inf tokens stay
	// bare strings.
	if f, err := strconv.ParseFloat(token, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return f
	}
	return token
}

// FormatScalar renders a typed value as a literal token that ParseScalar maps
// back to the same value. Strings that would re-parse as another type, or
// that contain characters the grammar treats specially, are quoted.
func FormatScalar(value any) string {
	switch v := value.(type) {
	case nil:
		return `""`
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		out := strconv.FormatFloat(v, 'g', -1, 64)
		// Whole values keep a decimal point so they do not re-read as
		// integers.
		if !strings.ContainsAny(out, ".eE") && !math.IsNaN(v) && !math.IsInf(v, 0) {
			out += ".0"
		}
		return out
	case string:
		if scalarNeedsQuoting(v) {
			return `"` + v + `"`
		}
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}

func scalarNeedsQuoting(s string) bool {
	if s == "" || s == "true" || s == "false" {
		return true
	}
	if strings.ContainsAny(s, " \t=#\"'") {
		return true
	}
	if _, err := strconv.ParseInt(s, 10, 64); err == nil {
		return true
	}
	if _, err := strconv.ParseFloat(s, 64); err == nil {
		return true
	}
	return false
}
