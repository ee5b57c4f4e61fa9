package command

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// relativeRegex matches "<N>d", "<N>h", "<N>w", "<N>m".
var relativeRegex = regexp.MustCompile(`^(\d+)([dhwm])$`)

// maxRelativeUnits bounds N so hour offsets cannot overflow time.Duration.
const maxRelativeUnits = 100000

// ResolveTime turns a time modifier into a concrete time relative to now and
// reports whether it moved away from now. "yesterday" is one calendar day
// back; "today", "now" and "" are now; "<N>d|h|w|m" subtracts days, hours,
// weeks or months. Anything unrecognized falls back to now.
func ResolveTime(expr string, now time.Time) (time.Time, bool) {
	expr = strings.ToLower(strings.TrimSpace(expr))
	switch expr {
	case "", "today", "now":
		return now, false
	case "yesterday":
		return now.AddDate(0, 0, -1), true
	}

	m := relativeRegex.FindStringSubmatch(expr)
	if m == nil {
		return now, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n == 0 || n > maxRelativeUnits {
		return now, false
	}

	switch m[2] {
	case "d":
		return now.AddDate(0, 0, -n), true
	case "h":
		return now.Add(-time.Duration(n) * time.Hour), true
	case "w":
		return now.AddDate(0, 0, -7*n), true
	default:
		return now.AddDate(0, -n, 0), true
	}
}
