// Package swimtime converts swim times between milliseconds and display strings.
package swimtime

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var displayPattern = regexp.MustCompile(`^(?:(\d+):)?(\d{1,2})\.(\d{1,2})$`)

// Parse decodes "M:SS.hh" or "SS.hh" into milliseconds.
// It reports false for malformed input and for times that decode to zero.
func Parse(text string) (int64, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, false
	}
	m := displayPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}

	var minutes int64
	hasMinutes := m[1] != ""
	if hasMinutes {
		v, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return 0, false
		}
		minutes = v
	}
	seconds, err := strconv.ParseInt(m[2], 10, 64)
	if err != nil {
		return 0, false
	}
	hundredths, err := strconv.ParseInt(m[3], 10, 64)
	if err != nil {
		return 0, false
	}
	// One digit is tenths.
	if len(m[3]) == 1 {
		hundredths *= 10
	}

	if hasMinutes && seconds >= 60 {
		return 0, false
	}
	if hundredths > 99 {
		return 0, false
	}
	if minutes > (math.MaxInt64-seconds)/60 {
		return 0, false
	}
	total := minutes*60 + seconds
	if total > (math.MaxInt64-hundredths*10)/1000 {
		return 0, false
	}

	ms := total*1000 + hundredths*10
	if ms == 0 {
		return 0, false
	}
	return ms, true
}

// MustParse is like Parse but panics on invalid input. Intended for fixtures.
func MustParse(text string) int64 {
	ms, ok := Parse(text)
	if !ok {
		panic(fmt.Sprintf("swimtime: invalid time %q", text))
	}
	return ms
}

// Format encodes milliseconds as a display time. Non-positive values encode as "0.00".
func Format(ms int64) string {
	if ms <= 0 {
		return "0.00"
	}
	minutes, seconds, hundredths := split(ms)
	if minutes == 0 {
		return fmt.Sprintf("%d.%02d", seconds, hundredths)
	}
	return fmt.Sprintf("%d:%02d.%02d", minutes, seconds, hundredths)
}

// FormatFloat encodes fractional milliseconds, truncating toward zero.
func FormatFloat(ms float64) string {
	if math.IsNaN(ms) || math.IsInf(ms, 0) || ms <= 0 {
		return "0.00"
	}
	if ms >= math.MaxInt64 {
		return Format(math.MaxInt64)
	}
	return Format(int64(ms))
}

// FormatDiff renders a signed difference: "-" when faster, "+" otherwise.
func FormatDiff(diffMs int64) string {
	sign := "+"
	abs := diffMs
	if diffMs < 0 {
		sign = "-"
		abs = -diffMs
		if abs < 0 {
			abs = math.MaxInt64
		}
	}
	if abs == 0 {
		return sign + "0.00"
	}
	return sign + Format(abs)
}

func split(ms int64) (minutes, seconds, hundredths int64) {
	totalSeconds := ms / 1000
	hundredths = (ms % 1000) / 10
	minutes = totalSeconds / 60
	seconds = totalSeconds % 60
	return minutes, seconds, hundredths
}
