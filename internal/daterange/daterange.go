// Package daterange formats and enumerates calendar date spans.
package daterange

import (
	"fmt"
	"strings"
	"time"
)

// Layout is the ISO calendar date layout used throughout swimlog.
const Layout = "2006-01-02"

// Span is an inclusive range of calendar days.
type Span struct {
	Start time.Time
	End   time.Time
}

// ParseDate parses an ISO date in UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(Layout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", s)
	}
	return t, nil
}

// FormatDate renders t as an ISO date.
func FormatDate(t time.Time) string {
	return t.Format(Layout)
}

// ParseSpan parses two ISO dates. The order is not checked.
func ParseSpan(start, end string) (Span, error) {
	s, err := ParseDate(start)
	if err != nil {
		return Span{}, err
	}
	e, err := ParseDate(end)
	if err != nil {
		return Span{}, err
	}
	return Span{Start: s, End: e}, nil
}

// String formats the span like FormatRange.
func (s Span) String() string {
	return FormatRange(FormatDate(s.Start), FormatDate(s.End))
}

// Contains reports whether day falls inside the span.
func (s Span) Contains(day time.Time) bool {
	d := truncate(day)
	return !d.Before(truncate(s.Start)) && !d.After(truncate(s.End))
}

// Days returns every day in the span, or nil when End precedes Start.
func (s Span) Days() []time.Time {
	start := truncate(s.Start)
	end := truncate(s.End)
	if end.Before(start) {
		return nil
	}
	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// FormatRange renders a meet span: a single date, or "start to end".
func FormatRange(start, end string) string {
	if start == end {
		return start
	}
	return start + " to " + end
}

// EnumerateDays lists ISO dates from start to end inclusive.
// A reversed span yields an empty slice.
func EnumerateDays(start, end string) ([]string, error) {
	span, err := ParseSpan(start, end)
	if err != nil {
		return nil, err
	}
	days := span.Days()
	out := make([]string, 0, len(days))
	for _, d := range days {
		out = append(out, FormatDate(d))
	}
	return out, nil
}

func truncate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
