package chart

import (
	"bytes"
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestPlot(t *testing.T) {
	var buf bytes.Buffer
	err := Plot(&buf, "100 Free (SCY)", []Series{
		{Name: "Times", Points: []Point{
			{Day: day("2025-01-22"), TimeMs: 61230},
			{Day: day("2025-02-15"), TimeMs: 60480},
			{Day: day("2025-03-08"), TimeMs: 59910},
		}},
	}, []Reference{{Name: "AA", TimeMs: 59490}}, 40, 6)
	if err != nil {
		t.Fatalf("Plot failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"100 Free (SCY)", "Legend:", "AA 59.49", "2025-01-22", "2025-03-08", "1:00.00"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) < 1+6+2 {
		t.Fatalf("expected at least 9 lines, got %d", len(lines))
	}
}

func TestPlotSinglePoint(t *testing.T) {
	var buf bytes.Buffer
	err := Plot(&buf, "", []Series{{Name: "Times", Points: []Point{{Day: day("2025-01-22"), TimeMs: 28450}}}}, nil, 20, 4)
	if err != nil {
		t.Fatalf("Plot failed: %v", err)
	}
	if !strings.Contains(buf.String(), "2025-01-22") {
		t.Fatalf("expected day label, got:\n%s", buf.String())
	}
}

func TestPlotEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := Plot(&buf, "x", nil, nil, 20, 4); err != nil {
		t.Fatalf("Plot failed: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no output for empty series")
	}
}

func TestPlotWidthFor(t *testing.T) {
	axisWidth := axisLabelWidth + utf8.RuneCountInString(axisSeparator)
	if got := PlotWidthFor(80); got != 80-axisWidth {
		t.Fatalf("expected width %d, got %d", 80-axisWidth, got)
	}
	if got := PlotWidthFor(0); got != minPlotWidth {
		t.Fatalf("expected min width %d, got %d", minPlotWidth, got)
	}
}
