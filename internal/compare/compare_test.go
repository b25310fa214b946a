package compare

import (
	"math"
	"testing"

	"github.com/verte-zerg/swimlog/internal/model"
)

func ms(v int64) *int64 { return &v }

func TestCompareAchieved(t *testing.T) {
	res := Compare(ms(28000), 28500, 3.0)
	if res.Status != StatusAchieved {
		t.Fatalf("expected achieved, got %s", res.Status)
	}
	if *res.DifferenceMs != -500 {
		t.Fatalf("unexpected difference: %d", *res.DifferenceMs)
	}
	if res.DifferenceDisplay() != "-0.50" {
		t.Fatalf("unexpected display: %q", res.DifferenceDisplay())
	}
}

func TestCompareEqualIsAchieved(t *testing.T) {
	if res := Compare(ms(28500), 28500, 0); res.Status != StatusAchieved {
		t.Fatalf("expected achieved for equal time, got %s", res.Status)
	}
}

func TestCompareAlmost(t *testing.T) {
	res := Compare(ms(28800), 28500, 3.0)
	if res.Status != StatusAlmost {
		t.Fatalf("expected almost, got %s", res.Status)
	}
	if math.Abs(*res.DifferencePercent-1.0526) > 0.001 {
		t.Fatalf("unexpected percent: %f", *res.DifferencePercent)
	}
	if res.DifferenceDisplay() != "+0.30" {
		t.Fatalf("unexpected display: %q", res.DifferenceDisplay())
	}
}

func TestCompareNotAchieved(t *testing.T) {
	res := Compare(ms(30000), 28500, 3.0)
	if res.Status != StatusNotAchieved {
		t.Fatalf("expected not_achieved, got %s", res.Status)
	}
	if math.Abs(*res.DifferencePercent-5.263) > 0.001 {
		t.Fatalf("unexpected percent: %f", *res.DifferencePercent)
	}
}

func TestCompareNoTime(t *testing.T) {
	res := Compare(nil, 28500, 3.0)
	if res.Status != StatusNoTime {
		t.Fatalf("expected no_time, got %s", res.Status)
	}
	if res.DifferenceMs != nil || res.DifferencePercent != nil {
		t.Fatalf("expected nil differences, got %+v", res)
	}
	if res.DifferenceDisplay() != "" || res.PercentDisplay() != "" {
		t.Fatalf("expected empty displays")
	}
}

func TestCompareZeroStandard(t *testing.T) {
	res := Compare(ms(1000), 0, 3.0)
	if res.Status != StatusNotAchieved {
		t.Fatalf("expected not_achieved, got %s", res.Status)
	}
	if res.DifferencePercent != nil {
		t.Fatalf("expected no percent for zero standard")
	}
}

func TestComparePure(t *testing.T) {
	a := Compare(ms(28800), 28500, 3.0)
	b := Compare(ms(28800), 28500, 3.0)
	if a.Status != b.Status || *a.DifferenceMs != *b.DifferenceMs || *a.DifferencePercent != *b.DifferencePercent {
		t.Fatalf("expected identical results, got %+v and %+v", a, b)
	}
}

func TestValidateThreshold(t *testing.T) {
	for _, ok := range []float64{0, 3, 100} {
		if err := ValidateThreshold(ok); err != nil {
			t.Fatalf("expected %v to be valid: %v", ok, err)
		}
	}
	for _, bad := range []float64{-0.1, 100.5, math.NaN()} {
		if err := ValidateThreshold(bad); err == nil {
			t.Fatalf("expected %v to be rejected", bad)
		}
	}
}

func TestAgainstAndTargets(t *testing.T) {
	standards := []model.Standard{
		{Name: "B", TimeMs: 31000},
		{Name: "AAA", TimeMs: 28000},
		{Name: "A", TimeMs: 29500},
	}
	entries := Against(ms(29800), standards, 3.0)
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].Standard.Name != "AAA" || entries[2].Standard.Name != "B" {
		t.Fatalf("expected fastest standard first, got %+v", entries)
	}
	if entries[1].Result.Status != StatusAlmost || entries[2].Result.Status != StatusAchieved {
		t.Fatalf("unexpected statuses: %+v", entries)
	}
	best, ok := Best(entries)
	if !ok || best.Standard.Name != "B" {
		t.Fatalf("unexpected best: %+v", best)
	}
	next, ok := NextTarget(entries)
	if !ok || next.Standard.Name != "A" {
		t.Fatalf("unexpected next target: %+v", next)
	}
}
