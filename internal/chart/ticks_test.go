package chart

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPlanTicksSelectsBand(t *testing.T) {
	ticks := PlanTicks(27000, 33000)
	if len(ticks) < minTicks || len(ticks) > maxTicks {
		t.Fatalf("expected 3-8 ticks, got %d: %v", len(ticks), ticks)
	}
	want := []int64{27000, 28000, 29000, 30000, 31000, 32000, 33000}
	if diff := cmp.Diff(want, ticks); diff != "" {
		t.Fatalf("unexpected ticks (-want +got):\n%s", diff)
	}
	for _, tick := range ticks {
		if tick%1000 != 0 {
			t.Fatalf("tick %d is not a multiple of the interval", tick)
		}
	}
}

func TestPlanTicksBoundsData(t *testing.T) {
	ticks := PlanTicks(61230, 64890)
	if ticks[0] > 61230 || ticks[len(ticks)-1] < 64890 {
		t.Fatalf("ticks %v do not cover the range", ticks)
	}
	if len(ticks) < minTicks || len(ticks) > maxTicks {
		t.Fatalf("expected 3-8 ticks, got %v", ticks)
	}
}

func TestPlanTicksDegenerate(t *testing.T) {
	ticks := PlanTicks(30000, 30000)
	if len(ticks) < 2 {
		t.Fatalf("expected padded ticks, got %v", ticks)
	}
	if ticks[0] > 30000 || ticks[len(ticks)-1] < 30000 {
		t.Fatalf("ticks %v do not cover the value", ticks)
	}
	if got := PlanTicks(0, 0); len(got) == 0 || got[0] != 0 {
		t.Fatalf("unexpected ticks for zero: %v", got)
	}
}

func TestPlanTicksNarrowClampsToSmallest(t *testing.T) {
	ticks := PlanTicks(30100, 30200)
	if len(ticks) < 2 || ticks[1]-ticks[0] != 500 {
		t.Fatalf("expected 500ms ticks, got %v", ticks)
	}
}

func TestPlanTicksWideUsesLargest(t *testing.T) {
	ticks := PlanTicks(60000, 1200000)
	if ticks[1]-ticks[0] != 60000 {
		t.Fatalf("expected 60s ticks, got %v", ticks)
	}
}

func TestPlanTicksReversed(t *testing.T) {
	if diff := cmp.Diff(PlanTicks(27000, 33000), PlanTicks(33000, 27000)); diff != "" {
		t.Fatalf("expected reversed input to match:\n%s", diff)
	}
}

func TestPadDomain(t *testing.T) {
	lo, hi := PadDomain(28000, 30000)
	if lo != 27900 || hi != 30100 {
		t.Fatalf("unexpected padded domain: %d-%d", lo, hi)
	}
	lo, hi = PadDomain(30000, 30000)
	if lo != 29500 || hi != 30500 {
		t.Fatalf("unexpected degenerate domain: %d-%d", lo, hi)
	}
	lo, _ = PadDomain(100, 100)
	if lo != 0 {
		t.Fatalf("expected lower bound clamp, got %d", lo)
	}
}
