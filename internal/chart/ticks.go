// Package chart plans axes and renders text plots of swim times.
package chart

const (
	minTicks = 3
	maxTicks = 8

	// degenerateSpanMs is the span used when a domain collapses to one value.
	degenerateSpanMs = 1000
	paddingFraction  = 0.05
)

var tickIntervals = []int64{500, 1000, 2000, 5000, 10000, 30000, 60000}

// PlanTicks returns axis ticks covering [minMs, maxMs] at the smallest round
// interval that yields between 3 and 8 ticks. Ranges too narrow for any
// interval use 500ms; ranges too wide use 60s.
func PlanTicks(minMs, maxMs int64) []int64 {
	if maxMs < minMs {
		minMs, maxMs = maxMs, minMs
	}
	if minMs == maxMs {
		minMs -= degenerateSpanMs / 2
		maxMs += degenerateSpanMs / 2
		if minMs < 0 {
			maxMs -= minMs
			minMs = 0
		}
	}

	interval := chooseInterval(minMs, maxMs)
	start := floorTo(minMs, interval)
	end := ceilTo(maxMs, interval)
	ticks := make([]int64, 0, (end-start)/interval+1)
	for v := start; v <= end; v += interval {
		ticks = append(ticks, v)
	}
	return ticks
}

// PadDomain widens a value domain by 5% of its range on each side, or by a
// fixed span when the range is zero. The lower bound never drops below 0.
func PadDomain(minMs, maxMs int64) (int64, int64) {
	if maxMs < minMs {
		minMs, maxMs = maxMs, minMs
	}
	pad := int64(float64(maxMs-minMs) * paddingFraction)
	if maxMs == minMs {
		pad = degenerateSpanMs / 2
	}
	lo := minMs - pad
	hi := maxMs + pad
	if lo < 0 {
		lo = 0
	}
	return lo, hi
}

func chooseInterval(minMs, maxMs int64) int64 {
	for _, interval := range tickIntervals {
		n := tickCount(minMs, maxMs, interval)
		if n >= minTicks && n <= maxTicks {
			return interval
		}
	}
	smallest := tickIntervals[0]
	if tickCount(minMs, maxMs, smallest) < minTicks {
		return smallest
	}
	return tickIntervals[len(tickIntervals)-1]
}

func tickCount(minMs, maxMs, interval int64) int64 {
	return (ceilTo(maxMs, interval)-floorTo(minMs, interval))/interval + 1
}

func floorTo(v, step int64) int64 {
	q := v / step
	if v%step != 0 && v < 0 {
		q--
	}
	return q * step
}

func ceilTo(v, step int64) int64 {
	q := v / step
	if v%step != 0 && v > 0 {
		q++
	}
	return q * step
}
