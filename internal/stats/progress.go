package stats

import (
	"github.com/verte-zerg/swimlog/internal/chart"
	"github.com/verte-zerg/swimlog/internal/model"
)

// ProgressSeries returns chart points for one event and course, in result order.
func ProgressSeries(results []model.Result, event model.Event, course model.Course) []chart.Point {
	points := make([]chart.Point, 0, len(results))
	for _, r := range results {
		if r.Event != event || (course != "" && r.Course != course) {
			continue
		}
		points = append(points, chart.Point{Day: r.SwamOn, TimeMs: r.TimeMs})
	}
	return points
}

// Improvement returns last minus first; negative means faster.
// ok is false with fewer than two points.
func Improvement(points []chart.Point) (int64, bool) {
	if len(points) < 2 {
		return 0, false
	}
	return points[len(points)-1].TimeMs - points[0].TimeMs, true
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Smooth replaces point times with their moving average.
func Smooth(points []chart.Point, window int) []chart.Point {
	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = float64(p.TimeMs)
	}
	avg := MovingAverage(values, window)
	out := make([]chart.Point, len(points))
	for i, p := range points {
		out[i] = chart.Point{Day: p.Day, TimeMs: int64(avg[i])}
	}
	return out
}
