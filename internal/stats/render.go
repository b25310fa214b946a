package stats

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/verte-zerg/swimlog/internal/chart"
	"github.com/verte-zerg/swimlog/internal/compare"
	"github.com/verte-zerg/swimlog/internal/daterange"
	"github.com/verte-zerg/swimlog/internal/model"
	"github.com/verte-zerg/swimlog/internal/swimtime"
)

// StatusLabel renders a comparison status for tables.
func StatusLabel(s compare.Status) string {
	switch s {
	case compare.StatusAchieved:
		return "achieved"
	case compare.StatusAlmost:
		return "almost"
	case compare.StatusNotAchieved:
		return "not yet"
	default:
		return "no time"
	}
}

// BestsRows returns table rows for personal bests grouped by stroke.
func BestsRows(groups []StrokeGroup) [][]string {
	var rows [][]string
	for _, g := range groups {
		for _, pb := range g.Bests {
			rows = append(rows, []string{
				pb.Event.String(),
				string(pb.Course),
				swimtime.Format(pb.TimeMs),
				daterange.FormatDate(pb.SwamOn),
				pb.MeetName,
				strconv.Itoa(pb.Swims),
			})
		}
	}
	return rows
}

// RenderBests prints personal bests grouped by stroke.
func RenderBests(w io.Writer, groups []StrokeGroup) error {
	if len(groups) == 0 {
		_, err := fmt.Fprintln(w, "No results found.")
		return err
	}
	headers := []string{"Event", "Course", "Best", "Date", "Meet", "Swims"}
	rightAlign := map[int]bool{2: true, 5: true}
	for _, g := range groups {
		if _, err := fmt.Fprintln(w, g.Stroke.Label()); err != nil {
			return err
		}
		for _, line := range formatTable(headers, BestsRows([]StrokeGroup{g}), rightAlign) {
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w, ""); err != nil {
			return err
		}
	}
	return nil
}

// ComparisonRows returns one table row per event and standard.
func ComparisonRows(comps []EventComparison) [][]string {
	var rows [][]string
	for _, c := range comps {
		best := "-"
		if c.Best != nil {
			best = swimtime.Format(c.Best.TimeMs)
		}
		for _, e := range c.Entries {
			rows = append(rows, []string{
				c.Event.String(),
				string(c.Course),
				best,
				e.Standard.Name,
				swimtime.Format(e.Standard.TimeMs),
				e.Result.DifferenceDisplay(),
				e.Result.PercentDisplay(),
				StatusLabel(e.Result.Status),
			})
		}
	}
	return rows
}

// RenderComparisons prints best times against each applicable standard.
func RenderComparisons(w io.Writer, comps []EventComparison) error {
	if len(comps) == 0 {
		_, err := fmt.Fprintln(w, "No standards found. Import some with: swimlog standards import <file>")
		return err
	}
	headers := []string{"Event", "Course", "Best", "Standard", "Cut", "Diff", "Diff %", "Status"}
	rightAlign := map[int]bool{2: true, 4: true, 5: true, 6: true}
	for _, line := range formatTable(headers, ComparisonRows(comps), rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderResults prints results with relative dates.
func RenderResults(w io.Writer, results []model.Result, now time.Time) error {
	if len(results) == 0 {
		_, err := fmt.Fprintln(w, "No results found.")
		return err
	}
	headers := []string{"ID", "Date", "When", "Event", "Course", "Time", "Meet"}
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		rows = append(rows, []string{
			strconv.FormatInt(r.ID, 10),
			daterange.FormatDate(r.SwamOn),
			humanize.RelTime(r.SwamOn, now, "ago", "from now"),
			r.Event.String(),
			string(r.Course),
			swimtime.Format(r.TimeMs),
			r.MeetName,
		})
	}
	for _, line := range formatTable(headers, rows, map[int]bool{0: true, 5: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderMeets prints meets with their day spans.
func RenderMeets(w io.Writer, meets []model.Meet) error {
	if len(meets) == 0 {
		_, err := fmt.Fprintln(w, "No meets found.")
		return err
	}
	headers := []string{"ID", "Meet", "Location", "Course", "Dates", "Days"}
	rows := make([][]string, 0, len(meets))
	for _, m := range meets {
		span := daterange.Span{Start: m.StartDate, End: m.EndDate}
		rows = append(rows, []string{
			strconv.FormatInt(m.ID, 10),
			m.Name,
			m.Location,
			string(m.Course),
			span.String(),
			strconv.Itoa(len(span.Days())),
		})
	}
	for _, line := range formatTable(headers, rows, map[int]bool{0: true, 5: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderProgress plots an event's times with its standards as reference lines.
func RenderProgress(w io.Writer, p Progress, width, height int, useColor bool) error {
	title := p.Event.String()
	if p.Course != "" {
		title = fmt.Sprintf("%s (%s)", title, p.Course)
	}
	if len(p.Points) == 0 {
		_, err := fmt.Fprintf(w, "%s: no results found.\n", title)
		return err
	}
	refs := make([]chart.Reference, 0, len(p.Standards))
	for _, st := range p.Standards {
		refs = append(refs, chart.Reference{Name: st.Name, TimeMs: st.TimeMs})
	}
	plotWidth := 0
	if width > 0 {
		plotWidth = chart.PlotWidthFor(width)
	}
	if err := chart.PlotWithColor(w, title, []chart.Series{{Name: "Times", Points: p.Points}}, refs, plotWidth, height, useColor); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, progressSummary(p))
	return err
}

// progressSummary describes the recorded swims, not the plotted (possibly smoothed) points.
func progressSummary(p Progress) string {
	points := ProgressSeries(p.Results, p.Event, p.Course)
	if len(points) == 0 {
		points = p.Points
	}
	first := points[0]
	last := points[len(points)-1]
	span := daterange.FormatRange(daterange.FormatDate(first.Day), daterange.FormatDate(last.Day))
	delta, ok := Improvement(points)
	if !ok {
		return fmt.Sprintf("One swim: %s on %s", swimtime.Format(first.TimeMs), span)
	}
	var sum float64
	for _, pt := range points {
		sum += float64(pt.TimeMs)
	}
	return fmt.Sprintf("%d swims, %s to %s (%s) over %s, average %s",
		len(points),
		swimtime.Format(first.TimeMs),
		swimtime.Format(last.TimeMs),
		swimtime.FormatDiff(delta),
		span,
		swimtime.FormatFloat(sum/float64(len(points))),
	)
}

// RenderStandards prints qualifying standards.
func RenderStandards(w io.Writer, standards []model.Standard) error {
	if len(standards) == 0 {
		_, err := fmt.Fprintln(w, "No standards found.")
		return err
	}
	headers := []string{"Set", "Name", "Event", "Course", "Gender", "Ages", "Time"}
	rows := make([][]string, 0, len(standards))
	for _, s := range standards {
		rows = append(rows, []string{
			s.Set,
			s.Name,
			s.Event.String(),
			string(s.Course),
			string(s.Gender),
			ageRange(s.AgeMin, s.AgeMax),
			swimtime.Format(s.TimeMs),
		})
	}
	for _, line := range formatTable(headers, rows, map[int]bool{6: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func ageRange(lo, hi int) string {
	switch {
	case lo == 0 && hi == 0:
		return "open"
	case lo == 0:
		return fmt.Sprintf("%d & under", hi)
	case hi == 0:
		return fmt.Sprintf("%d & over", lo)
	case lo == hi:
		return strconv.Itoa(lo)
	default:
		return fmt.Sprintf("%d-%d", lo, hi)
	}
}
