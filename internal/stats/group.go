// Package stats groups, compares and renders swim results.
package stats

import (
	"sort"
	"time"

	"github.com/verte-zerg/swimlog/internal/model"
)

// AgeOn returns the age in whole years of someone born on birth at date on.
func AgeOn(birth, on time.Time) int {
	if birth.IsZero() || on.Before(birth) {
		return 0
	}
	age := on.Year() - birth.Year()
	if on.Month() < birth.Month() || (on.Month() == birth.Month() && on.Day() < birth.Day()) {
		age--
	}
	return age
}

// AgeGroup returns the competition age group label for age.
func AgeGroup(age int) string {
	switch {
	case age <= 0:
		return "Open"
	case age <= 10:
		return "10 & Under"
	case age <= 12:
		return "11-12"
	case age <= 14:
		return "13-14"
	case age <= 16:
		return "15-16"
	case age <= 18:
		return "17-18"
	default:
		return "19 & Over"
	}
}

// StrokeGroup holds personal bests for one stroke.
type StrokeGroup struct {
	Stroke model.Stroke
	Bests  []model.PersonalBest
}

// GroupByStroke groups bests by stroke in display order, shortest event first.
func GroupByStroke(bests []model.PersonalBest) []StrokeGroup {
	byStroke := map[model.Stroke][]model.PersonalBest{}
	for _, pb := range bests {
		byStroke[pb.Event.Stroke] = append(byStroke[pb.Event.Stroke], pb)
	}
	strokes := make([]model.Stroke, 0, len(byStroke))
	for st := range byStroke {
		strokes = append(strokes, st)
	}
	sort.Slice(strokes, func(i, j int) bool {
		oi, oj := strokes[i].Order(), strokes[j].Order()
		if oi == oj {
			return strokes[i] < strokes[j]
		}
		return oi < oj
	})

	groups := make([]StrokeGroup, 0, len(strokes))
	for _, st := range strokes {
		items := byStroke[st]
		sort.SliceStable(items, func(i, j int) bool {
			if items[i].Event.Distance == items[j].Event.Distance {
				return items[i].Course < items[j].Course
			}
			return items[i].Event.Distance < items[j].Event.Distance
		})
		groups = append(groups, StrokeGroup{Stroke: st, Bests: items})
	}
	return groups
}
