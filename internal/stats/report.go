package stats

import (
	"context"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/verte-zerg/swimlog/internal/chart"
	"github.com/verte-zerg/swimlog/internal/compare"
	"github.com/verte-zerg/swimlog/internal/model"
)

// Source provides the data a report is built from.
type Source interface {
	Results(ctx context.Context, filter model.ResultFilter) ([]model.Result, error)
	PersonalBests(ctx context.Context, filter model.ResultFilter) ([]model.PersonalBest, error)
	Standards(ctx context.Context, filter model.StandardFilter) ([]model.Standard, error)
}

// EventComparison compares the best time of one event with its standards.
// Best is nil when the event has standards but no swims.
type EventComparison struct {
	Event   model.Event
	Course  model.Course
	Best    *model.PersonalBest
	Entries []compare.Entry
}

// Report contains precomputed data for stats rendering.
type Report struct {
	Age         int
	AgeGroup    string
	Bests       []model.PersonalBest
	Groups      []StrokeGroup
	Standards   []model.Standard
	Comparisons []EventComparison
}

// BuildReport loads personal bests and standards concurrently and compares them.
func BuildReport(ctx context.Context, src Source, cfg model.StatsConfig, now time.Time) (Report, error) {
	age := AgeOn(cfg.Swimmer.BirthDate, now)
	resultFilter := model.ResultFilter{Course: cfg.Course, Stroke: cfg.Stroke, Event: cfg.Event, Since: cfg.Since}
	standardFilter := model.StandardFilter{
		Set:    cfg.StandardSet,
		Event:  cfg.Event,
		Course: cfg.Course,
		Gender: cfg.Swimmer.Gender,
		Age:    age,
	}

	var (
		bests     []model.PersonalBest
		standards []model.Standard
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		bests, err = src.PersonalBests(gctx, resultFilter)
		return err
	})
	g.Go(func() error {
		var err error
		standards, err = src.Standards(gctx, standardFilter)
		return err
	})
	if err := g.Wait(); err != nil {
		return Report{}, err
	}
	if cfg.Stroke != "" {
		standards = filterStandardsByStroke(standards, cfg.Stroke)
	}

	return Report{
		Age:         age,
		AgeGroup:    AgeGroup(age),
		Bests:       bests,
		Groups:      GroupByStroke(bests),
		Standards:   standards,
		Comparisons: CompareBests(bests, standards, cfg.ThresholdPercent),
	}, nil
}

// CompareBests pairs each event's best time with the standards for that event.
// Events with standards but no swims are included with a nil Best.
func CompareBests(bests []model.PersonalBest, standards []model.Standard, threshold float64) []EventComparison {
	type key struct {
		event  model.Event
		course model.Course
	}
	byKey := map[key][]model.Standard{}
	for _, st := range standards {
		k := key{event: st.Event, course: st.Course}
		byKey[k] = append(byKey[k], st)
	}
	bestByKey := map[key]model.PersonalBest{}
	for _, pb := range bests {
		bestByKey[key{event: pb.Event, course: pb.Course}] = pb
	}

	out := make([]EventComparison, 0, len(byKey))
	for k, sts := range byKey {
		ec := EventComparison{Event: k.event, Course: k.course}
		var swimmerMs *int64
		if pb, ok := bestByKey[k]; ok {
			pb := pb
			ec.Best = &pb
			swimmerMs = &pb.TimeMs
		}
		ec.Entries = compare.Against(swimmerMs, sts, threshold)
		out = append(out, ec)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Course != out[j].Course {
			return out[i].Course < out[j].Course
		}
		if oi, oj := out[i].Event.Stroke.Order(), out[j].Event.Stroke.Order(); oi != oj {
			return oi < oj
		}
		return out[i].Event.Distance < out[j].Event.Distance
	})
	return out
}

// Progress holds the data for charting one event.
type Progress struct {
	Event     model.Event
	Course    model.Course
	Results   []model.Result
	Points    []chart.Point
	Standards []model.Standard
}

// BuildProgress loads results and standards for one event concurrently.
func BuildProgress(ctx context.Context, src Source, cfg model.StatsConfig, event model.Event, now time.Time) (Progress, error) {
	course := cfg.Course
	age := AgeOn(cfg.Swimmer.BirthDate, now)
	var (
		results   []model.Result
		standards []model.Standard
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		results, err = src.Results(gctx, model.ResultFilter{Event: &event, Course: course, Since: cfg.Since})
		return err
	})
	g.Go(func() error {
		if course == "" {
			return nil
		}
		var err error
		standards, err = src.Standards(gctx, model.StandardFilter{
			Set:    cfg.StandardSet,
			Event:  &event,
			Course: course,
			Gender: cfg.Swimmer.Gender,
			Age:    age,
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return Progress{}, err
	}
	return Progress{
		Event:     event,
		Course:    course,
		Results:   results,
		Points:    ProgressSeries(results, event, course),
		Standards: standards,
	}, nil
}

func filterStandardsByStroke(standards []model.Standard, stroke model.Stroke) []model.Standard {
	out := make([]model.Standard, 0, len(standards))
	for _, st := range standards {
		if st.Event.Stroke == stroke {
			out = append(out, st)
		}
	}
	return out
}
