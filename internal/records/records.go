// Package records serves meets, results and standards through a read cache.
package records

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/verte-zerg/swimlog/internal/cache"
	"github.com/verte-zerg/swimlog/internal/daterange"
	"github.com/verte-zerg/swimlog/internal/model"
)

// Cache key prefixes. Every mutation invalidates the prefixes it affects.
const (
	meetsKey     = "meets"
	resultsKey   = "results"
	bestsKey     = "bests"
	standardsKey = "standards"
	setsKey      = "sets"
)

// Backend is the persistence used by Service. *store.Store implements it.
type Backend interface {
	InsertMeet(ctx context.Context, m model.Meet) (int64, error)
	GetMeet(ctx context.Context, id int64) (model.Meet, error)
	ListMeets(ctx context.Context) ([]model.Meet, error)
	DeleteMeet(ctx context.Context, id int64) error
	InsertResult(ctx context.Context, r model.Result) (int64, error)
	DeleteResult(ctx context.Context, id int64) error
	ListResults(ctx context.Context, filter model.ResultFilter) ([]model.Result, error)
	PersonalBests(ctx context.Context, filter model.ResultFilter) ([]model.PersonalBest, error)
	UpsertStandards(ctx context.Context, standards []model.Standard) (int, error)
	ListStandards(ctx context.Context, filter model.StandardFilter) ([]model.Standard, error)
	ListStandardSets(ctx context.Context) ([]string, error)
	DeleteStandardSet(ctx context.Context, set string) (int64, error)
}

// Service is the cache-aside front of a Backend.
type Service struct {
	backend   Backend
	log       *zap.Logger
	meets     *cache.Cache[[]model.Meet]
	results   *cache.Cache[[]model.Result]
	bests     *cache.Cache[[]model.PersonalBest]
	standards *cache.Cache[[]model.Standard]
	sets      *cache.Cache[[]string]
}

// New constructs a Service. A nil logger disables logging.
func New(backend Backend, log *zap.Logger) (*Service, error) {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Service{backend: backend, log: log}
	var err error
	if s.meets, err = cache.New[[]model.Meet](cache.DefaultSize); err != nil {
		return nil, err
	}
	if s.results, err = cache.New[[]model.Result](cache.DefaultSize); err != nil {
		return nil, err
	}
	if s.bests, err = cache.New[[]model.PersonalBest](cache.DefaultSize); err != nil {
		return nil, err
	}
	if s.standards, err = cache.New[[]model.Standard](cache.DefaultSize); err != nil {
		return nil, err
	}
	if s.sets, err = cache.New[[]string](cache.DefaultSize); err != nil {
		return nil, err
	}
	return s, nil
}

// Meets lists all meets.
func (s *Service) Meets(ctx context.Context) ([]model.Meet, error) {
	return s.meets.GetOrLoad(ctx, meetsKey, s.backend.ListMeets)
}

// Meet loads one meet. Single lookups are not cached.
func (s *Service) Meet(ctx context.Context, id int64) (model.Meet, error) {
	return s.backend.GetMeet(ctx, id)
}

// AddMeet stores a meet.
func (s *Service) AddMeet(ctx context.Context, m model.Meet) (int64, error) {
	id, err := s.backend.InsertMeet(ctx, m)
	if err != nil {
		return 0, fmt.Errorf("failed to add meet: %w", err)
	}
	s.invalidate(meetsKey)
	s.log.Info("meet added", zap.Int64("id", id), zap.String("name", m.Name))
	return id, nil
}

// DeleteMeet removes a meet and its results.
func (s *Service) DeleteMeet(ctx context.Context, id int64) error {
	if err := s.backend.DeleteMeet(ctx, id); err != nil {
		return fmt.Errorf("failed to delete meet: %w", err)
	}
	s.invalidate(meetsKey, resultsKey, bestsKey)
	s.log.Info("meet deleted", zap.Int64("id", id))
	return nil
}

// RecordResult stores a result. Results attached to a meet inherit its course
// when none is given.
func (s *Service) RecordResult(ctx context.Context, r model.Result) (int64, error) {
	if r.MeetID > 0 {
		meet, err := s.backend.GetMeet(ctx, r.MeetID)
		if err != nil {
			return 0, fmt.Errorf("failed to load meet: %w", err)
		}
		if r.Course == "" {
			r.Course = meet.Course
		}
		if r.SwamOn.IsZero() {
			r.SwamOn = meet.StartDate
		}
		span := daterange.Span{Start: meet.StartDate, End: meet.EndDate}
		if !span.Contains(r.SwamOn) {
			return 0, fmt.Errorf("swim date %s is outside meet %q (%s)", daterange.FormatDate(r.SwamOn), meet.Name, span)
		}
	}
	id, err := s.backend.InsertResult(ctx, r)
	if err != nil {
		return 0, fmt.Errorf("failed to record result: %w", err)
	}
	s.invalidate(resultsKey, bestsKey)
	s.log.Info("result recorded",
		zap.Int64("id", id),
		zap.String("event", r.Event.Key()),
		zap.String("course", string(r.Course)),
		zap.Int64("time_ms", r.TimeMs))
	return id, nil
}

// DeleteResult removes a result.
func (s *Service) DeleteResult(ctx context.Context, id int64) error {
	if err := s.backend.DeleteResult(ctx, id); err != nil {
		return fmt.Errorf("failed to delete result: %w", err)
	}
	s.invalidate(resultsKey, bestsKey)
	return nil
}

// Results lists results matching filter.
func (s *Service) Results(ctx context.Context, filter model.ResultFilter) ([]model.Result, error) {
	return s.results.GetOrLoad(ctx, resultFilterKey(resultsKey, filter), func(ctx context.Context) ([]model.Result, error) {
		return s.backend.ListResults(ctx, filter)
	})
}

// PersonalBests lists the fastest result per event and course.
func (s *Service) PersonalBests(ctx context.Context, filter model.ResultFilter) ([]model.PersonalBest, error) {
	return s.bests.GetOrLoad(ctx, resultFilterKey(bestsKey, filter), func(ctx context.Context) ([]model.PersonalBest, error) {
		return s.backend.PersonalBests(ctx, filter)
	})
}

// PersonalBest returns the best time for one event, if any.
func (s *Service) PersonalBest(ctx context.Context, event model.Event, course model.Course) (model.PersonalBest, bool, error) {
	bests, err := s.PersonalBests(ctx, model.ResultFilter{Event: &event, Course: course})
	if err != nil {
		return model.PersonalBest{}, false, err
	}
	for _, pb := range bests {
		if pb.Event == event && pb.Course == course {
			return pb, true, nil
		}
	}
	return model.PersonalBest{}, false, nil
}

// Standards lists standards matching filter.
func (s *Service) Standards(ctx context.Context, filter model.StandardFilter) ([]model.Standard, error) {
	key := cache.Key(standardsKey, filter.Set, eventKey(filter.Event), filter.Course, filter.Gender, filter.Age)
	return s.standards.GetOrLoad(ctx, key, func(ctx context.Context) ([]model.Standard, error) {
		return s.backend.ListStandards(ctx, filter)
	})
}

// StandardSets lists known standard set names.
func (s *Service) StandardSets(ctx context.Context) ([]string, error) {
	return s.sets.GetOrLoad(ctx, setsKey, s.backend.ListStandardSets)
}

// ImportStandards stores standards, replacing existing times.
func (s *Service) ImportStandards(ctx context.Context, standards []model.Standard) (int, error) {
	n, err := s.backend.UpsertStandards(ctx, standards)
	if err != nil {
		return 0, fmt.Errorf("failed to import standards: %w", err)
	}
	s.invalidate(standardsKey, setsKey)
	s.log.Info("standards imported", zap.Int("count", n))
	return n, nil
}

// DeleteStandardSet removes a standard set.
func (s *Service) DeleteStandardSet(ctx context.Context, set string) (int64, error) {
	n, err := s.backend.DeleteStandardSet(ctx, set)
	if err != nil {
		return 0, fmt.Errorf("failed to delete standard set: %w", err)
	}
	s.invalidate(standardsKey, setsKey)
	return n, nil
}

func (s *Service) invalidate(prefixes ...string) {
	for _, p := range prefixes {
		var n int
		switch p {
		case meetsKey:
			n = s.meets.Invalidate(p)
		case resultsKey:
			n = s.results.Invalidate(p)
		case bestsKey:
			n = s.bests.Invalidate(p)
		case standardsKey:
			n = s.standards.Invalidate(p)
		case setsKey:
			n = s.sets.Invalidate(p)
		}
		s.log.Debug("cache invalidated", zap.String("prefix", p), zap.Int("entries", n))
	}
}

func resultFilterKey(resource string, f model.ResultFilter) string {
	since := ""
	if f.Since != nil {
		since = daterange.FormatDate(*f.Since)
	}
	return cache.Key(resource, eventKey(f.Event), f.Course, f.Stroke, f.MeetID, since, f.Last)
}

func eventKey(e *model.Event) string {
	if e == nil {
		return ""
	}
	return e.Key()
}
