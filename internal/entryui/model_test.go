package entryui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/swimlog/internal/compare"
	"github.com/verte-zerg/swimlog/internal/form"
	"github.com/verte-zerg/swimlog/internal/model"
)

type fakeRecorder struct {
	recorded  []model.Result
	best      *model.PersonalBest
	standards []model.Standard
}

func (f *fakeRecorder) RecordResult(_ context.Context, r model.Result) (int64, error) {
	f.recorded = append(f.recorded, r)
	if f.best == nil || r.TimeMs < f.best.TimeMs {
		f.best = &model.PersonalBest{Event: r.Event, Course: r.Course, TimeMs: r.TimeMs}
	}
	return int64(len(f.recorded)), nil
}

func (f *fakeRecorder) PersonalBest(_ context.Context, event model.Event, course model.Course) (model.PersonalBest, bool, error) {
	if f.best == nil || f.best.Event != event || f.best.Course != course {
		return model.PersonalBest{}, false, nil
	}
	return *f.best, true, nil
}

func (f *fakeRecorder) Standards(_ context.Context, filter model.StandardFilter) ([]model.Standard, error) {
	var out []model.Standard
	for _, s := range f.standards {
		if s.Course == filter.Course && filter.Event != nil && s.Event == *filter.Event {
			out = append(out, s)
		}
	}
	return out, nil
}

var testNow = func() time.Time { return time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC) }

func newRecorder() *fakeRecorder {
	free100 := model.Event{Distance: 100, Stroke: model.StrokeFree}
	return &fakeRecorder{
		best: &model.PersonalBest{Event: free100, Course: model.CourseSCY, TimeMs: 62000},
		standards: []model.Standard{
			{Name: "A", Event: free100, Course: model.CourseSCY, TimeMs: 61190},
			{Name: "BB", Event: free100, Course: model.CourseSCY, TimeMs: 65890},
		},
	}
}

func typeText(m *Model, text string) {
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
}

func TestLiveComparison(t *testing.T) {
	rec := newRecorder()
	cfg := model.Config{DefaultCourse: model.CourseSCY, ThresholdPercent: compare.DefaultThresholdPercent}
	m := NewModel(rec, cfg, form.ResultInput{Event: "100 free"}, testNow)
	m.setFocus(fieldTime)
	typeText(m, "1:02.5")

	if got := m.timePreview(); got != "1:02.50" {
		t.Fatalf("expected preview 1:02.50, got %q", got)
	}
	if len(m.entries) != 2 {
		t.Fatalf("expected 2 standards, got %d", len(m.entries))
	}
	if m.entries[0].Standard.Name != "A" || m.entries[0].Result.Status != compare.StatusAlmost {
		t.Fatalf("expected almost A, got %+v", m.entries[0])
	}
	if m.entries[1].Result.Status != compare.StatusAchieved {
		t.Fatalf("expected BB achieved, got %+v", m.entries[1])
	}
	view := m.View()
	if !strings.Contains(view, "Personal best: 1:02.00") || !strings.Contains(view, "+0.50") {
		t.Fatalf("expected personal best diff in view, got:\n%s", view)
	}
}

func TestInlineErrorsOnlyForFilledFields(t *testing.T) {
	m := NewModel(newRecorder(), model.Config{ThresholdPercent: 3}, form.ResultInput{}, testNow)
	m.setFocus(fieldTime)
	typeText(m, "1:99")
	if !m.errs.Has(form.FieldTime) {
		t.Fatalf("expected time error, got %v", m.errs)
	}
	if m.errs.Has(form.FieldEvent) {
		t.Fatalf("expected empty event to stay quiet, got %v", m.errs)
	}
	if m.timePreview() != "invalid time" {
		t.Fatalf("expected invalid preview, got %q", m.timePreview())
	}
}

func TestSubmitRecordsResult(t *testing.T) {
	rec := newRecorder()
	cfg := model.Config{DefaultCourse: model.CourseSCY, ThresholdPercent: 3}
	m := NewModel(rec, cfg, form.ResultInput{Event: "100 free", Time: "1:01.00", Date: "2024-06-01"}, testNow)
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})

	if len(rec.recorded) != 1 {
		t.Fatalf("expected one recorded result, got %d (errs %v, err %q)", len(rec.recorded), m.errs, m.lastErr)
	}
	got := rec.recorded[0]
	if got.TimeMs != 61000 || got.Course != model.CourseSCY || got.SwamOn.Day() != 1 {
		t.Fatalf("unexpected result: %+v", got)
	}
	if m.Saved() != 1 || !strings.Contains(m.status, "Saved #1") {
		t.Fatalf("expected saved status, got %q", m.status)
	}
	if m.inputs[fieldTime].Value() != "" || m.focus != fieldTime {
		t.Fatalf("expected time field cleared and focused")
	}
	if m.best == nil || m.best.TimeMs != 61000 {
		t.Fatalf("expected refreshed personal best, got %+v", m.best)
	}
	if !strings.Contains(m.renderFooter(), "Saved 1") {
		t.Fatalf("expected footer count, got %q", m.renderFooter())
	}
}

func TestSubmitShowsErrors(t *testing.T) {
	rec := newRecorder()
	m := NewModel(rec, model.Config{ThresholdPercent: 3}, form.ResultInput{}, testNow)
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	if len(rec.recorded) != 0 {
		t.Fatalf("expected nothing recorded")
	}
	if m.errs[form.FieldEvent] != "required" || m.errs[form.FieldTime] != "required" {
		t.Fatalf("expected required errors, got %v", m.errs)
	}
}
