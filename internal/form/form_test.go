package form

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/verte-zerg/swimlog/internal/model"
)

var now = time.Date(2024, 6, 15, 18, 30, 0, 0, time.UTC)

func TestResultInputValid(t *testing.T) {
	r, errs := ResultInput{
		Event:  "100 free",
		Course: "scy",
		Time:   "1:02.34",
		Date:   "2024-06-01",
		Notes:  "  relay split ",
	}.Validate(now)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	want := model.Result{
		Event:  model.Event{Distance: 100, Stroke: model.StrokeFree},
		Course: model.CourseSCY,
		TimeMs: 62340,
		SwamOn: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		Notes:  "relay split",
	}
	if diff := cmp.Diff(want, r); diff != "" {
		t.Fatalf("result mismatch (-want +got):\n%s", diff)
	}
}

func TestResultInputDefaultsDateToToday(t *testing.T) {
	r, errs := ResultInput{Event: "50 fly", Course: "LCM", Time: "31.2"}.Validate(now)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if !r.SwamOn.Equal(time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected today's date, got %v", r.SwamOn)
	}
	if r.TimeMs != 31200 {
		t.Fatalf("expected 31200ms, got %d", r.TimeMs)
	}
}

func TestResultInputMeetSuppliesCourse(t *testing.T) {
	r, errs := ResultInput{Event: "200 im", Time: "2:31.00", MeetID: "7"}.Validate(now)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if r.MeetID != 7 || r.Course != "" || !r.SwamOn.IsZero() {
		t.Fatalf("expected meet to supply course and date, got %+v", r)
	}
}

func TestResultInputErrors(t *testing.T) {
	_, errs := ResultInput{
		Event:  "100 doggy",
		Time:   "1:75.00",
		Date:   "2024-07-01",
		MeetID: "x",
	}.Validate(now)
	for _, field := range []string{FieldEvent, FieldTime, FieldDate, FieldMeet, FieldCourse} {
		if !errs.Has(field) {
			t.Fatalf("expected error for %s, got %v", field, errs)
		}
	}
	_, errs = ResultInput{}.Validate(now)
	if errs[FieldEvent] != "required" || errs[FieldTime] != "required" {
		t.Fatalf("expected required errors, got %v", errs)
	}
}

func TestMeetInput(t *testing.T) {
	m, errs := MeetInput{Name: "Spring Open", Course: "LCM", Start: "2024-03-01", End: "2024-03-03"}.Validate()
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if m.Course != model.CourseLCM || m.EndDate.Sub(m.StartDate) != 48*time.Hour {
		t.Fatalf("unexpected meet: %+v", m)
	}

	m, errs = MeetInput{Name: "Dual", Course: "SCY", Start: "2024-03-01"}.Validate()
	if len(errs) != 0 || !m.EndDate.Equal(m.StartDate) {
		t.Fatalf("expected single-day meet, got %+v %v", m, errs)
	}

	_, errs = MeetInput{Name: "", Course: "yards", Start: "2024-03-05", End: "2024-03-01"}.Validate()
	for _, field := range []string{FieldName, FieldCourse, FieldEnd} {
		if !errs.Has(field) {
			t.Fatalf("expected error for %s, got %v", field, errs)
		}
	}
}

func TestStandardInput(t *testing.T) {
	s, errs := StandardInput{
		Set:    "Age Group",
		Name:   "BB",
		Event:  "100 back",
		Course: "SCY",
		Gender: "f",
		AgeMin: "11",
		AgeMax: "12",
		Time:   "1:15.49",
	}.Validate()
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if s.Gender != model.GenderFemale || s.AgeMin != 11 || s.AgeMax != 12 || s.TimeMs != 75490 {
		t.Fatalf("unexpected standard: %+v", s)
	}

	s, errs = StandardInput{Set: "Open", Name: "A", Event: "50 free", Course: "LCM", Time: "25.00"}.Validate()
	if len(errs) != 0 || s.Gender != model.GenderMixed || s.AgeMin != 0 || s.AgeMax != 0 {
		t.Fatalf("expected open mixed standard, got %+v %v", s, errs)
	}

	_, errs = StandardInput{Set: "Open", Name: "A", Event: "50 free", Course: "LCM", AgeMin: "14", AgeMax: "12", Time: "0.00"}.Validate()
	if !errs.Has(FieldAgeMax) || !errs.Has(FieldTime) {
		t.Fatalf("expected age and time errors, got %v", errs)
	}
}

func TestSettingsInput(t *testing.T) {
	s, errs := SettingsInput{}.Validate()
	if len(errs) != 0 || s.ThresholdPercent != 3.0 || s.Stroke != "" || s.Since != nil {
		t.Fatalf("unexpected defaults: %+v %v", s, errs)
	}
	s, errs = SettingsInput{Stroke: "breast", Since: "2024-01-01", Threshold: "5"}.Validate()
	if len(errs) != 0 || s.Stroke != model.StrokeBreast || s.Since == nil || s.ThresholdPercent != 5 {
		t.Fatalf("unexpected settings: %+v %v", s, errs)
	}
	_, errs = SettingsInput{Threshold: "150"}.Validate()
	if !errs.Has(FieldThreshold) {
		t.Fatalf("expected threshold error, got %v", errs)
	}
	_, errs = SettingsInput{Threshold: "abc"}.Validate()
	if errs[FieldThreshold] != "must be a number" {
		t.Fatalf("expected number error, got %v", errs)
	}
}

func TestErrorsErr(t *testing.T) {
	if (Errors{}).Err() != nil {
		t.Fatalf("expected nil error for empty errors")
	}
	errs := Errors{}
	errs.Add(FieldTime, "bad")
	errs.Add(FieldTime, "ignored")
	errs.Add(FieldEvent, "required")
	got := errs.Err().Error()
	if got != "event: required\ntime: bad" {
		t.Fatalf("unexpected joined error: %q", got)
	}
	if !strings.Contains(got, "time: bad") {
		t.Fatalf("expected first message to win")
	}
}
