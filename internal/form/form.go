// Package form validates user-entered fields before they reach the store.
package form

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/verte-zerg/swimlog/internal/compare"
	"github.com/verte-zerg/swimlog/internal/daterange"
	"github.com/verte-zerg/swimlog/internal/model"
	"github.com/verte-zerg/swimlog/internal/swimtime"
)

// Field names used as Errors keys.
const (
	FieldEvent     = "event"
	FieldCourse    = "course"
	FieldTime      = "time"
	FieldDate      = "date"
	FieldMeet      = "meet"
	FieldName      = "name"
	FieldStart     = "start"
	FieldEnd       = "end"
	FieldSet       = "set"
	FieldGender    = "gender"
	FieldAgeMin    = "age-min"
	FieldAgeMax    = "age-max"
	FieldStroke    = "stroke"
	FieldSince     = "since"
	FieldThreshold = "threshold"
)

const maxNameLen = 120

// Errors maps a field name to its validation message.
type Errors map[string]string

// Add records msg for field unless the field already has one.
func (e Errors) Add(field, msg string) {
	if _, ok := e[field]; ok {
		return
	}
	e[field] = msg
}

// Has reports whether field failed validation.
func (e Errors) Has(field string) bool {
	_, ok := e[field]
	return ok
}

// Err joins all messages in field order, or returns nil when there are none.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	errs := make([]error, 0, len(fields))
	for _, f := range fields {
		errs = append(errs, fmt.Errorf("%s: %s", f, e[f]))
	}
	return errors.Join(errs...)
}

// ResultInput holds the raw fields of a result entry.
type ResultInput struct {
	Event  string
	Course string
	Time   string
	Date   string
	MeetID string
	Notes  string
}

// Validate decodes the input into a result. Course and date may be left
// empty when a meet is given; the meet supplies them later.
func (in ResultInput) Validate(now time.Time) (model.Result, Errors) {
	errs := Errors{}
	var r model.Result

	if strings.TrimSpace(in.Event) == "" {
		errs.Add(FieldEvent, "required")
	} else if ev, err := model.ParseEvent(in.Event); err != nil {
		errs.Add(FieldEvent, err.Error())
	} else {
		r.Event = ev
	}

	if ms, ok := swimtime.Parse(strings.TrimSpace(in.Time)); ok {
		r.TimeMs = ms
	} else if strings.TrimSpace(in.Time) == "" {
		errs.Add(FieldTime, "required")
	} else {
		errs.Add(FieldTime, "use M:SS.hh or SS.hh")
	}

	if id := strings.TrimSpace(in.MeetID); id != "" {
		n, err := strconv.ParseInt(id, 10, 64)
		if err != nil || n <= 0 {
			errs.Add(FieldMeet, "must be a positive meet id")
		} else {
			r.MeetID = n
		}
	}

	if c := strings.TrimSpace(in.Course); c != "" {
		course, err := model.ParseCourse(c)
		if err != nil {
			errs.Add(FieldCourse, err.Error())
		} else {
			r.Course = course
		}
	} else if r.MeetID == 0 {
		errs.Add(FieldCourse, "required without a meet")
	}

	if d := strings.TrimSpace(in.Date); d != "" {
		day, err := daterange.ParseDate(d)
		switch {
		case err != nil:
			errs.Add(FieldDate, err.Error())
		case day.After(now):
			errs.Add(FieldDate, "cannot be in the future")
		default:
			r.SwamOn = day
		}
	} else if r.MeetID == 0 {
		r.SwamOn = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	}

	r.Notes = strings.TrimSpace(in.Notes)
	return r, errs
}

// MeetInput holds the raw fields of a meet entry.
type MeetInput struct {
	Name     string
	Location string
	Course   string
	Start    string
	End      string
}

// Validate decodes the input into a meet. End defaults to Start.
func (in MeetInput) Validate() (model.Meet, Errors) {
	errs := Errors{}
	m := model.Meet{
		Name:     strings.TrimSpace(in.Name),
		Location: strings.TrimSpace(in.Location),
	}
	validateName(errs, FieldName, m.Name)

	course, err := model.ParseCourse(in.Course)
	if err != nil {
		errs.Add(FieldCourse, err.Error())
	}
	m.Course = course

	start, err := daterange.ParseDate(in.Start)
	if err != nil {
		errs.Add(FieldStart, err.Error())
	}
	m.StartDate = start
	m.EndDate = start
	if strings.TrimSpace(in.End) != "" {
		end, err := daterange.ParseDate(in.End)
		switch {
		case err != nil:
			errs.Add(FieldEnd, err.Error())
		case !errs.Has(FieldStart) && end.Before(start):
			errs.Add(FieldEnd, "must not precede start")
		default:
			m.EndDate = end
		}
	}
	return m, errs
}

// StandardInput holds the raw fields of a qualifying standard.
type StandardInput struct {
	Set    string
	Name   string
	Event  string
	Course string
	Gender string
	AgeMin string
	AgeMax string
	Time   string
}

// Validate decodes the input into a standard. Empty gender means mixed and
// empty age bounds are open.
func (in StandardInput) Validate() (model.Standard, Errors) {
	errs := Errors{}
	s := model.Standard{
		Set:  strings.TrimSpace(in.Set),
		Name: strings.TrimSpace(in.Name),
	}
	validateName(errs, FieldSet, s.Set)
	validateName(errs, FieldName, s.Name)

	ev, err := model.ParseEvent(in.Event)
	if err != nil {
		errs.Add(FieldEvent, err.Error())
	}
	s.Event = ev

	course, err := model.ParseCourse(in.Course)
	if err != nil {
		errs.Add(FieldCourse, err.Error())
	}
	s.Course = course

	s.Gender = model.GenderMixed
	if g := strings.TrimSpace(in.Gender); g != "" {
		gender, err := model.ParseGender(g)
		if err != nil {
			errs.Add(FieldGender, err.Error())
		} else {
			s.Gender = gender
		}
	}

	s.AgeMin = parseAge(errs, FieldAgeMin, in.AgeMin)
	s.AgeMax = parseAge(errs, FieldAgeMax, in.AgeMax)
	if s.AgeMin > 0 && s.AgeMax > 0 && s.AgeMax < s.AgeMin {
		errs.Add(FieldAgeMax, "must not be below age-min")
	}

	ms, ok := swimtime.Parse(strings.TrimSpace(in.Time))
	if !ok {
		errs.Add(FieldTime, "use M:SS.hh or SS.hh")
	}
	s.TimeMs = ms
	return s, errs
}

// Settings are the stats view filters after validation.
type Settings struct {
	Stroke           model.Stroke
	Since            *time.Time
	ThresholdPercent float64
}

// SettingsInput holds the raw fields of the stats settings form.
type SettingsInput struct {
	Stroke    string
	Since     string
	Threshold string
}

// Validate decodes the settings. Empty stroke and since clear the filter and
// an empty threshold keeps the default.
func (in SettingsInput) Validate() (Settings, Errors) {
	errs := Errors{}
	out := Settings{ThresholdPercent: compare.DefaultThresholdPercent}

	if s := strings.TrimSpace(in.Stroke); s != "" && s != "all" {
		stroke, err := model.ParseStroke(s)
		if err != nil {
			errs.Add(FieldStroke, err.Error())
		} else {
			out.Stroke = stroke
		}
	}

	if s := strings.TrimSpace(in.Since); s != "" {
		day, err := daterange.ParseDate(s)
		if err != nil {
			errs.Add(FieldSince, err.Error())
		} else {
			out.Since = &day
		}
	}

	if s := strings.TrimSpace(in.Threshold); s != "" {
		p, err := strconv.ParseFloat(s, 64)
		if err != nil {
			errs.Add(FieldThreshold, "must be a number")
		} else if err := compare.ValidateThreshold(p); err != nil {
			errs.Add(FieldThreshold, err.Error())
		} else {
			out.ThresholdPercent = p
		}
	}
	return out, errs
}

func validateName(errs Errors, field, value string) {
	switch {
	case value == "":
		errs.Add(field, "required")
	case len(value) > maxNameLen:
		errs.Add(field, fmt.Sprintf("must be at most %d characters", maxNameLen))
	}
}

func parseAge(errs Errors, field, value string) int {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 || n > 120 {
		errs.Add(field, "must be an age between 0 and 120")
		return 0
	}
	return n
}
