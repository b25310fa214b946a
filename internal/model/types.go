// Package model defines shared data structures.
package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Stroke identifies a swimming stroke.
type Stroke string

// Strokes in display order.
const (
	StrokeFree   Stroke = "free"
	StrokeBack   Stroke = "back"
	StrokeBreast Stroke = "breast"
	StrokeFly    Stroke = "fly"
	StrokeIM     Stroke = "im"
)

// Strokes lists all strokes in display order.
var Strokes = []Stroke{StrokeFree, StrokeBack, StrokeBreast, StrokeFly, StrokeIM}

var strokeAliases = map[string]Stroke{
	"free":         StrokeFree,
	"freestyle":    StrokeFree,
	"fr":           StrokeFree,
	"back":         StrokeBack,
	"backstroke":   StrokeBack,
	"bk":           StrokeBack,
	"breast":       StrokeBreast,
	"breaststroke": StrokeBreast,
	"br":           StrokeBreast,
	"fly":          StrokeFly,
	"butterfly":    StrokeFly,
	"im":           StrokeIM,
	"medley":       StrokeIM,
}

// ParseStroke accepts common stroke names and abbreviations.
func ParseStroke(s string) (Stroke, error) {
	st, ok := strokeAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", fmt.Errorf("unknown stroke %q", s)
	}
	return st, nil
}

// Order returns the display position of the stroke.
func (s Stroke) Order() int {
	for i, st := range Strokes {
		if st == s {
			return i
		}
	}
	return len(Strokes)
}

// Label returns the display name of the stroke.
func (s Stroke) Label() string {
	switch s {
	case StrokeFree:
		return "Free"
	case StrokeBack:
		return "Back"
	case StrokeBreast:
		return "Breast"
	case StrokeFly:
		return "Fly"
	case StrokeIM:
		return "IM"
	default:
		return string(s)
	}
}

// Course is the pool length category.
type Course string

// Supported courses.
const (
	CourseSCY Course = "SCY"
	CourseSCM Course = "SCM"
	CourseLCM Course = "LCM"
)

// Courses lists all courses.
var Courses = []Course{CourseSCY, CourseSCM, CourseLCM}

// ParseCourse parses a course code case-insensitively.
func ParseCourse(s string) (Course, error) {
	c := Course(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Courses {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown course %q (use SCY, SCM or LCM)", s)
}

// Gender is the competition category of a swimmer or standard.
type Gender string

// Supported genders.
const (
	GenderFemale Gender = "F"
	GenderMale   Gender = "M"
	GenderMixed  Gender = "X"
)

// ParseGender parses F, M or X.
func ParseGender(s string) (Gender, error) {
	switch g := Gender(strings.ToUpper(strings.TrimSpace(s))); g {
	case GenderFemale, GenderMale, GenderMixed:
		return g, nil
	}
	return "", fmt.Errorf("unknown gender %q (use F, M or X)", s)
}

// Event is a distance and stroke, e.g. 100 Free.
type Event struct {
	Distance int
	Stroke   Stroke
}

// String renders the event as "100 Free".
func (e Event) String() string {
	return fmt.Sprintf("%d %s", e.Distance, e.Stroke.Label())
}

// Key renders the event as a compact identifier, e.g. "100free".
func (e Event) Key() string {
	return fmt.Sprintf("%d%s", e.Distance, e.Stroke)
}

// ParseEvent parses "100 free", "100free" or "100-fly".
func ParseEvent(s string) (Event, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 {
		return Event{}, fmt.Errorf("invalid event %q (expected e.g. \"100 free\")", s)
	}
	distance, err := strconv.Atoi(s[:i])
	if err != nil || distance <= 0 {
		return Event{}, fmt.Errorf("invalid event distance in %q", s)
	}
	rest := strings.TrimLeft(s[i:], " -_")
	stroke, err := ParseStroke(rest)
	if err != nil {
		return Event{}, err
	}
	return Event{Distance: distance, Stroke: stroke}, nil
}

// Swimmer describes the person whose times are tracked.
type Swimmer struct {
	Name      string
	BirthDate time.Time
	Gender    Gender
}

// Meet is a competition spanning one or more days.
type Meet struct {
	ID        int64
	Name      string
	Location  string
	Course    Course
	StartDate time.Time
	EndDate   time.Time
}

// Result is a recorded swim.
type Result struct {
	ID     int64
	MeetID int64
	Event  Event
	Course Course
	TimeMs int64
	SwamOn time.Time
	Notes  string

	MeetName string
}

// Standard is a named qualifying time.
type Standard struct {
	ID     int64
	Set    string
	Name   string
	Event  Event
	Course Course
	Gender Gender
	AgeMin int
	AgeMax int
	TimeMs int64
}

// AppliesTo reports whether the standard covers a swimmer of the given age.
// A zero bound is open.
func (s Standard) AppliesTo(age int) bool {
	if s.AgeMin > 0 && age < s.AgeMin {
		return false
	}
	if s.AgeMax > 0 && age > s.AgeMax {
		return false
	}
	return true
}

// PersonalBest is the fastest result for an event in a course.
type PersonalBest struct {
	Event    Event
	Course   Course
	TimeMs   int64
	SwamOn   time.Time
	MeetName string
	Swims    int
}

// ResultFilter narrows result queries. Zero values match everything.
type ResultFilter struct {
	Event  *Event
	Course Course
	Stroke Stroke
	MeetID int64
	Since  *time.Time
	Last   int
}

// StandardFilter narrows standard queries. Zero values match everything.
type StandardFilter struct {
	Set    string
	Event  *Event
	Course Course
	Gender Gender
	Age    int
}

// Config defines application settings after merging file and flags.
type Config struct {
	Swimmer          Swimmer
	DefaultCourse    Course
	ThresholdPercent float64
	StandardSet      string
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Course           Course
	Stroke           Stroke
	Event            *Event
	Since            *time.Time
	ThresholdPercent float64
	StandardSet      string
	Swimmer          Swimmer
}
