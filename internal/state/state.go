// Package state holds the persisted session and UI filter state.
package state

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"

	"github.com/verte-zerg/swimlog/internal/model"
)

// DefaultSessionTTL is how long a sign-in stays active.
const DefaultSessionTTL = 30 * 24 * time.Hour

// Session identifies the swimmer currently using the tracker.
type Session struct {
	Token      string    `toml:"token,omitempty"`
	Name       string    `toml:"name,omitempty"`
	SignedInAt time.Time `toml:"signed-in-at,omitempty"`
	ExpiresAt  time.Time `toml:"expires-at,omitempty"`
}

// SignIn starts a new session for name, replacing any previous one.
func (s *Session) SignIn(name string, now time.Time, ttl time.Duration) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("swimmer name is required")
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	s.Token = uuid.NewString()
	s.Name = name
	s.SignedInAt = now.UTC()
	s.ExpiresAt = now.UTC().Add(ttl)
	return nil
}

// SignOut clears the session.
func (s *Session) SignOut() {
	*s = Session{}
}

// Active reports whether the session is signed in and not expired.
func (s Session) Active(now time.Time) bool {
	if s.Token == "" || s.Name == "" {
		return false
	}
	if _, err := uuid.Parse(s.Token); err != nil {
		return false
	}
	return now.Before(s.ExpiresAt)
}

// Filters is the UI filter state shared by the stats views.
type Filters struct {
	Course        model.Course `toml:"course,omitempty"`
	ShowStandards bool         `toml:"show-standards"`
}

// CycleCourse advances the course filter: all, SCY, SCM, LCM, all.
func (f *Filters) CycleCourse() model.Course {
	switch f.Course {
	case "":
		f.Course = model.CourseSCY
	case model.CourseSCY:
		f.Course = model.CourseSCM
	case model.CourseSCM:
		f.Course = model.CourseLCM
	default:
		f.Course = ""
	}
	return f.Course
}

// CourseLabel renders the course filter for display.
func (f Filters) CourseLabel() string {
	if f.Course == "" {
		return "all"
	}
	return string(f.Course)
}

// ToggleStandards flips the standards overlay.
func (f *Filters) ToggleStandards() bool {
	f.ShowStandards = !f.ShowStandards
	return f.ShowStandards
}

// State is the persisted client state.
type State struct {
	Session Session `toml:"session"`
	Filters Filters `toml:"filters"`
}

// Default returns the state used when nothing was saved yet.
func Default() State {
	return State{Filters: Filters{ShowStandards: true}}
}

// Store loads and saves state at a file path.
type Store struct {
	Path string
}

// NewStore returns a state store for path.
func NewStore(path string) *Store {
	return &Store{Path: path}
}

// Load reads the state file. A missing file yields Default.
func (s *Store) Load() (State, error) {
	if s.Path == "" {
		return State{}, fmt.Errorf("state path is empty")
	}
	st := Default()
	if _, err := os.Stat(s.Path); err != nil {
		if os.IsNotExist(err) {
			return st, nil
		}
		return State{}, fmt.Errorf("failed to stat state: %w", err)
	}
	if _, err := toml.DecodeFile(s.Path, &st); err != nil {
		return State{}, fmt.Errorf("failed to decode state: %w", err)
	}
	if st.Filters.Course != "" {
		course, err := model.ParseCourse(string(st.Filters.Course))
		if err != nil {
			st.Filters.Course = ""
		} else {
			st.Filters.Course = course
		}
	}
	return st, nil
}

// Save writes the state file atomically.
func (s *Store) Save(st State) error {
	if s.Path == "" {
		return fmt.Errorf("state path is empty")
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(st); err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		return fmt.Errorf("failed to create state dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.Path), ".state-*.toml")
	if err != nil {
		return fmt.Errorf("failed to create temp state: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close state: %w", err)
	}
	if err := os.Rename(tmpPath, s.Path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to save state: %w", err)
	}
	return nil
}
