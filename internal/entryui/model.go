// Package entryui provides the Bubble Tea result entry form.
package entryui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/swimlog/internal/compare"
	"github.com/verte-zerg/swimlog/internal/form"
	"github.com/verte-zerg/swimlog/internal/model"
	"github.com/verte-zerg/swimlog/internal/stats"
	"github.com/verte-zerg/swimlog/internal/swimtime"
)

// Recorder stores results and answers the lookups shown while typing.
type Recorder interface {
	RecordResult(ctx context.Context, r model.Result) (int64, error)
	PersonalBest(ctx context.Context, event model.Event, course model.Course) (model.PersonalBest, bool, error)
	Standards(ctx context.Context, filter model.StandardFilter) ([]model.Standard, error)
}

const (
	fieldEvent = iota
	fieldCourse
	fieldTime
	fieldDate
	fieldMeet
	fieldNotes
)

var fieldKeys = []string{
	form.FieldEvent,
	form.FieldCourse,
	form.FieldTime,
	form.FieldDate,
	form.FieldMeet,
	"notes",
}

var (
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	previewStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	goodStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	almostStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	boxStyle     = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#3A8FC8")).
			Padding(1, 2)
)

// Model implements the Bubble Tea entry UI.
type Model struct {
	rec    Recorder
	config model.Config
	now    func() time.Time

	inputs []textinput.Model
	focus  int
	errs   form.Errors

	best    *model.PersonalBest
	entries []compare.Entry
	lookup  string

	saved   int
	status  string
	lastErr string

	width  int
	height int
}

// NewModel constructs an entry UI. Values in initial prefill the form.
func NewModel(rec Recorder, cfg model.Config, initial form.ResultInput, now func() time.Time) *Model {
	if now == nil {
		now = time.Now
	}
	m := &Model{rec: rec, config: cfg, now: now, errs: form.Errors{}}
	m.inputs = []textinput.Model{
		newInput("Event", "100 free"),
		newInput("Course", "SCY/SCM/LCM"),
		newInput("Time", "1:02.34"),
		newInput("Date", "YYYY-MM-DD (today)"),
		newInput("Meet ID", "optional"),
		newInput("Notes", "optional"),
	}
	if initial.Course == "" && initial.MeetID == "" {
		initial.Course = string(cfg.DefaultCourse)
	}
	m.inputs[fieldEvent].SetValue(initial.Event)
	m.inputs[fieldCourse].SetValue(initial.Course)
	m.inputs[fieldTime].SetValue(initial.Time)
	m.inputs[fieldDate].SetValue(initial.Date)
	m.inputs[fieldMeet].SetValue(initial.MeetID)
	m.inputs[fieldNotes].SetValue(initial.Notes)
	m.setFocus(0)
	m.refreshLookup()
	return m
}

func newInput(label, placeholder string) textinput.Model {
	input := textinput.New()
	input.Prompt = fmt.Sprintf("%-8s ", label+":")
	input.Placeholder = placeholder
	input.CharLimit = 64
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Saved returns how many results were recorded in this session.
func (m *Model) Saved() int {
	return m.saved
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyTab, tea.KeyDown:
			return m, m.setFocus(m.focus + 1)
		case tea.KeyShiftTab, tea.KeyUp:
			return m, m.setFocus(m.focus - 1)
		case tea.KeyCtrlS:
			m.submit()
			return m, m.setFocus(fieldTime)
		case tea.KeyEnter:
			if m.focus < len(m.inputs)-1 {
				return m, m.setFocus(m.focus + 1)
			}
			m.submit()
			return m, m.setFocus(fieldTime)
		}
	}
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	if _, ok := msg.(tea.KeyMsg); ok {
		m.status = ""
		m.validateLive()
		m.refreshLookup()
	}
	return m, cmd
}

// View implements tea.Model.
func (m *Model) View() string {
	lines := []string{previewStyle.Render("Record a result"), ""}
	for i, input := range m.inputs {
		line := input.View()
		if msg, ok := m.errs[fieldKeys[i]]; ok {
			line += "  " + errorStyle.Render(msg)
		}
		lines = append(lines, line)
		if i == fieldTime {
			lines = append(lines, labelStyle.Render("         = ")+previewStyle.Render(m.timePreview()))
		}
	}
	lines = append(lines, "")
	lines = append(lines, m.renderComparison()...)
	if m.status != "" {
		lines = append(lines, "", goodStyle.Render(m.status))
	}
	if m.lastErr != "" {
		lines = append(lines, "", errorStyle.Render(m.lastErr))
	}
	content := boxStyle.Render(strings.Join(lines, "\n"))
	footer := m.renderFooter()
	if m.width == 0 || m.height == 0 {
		return content + "\n" + footer
	}
	if m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	body := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

func (m *Model) setFocus(idx int) tea.Cmd {
	count := len(m.inputs)
	if idx < 0 {
		idx = count - 1
	}
	if idx >= count {
		idx = 0
	}
	m.focus = idx
	var cmd tea.Cmd
	for i := range m.inputs {
		if i == idx {
			cmd = m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
	return cmd
}

func (m *Model) input() form.ResultInput {
	return form.ResultInput{
		Event:  m.inputs[fieldEvent].Value(),
		Course: m.inputs[fieldCourse].Value(),
		Time:   m.inputs[fieldTime].Value(),
		Date:   m.inputs[fieldDate].Value(),
		MeetID: m.inputs[fieldMeet].Value(),
		Notes:  m.inputs[fieldNotes].Value(),
	}
}

// validateLive shows errors only for fields that already hold text.
func (m *Model) validateLive() {
	_, errs := m.input().Validate(m.now())
	m.errs = form.Errors{}
	for i, key := range fieldKeys {
		if strings.TrimSpace(m.inputs[i].Value()) == "" {
			continue
		}
		if msg, ok := errs[key]; ok {
			m.errs[key] = msg
		}
	}
}

func (m *Model) timePreview() string {
	raw := strings.TrimSpace(m.inputs[fieldTime].Value())
	if raw == "" {
		return "-"
	}
	ms, ok := swimtime.Parse(raw)
	if !ok {
		return "invalid time"
	}
	return swimtime.Format(ms)
}

func (m *Model) currentTime() *int64 {
	ms, ok := swimtime.Parse(strings.TrimSpace(m.inputs[fieldTime].Value()))
	if !ok {
		return nil
	}
	return &ms
}

func (m *Model) refreshLookup() {
	event, err := model.ParseEvent(m.inputs[fieldEvent].Value())
	if err != nil {
		m.clearLookup()
		return
	}
	course, err := model.ParseCourse(m.inputs[fieldCourse].Value())
	if err != nil {
		m.clearLookup()
		return
	}
	key := event.Key() + "|" + string(course)
	if key == m.lookup {
		m.recompare()
		return
	}
	m.lookup = key
	m.best = nil
	m.lastErr = ""
	ctx := context.Background()
	pb, ok, err := m.rec.PersonalBest(ctx, event, course)
	if err != nil {
		m.lastErr = fmt.Sprintf("failed to load personal best: %v", err)
	} else if ok {
		m.best = &pb
	}
	now := m.now()
	standards, err := m.rec.Standards(ctx, model.StandardFilter{
		Set:    m.config.StandardSet,
		Event:  &event,
		Course: course,
		Gender: m.config.Swimmer.Gender,
		Age:    stats.AgeOn(m.config.Swimmer.BirthDate, now),
	})
	if err != nil {
		m.lastErr = fmt.Sprintf("failed to load standards: %v", err)
		standards = nil
	}
	m.entries = compare.Against(nil, standards, m.config.ThresholdPercent)
	m.recompare()
}

func (m *Model) clearLookup() {
	m.lookup = ""
	m.best = nil
	m.entries = nil
}

func (m *Model) recompare() {
	if len(m.entries) == 0 {
		return
	}
	ms := m.currentTime()
	for i := range m.entries {
		m.entries[i].Result = compare.Compare(ms, m.entries[i].Standard.TimeMs, m.config.ThresholdPercent)
	}
}

func (m *Model) renderComparison() []string {
	if m.lookup == "" {
		return []string{labelStyle.Render("Enter an event and course to see your best and standards.")}
	}
	var lines []string
	ms := m.currentTime()
	switch {
	case m.best == nil:
		lines = append(lines, labelStyle.Render("Personal best: none yet"))
	case ms != nil && *ms < m.best.TimeMs:
		diff := swimtime.FormatDiff(*ms - m.best.TimeMs)
		lines = append(lines, goodStyle.Render(fmt.Sprintf("Personal best: %s  new PB (%s)", swimtime.Format(m.best.TimeMs), diff)))
	case ms != nil:
		diff := swimtime.FormatDiff(*ms - m.best.TimeMs)
		lines = append(lines, labelStyle.Render(fmt.Sprintf("Personal best: %s  (%s)", swimtime.Format(m.best.TimeMs), diff)))
	default:
		lines = append(lines, labelStyle.Render(fmt.Sprintf("Personal best: %s", swimtime.Format(m.best.TimeMs))))
	}
	if len(m.entries) == 0 {
		return append(lines, labelStyle.Render("No matching standards."))
	}
	for _, e := range m.entries {
		text := fmt.Sprintf("%-12s %8s  %-8s %s", e.Standard.Name, swimtime.Format(e.Standard.TimeMs), stats.StatusLabel(e.Result.Status), e.Result.DifferenceDisplay())
		lines = append(lines, statusStyle(e.Result.Status).Render(strings.TrimRight(text, " ")))
	}
	return lines
}

func statusStyle(s compare.Status) lipgloss.Style {
	switch s {
	case compare.StatusAchieved:
		return goodStyle
	case compare.StatusAlmost:
		return almostStyle
	default:
		return labelStyle
	}
}

func (m *Model) submit() {
	m.status = ""
	m.lastErr = ""
	result, errs := m.input().Validate(m.now())
	m.errs = errs
	if len(errs) > 0 {
		return
	}
	id, err := m.rec.RecordResult(context.Background(), result)
	if err != nil {
		m.lastErr = err.Error()
		return
	}
	m.saved++
	m.status = fmt.Sprintf("Saved #%d: %s %s", id, result.Event, swimtime.Format(result.TimeMs))
	m.lookup = ""
	m.refreshLookup()
	m.inputs[fieldTime].SetValue("")
	m.inputs[fieldNotes].SetValue("")
	m.recompare()
}

func (m *Model) renderFooter() string {
	segments := []string{"tab: next field", "enter/ctrl+s: save", "esc: quit"}
	if m.saved > 0 {
		segments = append(segments, fmt.Sprintf("Saved %d", m.saved))
	}
	if m.config.Swimmer.Name != "" {
		segments = append(segments, m.config.Swimmer.Name)
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}
