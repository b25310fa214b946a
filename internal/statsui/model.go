// Package statsui provides the Bubble Tea stats interface.
package statsui

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/swimlog/internal/compare"
	"github.com/verte-zerg/swimlog/internal/daterange"
	"github.com/verte-zerg/swimlog/internal/form"
	"github.com/verte-zerg/swimlog/internal/model"
	"github.com/verte-zerg/swimlog/internal/state"
	"github.com/verte-zerg/swimlog/internal/stats"
)

const (
	tabBests = iota
	tabStandards
	tabProgress
)

const (
	plotHeight = 12
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#3A8FC8"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
	cardStyle       = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
)

// Options wires the stats UI to its data and persisted state.
type Options struct {
	Source stats.Source
	Config model.StatsConfig
	State  state.State
	// Save persists state after a filter change. Nil disables persistence.
	Save func(state.State) error
	Now  func() time.Time
}

type eventRef struct {
	event  model.Event
	course model.Course
}

// Model implements the Bubble Tea stats UI.
type Model struct {
	src   stats.Source
	cfg   model.StatsConfig
	state state.State
	save  func(state.State) error
	now   func() time.Time

	report   stats.Report
	progress stats.Progress
	events   []eventRef
	eventIdx int
	errMsg   string

	tabs        []string
	activeTab   int
	viewports   []viewport.Model
	bestsTable  table.Model
	tableHeight int

	width  int
	height int

	filterMode   bool
	filterInputs []textinput.Model
	filterIndex  int
	filterError  string
}

// NewModel constructs a stats UI model.
func NewModel(opts Options) *Model {
	m := &Model{
		src:   opts.Source,
		cfg:   opts.Config,
		state: opts.State,
		save:  opts.Save,
		now:   opts.Now,
		tabs:  []string{"Best Times", "Standards", "Progress"},
	}
	if m.now == nil {
		m.now = time.Now
	}
	m.cfg.Course = m.state.Filters.Course
	m.initInputs()
	m.bestsTable = buildBestsTable(nil, 0, 1)
	m.initViewports()
	m.refreshReport()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderTabContents()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.filterMode {
			return m.updateFilter(msg)
		}
		if msg.String() == "q" {
			return m, tea.Quit
		}
		switch msg.String() {
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "c":
			m.state.Filters.CycleCourse()
			m.cfg.Course = m.state.Filters.Course
			m.persist()
			m.refreshReport()
			return m, nil
		case "s":
			m.state.Filters.ToggleStandards()
			m.persist()
			m.renderTabContents()
			return m, nil
		case "[":
			m.moveEvent(-1)
			return m, nil
		case "]":
			m.moveEvent(1)
			return m, nil
		case "/":
			return m.startFilter()
		case "g", "home":
			if m.activeTab == tabBests {
				m.bestsTable.GotoTop()
			} else {
				m.viewports[m.activeTab].GotoTop()
			}
			return m, nil
		case "G", "end":
			if m.activeTab == tabBests {
				m.bestsTable.GotoBottom()
			} else {
				m.viewports[m.activeTab].GotoBottom()
			}
			return m, nil
		case "enter":
			if m.activeTab == tabBests {
				m.selectEventFromTable()
				m.activeTab = tabProgress
				m.bestsTable.Blur()
				return m, tea.ClearScreen
			}
			return m, nil
		default:
			if m.activeTab == tabBests {
				var cmd tea.Cmd
				m.bestsTable, cmd = m.bestsTable.Update(msg)
				return m, cmd
			}
			vp := m.viewports[m.activeTab]
			var cmd tea.Cmd
			vp, cmd = vp.Update(msg)
			m.viewports[m.activeTab] = vp
			return m, cmd
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(bodyHeight), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

// State returns the current persisted state.
func (m *Model) State() state.State {
	return m.state
}

func (m *Model) persist() {
	if m.save == nil {
		return
	}
	if err := m.save(m.state); err != nil {
		m.errMsg = fmt.Sprintf("failed to save state: %v", err)
	}
}

func (m *Model) initViewports() {
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
}

func (m *Model) initInputs() {
	m.filterInputs = []textinput.Model{
		newFilterInput("Stroke (free/back/breast/fly/im): "),
		newFilterInput("Since (YYYY-MM-DD): "),
		newFilterInput("Threshold %: "),
	}
	m.setInputsFromConfig()
}

func newFilterInput(prompt string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.CharLimit = 0
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

func (m *Model) setInputsFromConfig() {
	if len(m.filterInputs) == 0 {
		return
	}
	m.filterInputs[0].SetValue(string(m.cfg.Stroke))
	if m.cfg.Since != nil {
		m.filterInputs[1].SetValue(daterange.FormatDate(*m.cfg.Since))
	} else {
		m.filterInputs[1].SetValue("")
	}
	m.filterInputs[2].SetValue(fmt.Sprintf("%g", m.cfg.ThresholdPercent))
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	if tabsHeight < 1 {
		tabsHeight = 1
	}
	headerHeight = tabsHeight + 1
	footerHeight = 1
	if !m.filterMode && m.errMsg != "" {
		footerHeight++
	}
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, vpHeight, _ := m.layoutHeights()
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = vpHeight
	}
	m.setTableSize(m.width, vpHeight)
	for i := range m.filterInputs {
		promptWidth := lipgloss.Width(m.filterInputs[i].Prompt)
		m.filterInputs[i].Width = maxInt(10, m.width-promptWidth-2)
	}
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	if count == 0 {
		return
	}
	next := m.activeTab + delta
	if next < 0 {
		next = count - 1
	}
	if next >= count {
		next = 0
	}
	m.activeTab = next
	if m.activeTab == tabBests {
		m.bestsTable.Focus()
	} else {
		m.bestsTable.Blur()
	}
}

func (m *Model) moveEvent(delta int) {
	if len(m.events) == 0 {
		return
	}
	m.eventIdx = (m.eventIdx + delta + len(m.events)) % len(m.events)
	m.refreshProgress()
	m.renderTabContents()
}

func (m *Model) selectEventFromTable() {
	idx := m.bestsTable.Cursor()
	if idx < 0 || idx >= len(m.events) {
		return
	}
	m.eventIdx = idx
	m.refreshProgress()
	m.renderTabContents()
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	tabs := padLines(m.renderTabs(), m.width)
	filters := padLines(m.renderFilterSummary(), m.width)
	return tabs + "\n" + filters
}

func (m *Model) renderFilterSummary() string {
	stroke := "all"
	if m.cfg.Stroke != "" {
		stroke = m.cfg.Stroke.Label()
	}
	since := "any"
	if m.cfg.Since != nil {
		since = daterange.FormatDate(*m.cfg.Since)
	}
	set := m.cfg.StandardSet
	if set == "" {
		set = "all"
	}
	std := "on"
	if !m.state.Filters.ShowStandards {
		std = "off"
	}
	summary := fmt.Sprintf("Course: %s  stroke=%s  since=%s  threshold=%g%%  set=%s  lines=%s",
		m.state.Filters.CourseLabel(), stroke, since, m.cfg.ThresholdPercent, set, std)
	if m.report.AgeGroup != "" && m.report.Age > 0 {
		summary += fmt.Sprintf("  age=%d (%s)", m.report.Age, m.report.AgeGroup)
	}
	return headerStyle.Render(truncateLine(summary, m.width))
}

func (m *Model) renderHelp() string {
	help := "Nav: left/right  Course: c  Settings: /  Quit: q"
	switch m.activeTab {
	case tabBests:
		help = "Nav: left/right  Select: up/down  Chart: enter  Course: c  Settings: /  Quit: q"
	case tabProgress:
		help = "Nav: left/right  Event: [ ]  Lines: s  Course: c  Settings: /  Quit: q"
	}
	return headerStyle.Render(help)
}

func (m *Model) renderFooter() string {
	if m.filterMode {
		return headerStyle.Render("tab/shift+tab: next field  enter: apply  esc: cancel")
	}
	if m.errMsg != "" {
		return m.renderHelp() + "\n" + errorStyle.Render(m.errMsg)
	}
	return m.renderHelp()
}

func (m *Model) renderFilterForm() string {
	lines := []string{"Settings (enter to apply, esc to cancel)"}
	for _, input := range m.filterInputs {
		lines = append(lines, input.View())
	}
	if m.filterError != "" {
		lines = append(lines, errorStyle.Render(m.filterError))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderBody(height int) string {
	if m.filterMode {
		return fitLines(m.renderFilterForm(), m.width, height)
	}
	if m.activeTab == tabBests {
		if len(m.report.Bests) == 0 {
			return fitLines("No results found. Add one with: swimlog add", m.width, height)
		}
		return fitLines(tableMutedStyle.Render(m.bestsTable.View()), m.width, height)
	}
	return fitLines(m.viewports[m.activeTab].View(), m.width, height)
}

func (m *Model) refreshReport() {
	report, err := stats.BuildReport(context.Background(), m.src, m.cfg, m.now())
	if err != nil {
		m.errMsg = err.Error()
		for i := range m.viewports {
			m.viewports[i].SetContent("Failed to load stats.")
		}
		return
	}
	m.errMsg = ""
	m.report = report
	m.events = eventsFromBests(report.Groups)
	if m.eventIdx >= len(m.events) {
		m.eventIdx = 0
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	_, bodyHeight, _ := m.layoutHeights()
	m.bestsTable.SetRows(bestsTableRows(report.Groups))
	m.tableHeight = 0
	m.setTableSize(width, bodyHeight)
	if m.activeTab == tabBests {
		m.bestsTable.Focus()
	}
	m.refreshProgress()
	m.renderTabContents()
}

func (m *Model) refreshProgress() {
	m.progress = stats.Progress{}
	if len(m.events) == 0 {
		return
	}
	ref := m.events[m.eventIdx]
	cfg := m.cfg
	cfg.Course = ref.course
	p, err := stats.BuildProgress(context.Background(), m.src, cfg, ref.event, m.now())
	if err != nil {
		m.errMsg = err.Error()
		return
	}
	m.progress = p
}

func (m *Model) renderTabContents() {
	if len(m.viewports) == 0 {
		return
	}
	if m.errMsg != "" && len(m.report.Bests) == 0 {
		for i := range m.viewports {
			m.viewports[i].SetContent("Failed to load stats.")
		}
		return
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.viewports[tabStandards].SetContent(renderStandards(m.report))
	m.viewports[tabProgress].SetContent(m.renderProgress(width))
}

func renderStandards(report stats.Report) string {
	var buf bytes.Buffer
	if err := stats.RenderComparisons(&buf, report.Comparisons); err != nil {
		return fmt.Sprintf("Failed to render standards: %v", err)
	}
	return strings.TrimRight(summaryCards(report)+"\n"+buf.String(), "\n")
}

func summaryCards(report stats.Report) string {
	var achieved, almost, open int
	for _, c := range report.Comparisons {
		for _, e := range c.Entries {
			switch e.Result.Status {
			case compare.StatusAchieved:
				achieved++
			case compare.StatusAlmost:
				almost++
			default:
				open++
			}
		}
	}
	cards := []string{
		metricCard("Events", fmt.Sprintf("%d", len(report.Bests))),
		metricCard("Achieved", fmt.Sprintf("%d", achieved)),
		metricCard("Almost", fmt.Sprintf("%d", almost)),
		metricCard("To go", fmt.Sprintf("%d", open)),
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func (m *Model) renderProgress(width int) string {
	if len(m.events) == 0 {
		return "No results found."
	}
	p := m.progress
	if !m.state.Filters.ShowStandards {
		p.Standards = nil
	}
	header := headerStyle.Render(fmt.Sprintf("Event %d/%d", m.eventIdx+1, len(m.events)))
	var buf bytes.Buffer
	if err := stats.RenderProgress(&buf, p, width, plotHeight, true); err != nil {
		return fmt.Sprintf("Failed to render progress: %v", err)
	}
	return strings.TrimRight(header+"\n"+buf.String(), "\n")
}

func eventsFromBests(groups []stats.StrokeGroup) []eventRef {
	var out []eventRef
	for _, g := range groups {
		for _, pb := range g.Bests {
			out = append(out, eventRef{event: pb.Event, course: pb.Course})
		}
	}
	return out
}

func bestsColumns() []table.Column {
	return []table.Column{
		{Title: "Event", Width: 12},
		{Title: "Course", Width: 6},
		{Title: "Best", Width: 9},
		{Title: "Date", Width: 10},
		{Title: "Meet", Width: 24},
		{Title: "Swims", Width: 5},
	}
}

func bestsTableRows(groups []stats.StrokeGroup) []table.Row {
	raw := stats.BestsRows(groups)
	rows := make([]table.Row, 0, len(raw))
	for _, r := range raw {
		rows = append(rows, table.Row(r))
	}
	return rows
}

func buildBestsTable(groups []stats.StrokeGroup, width, height int) table.Model {
	t := table.New(
		table.WithColumns(bestsColumns()),
		table.WithRows(bestsTableRows(groups)),
		table.WithHeight(maxInt(1, height-1)),
		table.WithFocused(true),
	)
	t.SetWidth(width)
	t.SetStyles(tableStyles())
	return t
}

func (m *Model) setTableSize(width, height int) {
	viewportHeight := maxInt(1, height-1)
	if m.tableHeight == viewportHeight && m.bestsTable.Width() == width {
		return
	}
	m.tableHeight = viewportHeight
	m.bestsTable.SetWidth(width)
	m.bestsTable.SetHeight(viewportHeight)
	if viewHeight := lipgloss.Height(m.bestsTable.View()); viewHeight > height {
		m.bestsTable.SetHeight(maxInt(1, viewportHeight-(viewHeight-height)))
	}
}

func tableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func (m *Model) startFilter() (tea.Model, tea.Cmd) {
	m.filterMode = true
	m.filterError = ""
	m.setInputsFromConfig()
	return m, m.setFilterIndex(0)
}

func (m *Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.filterMode = false
		m.filterError = ""
		return m, nil
	case tea.KeyEnter:
		if err := m.applyFilter(); err != nil {
			m.filterError = err.Error()
			return m, nil
		}
		m.filterMode = false
		m.filterError = ""
		m.refreshReport()
		m.updateLayout()
		return m, nil
	case tea.KeyTab:
		return m, m.setFilterIndex(m.filterIndex + 1)
	case tea.KeyShiftTab:
		return m, m.setFilterIndex(m.filterIndex - 1)
	}
	var cmd tea.Cmd
	m.filterInputs[m.filterIndex], cmd = m.filterInputs[m.filterIndex].Update(msg)
	return m, cmd
}

func (m *Model) setFilterIndex(idx int) tea.Cmd {
	count := len(m.filterInputs)
	if count == 0 {
		return nil
	}
	if idx < 0 {
		idx = count - 1
	}
	if idx >= count {
		idx = 0
	}
	m.filterIndex = idx
	var cmd tea.Cmd
	for i := range m.filterInputs {
		if i == m.filterIndex {
			cmd = m.filterInputs[i].Focus()
		} else {
			m.filterInputs[i].Blur()
		}
	}
	return cmd
}

func (m *Model) applyFilter() error {
	settings, errs := form.SettingsInput{
		Stroke:    m.filterInputs[0].Value(),
		Since:     m.filterInputs[1].Value(),
		Threshold: m.filterInputs[2].Value(),
	}.Validate()
	if err := errs.Err(); err != nil {
		return err
	}
	m.cfg.Stroke = settings.Stroke
	m.cfg.Since = settings.Since
	m.cfg.ThresholdPercent = settings.ThresholdPercent
	m.eventIdx = 0
	return nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func padLines(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	return strings.Join(lines, "\n")
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
