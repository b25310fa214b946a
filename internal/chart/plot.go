package chart

import (
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/term"

	"github.com/verte-zerg/swimlog/internal/daterange"
	"github.com/verte-zerg/swimlog/internal/swimtime"
)

// Point is one swim on the progress chart.
type Point struct {
	Day    time.Time
	TimeMs int64
}

// Series is a named sequence of points, in any order.
type Series struct {
	Name   string
	Points []Point
}

// Reference is a horizontal line such as a qualifying standard.
type Reference struct {
	Name   string
	TimeMs int64
}

type lineStyle struct {
	name   string
	period int
	on     int
}

type ansiColor struct {
	name string
	code string
}

const (
	defaultPlotHeight   = 10
	minPlotWidth        = 10
	axisLabelWidth      = 8
	axisSeparator       = " │ "
	colorReset          = "\x1b[0m"
	terminalWidthBackup = 80
)

var lineStyles = []lineStyle{
	{name: "solid", period: 1, on: 1},
	{name: "dashed", period: 6, on: 3},
	{name: "dotted", period: 4, on: 1},
	{name: "dashdot", period: 8, on: 3},
}

var colorPalette = []ansiColor{
	{name: "cyan", code: "\x1b[36m"},
	{name: "magenta", code: "\x1b[35m"},
	{name: "yellow", code: "\x1b[33m"},
	{name: "green", code: "\x1b[32m"},
	{name: "blue", code: "\x1b[34m"},
}

// Plot renders a braille plot of swim times over calendar days.
func Plot(w io.Writer, title string, series []Series, refs []Reference, width, height int) error {
	return plot(w, title, series, refs, width, height, false)
}

// PlotWithColor renders the plot with optional forced color output.
func PlotWithColor(w io.Writer, title string, series []Series, refs []Reference, width, height int, forceColor bool) error {
	return plot(w, title, series, refs, width, height, forceColor)
}

func plot(w io.Writer, title string, series []Series, refs []Reference, width, height int, forceColor bool) error {
	series = filterSeries(series)
	if len(series) == 0 {
		return nil
	}
	if height <= 0 {
		height = defaultPlotHeight
	}
	if width <= 0 {
		width = autoPlotWidth()
	}
	if width < minPlotWidth {
		width = minPlotWidth
	}

	firstDay, lastDay, minMs, maxMs := bounds(series)
	for _, r := range refs {
		if r.TimeMs < minMs {
			minMs = r.TimeMs
		}
		if r.TimeMs > maxMs {
			maxMs = r.TimeMs
		}
	}
	lo, hi := PadDomain(minMs, maxMs)
	ticks := PlanTicks(lo, hi)
	domainMin := float64(ticks[0])
	domainMax := float64(ticks[len(ticks)-1])
	if domainMax <= domainMin {
		domainMax = domainMin + 1
	}

	days := daterange.Span{Start: firstDay, End: lastDay}.Days()
	dotsX := width * 2
	dotsY := height * 4

	layers := make([][][]uint8, 0, len(series)+len(refs))
	for si, s := range series {
		cells := makeCells(height, width)
		style := lineStyles[si%len(lineStyles)]
		points := sortedPoints(s.Points)
		prevX, prevY := -1, -1
		for _, p := range points {
			px := dayToColumn(p.Day, firstDay, len(days), dotsX)
			py := valueToRow(float64(p.TimeMs), domainMin, domainMax, dotsY)
			if prevX >= 0 {
				drawLine(prevX, prevY, px, py, func(dx, dy int) {
					if style.shouldPlot(dx) {
						setBrailleDot(cells, dx, dy)
					}
				})
			} else {
				setBrailleDot(cells, px, py)
			}
			prevX, prevY = px, py
		}
		layers = append(layers, cells)
	}
	refStyle := lineStyles[2]
	for _, r := range refs {
		cells := makeCells(height, width)
		py := valueToRow(float64(r.TimeMs), domainMin, domainMax, dotsY)
		for x := 0; x < dotsX; x++ {
			if refStyle.shouldPlot(x) {
				setBrailleDot(cells, x, py)
			}
		}
		layers = append(layers, cells)
	}

	useColor := shouldUseColor(w, forceColor)
	axisLabels := makeAxisLabels(ticks, domainMin, domainMax, height)

	if title != "" {
		if _, err := fmt.Fprintln(w, title); err != nil {
			return err
		}
	}
	for y := 0; y < height; y++ {
		var row strings.Builder
		row.WriteString(fmt.Sprintf("%*s%s", axisLabelWidth, axisLabels[y], axisSeparator))
		for x := 0; x < width; x++ {
			mask, colorIdx := composeCell(layers, x, y)
			ch := brailleFromMask(mask)
			if useColor && colorIdx >= 0 {
				row.WriteString(colorPalette[colorIdx%len(colorPalette)].code)
				row.WriteRune(ch)
				row.WriteString(colorReset)
			} else {
				row.WriteRune(ch)
			}
		}
		if _, err := fmt.Fprintln(w, row.String()); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, renderDayAxis(firstDay, lastDay, width)); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, renderLegend(series, refs, useColor)); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	return nil
}

func filterSeries(series []Series) []Series {
	out := make([]Series, 0, len(series))
	for _, s := range series {
		if len(s.Points) == 0 {
			continue
		}
		out = append(out, s)
	}
	return out
}

func bounds(series []Series) (firstDay, lastDay time.Time, minMs, maxMs int64) {
	minMs = math.MaxInt64
	maxMs = math.MinInt64
	for _, s := range series {
		for _, p := range s.Points {
			if firstDay.IsZero() || p.Day.Before(firstDay) {
				firstDay = p.Day
			}
			if lastDay.IsZero() || p.Day.After(lastDay) {
				lastDay = p.Day
			}
			if p.TimeMs < minMs {
				minMs = p.TimeMs
			}
			if p.TimeMs > maxMs {
				maxMs = p.TimeMs
			}
		}
	}
	return firstDay, lastDay, minMs, maxMs
}

func sortedPoints(points []Point) []Point {
	out := append([]Point(nil), points...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Day.Before(out[j].Day)
	})
	return out
}

func dayToColumn(day, firstDay time.Time, dayCount, dotsX int) int {
	if dayCount <= 1 || dotsX <= 1 {
		return dotsX / 2
	}
	idx := daysBetween(firstDay, day)
	return int(math.Round(float64(idx) * float64(dotsX-1) / float64(dayCount-1)))
}

func daysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	da := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	db := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}

func autoPlotWidth() int {
	return PlotWidthFor(terminalWidth())
}

// PlotWidthFor computes a plot width that fits within the total available width.
func PlotWidthFor(totalWidth int) int {
	if totalWidth <= 0 {
		return minPlotWidth
	}
	axisWidth := axisLabelWidth + utf8.RuneCountInString(axisSeparator)
	plotWidth := totalWidth - axisWidth
	if plotWidth < minPlotWidth {
		plotWidth = minPlotWidth
	}
	return plotWidth
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

func shouldUseColor(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}

// makeAxisLabels places each tick label on the row nearest to its value.
func makeAxisLabels(ticks []int64, minVal, maxVal float64, height int) []string {
	labels := make([]string, height)
	for _, tick := range ticks {
		row := valueToRow(float64(tick), minVal, maxVal, height)
		if labels[row] == "" {
			labels[row] = swimtime.Format(tick)
		}
	}
	return labels
}

func renderDayAxis(firstDay, lastDay time.Time, width int) string {
	start := daterange.FormatDate(firstDay)
	end := daterange.FormatDate(lastDay)
	prefix := strings.Repeat(" ", axisLabelWidth+utf8.RuneCountInString(axisSeparator))
	if start == end {
		return prefix + start
	}
	gap := width - len(start) - len(end)
	if gap < 1 {
		return prefix + daterange.FormatRange(start, end)
	}
	return prefix + start + strings.Repeat(" ", gap) + end
}

func makeCells(height, width int) [][]uint8 {
	cells := make([][]uint8, height)
	for y := 0; y < height; y++ {
		cells[y] = make([]uint8, width)
	}
	return cells
}

func composeCell(layers [][][]uint8, x, y int) (uint8, int) {
	var mask uint8
	colorIdx := -1
	for i, cells := range layers {
		if y < 0 || y >= len(cells) {
			continue
		}
		if x < 0 || x >= len(cells[y]) {
			continue
		}
		cellMask := cells[y][x]
		if cellMask == 0 {
			continue
		}
		if colorIdx == -1 {
			colorIdx = i
		}
		mask |= cellMask
	}
	return mask, colorIdx
}

func (ls lineStyle) shouldPlot(x int) bool {
	if ls.period <= 1 {
		return true
	}
	if x < 0 {
		x = -x
	}
	return x%ls.period < ls.on
}

// valueToRow maps a value onto rows with slower times at the top.
func valueToRow(v, minVal, maxVal float64, rows int) int {
	if rows <= 1 {
		return 0
	}
	pos := (v - minVal) / (maxVal - minVal)
	row := int(math.Round((1 - pos) * float64(rows-1)))
	if row < 0 {
		row = 0
	}
	if row >= rows {
		row = rows - 1
	}
	return row
}

func renderLegend(series []Series, refs []Reference, useColor bool) string {
	parts := make([]string, 0, len(series)+len(refs))
	marker := brailleFromMask(0x01)
	for i, s := range series {
		label := fmt.Sprintf("%c %s (%s)", marker, s.Name, lineStyles[i%len(lineStyles)].name)
		if useColor {
			label = colorPalette[i%len(colorPalette)].code + label + colorReset
		}
		parts = append(parts, label)
	}
	for i, r := range refs {
		label := fmt.Sprintf("%c %s %s (dotted)", marker, r.Name, swimtime.Format(r.TimeMs))
		if useColor {
			label = colorPalette[(len(series)+i)%len(colorPalette)].code + label + colorReset
		}
		parts = append(parts, label)
	}
	return "Legend: " + strings.Join(parts, "  ")
}

func drawLine(x0, y0, x1, y1 int, plot func(x, y int)) {
	dx := int(math.Abs(float64(x1 - x0)))
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -int(math.Abs(float64(y1 - y0)))
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		plot(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			if x0 == x1 {
				break
			}
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			if y0 == y1 {
				break
			}
			err += dx
			y0 += sy
		}
	}
}

func setBrailleDot(cells [][]uint8, x, y int) {
	if y < 0 || x < 0 {
		return
	}
	cellY := y / 4
	cellX := x / 2
	if cellY >= len(cells) || cellX >= len(cells[cellY]) {
		return
	}
	cells[cellY][cellX] |= brailleDotMask(x%2, y%4)
}

func brailleDotMask(x, y int) uint8 {
	switch {
	case x == 0 && y == 0:
		return 0x01
	case x == 0 && y == 1:
		return 0x02
	case x == 0 && y == 2:
		return 0x04
	case x == 0 && y == 3:
		return 0x40
	case x == 1 && y == 0:
		return 0x08
	case x == 1 && y == 1:
		return 0x10
	case x == 1 && y == 2:
		return 0x20
	case x == 1 && y == 3:
		return 0x80
	default:
		return 0
	}
}

func brailleFromMask(mask uint8) rune {
	return rune(0x2800 + int(mask))
}
