// Package render draws a computed layout for people (terminal) and for
// other programs (JSON, YAML).
package render

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/harrisonrobin/taskgrid/pkg/colors"
	"github.com/harrisonrobin/taskgrid/pkg/grid"
	"github.com/harrisonrobin/taskgrid/pkg/layout"
	"github.com/harrisonrobin/taskgrid/pkg/model"
)

// Options controls the terminal calendar.
type Options struct {
	// ColWidth is the number of terminal cells per day column.
	ColWidth int
	// Now decides which day is highlighted and which tasks are overdue.
	Now time.Time
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	dayStyle    = lipgloss.NewStyle().Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6c6c6c"))
	todayStyle  = lipgloss.NewStyle().Bold(true).Reverse(true)
	barStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff"))
	weekdayLine = lipgloss.NewStyle().Foreground(lipgloss.Color("#9e9e9e"))
)

// Text writes the calendar with its bars to w.
func Text(w io.Writer, g grid.Grid, tasks []model.Task, res *layout.Result, opts Options) error {
	if opts.ColWidth < 2 {
		opts.ColWidth = 2
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	byID := make(map[string]model.Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("%s %d", g.Month, g.Year)))
	b.WriteString("\n")
	if g.WrapWidth == grid.DaysPerWeek {
		b.WriteString(weekdayHeader(g, opts.ColWidth))
		b.WriteString("\n")
	}

	for week := 0; week < g.Weeks(); week++ {
		b.WriteString(dayHeader(g, week, opts))
		b.WriteString("\n")
		bars := res.BarsInWeek(week)
		for row := 0; row < res.MaxRows; row++ {
			b.WriteString(lane(g, week, row, bars, byID, opts))
			b.WriteString("\n")
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func weekdayHeader(g grid.Grid, width int) string {
	var b strings.Builder
	for c := 0; c < g.WrapWidth && c < len(g.Cells); c++ {
		b.WriteString(pad(g.Cells[c].Weekday().String()[:3], width))
	}
	return weekdayLine.Render(b.String())
}

func dayHeader(g grid.Grid, week int, opts Options) string {
	var b strings.Builder
	first := week * g.WrapWidth
	for c := first; c < first+g.WrapWidth && c < len(g.Cells); c++ {
		day := g.Cells[c]
		num := fmt.Sprintf("%d", day.Day())
		gap := strings.Repeat(" ", max(opts.ColWidth-len(num), 0))
		switch {
		case sameDay(day, opts.Now):
			b.WriteString(todayStyle.Render(num) + gap)
		case !g.InMonth(c):
			b.WriteString(mutedStyle.Render(num) + gap)
		default:
			b.WriteString(dayStyle.Render(num) + gap)
		}
	}
	return b.String()
}

func lane(g grid.Grid, week, row int, bars []layout.Bar, byID map[string]model.Task, opts Options) string {
	var inRow []layout.Bar
	for _, bar := range bars {
		if bar.Row == row {
			inRow = append(inRow, bar)
		}
	}
	sort.Slice(inRow, func(i, j int) bool { return inRow[i].StartColumn < inRow[j].StartColumn })

	var b strings.Builder
	cursor := week * g.WrapWidth
	end := min(cursor+g.WrapWidth, len(g.Cells))
	for _, bar := range inRow {
		b.WriteString(strings.Repeat(" ", (bar.StartColumn-cursor)*opts.ColWidth))
		width := bar.ColumnSpan * opts.ColWidth
		text := ansi.Truncate(Label(byID[bar.TaskID], bar, opts.Now), width, "…")
		b.WriteString(barStyle.Background(lipgloss.Color(colors.Hex(bar.ColorKey))).Width(width).Render(text))
		cursor = bar.StartColumn + bar.ColumnSpan
	}
	b.WriteString(strings.Repeat(" ", (end-cursor)*opts.ColWidth))
	return strings.TrimRight(b.String(), " ")
}

// Label is the text drawn inside a bar: continuation arrows, a status
// marker, a priority indicator and the title.
func Label(t model.Task, bar layout.Bar, now time.Time) string {
	var parts []string
	if bar.ContinuesBefore {
		parts = append(parts, "◂")
	}
	switch {
	case t.Status == model.StatusDone:
		parts = append(parts, "✓")
	case t.Overdue(now):
		parts = append(parts, "!")
	case t.Status == model.StatusInProgress:
		parts = append(parts, "‣")
	}
	if ind := priorityIndicator(t.Priority); ind != "" {
		parts = append(parts, ind)
	}
	title := t.Title
	if title == "" {
		title = bar.TaskID
	}
	parts = append(parts, title)
	s := strings.Join(parts, " ")
	if bar.ContinuesAfter {
		s += " ▸"
	}
	return s
}

func priorityIndicator(p model.Priority) string {
	switch p {
	case model.PriorityUrgent:
		return "‼"
	case model.PriorityHigh:
		return "↑"
	case model.PriorityLow:
		return "↓"
	}
	return ""
}

func pad(s string, width int) string {
	if n := ansi.StringWidth(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return ansi.Truncate(s, width, "")
}

func sameDay(a, b time.Time) bool {
	b = b.In(a.Location())
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}
