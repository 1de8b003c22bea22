// Package grid builds the ordered day cells a calendar view shows for a month.
package grid

import (
	"fmt"
	"strings"
	"time"
)

const (
	// DaysPerWeek is the wrap width of the month view.
	DaysPerWeek = 7
	// MonthWeeks is the fixed number of week rows in the month view.
	MonthWeeks = 6
	// MonthCells is MonthWeeks * DaysPerWeek.
	MonthCells = MonthWeeks * DaysPerWeek
)

// Grid is an ordered window of days plus the number of columns per visual row.
type Grid struct {
	Cells     []time.Time
	WrapWidth int
	Year      int
	Month     time.Month
}

// Month returns the classic month view: the days of the month padded with
// the neighbouring months' days to 6 whole weeks beginning on weekStart.
func Month(year int, month time.Month, weekStart time.Weekday, loc *time.Location) Grid {
	if loc == nil {
		loc = time.Local
	}
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	offset := (int(first.Weekday()) - int(weekStart) + DaysPerWeek) % DaysPerWeek

	cells := make([]time.Time, MonthCells)
	for i := range cells {
		// time.Date normalises out-of-range days, and stays on midnight across DST changes.
		cells[i] = time.Date(year, month, 1-offset+i, 0, 0, 0, 0, loc)
	}
	return Grid{Cells: cells, WrapWidth: DaysPerWeek, Year: year, Month: month}
}

// Strip returns every day of the month in a single continuous row.
func Strip(year int, month time.Month, loc *time.Location) Grid {
	if loc == nil {
		loc = time.Local
	}
	n := DaysIn(year, month)
	cells := make([]time.Time, n)
	for i := range cells {
		cells[i] = time.Date(year, month, i+1, 0, 0, 0, 0, loc)
	}
	return Grid{Cells: cells, WrapWidth: n, Year: year, Month: month}
}

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Weeks returns the number of visual rows.
func (g Grid) Weeks() int {
	if g.WrapWidth <= 0 {
		return 0
	}
	return (len(g.Cells) + g.WrapWidth - 1) / g.WrapWidth
}

// InMonth reports whether cell i belongs to the grid's month rather than padding.
func (g Grid) InMonth(i int) bool {
	if i < 0 || i >= len(g.Cells) {
		return false
	}
	return g.Cells[i].Month() == g.Month && g.Cells[i].Year() == g.Year
}

// Index returns the cell index of the calendar day containing t.
// Returns false if the day is outside the grid.
func (g Grid) Index(t time.Time) (int, bool) {
	if len(g.Cells) == 0 {
		return 0, false
	}
	first := g.Cells[0]
	loc := first.Location()
	d := t.In(loc)

	// Compare civil dates in UTC so DST transitions don't skew the day count.
	a := time.Date(first.Year(), first.Month(), first.Day(), 0, 0, 0, 0, time.UTC)
	b := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	days := int(b.Sub(a).Hours() / 24)
	if days < 0 || days >= len(g.Cells) {
		return 0, false
	}
	return days, true
}

// First returns the first day shown.
func (g Grid) First() time.Time { return g.Cells[0] }

// End returns the instant just after the last day shown.
func (g Grid) End() time.Time {
	last := g.Cells[len(g.Cells)-1]
	return time.Date(last.Year(), last.Month(), last.Day()+1, 0, 0, 0, 0, last.Location())
}

// ParseMonth parses "2006-01" into a year and month.
func ParseMonth(s string) (int, time.Month, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(s))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid month %q (want YYYY-MM): %w", s, err)
	}
	return t.Year(), t.Month(), nil
}

// ParseWeekday accepts full or three-letter English weekday names.
func ParseWeekday(s string) (time.Weekday, error) {
	n := strings.ToLower(strings.TrimSpace(s))
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := strings.ToLower(d.String())
		if n == name || n == name[:3] {
			return d, nil
		}
	}
	return 0, fmt.Errorf("invalid weekday %q", s)
}
