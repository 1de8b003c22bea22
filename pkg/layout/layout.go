// Package layout places task bars on a calendar grid.
//
// The grid is an ordered run of days split into visual rows of WrapWidth
// columns: 7 for a month view, the whole month for a single strip. A task
// covering several rows is cut into one bar per row, and bars that share
// columns within a row are moved to different lanes.
//
// Compute is a pure function. It keeps no state between calls and returns
// the same result for the same input order.
package layout

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/harrisonrobin/taskgrid/pkg/colors"
	"github.com/harrisonrobin/taskgrid/pkg/model"
)

// DefaultMinRows is the lane count a week is sized to even when it holds fewer bars.
const DefaultMinRows = 3

var (
	ErrEmptyGrid        = errors.New("layout: grid has no cells")
	ErrInvalidWrapWidth = errors.New("layout: wrap width must be positive")
)

// Policy selects how lanes are assigned.
type Policy string

const (
	// Packed reuses the lowest free lane in each week (first-fit).
	Packed Policy = "packed"
	// Stacked gives every visible task its own lane in input order.
	Stacked Policy = "stacked"
)

// ParsePolicy validates a policy name. The empty string selects Packed.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case "", Packed:
		return Packed, nil
	case Stacked:
		return Stacked, nil
	}
	return "", fmt.Errorf("unknown layout policy %q", s)
}

// Options tunes a layout run. The zero value is usable.
type Options struct {
	Policy  Policy
	MinRows int
	Palette *colors.Palette
}

// Bar is one visible segment of a task inside a single visual row.
type Bar struct {
	TaskID      string `json:"task_id" yaml:"task_id"`
	Week        int    `json:"week" yaml:"week"`
	Row         int    `json:"row" yaml:"row"`
	StartColumn int    `json:"start_column" yaml:"start_column"`
	ColumnSpan  int    `json:"column_span" yaml:"column_span"`
	ColorKey    string `json:"color_key" yaml:"color_key"`
	// ContinuesBefore is set when the task started before this segment,
	// either in a previous row or before the visible window.
	ContinuesBefore bool `json:"continues_before,omitempty" yaml:"continues_before,omitempty"`
	// ContinuesAfter is set when the task goes on past this segment.
	ContinuesAfter bool `json:"continues_after,omitempty" yaml:"continues_after,omitempty"`
}

// EndColumn is the last column the bar covers.
func (b Bar) EndColumn() int { return b.StartColumn + b.ColumnSpan - 1 }

// Result is the full placement for one grid.
type Result struct {
	Bars []Bar `json:"bars" yaml:"bars"`
	// RowsPerWeek is the number of lanes used in each visual row.
	RowsPerWeek []int `json:"rows_per_week" yaml:"rows_per_week"`
	// MaxRows is the busiest week's lane count, never below Options.MinRows.
	MaxRows int `json:"max_rows" yaml:"max_rows"`
}

// BarsInWeek returns the bars of one visual row in placement order.
func (r *Result) BarsInWeek(week int) []Bar {
	var out []Bar
	for _, b := range r.Bars {
		if b.Week == week {
			out = append(out, b)
		}
	}
	return out
}

// Compute lays tasks out on cells, wrapping every wrapWidth columns.
// cells must be in ascending order. Tasks outside the window are dropped.
func Compute(tasks []model.Task, cells []time.Time, wrapWidth int, opts Options) (*Result, error) {
	if len(cells) == 0 {
		return nil, ErrEmptyGrid
	}
	if wrapWidth <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidWrapWidth, wrapWidth)
	}
	policy, err := ParsePolicy(string(opts.Policy))
	if err != nil {
		return nil, err
	}
	palette := colors.DefaultPalette()
	if opts.Palette != nil {
		palette = *opts.Palette
	}
	minRows := opts.MinRows
	if minRows <= 0 {
		minRows = DefaultMinRows
	}

	w := newWindow(cells)
	weeks := (len(cells) + wrapWidth - 1) / wrapWidth
	lanes := make([]laneSet, weeks)
	res := &Result{RowsPerWeek: make([]int, weeks)}

	visible := 0
	for _, t := range tasks {
		span, ok := w.columns(t)
		if !ok {
			continue
		}
		key := palette.Key(t.ID, t.Status)

		for week := span.start / wrapWidth; week <= span.end/wrapWidth; week++ {
			lo := max(span.start, week*wrapWidth)
			hi := min(span.end, week*wrapWidth+wrapWidth-1)
			if lo > hi {
				continue
			}

			row := visible
			if policy == Packed {
				row = lanes[week].firstFree(lo, hi)
			}
			lanes[week].add(row, lo, hi)
			if row+1 > res.RowsPerWeek[week] {
				res.RowsPerWeek[week] = row + 1
			}

			res.Bars = append(res.Bars, Bar{
				TaskID:          t.ID,
				Week:            week,
				Row:             row,
				StartColumn:     lo,
				ColumnSpan:      hi - lo + 1,
				ColorKey:        key,
				ContinuesBefore: lo > span.start || span.clippedStart,
				ContinuesAfter:  hi < span.end || span.clippedEnd,
			})
		}
		visible++
	}

	res.MaxRows = minRows
	for _, n := range res.RowsPerWeek {
		res.MaxRows = max(res.MaxRows, n)
	}
	return res, nil
}

// laneSet holds the column ranges already placed in one week.
type laneSet []placed

type placed struct {
	row, lo, hi int
}

func (s laneSet) firstFree(lo, hi int) int {
	used := make(map[int]bool)
	for _, p := range s {
		if p.lo <= hi && lo <= p.hi {
			used[p.row] = true
		}
	}
	row := 0
	for used[row] {
		row++
	}
	return row
}

func (s *laneSet) add(row, lo, hi int) {
	*s = append(*s, placed{row: row, lo: lo, hi: hi})
}

// window maps instants onto the columns of an ascending run of days.
type window struct {
	loc  *time.Location
	days []time.Time
}

type colSpan struct {
	start, end int
	// clipped* record that the task extends past the window edge.
	clippedStart, clippedEnd bool
}

func newWindow(cells []time.Time) window {
	loc := cells[0].Location()
	days := make([]time.Time, len(cells))
	for i, c := range cells {
		days[i] = civil(c, loc)
	}
	return window{loc: loc, days: days}
}

// civil truncates t to its calendar day in loc, expressed as UTC midnight.
func civil(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// columns returns the clamped column range of t, or false if none of it is visible.
func (w window) columns(t model.Task) (colSpan, bool) {
	startDay := civil(t.Start, w.loc)
	endDay := civil(t.End(), w.loc)
	if endDay.Before(startDay) {
		endDay = startDay
	}

	n := len(w.days)
	// First cell on or after the start day.
	start := sort.Search(n, func(i int) bool { return !w.days[i].Before(startDay) })
	// Last cell on or before the end day.
	end := sort.Search(n, func(i int) bool { return w.days[i].After(endDay) }) - 1
	if start >= n || end < 0 || start > end {
		return colSpan{}, false
	}
	return colSpan{
		start:        start,
		end:          end,
		clippedStart: startDay.Before(w.days[0]),
		clippedEnd:   endDay.After(w.days[n-1]),
	}, true
}
