package layout

import (
	"fmt"
	"reflect"
	"testing"
	"time"

	"pgregory.net/rapid"

	"github.com/harrisonrobin/taskgrid/pkg/grid"
	"github.com/harrisonrobin/taskgrid/pkg/model"
)

// genGrid draws either a padded month view or a single-row month strip.
func genGrid() *rapid.Generator[grid.Grid] {
	return rapid.Custom(func(t *rapid.T) grid.Grid {
		year := rapid.IntRange(2000, 2040).Draw(t, "year")
		month := time.Month(rapid.IntRange(1, 12).Draw(t, "month"))
		if rapid.Bool().Draw(t, "strip") {
			return grid.Strip(year, month, time.UTC)
		}
		weekStart := time.Weekday(rapid.IntRange(0, 6).Draw(t, "week_start"))
		return grid.Month(year, month, weekStart, time.UTC)
	})
}

// genTasks draws tasks around the grid window, some fully outside it.
func genTasks(g grid.Grid) *rapid.Generator[[]model.Task] {
	return rapid.Custom(func(t *rapid.T) []model.Task {
		n := rapid.IntRange(0, 25).Draw(t, "n")
		first := g.Cells[0]
		tasks := make([]model.Task, n)
		for i := range tasks {
			offset := rapid.IntRange(-30, len(g.Cells)+30).Draw(t, fmt.Sprintf("offset_%d", i))
			hour := rapid.IntRange(0, 23).Draw(t, fmt.Sprintf("hour_%d", i))
			start := first.AddDate(0, 0, offset).Add(time.Duration(hour) * time.Hour)
			tk := model.Task{
				ID:     fmt.Sprintf("task-%d", i),
				Status: rapid.SampledFrom([]model.Status{model.StatusTodo, model.StatusDone, model.StatusReview}).Draw(t, fmt.Sprintf("status_%d", i)),
				Start:  start,
			}
			if rapid.Bool().Draw(t, fmt.Sprintf("has_due_%d", i)) {
				due := start.AddDate(0, 0, rapid.IntRange(-3, 40).Draw(t, fmt.Sprintf("length_%d", i)))
				tk.Due = &due
			}
			tasks[i] = tk
		}
		return tasks
	})
}

func genPolicy() *rapid.Generator[Policy] {
	return rapid.SampledFrom([]Policy{Packed, Stacked})
}

func TestLayout_NoOverlapWithinLane(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		g := genGrid().Draw(t, "grid")
		tasks := genTasks(g).Draw(t, "tasks")

		res, err := Compute(tasks, g.Cells, g.WrapWidth, Options{Policy: genPolicy().Draw(t, "policy")})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for i, a := range res.Bars {
			for _, b := range res.Bars[i+1:] {
				if a.Week != b.Week || a.Row != b.Row {
					continue
				}
				if a.StartColumn <= b.EndColumn() && b.StartColumn <= a.EndColumn() {
					t.Fatalf("bars %+v and %+v collide", a, b)
				}
			}
		}
	})
}

func TestLayout_BarsStayInsideTheirWeek(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		g := genGrid().Draw(t, "grid")
		tasks := genTasks(g).Draw(t, "tasks")

		res, err := Compute(tasks, g.Cells, g.WrapWidth, Options{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, b := range res.Bars {
			if b.ColumnSpan < 1 {
				t.Fatalf("bar %+v has span below 1", b)
			}
			if b.StartColumn < 0 || b.EndColumn() >= len(g.Cells) {
				t.Fatalf("bar %+v outside grid of %d cells", b, len(g.Cells))
			}
			if b.StartColumn/g.WrapWidth != b.Week || b.EndColumn()/g.WrapWidth != b.Week {
				t.Fatalf("bar %+v crosses a wrap boundary", b)
			}
			if b.Row >= res.RowsPerWeek[b.Week] || res.RowsPerWeek[b.Week] > res.MaxRows {
				t.Fatalf("row accounting wrong for %+v: rows=%v max=%d", b, res.RowsPerWeek, res.MaxRows)
			}
		}
	})
}

func TestLayout_CoverageWithoutGaps(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		g := genGrid().Draw(t, "grid")
		tasks := genTasks(g).Draw(t, "tasks")

		res, err := Compute(tasks, g.Cells, g.WrapWidth, Options{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		covered := map[string]map[int]int{}
		for _, b := range res.Bars {
			if covered[b.TaskID] == nil {
				covered[b.TaskID] = map[int]int{}
			}
			for c := b.StartColumn; c <= b.EndColumn(); c++ {
				covered[b.TaskID][c]++
			}
		}

		for _, tk := range tasks {
			s, sok := g.Index(tk.Start)
			e, eok := g.Index(tk.End())
			if !sok || !eok {
				continue
			}
			if e < s {
				e = s
			}
			cols := covered[tk.ID]
			if len(cols) != e-s+1 {
				t.Fatalf("task %s covers %d columns, want %d", tk.ID, len(cols), e-s+1)
			}
			for c := s; c <= e; c++ {
				if cols[c] != 1 {
					t.Fatalf("task %s covers column %d %d times", tk.ID, c, cols[c])
				}
			}
		}
	})
}

func TestLayout_ClippedTasksProduceNothing(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		g := genGrid().Draw(t, "grid")
		tasks := genTasks(g).Draw(t, "tasks")

		res, err := Compute(tasks, g.Cells, g.WrapWidth, Options{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		present := map[string]bool{}
		for _, b := range res.Bars {
			present[b.TaskID] = true
		}
		for _, tk := range tasks {
			end := tk.End()
			if end.Before(tk.Start) {
				end = tk.Start
			}
			outside := !end.Before(g.End()) && !tk.Start.Before(g.End()) ||
				end.Before(g.First())
			if outside && present[tk.ID] {
				t.Fatalf("task %s outside the window produced bars", tk.ID)
			}
			if tk.Due == nil {
				n := 0
				for _, b := range res.Bars {
					if b.TaskID == tk.ID {
						n++
						if b.ColumnSpan != 1 {
							t.Fatalf("undated task %s spans %d columns", tk.ID, b.ColumnSpan)
						}
					}
				}
				if n > 1 {
					t.Fatalf("undated task %s produced %d bars", tk.ID, n)
				}
			}
		}
	})
}

func TestLayout_Deterministic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		g := genGrid().Draw(t, "grid")
		tasks := genTasks(g).Draw(t, "tasks")
		opts := Options{Policy: genPolicy().Draw(t, "policy")}

		a, err := Compute(tasks, g.Cells, g.WrapWidth, opts)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		b, err := Compute(tasks, g.Cells, g.WrapWidth, opts)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !reflect.DeepEqual(a, b) {
			t.Fatalf("layout changed between identical calls:\n%+v\n%+v", a, b)
		}
	})
}

func TestLayout_PackedNeverUsesMoreLanesThanStacked(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		g := genGrid().Draw(t, "grid")
		tasks := genTasks(g).Draw(t, "tasks")

		packed, err := Compute(tasks, g.Cells, g.WrapWidth, Options{Policy: Packed})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		stacked, err := Compute(tasks, g.Cells, g.WrapWidth, Options{Policy: Stacked})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(packed.Bars) != len(stacked.Bars) {
			t.Fatalf("policies disagree on visible segments: %d vs %d", len(packed.Bars), len(stacked.Bars))
		}
		if packed.MaxRows > stacked.MaxRows {
			t.Fatalf("packed uses %d lanes, stacked %d", packed.MaxRows, stacked.MaxRows)
		}
	})
}
