package render

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/harrisonrobin/taskgrid/pkg/grid"
	"github.com/harrisonrobin/taskgrid/pkg/layout"
	"github.com/harrisonrobin/taskgrid/pkg/model"
)

const dateLayout = "2006-01-02"

// Document is the machine-readable form of a rendered month.
type Document struct {
	Month       string       `json:"month" yaml:"month"`
	WrapWidth   int          `json:"wrap_width" yaml:"wrap_width"`
	Days        []string     `json:"days" yaml:"days"`
	Tasks       []TaskInfo   `json:"tasks" yaml:"tasks"`
	Bars        []layout.Bar `json:"bars" yaml:"bars"`
	RowsPerWeek []int        `json:"rows_per_week" yaml:"rows_per_week"`
	MaxRows     int          `json:"max_rows" yaml:"max_rows"`
}

// TaskInfo describes a task that has at least one bar.
type TaskInfo struct {
	ID       string `json:"id" yaml:"id"`
	Title    string `json:"title" yaml:"title"`
	Status   string `json:"status" yaml:"status"`
	Priority string `json:"priority" yaml:"priority"`
	Start    string `json:"start" yaml:"start"`
	Due      string `json:"due,omitempty" yaml:"due,omitempty"`
	Source   string `json:"source,omitempty" yaml:"source,omitempty"`
}

// NewDocument collects the grid, the placed tasks and their bars.
func NewDocument(g grid.Grid, tasks []model.Task, res *layout.Result) Document {
	doc := Document{
		Month:       fmt.Sprintf("%04d-%02d", g.Year, int(g.Month)),
		WrapWidth:   g.WrapWidth,
		Days:        make([]string, len(g.Cells)),
		Tasks:       []TaskInfo{},
		Bars:        res.Bars,
		RowsPerWeek: res.RowsPerWeek,
		MaxRows:     res.MaxRows,
	}
	if doc.Bars == nil {
		doc.Bars = []layout.Bar{}
	}
	for i, c := range g.Cells {
		doc.Days[i] = c.Format(dateLayout)
	}

	placed := make(map[string]bool, len(res.Bars))
	for _, b := range res.Bars {
		placed[b.TaskID] = true
	}
	for _, t := range tasks {
		if !placed[t.ID] {
			continue
		}
		delete(placed, t.ID)
		info := TaskInfo{
			ID:       t.ID,
			Title:    t.Title,
			Status:   string(t.Status),
			Priority: string(t.Priority),
			Start:    t.Start.Format(dateLayout),
			Source:   t.Source,
		}
		if t.Due != nil && !t.Due.IsZero() {
			info.Due = t.Due.Format(dateLayout)
		}
		doc.Tasks = append(doc.Tasks, info)
	}
	return doc
}

// JSON writes doc as indented JSON.
func JSON(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode json: %w", err)
	}
	return nil
}

// YAML writes doc as YAML.
func YAML(w io.Writer, doc Document) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode yaml: %w", err)
	}
	return enc.Close()
}
