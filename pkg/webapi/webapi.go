// Package webapi decodes the task payload served by the project-management
// web API into calendar tasks.
package webapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/harrisonrobin/taskgrid/pkg/model"
)

// Timestamp accepts epoch milliseconds, RFC 3339 strings or bare dates.
type Timestamp struct {
	time.Time
	// Floating is set for values without a zone ("2006-01-02" and
	// "2006-01-02T15:04:05"). Their wall clock is kept and Resolve
	// places it in a location.
	Floating bool
}

// Resolve returns the instant. Floating values read their wall clock in loc.
func (ts Timestamp) Resolve(loc *time.Location) time.Time {
	if !ts.Floating || loc == nil || ts.IsZero() {
		return ts.Time
	}
	t := ts.Time
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc)
}

// UnmarshalJSON implements json.Unmarshaler.
func (ts *Timestamp) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	ts.Floating = false
	if s == "null" || s == `""` {
		ts.Time = time.Time{}
		return nil
	}
	if s[0] != '"' {
		ms, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid epoch timestamp %s: %w", s, err)
		}
		ts.Time = time.UnixMilli(ms).UTC()
		return nil
	}

	s = strings.Trim(s, `"`)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		ts.Time = t
		return nil
	}
	for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			ts.Time = t
			ts.Floating = true
			return nil
		}
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		ts.Time = time.UnixMilli(ms).UTC()
		return nil
	}
	return fmt.Errorf("invalid timestamp %q", s)
}

// MarshalJSON writes RFC 3339, or null for the zero time.
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if ts.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(ts.Time.Format(time.RFC3339))
}

// ID is an identifier the API sends either as a number or as a string.
type ID string

// UnmarshalJSON implements json.Unmarshaler.
func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case string(b) == "null":
		*id = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
	default:
		*id = ID(b)
	}
	return nil
}

// Task is one element of the API's task list.
type Task struct {
	ID        ID         `json:"id"`
	Title     string     `json:"title"`
	Status    string     `json:"status"`
	Priority  string     `json:"priority"`
	ProjectID ID         `json:"projectId,omitempty"`
	CreatedAt Timestamp  `json:"createdAt"`
	DueDate   *Timestamp `json:"dueDate,omitempty"`
}

// envelope is the paginated list response.
type envelope struct {
	Tasks []Task `json:"tasks"`
}

// Decode reads either a bare JSON array of tasks or {"tasks": [...]}.
func Decode(r io.Reader) ([]Task, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("webapi: read: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	if data[0] == '[' {
		var tasks []Task
		if err := json.Unmarshal(data, &tasks); err != nil {
			return nil, fmt.Errorf("webapi: decode task list: %w", err)
		}
		return tasks, nil
	}
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("webapi: decode response: %w", err)
	}
	return env.Tasks, nil
}

// ToTask translates API enums and timestamps into the calendar model.
// Timestamps without a zone are read in loc; nil means time.Local.
func ToTask(t Task, loc *time.Location) (model.Task, error) {
	if loc == nil {
		loc = time.Local
	}
	id := string(t.ID)
	if id == "" {
		return model.Task{}, fmt.Errorf("webapi: task %q has no id", t.Title)
	}
	status, err := model.ParseStatus(t.Status)
	if err != nil {
		return model.Task{}, fmt.Errorf("webapi: task %s: %w", id, err)
	}
	priority := model.PriorityMedium
	if t.Priority != "" {
		if priority, err = model.ParsePriority(t.Priority); err != nil {
			return model.Task{}, fmt.Errorf("webapi: task %s: %w", id, err)
		}
	}
	if t.CreatedAt.IsZero() {
		return model.Task{}, fmt.Errorf("webapi: task %s has no createdAt", id)
	}

	out := model.Task{
		ID:       id,
		Title:    t.Title,
		Status:   status,
		Priority: priority,
		Start:    t.CreatedAt.Resolve(loc),
		Source:   "webapi",
		Project:  string(t.ProjectID),
	}
	if t.DueDate != nil && !t.DueDate.IsZero() {
		due := t.DueDate.Resolve(loc)
		out.Due = &due
	}
	return out, nil
}

// FromTask is the inverse of ToTask, used when exporting tasks back to the API shape.
func FromTask(t model.Task) Task {
	out := Task{
		ID:        ID(t.ID),
		Title:     t.Title,
		Status:    t.Status.APIString(),
		Priority:  t.Priority.APIString(),
		ProjectID: ID(t.Project),
		CreatedAt: Timestamp{Time: t.Start},
	}
	if t.Due != nil {
		out.DueDate = &Timestamp{Time: *t.Due}
	}
	return out
}
