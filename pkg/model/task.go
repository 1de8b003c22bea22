package model

import (
	"fmt"
	"strings"
	"time"
)

// Status is the workflow state of a task.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusReview     Status = "review"
	StatusDone       Status = "done"
	StatusBacklog    Status = "backlog"
)

// Priority only drives the indicator drawn next to a bar.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

var statuses = []Status{StatusTodo, StatusInProgress, StatusReview, StatusDone, StatusBacklog}

var priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

// Task represents a generic task from any source.
type Task struct {
	ID       string
	Title    string
	Status   Status
	Priority Priority
	Start    time.Time
	Due      *time.Time
	Source   string // "taskwarrior", "orgmode", "webapi" or "google"
	Project  string
	Tags     []string
}

// End returns the due instant, or Start when the task has no due date.
func (t Task) End() time.Time {
	if t.Due == nil || t.Due.IsZero() {
		return t.Start
	}
	return *t.Due
}

// Overdue reports whether an unfinished task is past its due date.
func (t Task) Overdue(now time.Time) bool {
	return t.Status != StatusDone && t.Due != nil && !t.Due.IsZero() && t.Due.Before(now)
}

// normalizeEnum folds "IN_PROGRESS", "in-progress" and "In Progress" to "in_progress".
func normalizeEnum(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("-", "_", " ", "_").Replace(s)
}

// ParseStatus accepts the API spelling ("IN_PROGRESS") as well as the UI one.
func ParseStatus(s string) (Status, error) {
	n := Status(normalizeEnum(s))
	switch n {
	case "inprogress", "doing", "started":
		return StatusInProgress, nil
	case "completed":
		return StatusDone, nil
	}
	for _, st := range statuses {
		if st == n {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown status %q", s)
}

// ParsePriority accepts any casing of the four priority names.
func ParsePriority(s string) (Priority, error) {
	n := Priority(normalizeEnum(s))
	for _, p := range priorities {
		if p == n {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown priority %q", s)
}

// APIString renders the enum the way the web API spells it.
func (s Status) APIString() string { return strings.ToUpper(string(s)) }

func (p Priority) APIString() string { return strings.ToUpper(string(p)) }
