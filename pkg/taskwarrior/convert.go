package taskwarrior

import (
	"github.com/harrisonrobin/taskgrid/pkg/model"
)

const reviewTag = "review"

// ToTask maps a Taskwarrior task onto the calendar model.
// Deleted and recurring-template tasks return false.
func ToTask(t Task) (model.Task, bool) {
	if t.Status == DELETED || t.Status == RECURRING {
		return model.Task{}, false
	}

	out := model.Task{
		ID:       t.UUID,
		Title:    t.Description,
		Status:   status(t),
		Priority: priority(t.Priority),
		Source:   "taskwarrior",
		Project:  t.Project,
		Tags:     t.Tags,
	}

	switch {
	case t.Entry.set():
		out.Start = t.Entry.Time
	case t.Scheduled.set():
		out.Start = t.Scheduled.Time
	case t.Due.set():
		out.Start = t.Due.Time
	default:
		return model.Task{}, false
	}
	if t.Due.set() {
		due := t.Due.Time
		out.Due = &due
	}
	return out, true
}

// ToTasks converts a whole export, dropping tasks that cannot be placed.
func ToTasks(tasks []Task) []model.Task {
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if mt, ok := ToTask(t); ok {
			out = append(out, mt)
		}
	}
	return out
}

func status(t Task) model.Status {
	switch t.Status {
	case COMPLETED:
		return model.StatusDone
	case WAITING:
		return model.StatusBacklog
	}
	for _, tag := range t.Tags {
		if tag == reviewTag {
			return model.StatusReview
		}
	}
	if t.Start.set() {
		return model.StatusInProgress
	}
	return model.StatusTodo
}

func priority(p string) model.Priority {
	switch p {
	case "H":
		return model.PriorityHigh
	case "L":
		return model.PriorityLow
	}
	return model.PriorityMedium
}
