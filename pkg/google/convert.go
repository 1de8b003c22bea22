package google

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/api/calendar/v3"

	"github.com/harrisonrobin/taskgrid/pkg/model"
)

// TaskIDProperty is the private extended property Taskwarrior-synced events carry.
const TaskIDProperty = "taskwarrior_id"

// Summary prefixes written by the Taskwarrior sync hook.
const (
	prefixDone    = "✓"
	prefixActive  = "‣"
	prefixOverdue = "!"
)

var errNoDate = errors.New("event has no start date")

// EventToTask converts a calendar event into a task. Cancelled events return
// a zero Task with an empty ID.
func EventToTask(e *calendar.Event, loc *time.Location) (model.Task, error) {
	if e == nil || e.Status == "cancelled" {
		return model.Task{}, nil
	}
	if loc == nil {
		loc = time.Local
	}

	start, _, err := eventTime(e.Start, loc)
	if err != nil {
		return model.Task{}, fmt.Errorf("start: %w", err)
	}
	end, allDayEnd, err := eventTime(e.End, loc)
	if err != nil && !errors.Is(err, errNoDate) {
		return model.Task{}, fmt.Errorf("end: %w", err)
	}

	title, status := parseSummary(e.Summary)
	t := model.Task{
		ID:       e.Id,
		Title:    title,
		Status:   status,
		Priority: model.PriorityMedium,
		Start:    start,
		Source:   "google",
	}
	if e.ExtendedProperties != nil {
		if id := e.ExtendedProperties.Private[TaskIDProperty]; id != "" {
			t.ID = id
		}
	}

	if !end.IsZero() {
		// Event ends are exclusive: an all-day event ends on the following
		// day, a timed one may end exactly at midnight.
		if allDayEnd {
			end = end.AddDate(0, 0, -1)
		} else if end.After(start) {
			end = end.Add(-time.Nanosecond)
		}
		if end.After(start) {
			t.Due = &end
		}
	}
	return t, nil
}

func eventTime(dt *calendar.EventDateTime, loc *time.Location) (time.Time, bool, error) {
	if dt == nil {
		return time.Time{}, false, errNoDate
	}
	if dt.DateTime != "" {
		t, err := time.Parse(time.RFC3339, dt.DateTime)
		if err != nil {
			return time.Time{}, false, err
		}
		return t.In(loc), false, nil
	}
	if dt.Date != "" {
		t, err := time.ParseInLocation("2006-01-02", dt.Date, loc)
		if err != nil {
			return time.Time{}, false, err
		}
		return t, true, nil
	}
	return time.Time{}, false, errNoDate
}

func parseSummary(summary string) (string, model.Status) {
	s := strings.TrimSpace(summary)
	switch {
	case strings.HasPrefix(s, prefixDone):
		return strings.TrimSpace(strings.TrimPrefix(s, prefixDone)), model.StatusDone
	case strings.HasPrefix(s, prefixActive):
		return strings.TrimSpace(strings.TrimPrefix(s, prefixActive)), model.StatusInProgress
	case strings.HasPrefix(s, prefixOverdue+" "):
		return strings.TrimSpace(strings.TrimPrefix(s, prefixOverdue)), model.StatusTodo
	}
	return s, model.StatusTodo
}
