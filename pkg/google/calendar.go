package google

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/api/calendar/v3"

	"github.com/harrisonrobin/taskgrid/pkg/model"
)

// CalendarClient is a Google Calendar API client.
type CalendarClient struct {
	srv        *calendar.Service
	calendarID string
	logger     *slog.Logger
}

// NewCalendarClient creates a new Google Calendar client.
func NewCalendarClient(srv *calendar.Service, calendarID string, logger *slog.Logger) *CalendarClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &CalendarClient{srv: srv, calendarID: calendarID, logger: logger}
}

// ListEvents fetches every event overlapping [timeMin, timeMax), following pagination.
func (c *CalendarClient) ListEvents(ctx context.Context, timeMin, timeMax time.Time) ([]*calendar.Event, error) {
	var events []*calendar.Event
	call := c.srv.Events.List(c.calendarID).
		TimeMin(timeMin.Format(time.RFC3339)).
		TimeMax(timeMax.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		ShowDeleted(false)

	err := call.Pages(ctx, func(page *calendar.Events) error {
		events = append(events, page.Items...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve events from calendar: %w", err)
	}
	c.logger.Debug("listed calendar events", "calendar", c.calendarID, "count", len(events))
	return events, nil
}

// ListTasks returns the calendar's events in the window as tasks.
// Events whose dates cannot be read are skipped with a warning.
func (c *CalendarClient) ListTasks(ctx context.Context, timeMin, timeMax time.Time, loc *time.Location) ([]model.Task, error) {
	events, err := c.ListEvents(ctx, timeMin, timeMax)
	if err != nil {
		return nil, err
	}
	tasks := make([]model.Task, 0, len(events))
	for _, e := range events {
		t, err := EventToTask(e, loc)
		if err != nil {
			c.logger.Warn("skipping event", "event", e.Id, "error", err)
			continue
		}
		if t.ID == "" {
			continue
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}
