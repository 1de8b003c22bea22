package google

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/harrisonrobin/taskgrid/pkg/auth"
)

// NewClient authenticates and resolves calendarName to its id.
func NewClient(ctx context.Context, calendarName string, logger *slog.Logger) (*CalendarClient, error) {
	srv, err := auth.GetCalendarService(ctx)
	if err != nil {
		return nil, err
	}

	calendarList, err := srv.CalendarList.List().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve calendar list: %w", err)
	}

	var calendarID string
	for _, item := range calendarList.Items {
		if item.Summary == calendarName || item.Id == calendarName {
			calendarID = item.Id
			break
		}
	}

	if calendarID == "" {
		return nil, fmt.Errorf("calendar '%s' not found", calendarName)
	}

	return NewCalendarClient(srv, calendarID, logger), nil
}
