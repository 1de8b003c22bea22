package taskwarrior

import (
	"fmt"
	"strings"
	"time"
)

const (
	PENDING   = "pending"
	COMPLETED = "completed"
	WAITING   = "waiting"
	DELETED   = "deleted"
	RECURRING = "recurring"
)

// CustomTime decodes Taskwarrior's compact UTC timestamps.
type CustomTime struct {
	time.Time
}

const taskwarriorTimeLayout = "20060102T150405Z" // YYYYMMDDTHHMMSSZ, 'Z' indicates UTC

// UnmarshalJSON implements the json.Unmarshaler interface for CustomTime.
func (ct *CustomTime) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "0" || s == "null" {
		ct.Time = time.Time{}
		return nil
	}

	t, err := time.Parse(taskwarriorTimeLayout, s)
	if err != nil {
		// Some exports (rc.date.iso=yes) already use RFC 3339.
		if t2, err2 := time.Parse(time.RFC3339, s); err2 == nil {
			ct.Time = t2
			return nil
		}
		return fmt.Errorf("failed to parse Taskwarrior time string '%s': %w", s, err)
	}
	ct.Time = t
	return nil
}

// MarshalJSON implements the json.Marshaler interface for CustomTime.
func (ct CustomTime) MarshalJSON() ([]byte, error) {
	if ct.Time.IsZero() {
		return []byte(`""`), nil
	}
	return []byte(`"` + ct.Time.Format(taskwarriorTimeLayout) + `"`), nil
}

// set reports whether the timestamp is present and non-zero.
func (ct *CustomTime) set() bool {
	return ct != nil && !ct.IsZero()
}

// Task is one entry of `task export`.
type Task struct {
	UUID        string      `json:"uuid"`
	Description string      `json:"description"`
	Entry       *CustomTime `json:"entry,omitempty"`
	Due         *CustomTime `json:"due,omitempty"`
	Scheduled   *CustomTime `json:"scheduled,omitempty"`
	Status      string      `json:"status"`
	Priority    string      `json:"priority,omitempty"`
	Project     string      `json:"project,omitempty"`
	Tags        []string    `json:"tags,omitempty"`
	Annotations []struct {
		Description string      `json:"description"`
		Entry       *CustomTime `json:"entry"`
	} `json:"annotations,omitempty"`
	Start *CustomTime `json:"start,omitempty"`
	End   *CustomTime `json:"end,omitempty"`
}
