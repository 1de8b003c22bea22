package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrisonrobin/taskgrid/pkg/config"
	"github.com/harrisonrobin/taskgrid/pkg/render"
)

const apiTasks = `{"tasks": [
  {"id": 1, "title": "Design review", "status": "IN_PROGRESS", "priority": "HIGH",
   "createdAt": "2025-05-01T09:00:00Z", "dueDate": "2025-05-06T17:00:00Z"},
  {"id": 2, "title": "Ship", "status": "DONE", "createdAt": "2025-05-02"},
  {"id": 3, "title": "Broken", "status": "ARCHIVED", "createdAt": "2025-05-02"}
]}`

const twExport = `[
{"uuid":"a1","description":"Write report","status":"pending","entry":"20250505T080000Z","due":"20250507T170000Z","priority":"H"},
{"uuid":"b2","description":"Gone","status":"deleted","entry":"20250505T080000Z"}
]`

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

// executeCommand runs the root command with args and returns captured stdout.
func executeCommand(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	out, _, err := executeCommandWithStderr(t, stdin, args...)
	return out, err
}

// executeCommandWithStderr runs the root command with args and returns captured stdout and stderr.
func executeCommandWithStderr(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	root := NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "config.yaml")}, args...))
	err := root.Execute()
	return out.String(), errOut.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRootCommandHasSubcommands(t *testing.T) {
	root := NewRootCmd()
	assert.Equal(t, "taskgrid", root.Use)

	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"show", "auth", "set-calendar"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
}

func TestShowJSONSourceAsJSON(t *testing.T) {
	path := writeFile(t, "tasks.json", apiTasks)

	out, err := executeCommand(t, "", "show", "--source", "json", "--file", path,
		"--month", "2025-05", "--tz", "UTC", "--format", "json")
	require.NoError(t, err)

	var doc render.Document
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "2025-05", doc.Month)
	assert.Equal(t, 7, doc.WrapWidth)
	require.Len(t, doc.Tasks, 2, "invalid record is skipped")

	// Design review runs Thu May 1 to Tue May 6 and wraps once.
	var segments []int
	for _, b := range doc.Bars {
		if b.TaskID == "1" {
			segments = append(segments, b.Week)
		}
	}
	assert.Equal(t, []int{0, 1}, segments)
}

func TestShowStripModeYAML(t *testing.T) {
	path := writeFile(t, "tasks.json", apiTasks)

	out, err := executeCommand(t, "", "show", "--source", "json", "--file", path,
		"--month", "2025-05", "--tz", "UTC", "--mode", "strip", "--format", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "wrap_width: 31")
}

func TestShowStdinAsText(t *testing.T) {
	out, err := executeCommand(t, twExport, "show", "--source", "stdin",
		"--month", "2025-05", "--tz", "UTC", "--week-start", "monday")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "May 2025\n"))
	assert.Contains(t, out, "Mon")
	assert.Contains(t, out, "Write report")
	assert.NotContains(t, out, "Gone")
}

func TestShowOrgSource(t *testing.T) {
	path := writeFile(t, "work.org", `* TODO [#A] Plan sprint
  SCHEDULED: <2025-05-12 Mon>
* DONE Retro
  DEADLINE: <2025-05-16 Fri>
`)

	out, err := executeCommand(t, "", "show", "--source", "org", "--file", path,
		"--month", "2025-05", "--tz", "UTC", "--format", "json")
	require.NoError(t, err)

	var doc render.Document
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	require.Len(t, doc.Tasks, 2)
	assert.Equal(t, "Plan sprint", doc.Tasks[0].Title)
	assert.Equal(t, "urgent", doc.Tasks[0].Priority)
}

func TestShowJSONSourceKeepsBareDatesOnTheirDay(t *testing.T) {
	if _, err := time.LoadLocation("America/New_York"); err != nil {
		t.Skip("tzdata not available")
	}
	path := writeFile(t, "tasks.json", `[{"id": "d", "title": "Dentist", "status": "TODO",
		"createdAt": "2025-05-06", "dueDate": "2025-05-06"}]`)

	out, err := executeCommand(t, "", "show", "--source", "json", "--file", path,
		"--month", "2025-05", "--tz", "America/New_York", "--format", "json")
	require.NoError(t, err)

	var doc render.Document
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	require.Len(t, doc.Bars, 1)
	bar := doc.Bars[0]
	assert.Equal(t, "2025-05-06", doc.Days[bar.StartColumn])
	assert.Equal(t, 1, bar.ColumnSpan)
}

func TestShowOrgFilterKeepsAnyTag(t *testing.T) {
	path := writeFile(t, "life.org", `* TODO Report :work:
  SCHEDULED: <2025-05-12 Mon>
* TODO Garden :home:
  SCHEDULED: <2025-05-13 Tue>
* TODO Groceries :errands:
  SCHEDULED: <2025-05-14 Wed>
`)

	out, err := executeCommand(t, "", "show", "--source", "org", "--file", path,
		"--filter", "work", "--filter", "home",
		"--month", "2025-05", "--tz", "UTC", "--format", "json")
	require.NoError(t, err)

	var doc render.Document
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	require.Len(t, doc.Tasks, 2)
	assert.Equal(t, "Report", doc.Tasks[0].Title)
	assert.Equal(t, "Garden", doc.Tasks[1].Title)
}

func TestShowLogsAsJSON(t *testing.T) {
	_, stderr, err := executeCommandWithStderr(t, twExport, "show", "--source", "stdin",
		"--month", "2025-05", "--tz", "UTC", "--log-level", "debug", "--log-format", "json")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(stderr), "\n")
	require.NotEmpty(t, lines)
	for _, line := range lines {
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry), line)
		assert.Equal(t, "DEBUG", entry["level"])
	}
	assert.Contains(t, stderr, `"msg":"loaded tasks"`)
}

func TestShowErrors(t *testing.T) {
	cases := map[string][]string{
		"format":       {"show", "--source", "stdin", "--format", "xml"},
		"source":       {"show", "--source", "jira"},
		"month":        {"show", "--source", "stdin", "--month", "May"},
		"timezone":     {"show", "--source", "stdin", "--tz", "Mars/Olympus"},
		"json no file": {"show", "--source", "json"},
		"org no file":  {"show", "--source", "org"},
		"extra args":   {"show", "now"},
		"log format":   {"show", "--source", "stdin", "--log-format", "xml"},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := executeCommand(t, "[]", args...)
			assert.Error(t, err)
		})
	}
}

func TestSetCalendar(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.yaml")

	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"--config", path, "set-calendar", "Work"})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "Default calendar set to: Work")

	cfg, err := config.Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "Work", cfg.Calendar)
}

func TestSetCalendarNeedsName(t *testing.T) {
	_, err := executeCommand(t, "", "set-calendar")
	assert.Error(t, err)
}
