package orgmode

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/harrisonrobin/taskgrid/pkg/model"
)

var (
	headingRegex  = regexp.MustCompile(`^\*+\s+(TODO|NEXT|DOING|REVIEW|WAITING|DONE|CANCELLED)\s+(?:\[#([A-D])\]\s*)?(.*?)(?:\s+(:[\w@:]+:))?\s*$`)
	deadlineRegex = regexp.MustCompile(`DEADLINE:\s+<(\d{4}-\d{2}-\d{2})(?:\s+[A-Za-z]{2,3})?(?:\s+(\d{1,2}:\d{2}))?[^>]*>`)
	scheduleRegex = regexp.MustCompile(`SCHEDULED:\s+<(\d{4}-\d{2}-\d{2})(?:\s+[A-Za-z]{2,3})?(?:\s+(\d{1,2}:\d{2}))?[^>]*>`)
	idRegex       = regexp.MustCompile(`^:ID:\s+(\S+)`)
	createdRegex  = regexp.MustCompile(`^:CREATED:\s+[\[<](\d{4}-\d{2}-\d{2})(?:\s+[A-Za-z]{2,3})?(?:\s+(\d{1,2}:\d{2}))?[^\]>]*[\]>]`)
)

// parseFile parses an Org-mode file and returns a slice of tasks.
func parseFile(filePath string, loc *time.Location) ([]model.Task, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return Parse(file, filePath, loc)
}

// ParseFiles parses multiple Org-mode files and returns a slice of tasks.
func ParseFiles(filePaths []string, loc *time.Location) ([]model.Task, error) {
	var allTasks []model.Task
	for _, filePath := range filePaths {
		tasks, err := parseFile(filePath, loc)
		if err != nil {
			return nil, fmt.Errorf("orgmode: %s: %w", filePath, err)
		}
		allTasks = append(allTasks, tasks...)
	}
	return allTasks, nil
}

// entry accumulates one heading until the next heading or EOF.
type entry struct {
	task      model.Task
	created   time.Time
	scheduled time.Time
	deadline  time.Time

	// occurrence counts earlier headings with the same title in this source.
	occurrence int
}

// Parse reads Org-mode headings with a TODO keyword and returns them as tasks.
// A heading becomes a task only if it carries at least one date. Headings
// without an :ID: property get a name-based UUID derived from source and title;
// a repeated title also mixes in how many times it appeared before.
func Parse(r io.Reader, source string, loc *time.Location) ([]model.Task, error) {
	if loc == nil {
		loc = time.Local
	}
	scanner := bufio.NewScanner(r)
	var tasks []model.Task
	var current *entry
	seen := make(map[string]int)

	flush := func() {
		if current == nil {
			return
		}
		if t, ok := current.finish(source); ok {
			tasks = append(tasks, t)
		}
		current = nil
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if strings.HasPrefix(line, "*") {
			flush()
			matches := headingRegex.FindStringSubmatch(line)
			if matches == nil {
				continue
			}
			title := strings.TrimSpace(matches[3])
			current = &entry{occurrence: seen[title], task: model.Task{
				Title:    title,
				Status:   keywordStatus(matches[1]),
				Priority: cookiePriority(matches[2]),
				Source:   "orgmode",
			}}
			seen[title]++
			if matches[4] != "" {
				current.task.Tags = strings.Split(strings.Trim(matches[4], ":"), ":")
			}
			continue
		}
		if current == nil {
			continue
		}

		if m := deadlineRegex.FindStringSubmatch(line); m != nil {
			current.deadline = parseOrgTime(m[1], m[2], loc)
		}
		if m := scheduleRegex.FindStringSubmatch(line); m != nil {
			current.scheduled = parseOrgTime(m[1], m[2], loc)
		}
		if m := idRegex.FindStringSubmatch(line); m != nil {
			current.task.ID = m[1]
		}
		if m := createdRegex.FindStringSubmatch(line); m != nil {
			current.created = parseOrgTime(m[1], m[2], loc)
		}
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (e *entry) finish(source string) (model.Task, bool) {
	t := e.task
	if t.Title == "" || t.Status == "" {
		return model.Task{}, false
	}
	switch {
	case !e.created.IsZero():
		t.Start = e.created
	case !e.scheduled.IsZero():
		t.Start = e.scheduled
	case !e.deadline.IsZero():
		t.Start = e.deadline
	default:
		return model.Task{}, false
	}
	if !e.deadline.IsZero() {
		d := e.deadline
		t.Due = &d
	}
	if t.ID == "" {
		name := source + "#" + t.Title
		if e.occurrence > 0 {
			name = fmt.Sprintf("%s#%d", name, e.occurrence+1)
		}
		t.ID = uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String()
	}
	return t, true
}

func parseOrgTime(date, clock string, loc *time.Location) time.Time {
	if clock == "" {
		t, err := time.ParseInLocation("2006-01-02", date, loc)
		if err != nil {
			return time.Time{}
		}
		return t
	}
	t, err := time.ParseInLocation("2006-01-02 15:04", date+" "+clock, loc)
	if err != nil {
		return time.Time{}
	}
	return t
}

// keywordStatus maps TODO keywords onto workflow states. CANCELLED headings are skipped.
func keywordStatus(kw string) model.Status {
	switch kw {
	case "TODO":
		return model.StatusTodo
	case "NEXT", "DOING":
		return model.StatusInProgress
	case "REVIEW":
		return model.StatusReview
	case "WAITING":
		return model.StatusBacklog
	case "DONE":
		return model.StatusDone
	}
	return ""
}

func cookiePriority(c string) model.Priority {
	switch c {
	case "A":
		return model.PriorityUrgent
	case "B":
		return model.PriorityHigh
	case "D":
		return model.PriorityLow
	}
	return model.PriorityMedium
}

// FilterTasks keeps the tasks that carry at least one of tags.
// No tags keeps everything.
func FilterTasks(tasks []model.Task, tags []string) []model.Task {
	if len(tags) == 0 {
		return tasks
	}
	want := make(map[string]bool, len(tags))
	for _, tag := range tags {
		want[tag] = true
	}
	var filteredTasks []model.Task
	for _, task := range tasks {
		for _, tag := range task.Tags {
			if want[tag] {
				filteredTasks = append(filteredTasks, task)
				break
			}
		}
	}
	return filteredTasks
}
