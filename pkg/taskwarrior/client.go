package taskwarrior

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
)

// Client reads tasks from the local Taskwarrior installation.
type Client struct {
	bin    string
	logger *slog.Logger
}

func NewClient(logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{bin: "task", logger: logger}
}

// Export runs `task <filter> export` with hooks disabled.
func (c *Client) Export(ctx context.Context, filter []string) ([]Task, error) {
	args := append(append([]string{}, filter...), "export", "rc.hooks=0", "rc.verbose=nothing")
	c.logger.Debug("running taskwarrior", "bin", c.bin, "args", args)
	cmd := exec.CommandContext(ctx, c.bin, args...)

	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("taskwarrior command failed: exit code %d, %s, stderr: %s",
				exitErr.ExitCode(), err, exitErr.Stderr)
		}
		return nil, fmt.Errorf("taskwarrior command failed: %w", err)
	}

	var tasks []Task
	if err := json.Unmarshal(output, &tasks); err != nil {
		return nil, fmt.Errorf("failed to unmarshal taskwarrior output: %w", err)
	}
	c.logger.Debug("taskwarrior export decoded", "count", len(tasks))
	return tasks, nil
}

// ParseTasks decodes either an export array or a stream of JSON objects
// (the hook protocol sends one object per line).
func (c *Client) ParseTasks(r io.Reader) ([]Task, error) {
	var tasks []Task
	decoder := json.NewDecoder(r)
	for {
		var raw json.RawMessage
		if err := decoder.Decode(&raw); err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("failed to decode task json: %w", err)
		}
		if len(raw) > 0 && raw[0] == '[' {
			var batch []Task
			if err := json.Unmarshal(raw, &batch); err != nil {
				return nil, fmt.Errorf("failed to decode task array: %w", err)
			}
			tasks = append(tasks, batch...)
			continue
		}
		var task Task
		if err := json.Unmarshal(raw, &task); err != nil {
			return nil, fmt.Errorf("failed to decode task json: %w", err)
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}
