package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/harrisonrobin/taskgrid/pkg/config"
	"github.com/harrisonrobin/taskgrid/pkg/google"
	"github.com/harrisonrobin/taskgrid/pkg/grid"
	"github.com/harrisonrobin/taskgrid/pkg/layout"
	"github.com/harrisonrobin/taskgrid/pkg/logging"
	"github.com/harrisonrobin/taskgrid/pkg/model"
	"github.com/harrisonrobin/taskgrid/pkg/orgmode"
	"github.com/harrisonrobin/taskgrid/pkg/render"
	"github.com/harrisonrobin/taskgrid/pkg/taskwarrior"
	"github.com/harrisonrobin/taskgrid/pkg/webapi"
)

// Output formats for show.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

type showOptions struct {
	month    string
	files    []string
	filter   []string
	format   string
	timezone string
	now      func() time.Time
}

func newShowCmd() *cobra.Command {
	opts := &showOptions{now: time.Now}

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show a month of tasks",
		Example: `  task export | taskgrid show --source stdin
  taskgrid show --source org --file ~/notes/work.org --mode strip
  taskgrid show --source json --file tasks.json --format yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runShow(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.month, "month", "", "month to show as YYYY-MM (default current month)")
	f.String("mode", config.ModeWeek, "view mode: week or strip")
	f.String("policy", string(layout.Packed), "lane policy: packed or stacked")
	f.String("source", config.SourceTaskwarrior, "task source: taskwarrior, org, json, google or stdin")
	f.StringArrayVar(&opts.files, "file", nil, "input file for the org and json sources, - for stdin (repeatable)")
	f.StringSliceVar(&opts.filter, "filter", nil, "taskwarrior filter arguments, or tags to keep for org (any match)")
	f.String("calendar", "", "Google Calendar name or id")
	f.StringVar(&opts.format, "format", FormatText, "output format: text, json or yaml")
	f.String("week-start", "sunday", "first day of the week")
	f.Int("min-rows", layout.DefaultMinRows, "lanes drawn per week at least")
	f.Int("col-width", 16, "terminal cells per day column in week mode")
	f.StringVar(&opts.timezone, "tz", "", "IANA time zone of the calendar (default local)")
	return cmd
}

func runShow(cmd *cobra.Command, opts *showOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	switch opts.format {
	case FormatText, FormatJSON, FormatYAML:
	default:
		return fmt.Errorf("invalid format %q (want text, json or yaml)", opts.format)
	}

	cfg, err := config.Load(configPath(cmd), cmd.Flags())
	if err != nil {
		return err
	}
	logger, err := logging.New(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat == logging.FormatJSON)
	if err != nil {
		return err
	}

	loc := time.Local
	if opts.timezone != "" {
		if loc, err = time.LoadLocation(opts.timezone); err != nil {
			return fmt.Errorf("invalid time zone %q: %w", opts.timezone, err)
		}
	}

	now := opts.now().In(loc)
	year, month := now.Year(), now.Month()
	if opts.month != "" {
		if year, month, err = grid.ParseMonth(opts.month); err != nil {
			return err
		}
	}

	g, err := buildGrid(cfg, year, month, loc)
	if err != nil {
		return err
	}

	tasks, err := loadTasks(ctx, cmd.InOrStdin(), cfg, opts, g, loc, logger)
	if err != nil {
		return err
	}
	logger.Debug("loaded tasks", "source", cfg.Source, "count", len(tasks))

	policy, err := layout.ParsePolicy(cfg.Policy)
	if err != nil {
		return err
	}
	palette := cfg.ColorPalette()
	res, err := layout.Compute(tasks, g.Cells, g.WrapWidth, layout.Options{
		Policy:  policy,
		MinRows: cfg.MinRows,
		Palette: &palette,
	})
	if err != nil {
		return err
	}
	logger.Debug("layout computed", "bars", len(res.Bars), "max_rows", res.MaxRows)

	out := cmd.OutOrStdout()
	switch opts.format {
	case FormatJSON:
		return render.JSON(out, render.NewDocument(g, tasks, res))
	case FormatYAML:
		return render.YAML(out, render.NewDocument(g, tasks, res))
	}

	colWidth := cfg.ColWidth
	if cfg.Mode == config.ModeStrip {
		colWidth = max(cfg.ColWidth/4, 3)
	}
	return render.Text(out, g, tasks, res, render.Options{ColWidth: colWidth, Now: now})
}

func buildGrid(cfg *config.Config, year int, month time.Month, loc *time.Location) (grid.Grid, error) {
	if cfg.Mode == config.ModeStrip {
		return grid.Strip(year, month, loc), nil
	}
	weekStart, err := grid.ParseWeekday(cfg.WeekStart)
	if err != nil {
		return grid.Grid{}, err
	}
	return grid.Month(year, month, weekStart, loc), nil
}

func loadTasks(ctx context.Context, stdin io.Reader, cfg *config.Config, opts *showOptions, g grid.Grid, loc *time.Location, logger *slog.Logger) ([]model.Task, error) {
	switch cfg.Source {
	case config.SourceTaskwarrior:
		raw, err := taskwarrior.NewClient(logger).Export(ctx, opts.filter)
		if err != nil {
			return nil, err
		}
		return taskwarrior.ToTasks(raw), nil

	case config.SourceStdin:
		raw, err := taskwarrior.NewClient(logger).ParseTasks(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to parse tasks from stdin: %w", err)
		}
		return taskwarrior.ToTasks(raw), nil

	case config.SourceOrg:
		files := opts.files
		if len(files) == 0 {
			files = cfg.OrgFiles
		}
		if len(files) == 0 {
			return nil, fmt.Errorf("org source needs --file or org_files in the config")
		}
		tasks, err := orgmode.ParseFiles(files, loc)
		if err != nil {
			return nil, err
		}
		return orgmode.FilterTasks(tasks, opts.filter), nil

	case config.SourceJSON:
		if len(opts.files) == 0 {
			return nil, fmt.Errorf("json source needs --file")
		}
		var tasks []model.Task
		for _, path := range opts.files {
			got, err := readAPITasks(path, stdin, loc, logger)
			if err != nil {
				return nil, err
			}
			tasks = append(tasks, got...)
		}
		return tasks, nil

	case config.SourceGoogle:
		client, err := google.NewClient(ctx, cfg.Calendar, logger)
		if err != nil {
			return nil, err
		}
		return client.ListTasks(ctx, g.First(), g.End(), loc)
	}
	return nil, fmt.Errorf("invalid source %q", cfg.Source)
}

func readAPITasks(path string, stdin io.Reader, loc *time.Location, logger *slog.Logger) ([]model.Task, error) {
	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer f.Close()
		r = f
	}

	records, err := webapi.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	tasks := make([]model.Task, 0, len(records))
	for _, rec := range records {
		t, err := webapi.ToTask(rec, loc)
		if err != nil {
			logger.Warn("skipping task", "file", path, "id", string(rec.ID), "error", err)
			continue
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}
