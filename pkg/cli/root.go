// Package cli wires config, task sources, layout and rendering into the
// taskgrid command line.
package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCmd builds the taskgrid command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "taskgrid",
		Short: "Draw tasks as bars on a month calendar",
		Long: `taskgrid reads tasks from Taskwarrior, Org files, a task API export or
Google Calendar and lays them out as week-wrapped bars on a month grid.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/taskgrid/config.yaml)")
	root.PersistentFlags().String("log-level", "", "log level: DEBUG, INFO, WARN or ERROR")
	root.PersistentFlags().String("log-format", "", "log format: text or json")

	root.AddCommand(newShowCmd(), newAuthCmd(), newSetCalendarCmd())
	return root
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

func configPath(cmd *cobra.Command) string {
	path, _ := cmd.Flags().GetString("config")
	return path
}
