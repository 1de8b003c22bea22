package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harrisonrobin/taskgrid/pkg/auth"
	"github.com/harrisonrobin/taskgrid/pkg/config"
)

func newAuthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "auth",
		Short: "Authorize read access to Google Calendar",
		Long: `auth removes any cached token and runs the OAuth consent flow again.
The client secrets must be saved as credentials.json in the config directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := auth.RemoveToken(); err != nil {
				return fmt.Errorf("could not delete cached token, please delete it manually: %w", err)
			}
			if _, err := auth.GetCalendarService(cmd.Context()); err != nil {
				return fmt.Errorf("authentication failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Authentication successful! Token saved to %s\n", auth.TokenFile)
			return nil
		},
	}
}

func newSetCalendarCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-calendar NAME",
		Short: "Set the default Google Calendar",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configPath(cmd)
			cfg, err := config.Load(path, nil)
			if err != nil {
				return err
			}
			cfg.Calendar = args[0]
			if err := config.Save(cfg, path); err != nil {
				return fmt.Errorf("error saving config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Default calendar set to: %s\n", args[0])
			return nil
		},
	}
}
