package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/harrisonrobin/taskgrid/pkg/colors"
	"github.com/harrisonrobin/taskgrid/pkg/grid"
	"github.com/harrisonrobin/taskgrid/pkg/layout"
	"github.com/harrisonrobin/taskgrid/pkg/logging"
)

const (
	xdgAppName = "taskgrid"
	configFile = "config.yaml"
	envPrefix  = "TASKGRID"
)

// Sources taskgrid can read tasks from.
const (
	SourceTaskwarrior = "taskwarrior"
	SourceOrg         = "org"
	SourceJSON        = "json"
	SourceGoogle      = "google"
	SourceStdin       = "stdin"
)

// View modes.
const (
	ModeWeek  = "week"
	ModeStrip = "strip"
)

// Config is the merged view of defaults, config file, environment and flags.
type Config struct {
	Calendar       string   `mapstructure:"calendar"`
	Source         string   `mapstructure:"source"`
	Mode           string   `mapstructure:"mode"`
	Policy         string   `mapstructure:"policy"`
	WeekStart      string   `mapstructure:"week_start"`
	MinRows        int      `mapstructure:"min_rows"`
	ColWidth       int      `mapstructure:"col_width"`
	LogLevel       string   `mapstructure:"log_level"`
	LogFormat      string   `mapstructure:"log_format"`
	Palette        []string `mapstructure:"palette"`
	CompletedColor string   `mapstructure:"completed_color"`
	OrgFiles       []string `mapstructure:"org_files"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	p := colors.DefaultPalette()
	return Config{
		Calendar:       "Tasks",
		Source:         SourceTaskwarrior,
		Mode:           ModeWeek,
		Policy:         string(layout.Packed),
		WeekStart:      "sunday",
		MinRows:        layout.DefaultMinRows,
		ColWidth:       16,
		LogLevel:       logging.LevelWarn,
		LogFormat:      logging.FormatText,
		Palette:        p.Colors,
		CompletedColor: p.Completed,
	}
}

// SetDefaults registers Defaults() on v.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("calendar", d.Calendar)
	v.SetDefault("source", d.Source)
	v.SetDefault("mode", d.Mode)
	v.SetDefault("policy", d.Policy)
	v.SetDefault("week_start", d.WeekStart)
	v.SetDefault("min_rows", d.MinRows)
	v.SetDefault("col_width", d.ColWidth)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_format", d.LogFormat)
	v.SetDefault("palette", d.Palette)
	v.SetDefault("completed_color", d.CompletedColor)
	v.SetDefault("org_files", []string{})
}

// GetConfigPath returns $XDG_CONFIG_HOME/taskgrid/config.yaml, defaulting to ~/.config.
func GetConfigPath() (string, error) {
	if base := os.Getenv("XDG_CONFIG_HOME"); base != "" {
		return filepath.Join(base, xdgAppName, configFile), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", xdgAppName, configFile), nil
}

// Load merges defaults, the config file at path (the default path if empty),
// TASKGRID_* environment variables and any changed flags.
// A missing config file is not an error.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	SetDefaults(v)

	if path == "" {
		p, err := GetConfigPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for _, key := range v.AllKeys() {
			if f := flags.Lookup(strings.ReplaceAll(key, "_", "-")); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", f.Name, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if cfg.Calendar == "" {
		cfg.Calendar = "Tasks"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values the rest of the program cannot act on.
func (c *Config) Validate() error {
	switch c.Source {
	case SourceTaskwarrior, SourceOrg, SourceJSON, SourceGoogle, SourceStdin:
	default:
		return fmt.Errorf("invalid source %q", c.Source)
	}
	switch c.Mode {
	case ModeWeek, ModeStrip:
	default:
		return fmt.Errorf("invalid mode %q (want week or strip)", c.Mode)
	}
	if _, err := layout.ParsePolicy(c.Policy); err != nil {
		return err
	}
	if _, err := grid.ParseWeekday(c.WeekStart); err != nil {
		return err
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.LogFormat {
	case logging.FormatText, logging.FormatJSON:
	default:
		return fmt.Errorf("invalid log_format %q (want text or json)", c.LogFormat)
	}
	if c.MinRows < 0 {
		return fmt.Errorf("min_rows must not be negative, got %d", c.MinRows)
	}
	if c.ColWidth < 4 {
		return fmt.Errorf("col_width must be at least 4, got %d", c.ColWidth)
	}
	return nil
}

// ColorPalette builds the palette described by the config.
func (c *Config) ColorPalette() colors.Palette {
	p := colors.DefaultPalette()
	if len(c.Palette) > 0 {
		p.Colors = append([]string(nil), c.Palette...)
	}
	if c.CompletedColor != "" {
		p.Completed = c.CompletedColor
	}
	return p
}

// Save writes cfg as YAML to path (the default path if empty).
func Save(cfg *Config, path string) error {
	if path == "" {
		p, err := GetConfigPath()
		if err != nil {
			return err
		}
		path = p
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.Set("calendar", cfg.Calendar)
	v.Set("source", cfg.Source)
	v.Set("mode", cfg.Mode)
	v.Set("policy", cfg.Policy)
	v.Set("week_start", cfg.WeekStart)
	v.Set("min_rows", cfg.MinRows)
	v.Set("col_width", cfg.ColWidth)
	v.Set("log_level", cfg.LogLevel)
	v.Set("log_format", cfg.LogFormat)
	v.Set("palette", cfg.Palette)
	v.Set("completed_color", cfg.CompletedColor)
	v.Set("org_files", cfg.OrgFiles)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return os.Chmod(path, 0o600)
}
