// Package config loads file-driven settings for applications embedding the
// boot engine: logging setup, default run directives, and per-task-name
// overrides. Everything is optional; a missing file yields the defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gobwas/glob"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	boot "github.com/SpireX64/go-boot"
	"github.com/SpireX64/go-boot/logging"
)

// Config represents the complete go-boot configuration.
type Config struct {
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
	Run     RunConfig     `mapstructure:"run" yaml:"run"`
	Tasks   TasksConfig   `mapstructure:"tasks" yaml:"tasks"`
}

// LoggingConfig controls the engine's structured log output.
type LoggingConfig struct {
	// Enabled controls whether a real logger is built; when false,
	// NewLogger returns the nop logger (default: false)
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	// Level is the log level: "debug", "info", "warn", "error" (default: "info")
	Level string `mapstructure:"level" yaml:"level"`
	// Dir is the directory for boot.log; empty logs to stderr
	Dir string `mapstructure:"dir" yaml:"dir"`
	// MaxSizeMB is the maximum log file size in megabytes before rotation (default: 10, 0 = no rotation)
	MaxSizeMB int `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	// MaxBackups is the number of rotated log files to keep (default: 3)
	MaxBackups int `mapstructure:"max_backups" yaml:"max_backups"`
	// Compress gzips rotated log files (default: false)
	Compress bool `mapstructure:"compress" yaml:"compress"`
}

// RunConfig carries default run directives for [boot.Process.Run].
type RunConfig struct {
	// SynchronizeParents re-copies parent state before scheduling
	SynchronizeParents bool `mapstructure:"synchronize_parents" yaml:"synchronize_parents"`
	// ResetFailedTasks re-runs inherited Failed/Skipped tasks during synchronization
	ResetFailedTasks bool `mapstructure:"reset_failed_tasks" yaml:"reset_failed_tasks"`
	// DisposeOnFinish disposes the process after a successful run
	DisposeOnFinish bool `mapstructure:"dispose_on_finish" yaml:"dispose_on_finish"`
}

// TasksConfig carries per-task-name adjustments.
type TasksConfig struct {
	// Overrides are applied in order; when several patterns match a task
	// name, later entries win
	Overrides []TaskOverride `mapstructure:"overrides" yaml:"overrides"`
}

// TaskOverride adjusts tasks whose name matches a glob pattern.
type TaskOverride struct {
	// Match is a glob pattern tested against task names (e.g. "db-*")
	Match string `mapstructure:"match" yaml:"match"`
	// Priority replaces the task's scheduling priority when set
	Priority *float64 `mapstructure:"priority" yaml:"priority,omitempty"`
	// Optional marks the task optional when true; false leaves the task's
	// own declaration in place
	Optional *bool `mapstructure:"optional" yaml:"optional,omitempty"`
	// Disabled reports the task as dropped via Disabled(name)
	Disabled bool `mapstructure:"disabled" yaml:"disabled"`

	pattern glob.Glob
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Enabled:    false,
			Level:      "info",
			Dir:        "",
			MaxSizeMB:  10,
			MaxBackups: 3,
			Compress:   false,
		},
		Run: RunConfig{
			SynchronizeParents: false,
			ResetFailedTasks:   false,
			DisposeOnFinish:    false,
		},
		Tasks: TasksConfig{
			Overrides: []TaskOverride{},
		},
	}
}

// SetDefaults registers default values with viper.
func SetDefaults() {
	defaults := Default()

	viper.SetDefault("logging.enabled", defaults.Logging.Enabled)
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.dir", defaults.Logging.Dir)
	viper.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	viper.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)
	viper.SetDefault("logging.compress", defaults.Logging.Compress)

	viper.SetDefault("run.synchronize_parents", defaults.Run.SynchronizeParents)
	viper.SetDefault("run.reset_failed_tasks", defaults.Run.ResetFailedTasks)
	viper.SetDefault("run.dispose_on_finish", defaults.Run.DisposeOnFinish)
}

// Load reads the configuration from viper into a Config struct, compiles
// the override patterns, and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}
	cfg.compileOverrides()
	return &cfg, nil
}

// LoadFile points viper at path and loads it. A nonexistent file is not an
// error; the defaults apply.
func LoadFile(path string) (*Config, error) {
	SetDefaults()
	viper.SetConfigFile(path)
	if err := viper.ReadInConfig(); err != nil {
		var pathErr *os.PathError
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &pathErr) && !errors.As(err, &notFound) {
			return nil, err
		}
	}
	return Load()
}

// Get returns the current configuration, falling back to defaults when
// loading fails.
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// compileOverrides builds the glob matchers. Validate has already checked
// that every pattern compiles.
func (c *Config) compileOverrides() {
	for i := range c.Tasks.Overrides {
		o := &c.Tasks.Overrides[i]
		if g, err := glob.Compile(o.Match); err == nil {
			o.pattern = g
		}
	}
}

// matches reports whether the override applies to the task name.
func (o *TaskOverride) matches(name string) bool {
	if o.pattern == nil {
		return o.Match == name
	}
	return o.pattern.Match(name)
}

// TaskOptions translates the overrides matching name into task options, for
// appending to a task's own options at construction time.
func (c *Config) TaskOptions(name string) []boot.TaskOption {
	var opts []boot.TaskOption
	for i := range c.Tasks.Overrides {
		o := &c.Tasks.Overrides[i]
		if !o.matches(name) {
			continue
		}
		if o.Priority != nil {
			opts = append(opts, boot.WithPriority(*o.Priority))
		}
		if o.Optional != nil && *o.Optional {
			opts = append(opts, boot.Optional())
		}
	}
	return opts
}

// Disabled reports whether any matching override disables the task. An
// application is expected to not register disabled tasks.
func (c *Config) Disabled(name string) bool {
	disabled := false
	for i := range c.Tasks.Overrides {
		o := &c.Tasks.Overrides[i]
		if o.matches(name) {
			disabled = o.Disabled
		}
	}
	return disabled
}

// RunOptions translates the run directives into options for
// [boot.Process.Run].
func (c *Config) RunOptions() []boot.RunOption {
	var opts []boot.RunOption
	if c.Run.SynchronizeParents {
		opts = append(opts, boot.SynchronizeWithParents())
	}
	if c.Run.ResetFailedTasks {
		opts = append(opts, boot.ResetFailedTasks())
	}
	if c.Run.DisposeOnFinish {
		opts = append(opts, boot.DisposeOnFinish())
	}
	return opts
}

// NewLogger builds the configured logger. Disabled logging yields the nop
// logger; a zero MaxSizeMB disables rotation.
func (c *Config) NewLogger() (*logging.Logger, error) {
	if !c.Logging.Enabled {
		return logging.NopLogger(), nil
	}
	if c.Logging.MaxSizeMB > 0 && c.Logging.Dir != "" {
		return logging.NewRotatingLogger(c.Logging.Dir, c.Logging.Level, logging.RotationConfig{
			MaxSizeMB:  c.Logging.MaxSizeMB,
			MaxBackups: c.Logging.MaxBackups,
			Compress:   c.Logging.Compress,
		})
	}
	return logging.NewLogger(c.Logging.Dir, c.Logging.Level)
}

// ConfigDir returns the path to the user's config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "go-boot")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".go-boot"
	}
	return filepath.Join(home, ".config", "go-boot")
}

// ConfigFile returns the path to the config file.
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// WriteDefault writes a commented scaffold of the default configuration to
// path, creating parent directories as needed. It refuses to overwrite an
// existing file.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config: %s already exists", path)
	}
	data, err := yaml.Marshal(Default())
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	content := append([]byte("# go-boot configuration\n"), data...)
	return os.WriteFile(path, content, 0644)
}
