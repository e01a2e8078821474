package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/taskpilot/taskpilot/internal/apperr"
	"github.com/taskpilot/taskpilot/internal/task"
)

const fileMode = 0o600

// Sentinel errors.
var (
	ErrNotFound = errors.New("no taskpilot profile found (run 'taskpilot init' to create one)")
	ErrInvalid  = errors.New("invalid config")
)

// Config represents a taskpilot profile.
type Config struct {
	Version  int            `yaml:"version"`
	Profile  ProfileConfig  `yaml:"profile"`
	DataDir  string         `yaml:"data_dir"`
	Defaults DefaultsConfig `yaml:"defaults"`
	Reminder ReminderConfig `yaml:"reminder"`

	// dir is the absolute path to the taskpilot directory (not serialized).
	dir string `yaml:"-"`
}

// ProfileConfig holds profile metadata.
type ProfileConfig struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
}

// DefaultsConfig holds default values for new tasks.
type DefaultsConfig struct {
	Priority string `yaml:"priority"`
	SortKey  string `yaml:"sort,omitempty"`
}

// ReminderConfig tunes the due-soon monitor. Both fields are duration
// strings, e.g. "60s", "15m".
type ReminderConfig struct {
	Interval string `yaml:"interval"`
	Window   string `yaml:"window"`
}

// Dir returns the absolute path to the taskpilot directory.
func (c *Config) Dir() string {
	return c.dir
}

// DataPath returns the absolute path to the data directory holding the
// task, category, and tag files.
func (c *Config) DataPath() string {
	return filepath.Join(c.dir, c.DataDir)
}

// ConfigPath returns the absolute path to the config file.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.dir, ConfigFileName)
}

// NewDefault creates a Config with default values.
func NewDefault(name string) *Config {
	return &Config{
		Version: CurrentVersion,
		Profile: ProfileConfig{Name: name},
		DataDir: DefaultDataDir,
		Defaults: DefaultsConfig{
			Priority: DefaultPriority,
			SortKey:  DefaultSortKey,
		},
		Reminder: ReminderConfig{
			Interval: DefaultReminderInterval,
			Window:   DefaultReminderWindow,
		},
	}
}

// SetDir sets the taskpilot directory path on the config.
func (c *Config) SetDir(dir string) {
	c.dir = dir
}

// DefaultPriority parses the configured default priority, falling back
// to medium on an unparseable value.
func (c *Config) DefaultPriority() task.Priority {
	p, err := task.ParsePriority(c.Defaults.Priority)
	if err != nil {
		return task.PriorityMedium
	}
	return p
}

// ReminderInterval parses the polling cadence, falling back to the
// default on an empty or unparseable value.
func (c *Config) ReminderInterval() time.Duration {
	return durationOrDefault(c.Reminder.Interval, DefaultReminderInterval)
}

// ReminderWindow parses the due-soon window, falling back to the
// default on an empty or unparseable value.
func (c *Config) ReminderWindow() time.Duration {
	return durationOrDefault(c.Reminder.Window, DefaultReminderWindow)
}

func durationOrDefault(value, fallback string) time.Duration {
	if value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	d, _ := time.ParseDuration(fallback)
	return d
}

// Validate checks the config for errors.
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return fmt.Errorf("%w: unsupported version %d (expected %d)", ErrInvalid, c.Version, CurrentVersion)
	}
	if c.Profile.Name == "" {
		return fmt.Errorf("%w: profile.name is required", ErrInvalid)
	}
	if c.DataDir == "" {
		return fmt.Errorf("%w: data_dir is required", ErrInvalid)
	}
	if _, err := task.ParsePriority(c.Defaults.Priority); err != nil {
		return fmt.Errorf("%w: default priority %q is not one of low, medium, high", ErrInvalid, c.Defaults.Priority)
	}
	if err := validateDuration("reminder.interval", c.Reminder.Interval); err != nil {
		return err
	}
	if err := validateDuration("reminder.window", c.Reminder.Window); err != nil {
		return err
	}
	return nil
}

func validateDuration(field, value string) error {
	if value == "" {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("%w: invalid %s %q: %w", ErrInvalid, field, value, err)
	}
	if d <= 0 {
		return fmt.Errorf("%w: %s must be positive", ErrInvalid, field)
	}
	return nil
}

// Init creates a new taskpilot profile in the given directory with
// default settings. It creates the taskpilot directory, data
// subdirectory, and config file.
func Init(dir, name string) (*Config, error) {
	const dirMode = 0o750

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	cfg := NewDefault(name)
	cfg.SetDir(absDir)

	if err := os.MkdirAll(cfg.DataPath(), dirMode); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	if err := cfg.Save(); err != nil {
		return nil, fmt.Errorf("writing config: %w", err)
	}

	return cfg, nil
}

// Save writes the config to its config file.
func (c *Config) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(c.ConfigPath(), data, fileMode)
}

// Load reads and validates a config from the given taskpilot directory.
func Load(dir string) (*Config, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	path := filepath.Join(absDir, ConfigFileName)
	data, err := os.ReadFile(path) //nolint:gosec // config path from trusted source
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.dir = absDir

	// Migrate old config versions forward before validating.
	oldVersion := cfg.Version
	if err := migrate(&cfg); err != nil {
		return nil, err
	}

	// Persist migrated config so future loads skip re-migration.
	if cfg.Version != oldVersion {
		if err := cfg.Save(); err != nil {
			return nil, fmt.Errorf("saving migrated config: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// FindDir walks upward from startDir looking for a taskpilot directory
// containing config.yml, then falls back to the per-user config
// directory. Returns the absolute path to the taskpilot directory.
func FindDir(startDir string) (string, error) {
	absStart, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	dir := absStart
	for {
		candidate := filepath.Join(dir, DefaultDir, ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return filepath.Join(dir, DefaultDir), nil
		}

		// Also check if we're inside the taskpilot directory itself.
		candidate = filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	if home := UserDir(); home != "" {
		if _, err := os.Stat(filepath.Join(home, ConfigFileName)); err == nil {
			return home, nil
		}
	}

	return "", apperr.New(apperr.ConfigError,
		"no taskpilot profile found (run 'taskpilot init' to create one)")
}

// UserDir returns the per-user taskpilot directory, typically
// ~/.config/taskpilot, or empty if the user config dir is unknown.
func UserDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(base, DefaultDir)
}
