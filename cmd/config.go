package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/taskpilot/taskpilot/internal/apperr"
	"github.com/taskpilot/taskpilot/internal/config"
	"github.com/taskpilot/taskpilot/internal/output"
	"github.com/taskpilot/taskpilot/internal/task"
	"github.com/taskpilot/taskpilot/internal/view"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or modify profile configuration",
	Long:  `View the full configuration, get a specific key, or set a writable value.`,
	RunE:  runConfigShow,
}

var configGetCmd = &cobra.Command{
	Use:   "get KEY",
	Short: "Get a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2), //nolint:mnd // key and value
	RunE:  runConfigSet,
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

// configAccessor describes how to get and set a config key.
type configAccessor struct {
	get      func(*config.Config) any
	set      func(*config.Config, string) error
	writable bool
}

func configAccessors() map[string]configAccessor {
	return map[string]configAccessor{
		"version": {
			get: func(c *config.Config) any { return c.Version },
		},
		"profile.name": {
			get:      func(c *config.Config) any { return c.Profile.Name },
			set:      func(c *config.Config, v string) error { c.Profile.Name = v; return nil },
			writable: true,
		},
		"profile.description": {
			get:      func(c *config.Config) any { return c.Profile.Description },
			set:      func(c *config.Config, v string) error { c.Profile.Description = v; return nil },
			writable: true,
		},
		"data_dir": {
			get: func(c *config.Config) any { return c.DataDir },
		},
		"defaults.priority": {
			get: func(c *config.Config) any { return c.Defaults.Priority },
			set: func(c *config.Config, v string) error {
				if _, err := task.ParsePriority(v); err != nil {
					return apperr.Newf(apperr.InvalidInput,
						"invalid default priority %q; allowed: low, medium, high", v)
				}
				c.Defaults.Priority = v
				return nil
			},
			writable: true,
		},
		"defaults.sort": {
			get: func(c *config.Config) any { return c.Defaults.SortKey },
			set: func(c *config.Config, v string) error {
				if !view.ValidSortKey(v) {
					return apperr.Newf(apperr.InvalidInput,
						"invalid default sort %q; allowed: %s", v, strings.Join(view.SortKeys, ", "))
				}
				c.Defaults.SortKey = v
				return nil
			},
			writable: true,
		},
		"reminder.interval": {
			get: func(c *config.Config) any { return c.Reminder.Interval },
			set: func(c *config.Config, v string) error {
				if _, err := time.ParseDuration(v); err != nil {
					return apperr.Newf(apperr.InvalidInput,
						"invalid reminder.interval %q: %v", v, err)
				}
				c.Reminder.Interval = v
				return nil
			},
			writable: true,
		},
		"reminder.window": {
			get: func(c *config.Config) any { return c.Reminder.Window },
			set: func(c *config.Config, v string) error {
				if _, err := time.ParseDuration(v); err != nil {
					return apperr.Newf(apperr.InvalidInput,
						"invalid reminder.window %q: %v", v, err)
				}
				c.Reminder.Window = v
				return nil
			},
			writable: true,
		},
	}
}

// allConfigKeys returns config keys in display order.
func allConfigKeys() []string {
	return []string{
		"version",
		"profile.name",
		"profile.description",
		"data_dir",
		"defaults.priority",
		"defaults.sort",
		"reminder.interval",
		"reminder.window",
	}
}

func runConfigShow(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	accessors := configAccessors()

	if outputFormat() == output.FormatJSON {
		m := make(map[string]any, len(accessors))
		for _, key := range allConfigKeys() {
			m[key] = accessors[key].get(cfg)
		}
		return output.JSON(os.Stdout, m)
	}

	// Table mode: key-value pairs.
	for _, key := range allConfigKeys() {
		val := accessors[key].get(cfg)
		fmt.Fprintf(os.Stdout, "%-20s %v\n", key, val)
	}
	return nil
}

func runConfigGet(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	key := args[0]
	acc, ok := configAccessors()[key]
	if !ok {
		return apperr.Newf(apperr.InvalidInput, "unknown config key %q", key)
	}

	val := acc.get(cfg)

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, val)
	}

	fmt.Fprintln(os.Stdout, val)
	return nil
}

func runConfigSet(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	key, value := args[0], args[1]
	acc, ok := configAccessors()[key]
	if !ok {
		return apperr.Newf(apperr.InvalidInput, "unknown config key %q", key)
	}
	if !acc.writable {
		return apperr.Newf(apperr.InvalidInput, "config key %q is read-only", key)
	}

	if err := acc.set(cfg, value); err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := cfg.Save(); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]any{"key": key, "value": acc.get(cfg)})
	}

	output.Messagef(os.Stdout, "Set %s = %v", key, acc.get(cfg))
	return nil
}
