// Package config handles taskpilot profile configuration.
package config

const (
	// DefaultDir is the default taskpilot directory name.
	DefaultDir = "taskpilot"
	// DefaultDataDir is the default data subdirectory name.
	DefaultDataDir = "data"
	// DefaultProfileName is used when init is run without a name.
	DefaultProfileName = "personal"
	// DefaultPriority is the default priority for new tasks.
	DefaultPriority = "medium"
	// DefaultReminderInterval is the reminder polling cadence as a duration string.
	DefaultReminderInterval = "60s"
	// DefaultReminderWindow is how far ahead of a due date reminders fire.
	DefaultReminderWindow = "15m"
	// DefaultSortKey is the initial list ordering.
	DefaultSortKey = "due"

	// ConfigFileName is the name of the config file within the taskpilot directory.
	ConfigFileName = "config.yml"

	// CurrentVersion is the current config schema version.
	CurrentVersion = 2
)
