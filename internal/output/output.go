// Package output handles formatting CLI output as table, JSON, or compact.
package output

import (
	"os"
)

// Format represents an output format.
type Format int

const (
	// FormatAuto uses the default format (table).
	FormatAuto Format = iota
	// FormatJSON outputs JSON.
	FormatJSON
	// FormatTable outputs a human-readable table.
	FormatTable
	// FormatCompact outputs one-line-per-record compact format.
	FormatCompact
)

// Detect returns the appropriate format based on flags and environment.
// Default is table when no explicit format is set.
func Detect(jsonFlag, tableFlag, compactFlag bool) Format {
	if jsonFlag {
		return FormatJSON
	}
	if compactFlag {
		return FormatCompact
	}
	if tableFlag {
		return FormatTable
	}

	// Check environment variable.
	switch os.Getenv("TASKPILOT_OUTPUT") {
	case "json":
		return FormatJSON
	case "compact", "oneline":
		return FormatCompact
	case "table":
		return FormatTable
	}

	// Default: table.
	return FormatTable
}

// Uncategorized is the rendered fallback for an empty or dangling
// category reference.
const Uncategorized = "(uncategorized)"

// Names resolves category and tag ids to display names for rendering.
// Category and tag references are weak: a removed entity leaves its id
// on the task, and rendering falls back rather than failing.
type Names struct {
	Categories map[string]string
	Tags       map[string]string
}

// Category returns the display name for a category id.
func (n Names) Category(id string) string {
	if name, ok := n.Categories[id]; ok {
		return name
	}
	return Uncategorized
}

// TagList returns display names for the given tag ids. Dangling tag
// ids are dropped from the rendered list.
func (n Names) TagList(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if name, ok := n.Tags[id]; ok {
			out = append(out, name)
		}
	}
	return out
}
