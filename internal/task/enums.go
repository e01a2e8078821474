package task

import (
	"encoding/json"

	"go.yaml.in/yaml/v3"

	"github.com/taskpilot/taskpilot/internal/apperr"
)

// Priority is the task urgency level. The ordinal order Low < Medium < High
// is significant for sorting.
type Priority int

// Priority levels.
const (
	PriorityLow Priority = iota
	PriorityMedium
	PriorityHigh
)

var priorityNames = []string{"low", "medium", "high"}

// Valid reports whether the priority is one of the defined levels.
func (p Priority) Valid() bool {
	return p >= PriorityLow && p <= PriorityHigh
}

// String returns the lowercase priority name.
func (p Priority) String() string {
	if !p.Valid() {
		return "invalid"
	}
	return priorityNames[p]
}

// PriorityNames returns the defined priority names in ordinal order.
func PriorityNames() []string {
	return append([]string(nil), priorityNames...)
}

// ParsePriority converts a name into a Priority.
func ParsePriority(s string) (Priority, error) {
	for i, name := range priorityNames {
		if name == s {
			return Priority(i), nil
		}
	}
	return 0, apperr.Newf(apperr.InvalidPriority, "invalid priority %q", s).
		WithDetails(map[string]any{
			"priority": s,
			"allowed":  priorityNames,
		})
}

// MarshalYAML implements yaml.Marshaler.
func (p Priority) MarshalYAML() (interface{}, error) {
	return p.String(), nil
}

// UnmarshalYAML implements yaml.v3 Unmarshaler.
func (p *Priority) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := ParsePriority(value.Value)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// MarshalJSON implements json.Marshaler.
func (p Priority) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *Priority) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParsePriority(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Status is the completion state derived from the Completed flag.
type Status int

// Status values.
const (
	StatusPending Status = iota
	StatusCompleted
)

// String returns the lowercase status name.
func (s Status) String() string {
	if s == StatusCompleted {
		return "completed"
	}
	return "pending"
}

// MarshalJSON implements json.Marshaler.
func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// Pattern is the recurrence pattern for repeating tasks.
type Pattern int

// Recurrence patterns.
const (
	RecurNone Pattern = iota
	RecurDaily
	RecurWeekly
	RecurMonthly
)

var patternNames = []string{"none", "daily", "weekly", "monthly"}

// Valid reports whether the pattern is one of the defined values.
func (p Pattern) Valid() bool {
	return p >= RecurNone && p <= RecurMonthly
}

// String returns the lowercase pattern name.
func (p Pattern) String() string {
	if !p.Valid() {
		return "invalid"
	}
	return patternNames[p]
}

// ParsePattern converts a name into a Pattern.
func ParsePattern(s string) (Pattern, error) {
	for i, name := range patternNames {
		if name == s {
			return Pattern(i), nil
		}
	}
	return 0, apperr.Newf(apperr.InvalidRecurrence, "invalid recurrence %q", s).
		WithDetails(map[string]any{
			"recurrence": s,
			"allowed":    patternNames,
		})
}

// MarshalYAML implements yaml.Marshaler.
func (p Pattern) MarshalYAML() (interface{}, error) {
	return p.String(), nil
}

// UnmarshalYAML implements yaml.v3 Unmarshaler.
func (p *Pattern) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := ParsePattern(value.Value)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// MarshalJSON implements json.Marshaler.
func (p Pattern) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *Pattern) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParsePattern(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// IsZero lets yaml omitempty skip the default pattern.
func (p Pattern) IsZero() bool {
	return p == RecurNone
}
