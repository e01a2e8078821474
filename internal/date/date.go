// Package date parses due-date input from CLI flags and prompts.
package date

import (
	"strings"
	"time"

	"github.com/taskpilot/taskpilot/internal/apperr"
)

const (
	dayFormat      = "2006-01-02"
	dateTimeFormat = "2006-01-02 15:04"

	// endOfDayHour is the due time assumed when the user gives only a
	// calendar date, so "due today" is not already in the past at noon.
	endOfDayHour = 23
	endOfDayMin  = 59
)

// ParseDue parses user due-date input relative to now. Accepted forms:
//
//	2026-01-30 14:00   explicit date and time
//	2026-01-30         date only, due at end of day
//	today, tomorrow    relative keywords, due at end of day
func ParseDue(s string, now time.Time) (time.Time, error) {
	input := strings.TrimSpace(strings.ToLower(s))

	switch input {
	case "today":
		return endOfDay(now), nil
	case "tomorrow":
		return endOfDay(now.AddDate(0, 0, 1)), nil
	}

	if t, err := time.ParseInLocation(dateTimeFormat, s, now.Location()); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation(dayFormat, s, now.Location()); err == nil {
		return endOfDay(t), nil
	}

	return time.Time{}, apperr.Newf(apperr.InvalidDate,
		"invalid due date %q: expected YYYY-MM-DD, 'YYYY-MM-DD HH:MM', 'today', or 'tomorrow'", s)
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), endOfDayHour, endOfDayMin, 0, 0, t.Location())
}
