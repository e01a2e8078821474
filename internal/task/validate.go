package task

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Validation messages. Stable strings: the UI and tests match on them.
const (
	MsgTitleRequired  = "Title is required"
	MsgTitleTooShort  = "Title must be at least 3 characters long"
	MsgTitleTooLong   = "Title cannot exceed 100 characters"
	MsgDueInPast      = "Due date cannot be in the past"
	MsgPriorityBad    = "Invalid priority value"
	MsgCategoryNeeded = "Category is required"
	MsgTagNeeded      = "At least one tag must be selected"
)

// Title length bounds in characters.
const (
	minTitleLen = 3
	maxTitleLen = 100
)

// Errors maps a field name to its ordered list of validation messages.
type Errors map[string][]string

// Has reports whether any field has messages.
func (e Errors) Has() bool { return len(e) > 0 }

// Validator evaluates field rules against a task snapshot. Each call
// produces a fresh error map; nothing is accumulated across calls.
type Validator struct {
	// Now supplies the current time for the due-date rule. Defaults to
	// time.Now so zero-value validators behave sensibly.
	Now func() time.Time
}

// NewValidator returns a Validator on the wall clock.
func NewValidator() *Validator {
	return &Validator{Now: time.Now}
}

func (v *Validator) now() time.Time {
	if v.Now == nil {
		return time.Now()
	}
	return v.Now()
}

// Validate applies the edit-time rules: title, due date, and priority.
func (v *Validator) Validate(t *Task) Errors {
	errs := make(Errors)
	if msg := checkTitle(t.Title); msg != "" {
		errs[FieldTitle] = append(errs[FieldTitle], msg)
	}
	if beforeDay(t.Due, v.now()) {
		errs[FieldDue] = append(errs[FieldDue], MsgDueInPast)
	}
	if !t.Priority.Valid() {
		errs[FieldPriority] = append(errs[FieldPriority], MsgPriorityBad)
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// ValidateForCreate applies the edit-time rules plus the creation-only
// ones: a new task must name a category and at least one tag. Raw
// mutations after creation are not held to these two rules.
func (v *Validator) ValidateForCreate(t *Task) Errors {
	errs := v.Validate(t)
	if errs == nil {
		errs = make(Errors)
	}
	if t.CategoryID == "" {
		errs[FieldCategory] = append(errs[FieldCategory], MsgCategoryNeeded)
	}
	if len(t.TagIDs) == 0 {
		errs[FieldTags] = append(errs[FieldTags], MsgTagNeeded)
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// checkTitle returns the single applicable title message, or "".
// The rules are exclusive: an empty title reports only "required".
func checkTitle(title string) string {
	if strings.TrimSpace(title) == "" {
		return MsgTitleRequired
	}
	switch n := utf8.RuneCountInString(title); {
	case n < minTitleLen:
		return MsgTitleTooShort
	case n > maxTitleLen:
		return MsgTitleTooLong
	}
	return ""
}

// beforeDay compares calendar dates only: a due date earlier today is
// still valid.
func beforeDay(due, now time.Time) bool {
	dy, dm, dd := due.Date()
	ny, nm, nd := now.Date()
	d := time.Date(dy, dm, dd, 0, 0, 0, 0, time.UTC)
	n := time.Date(ny, nm, nd, 0, 0, 0, 0, time.UTC)
	return d.Before(n)
}
