// Package task defines the task entity, its validation rules, and the
// recurrence engine. Mutations go through setter methods so subscribers
// observe every change; direct field writes are reserved for decoding.
package task

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Field names used in change and errors-changed notifications.
const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldDue         = "due"
	FieldPriority    = "priority"
	FieldCompleted   = "completed"
	FieldStatus      = "status"
	FieldCategory    = "category"
	FieldTags        = "tags"
	FieldRecurrence  = "recurrence"
)

// Task represents a single tracked task. Category and tags are weak
// references by id: deleting a category or tag leaves the id in place and
// views resolve it to a fallback at read time.
type Task struct {
	ID          string     `yaml:"id" json:"id"`
	Title       string     `yaml:"title" json:"title"`
	Description string     `yaml:"description,omitempty" json:"description,omitempty"`
	Due         time.Time  `yaml:"due" json:"due"`
	Priority    Priority   `yaml:"priority" json:"priority"`
	Completed   bool       `yaml:"completed" json:"completed"`
	CategoryID  string     `yaml:"category,omitempty" json:"category,omitempty"`
	TagIDs      []string   `yaml:"tags,omitempty" json:"tags,omitempty"`
	Created     time.Time  `yaml:"created" json:"created"`
	Recurrence  Pattern    `yaml:"recurrence,omitempty" json:"recurrence,omitempty"`
	Interval    int        `yaml:"interval,omitempty" json:"interval,omitempty"`
	NextDue     *time.Time `yaml:"next_due,omitempty" json:"next_due,omitempty"`

	subs     subscribers
	errSubs  subscribers
	errs     Errors
	validate func(*Task) Errors
}

// New creates a Task with a fresh id and the given title.
// Interval defaults to 1 so enabling recurrence later is well-formed.
func New(title string) *Task {
	return &Task{
		ID:       uuid.NewString(),
		Title:    title,
		Priority: PriorityMedium,
		Interval: 1,
	}
}

// Status returns the completion enum kept in sync with Completed.
func (t *Task) Status() Status {
	if t.Completed {
		return StatusCompleted
	}
	return StatusPending
}

// IsRecurring reports whether the task repeats after completion.
func (t *Task) IsRecurring() bool {
	return t.Recurrence != RecurNone
}

// Subscribe registers a listener for field changes. Listeners are invoked
// synchronously after a mutation, in registration order. The returned
// function removes the listener.
func (t *Task) Subscribe(fn func(field string)) (unsubscribe func()) {
	return t.subs.add(fn)
}

// SubscribeErrors registers a listener invoked once per field whose
// validation-error set changed (added or cleared) during a revalidation.
func (t *Task) SubscribeErrors(fn func(field string)) (unsubscribe func()) {
	return t.errSubs.add(fn)
}

// Bind attaches a validator so every subsequent field mutation keeps the
// error map consistent with the current field values. The task is
// validated immediately.
func (t *Task) Bind(v *Validator) {
	t.validate = v.Validate
	t.revalidate()
}

// HasErrors reports whether any field currently has validation errors.
func (t *Task) HasErrors() bool {
	return len(t.errs) > 0
}

// FieldErrors returns the ordered error messages for a field, or nil.
func (t *Task) FieldErrors(field string) []string {
	return t.errs[field]
}

// Errors returns a copy of the current field error map.
func (t *Task) Errors() Errors {
	out := make(Errors, len(t.errs))
	for f, msgs := range t.errs {
		out[f] = append([]string(nil), msgs...)
	}
	return out
}

// SetTitle updates the title and revalidates.
func (t *Task) SetTitle(title string) {
	t.Title = title
	t.subs.notify(FieldTitle)
	t.revalidate()
}

// SetDescription updates the description.
func (t *Task) SetDescription(desc string) {
	t.Description = desc
	t.subs.notify(FieldDescription)
}

// SetDue updates the due date and revalidates.
func (t *Task) SetDue(due time.Time) {
	t.Due = due
	t.subs.notify(FieldDue)
	t.revalidate()
}

// SetPriority updates the priority and revalidates.
func (t *Task) SetPriority(p Priority) {
	t.Priority = p
	t.subs.notify(FieldPriority)
	t.revalidate()
}

// SetCompleted updates the completion flag. Status is derived from
// Completed, so both notifications fire.
func (t *Task) SetCompleted(done bool) {
	t.Completed = done
	t.subs.notify(FieldCompleted)
	t.subs.notify(FieldStatus)
}

// SetCategory replaces the category reference.
func (t *Task) SetCategory(categoryID string) {
	t.CategoryID = categoryID
	t.subs.notify(FieldCategory)
}

// SetTags replaces the tag id set wholesale (never merged) and revalidates.
func (t *Task) SetTags(tagIDs []string) {
	t.TagIDs = append([]string(nil), tagIDs...)
	t.subs.notify(FieldTags)
	t.revalidate()
}

// SetRecurrence updates the recurrence pattern and interval together.
// An interval below 1 is clamped to 1.
func (t *Task) SetRecurrence(p Pattern, interval int) {
	if interval < 1 {
		interval = 1
	}
	t.Recurrence = p
	t.Interval = interval
	t.subs.notify(FieldRecurrence)
}

// HasTag reports whether the task references the given tag id.
func (t *Task) HasTag(tagID string) bool {
	for _, id := range t.TagIDs {
		if id == tagID {
			return true
		}
	}
	return false
}

// revalidate recomputes the full error map, replacing prior errors so a
// fixed field drops its stale messages, and notifies once per field whose
// error set actually changed.
func (t *Task) revalidate() {
	if t.validate == nil {
		return
	}
	prev := t.errs
	t.errs = t.validate(t)
	for _, field := range changedFields(prev, t.errs) {
		t.errSubs.notify(field)
	}
}

// changedFields returns the sorted union of fields whose message lists differ.
func changedFields(prev, next Errors) []string {
	seen := make(map[string]bool, len(prev)+len(next))
	var fields []string
	for f := range prev {
		if !messagesEqual(prev[f], next[f]) && !seen[f] {
			fields = append(fields, f)
			seen[f] = true
		}
	}
	for f := range next {
		if !messagesEqual(prev[f], next[f]) && !seen[f] {
			fields = append(fields, f)
			seen[f] = true
		}
	}
	sort.Strings(fields)
	return fields
}

func messagesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// subscribers is an ordered listener list supporting removal by handle.
type subscribers struct {
	entries []subscriber
	nextID  int
}

type subscriber struct {
	id int
	fn func(string)
}

func (s *subscribers) add(fn func(string)) func() {
	id := s.nextID
	s.nextID++
	s.entries = append(s.entries, subscriber{id: id, fn: fn})
	return func() {
		for i, e := range s.entries {
			if e.id == id {
				s.entries = append(s.entries[:i], s.entries[i+1:]...)
				return
			}
		}
	}
}

func (s *subscribers) notify(field string) {
	// Snapshot so a listener that unsubscribes mid-notification does not
	// shift the iteration.
	entries := append([]subscriber(nil), s.entries...)
	for _, e := range entries {
		e.fn(field)
	}
}
