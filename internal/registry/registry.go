// Package registry owns the canonical in-memory task collection and its
// lifecycle operations. It is single-writer: one owner mutates, readers
// get snapshots. Persistence is at-least-once and non-transactional — a
// failed save is reported but the in-memory mutation stands.
package registry

import (
	"strings"
	"time"

	"github.com/taskpilot/taskpilot/internal/apperr"
	"github.com/taskpilot/taskpilot/internal/store"
	"github.com/taskpilot/taskpilot/internal/task"
)

// ChangeKind classifies a collection-changed notification.
type ChangeKind int

// Collection change kinds.
const (
	Added ChangeKind = iota
	Removed
	Reset
)

// Change describes a single collection mutation. Task is nil for Reset.
type Change struct {
	Kind ChangeKind
	Task *task.Task
}

// Registry holds the ordered task collection, keyed by id with insertion
// order preserved for default display.
type Registry struct {
	repo      store.TaskRepository
	validator *task.Validator
	now       func() time.Time

	tasks    []*task.Task
	byID     map[string]*task.Task
	selected *task.Task

	subs    subscribers
	errSubs errSubscribers
}

// New creates a Registry loaded from the repository. Every loaded task is
// bound to the validator so its error map stays live.
func New(repo store.TaskRepository, v *task.Validator) (*Registry, error) {
	tasks, err := repo.GetAll()
	if err != nil {
		return nil, apperr.Wrap(apperr.PersistenceFailed, err)
	}

	r := &Registry{
		repo:      repo,
		validator: v,
		now:       time.Now,
		tasks:     tasks,
		byID:      make(map[string]*task.Task, len(tasks)),
	}
	for _, t := range tasks {
		t.Bind(v)
		r.byID[t.ID] = t
	}
	return r, nil
}

// SetNow overrides the clock used for created-date stamping and recurrence
// fallbacks (for testing).
func (r *Registry) SetNow(fn func() time.Time) {
	r.now = fn
}

// Tasks returns a snapshot of the collection in insertion order. Callers
// may iterate freely while the registry mutates.
func (r *Registry) Tasks() []*task.Task {
	return append([]*task.Task(nil), r.tasks...)
}

// Len returns the number of tasks.
func (r *Registry) Len() int {
	return len(r.tasks)
}

// Get returns the task with the exact id, or nil.
func (r *Registry) Get(id string) *task.Task {
	return r.byID[id]
}

// Find resolves an id or unique id prefix to a task.
func (r *Registry) Find(idOrPrefix string) (*task.Task, error) {
	if t := r.byID[idOrPrefix]; t != nil {
		return t, nil
	}

	var match *task.Task
	for _, t := range r.tasks {
		if strings.HasPrefix(t.ID, idOrPrefix) {
			if match != nil {
				return nil, apperr.Newf(apperr.AmbiguousID, "id prefix %q matches multiple tasks", idOrPrefix).
					WithDetails(map[string]any{"prefix": idOrPrefix})
			}
			match = t
		}
	}
	if match == nil {
		return nil, apperr.Newf(apperr.TaskNotFound, "task not found: %s", idOrPrefix).
			WithDetails(map[string]any{"id": idOrPrefix})
	}
	return match, nil
}

// Selected returns the current selection target, or nil.
func (r *Registry) Selected() *task.Task {
	return r.selected
}

// Select points the registry's selection at the given task (or nil to
// clear). The selection may reference a transient, not-yet-added task.
func (r *Registry) Select(t *task.Task) {
	r.selected = t
}

// Subscribe registers a collection-changed listener. Notification is
// synchronous, after the mutation, in registration order.
func (r *Registry) Subscribe(fn func(Change)) (unsubscribe func()) {
	return r.subs.add(fn)
}

// SubscribeErrors registers a listener for human-readable operation
// failures (persistence problems and the like).
func (r *Registry) SubscribeErrors(fn func(msg string)) (unsubscribe func()) {
	return r.errSubs.add(fn)
}

// Add validates and inserts a new task. An invalid task is a caller
// error: the collection is untouched and nothing is persisted. On
// success the task gets its created date stamped and the change persists.
func (r *Registry) Add(t *task.Task) error {
	if errs := r.validator.ValidateForCreate(t); errs.Has() {
		return apperr.New(apperr.ValidationFailed, "cannot add invalid task").
			WithDetails(map[string]any{"errors": errs})
	}

	t.Created = r.now()
	t.Bind(r.validator)
	r.insert(t)
	return r.persistAll()
}

// Update overwrites the stored task's mutable fields from the given
// snapshot, matched by id. The tag set is replaced wholesale. Id and
// created date never change. A missing id is a silent no-op: the UI may
// race a stale selection against a delete. A snapshot that fails the
// edit-time rules is a caller error: nothing is applied or persisted.
func (r *Registry) Update(t *task.Task) error {
	existing := r.byID[t.ID]
	if existing == nil {
		return nil
	}

	if errs := r.validator.Validate(t); errs.Has() {
		return apperr.New(apperr.ValidationFailed, "cannot save invalid task").
			WithDetails(map[string]any{"errors": errs})
	}

	existing.SetTitle(t.Title)
	existing.SetDescription(t.Description)
	existing.SetDue(t.Due)
	existing.SetPriority(t.Priority)
	existing.SetCategory(t.CategoryID)
	existing.SetTags(t.TagIDs)
	existing.SetRecurrence(t.Recurrence, t.Interval)

	return r.persistOne(existing)
}

// Delete removes a task from the collection. Unknown tasks are a no-op.
func (r *Registry) Delete(t *task.Task) error {
	if t == nil || r.byID[t.ID] == nil {
		return nil
	}

	r.remove(t.ID)
	if r.selected != nil && r.selected.ID == t.ID {
		r.selected = nil
	}

	if err := r.repo.Delete(t); err != nil {
		return r.reportPersistence(err)
	}
	return nil
}

// Complete finishes a task. A recurring task spawns its next occurrence
// from the template before the completed one leaves the active
// collection, so the collection size is unchanged; a one-off task simply
// leaves. Unknown tasks are a no-op.
func (r *Registry) Complete(t *task.Task) error {
	if t == nil || r.byID[t.ID] == nil {
		return nil
	}

	if t.IsRecurring() {
		t.Reschedule()
		next := r.nextOccurrence(t)
		r.insert(next)
	}

	t.SetCompleted(true)
	r.remove(t.ID)
	if r.selected != nil && r.selected.ID == t.ID {
		r.selected = nil
	}
	return r.persistAll()
}

// nextOccurrence clones the recurring template into a fresh task due at
// the precomputed next due date, falling back to tomorrow.
func (r *Registry) nextOccurrence(tmpl *task.Task) *task.Task {
	next := task.New(tmpl.Title)
	next.Description = tmpl.Description
	next.Recurrence = tmpl.Recurrence
	next.Interval = tmpl.Interval
	if tmpl.NextDue != nil {
		next.Due = *tmpl.NextDue
	} else {
		next.Due = r.now().Add(24 * time.Hour)
	}
	next.Reschedule()
	next.Created = r.now()
	next.Bind(r.validator)
	return next
}

func (r *Registry) insert(t *task.Task) {
	r.tasks = append(r.tasks, t)
	r.byID[t.ID] = t
	r.subs.notify(Change{Kind: Added, Task: t})
}

func (r *Registry) remove(id string) {
	t := r.byID[id]
	delete(r.byID, id)
	for i, existing := range r.tasks {
		if existing.ID == id {
			r.tasks = append(r.tasks[:i], r.tasks[i+1:]...)
			break
		}
	}
	r.subs.notify(Change{Kind: Removed, Task: t})
}

func (r *Registry) persistAll() error {
	if err := r.repo.SaveAll(r.tasks); err != nil {
		return r.reportPersistence(err)
	}
	return nil
}

func (r *Registry) persistOne(t *task.Task) error {
	if err := r.repo.Save(t); err != nil {
		return r.reportPersistence(err)
	}
	return nil
}

// reportPersistence surfaces a save failure without rolling back the
// in-memory mutation.
func (r *Registry) reportPersistence(err error) error {
	wrapped := apperr.Wrap(apperr.PersistenceFailed, err)
	r.errSubs.notify("saving tasks: " + err.Error())
	return wrapped
}

// subscribers is an ordered collection-changed listener list supporting
// removal by handle.
type subscribers struct {
	entries []changeListener
	nextID  int
}

type changeListener struct {
	id int
	fn func(Change)
}

func (s *subscribers) add(fn func(Change)) func() {
	id := s.nextID
	s.nextID++
	s.entries = append(s.entries, changeListener{id: id, fn: fn})
	return func() {
		for i, e := range s.entries {
			if e.id == id {
				s.entries = append(s.entries[:i], s.entries[i+1:]...)
				return
			}
		}
	}
}

func (s *subscribers) notify(c Change) {
	entries := append([]changeListener(nil), s.entries...)
	for _, e := range entries {
		e.fn(c)
	}
}

type errSubscribers struct {
	entries []errListener
	nextID  int
}

type errListener struct {
	id int
	fn func(string)
}

func (s *errSubscribers) add(fn func(string)) func() {
	id := s.nextID
	s.nextID++
	s.entries = append(s.entries, errListener{id: id, fn: fn})
	return func() {
		for i, e := range s.entries {
			if e.id == id {
				s.entries = append(s.entries[:i], s.entries[i+1:]...)
				return
			}
		}
	}
}

func (s *errSubscribers) notify(msg string) {
	entries := append([]errListener(nil), s.entries...)
	for _, e := range entries {
		e.fn(msg)
	}
}
