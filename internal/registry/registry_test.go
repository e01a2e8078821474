package registry

import (
	"errors"
	"testing"
	"time"

	"github.com/taskpilot/taskpilot/internal/apperr"
	"github.com/taskpilot/taskpilot/internal/task"
)

// fakeRepo records persistence calls and can be told to fail.
type fakeRepo struct {
	tasks    []*task.Task
	saveAlls int
	saves    int
	deletes  int
	failSave error
}

func (f *fakeRepo) GetAll() ([]*task.Task, error) { return f.tasks, nil }

func (f *fakeRepo) SaveAll(tasks []*task.Task) error {
	f.saveAlls++
	if f.failSave != nil {
		return f.failSave
	}
	f.tasks = append([]*task.Task(nil), tasks...)
	return nil
}

func (f *fakeRepo) Save(t *task.Task) error {
	f.saves++
	return f.failSave
}

func (f *fakeRepo) Delete(t *task.Task) error {
	f.deletes++
	return f.failSave
}

var frozen = time.Date(2026, time.May, 1, 9, 0, 0, 0, time.UTC)

func newTestRegistry(t *testing.T, repo *fakeRepo) *Registry {
	t.Helper()
	v := &task.Validator{Now: func() time.Time { return frozen }}
	r, err := New(repo, v)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	r.SetNow(func() time.Time { return frozen })
	return r
}

func newValidTask(title string) *task.Task {
	tk := task.New(title)
	tk.Due = frozen.Add(48 * time.Hour)
	tk.CategoryID = "cat-1"
	tk.TagIDs = []string{"tag-1"}
	return tk
}

func TestAddStampsCreatedAndPersists(t *testing.T) {
	repo := &fakeRepo{}
	r := newTestRegistry(t, repo)

	tk := newValidTask("Buy milk")
	if err := r.Add(tk); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if !tk.Created.Equal(frozen) {
		t.Errorf("Expected Created stamped to %v, got %v", frozen, tk.Created)
	}
	if r.Len() != 1 {
		t.Errorf("Expected 1 task, got %d", r.Len())
	}
	if repo.saveAlls != 1 {
		t.Errorf("Expected 1 SaveAll, got %d", repo.saveAlls)
	}
}

func TestAddInvalidRejectsBeforeMutating(t *testing.T) {
	repo := &fakeRepo{}
	r := newTestRegistry(t, repo)

	tk := task.New("Buy milk")
	tk.Due = frozen.Add(time.Hour)
	// No category, no tags: invalid on the creation path.
	err := r.Add(tk)
	if err == nil {
		t.Fatal("Expected validation error")
	}
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Code != apperr.ValidationFailed {
		t.Errorf("Expected VALIDATION_FAILED, got %v", err)
	}
	if r.Len() != 0 {
		t.Errorf("Expected collection untouched, got %d tasks", r.Len())
	}
	if repo.saveAlls != 0 {
		t.Errorf("Expected no persistence call, got %d", repo.saveAlls)
	}
}

func TestUpdateOverwritesFieldsNotIdentity(t *testing.T) {
	repo := &fakeRepo{}
	r := newTestRegistry(t, repo)

	tk := newValidTask("Original")
	if err := r.Add(tk); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	created := tk.Created

	edit := task.New("Edited")
	edit.ID = tk.ID
	edit.Due = frozen.Add(72 * time.Hour)
	edit.Priority = task.PriorityHigh
	edit.CategoryID = "cat-2"
	edit.TagIDs = []string{"tag-9"}

	if err := r.Update(edit); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got := r.Get(tk.ID)
	if got.Title != "Edited" || got.Priority != task.PriorityHigh || got.CategoryID != "cat-2" {
		t.Errorf("Expected fields overwritten, got %+v", got)
	}
	if len(got.TagIDs) != 1 || got.TagIDs[0] != "tag-9" {
		t.Errorf("Expected tag set replaced wholesale, got %v", got.TagIDs)
	}
	if !got.Created.Equal(created) {
		t.Errorf("Expected Created unchanged, got %v", got.Created)
	}
}

func TestUpdateInvalidRejectsBeforeSaving(t *testing.T) {
	repo := &fakeRepo{}
	r := newTestRegistry(t, repo)

	tk := newValidTask("Original")
	if err := r.Add(tk); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	edit := task.New("ab")
	edit.ID = tk.ID
	edit.Due = tk.Due

	err := r.Update(edit)
	if err == nil {
		t.Fatal("Expected validation error, got nil")
	}
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Code != apperr.ValidationFailed {
		t.Errorf("Expected VALIDATION_FAILED, got %v", err)
	}
	if got := r.Get(tk.ID); got.Title != "Original" {
		t.Errorf("Expected stored task untouched, got title %q", got.Title)
	}
	if repo.saves != 0 {
		t.Errorf("Expected no Save call, got %d", repo.saves)
	}
}

func TestUpdateMissingIsSilentNoop(t *testing.T) {
	repo := &fakeRepo{}
	r := newTestRegistry(t, repo)

	ghost := newValidTask("Never added")
	if err := r.Update(ghost); err != nil {
		t.Fatalf("Expected soft no-op, got %v", err)
	}
	if repo.saves != 0 {
		t.Errorf("Expected no Save call, got %d", repo.saves)
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	repo := &fakeRepo{}
	r := newTestRegistry(t, repo)

	tk := newValidTask("Ephemeral")
	if err := r.Add(tk); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := r.Delete(tk); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if r.Len() != 0 {
		t.Fatalf("Expected empty, got %d", r.Len())
	}
	// Second delete of the same task: no-op, no repo call.
	deletes := repo.deletes
	if err := r.Delete(tk); err != nil {
		t.Fatalf("Expected no-op, got %v", err)
	}
	if repo.deletes != deletes {
		t.Errorf("Expected no extra Delete call, got %d", repo.deletes)
	}
}

func TestCompleteNonRecurringShrinksByOne(t *testing.T) {
	repo := &fakeRepo{}
	r := newTestRegistry(t, repo)

	tk := newValidTask("One-off")
	if err := r.Add(tk); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := r.Complete(tk); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if r.Len() != 0 {
		t.Errorf("Expected collection shrunk to 0, got %d", r.Len())
	}
	if !tk.Completed {
		t.Error("Expected the finished task marked completed")
	}
}

func TestCompleteRecurringSpawnsNextOccurrence(t *testing.T) {
	repo := &fakeRepo{}
	r := newTestRegistry(t, repo)

	tk := newValidTask("Weekly review")
	tk.SetRecurrence(task.RecurWeekly, 1)
	if err := r.Add(tk); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	if err := r.Complete(tk); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	if r.Len() != 1 {
		t.Fatalf("Expected size unchanged (one removed, one added), got %d", r.Len())
	}
	next := r.Tasks()[0]
	if next.ID == tk.ID {
		t.Fatal("Expected a fresh task, got the original")
	}
	wantDue := tk.Due.AddDate(0, 0, 7)
	if !next.Due.Equal(wantDue) {
		t.Errorf("Expected next due %v (the template's precomputed NextDue), got %v", wantDue, next.Due)
	}
	if next.Recurrence != task.RecurWeekly || next.Interval != 1 {
		t.Errorf("Expected recurrence carried over, got %s/%d", next.Recurrence, next.Interval)
	}
	if next.NextDue == nil || !next.NextDue.Equal(wantDue.AddDate(0, 0, 7)) {
		t.Errorf("Expected the new occurrence rescheduled in turn, got %v", next.NextDue)
	}
	if next.Completed {
		t.Error("Expected new occurrence to be pending")
	}
}

func TestCompleteMissingIsNoop(t *testing.T) {
	repo := &fakeRepo{}
	r := newTestRegistry(t, repo)

	ghost := newValidTask("Ghost")
	if err := r.Complete(ghost); err != nil {
		t.Fatalf("Expected soft no-op, got %v", err)
	}
	if repo.saveAlls != 0 {
		t.Errorf("Expected no persistence, got %d SaveAll calls", repo.saveAlls)
	}
}

func TestSaveFailureKeepsMutationAndReports(t *testing.T) {
	repo := &fakeRepo{}
	r := newTestRegistry(t, repo)

	var reported []string
	r.SubscribeErrors(func(msg string) { reported = append(reported, msg) })

	repo.failSave = errors.New("disk full")
	tk := newValidTask("Still added")
	err := r.Add(tk)
	if err == nil {
		t.Fatal("Expected persistence error")
	}
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Code != apperr.PersistenceFailed {
		t.Errorf("Expected PERSISTENCE_FAILED, got %v", err)
	}
	// At-least-once, non-transactional: the mutation stands.
	if r.Len() != 1 {
		t.Errorf("Expected task kept in memory, got %d", r.Len())
	}
	if len(reported) != 1 {
		t.Errorf("Expected one error notification, got %v", reported)
	}
}

func TestCollectionChangedNotifications(t *testing.T) {
	repo := &fakeRepo{}
	r := newTestRegistry(t, repo)

	var changes []Change
	r.Subscribe(func(c Change) { changes = append(changes, c) })

	tk := newValidTask("Observed")
	if err := r.Add(tk); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := r.Delete(tk); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if len(changes) != 2 {
		t.Fatalf("Expected 2 changes, got %d", len(changes))
	}
	if changes[0].Kind != Added || changes[0].Task.ID != tk.ID {
		t.Errorf("Expected Added first, got %+v", changes[0])
	}
	if changes[1].Kind != Removed || changes[1].Task.ID != tk.ID {
		t.Errorf("Expected Removed second, got %+v", changes[1])
	}
}

func TestSelectionClearsOnDelete(t *testing.T) {
	repo := &fakeRepo{}
	r := newTestRegistry(t, repo)

	tk := newValidTask("Selected")
	if err := r.Add(tk); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	r.Select(tk)
	if r.Selected() != tk {
		t.Fatal("Expected selection set")
	}
	if err := r.Delete(tk); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if r.Selected() != nil {
		t.Error("Expected selection cleared after delete")
	}
}

func TestFindByPrefix(t *testing.T) {
	repo := &fakeRepo{}
	r := newTestRegistry(t, repo)

	tk := newValidTask("Findable")
	if err := r.Add(tk); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	got, err := r.Find(tk.ID[:8])
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if got.ID != tk.ID {
		t.Errorf("Expected %s, got %s", tk.ID, got.ID)
	}

	if _, err := r.Find("no-such-id"); err == nil {
		t.Error("Expected TASK_NOT_FOUND error")
	}
}
