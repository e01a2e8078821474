package store

import (
	"testing"
	"time"

	"github.com/taskpilot/taskpilot/internal/task"
)

func TestTaskFileRoundTrip(t *testing.T) {
	t.Parallel()
	repo := NewTaskFile(t.TempDir())

	due := time.Date(2026, time.April, 2, 17, 30, 0, 0, time.UTC)
	next := due.AddDate(0, 0, 7)

	a := task.New("Water the garden")
	a.Description = "Front beds *and* planters"
	a.Due = due
	a.Priority = task.PriorityHigh
	a.CategoryID = "cat-home"
	a.TagIDs = []string{"tag-1", "tag-2"}
	a.Created = due.AddDate(0, 0, -3)
	a.Recurrence = task.RecurWeekly
	a.Interval = 1
	a.NextDue = &next

	b := task.New("Dangling refs survive")
	b.Due = due
	b.CategoryID = "cat-deleted-long-ago"
	b.TagIDs = []string{"tag-gone"}
	b.Completed = true

	if err := repo.SaveAll([]*task.Task{a, b}); err != nil {
		t.Fatalf("SaveAll failed: %v", err)
	}

	loaded, err := repo.GetAll()
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("Expected 2 tasks, got %d", len(loaded))
	}

	got := loaded[0]
	if got.ID != a.ID || got.Title != a.Title || got.Description != a.Description {
		t.Errorf("Identity fields differ: got %+v", got)
	}
	if !got.Due.Equal(a.Due) || !got.Created.Equal(a.Created) {
		t.Errorf("Timestamps differ: due %v created %v", got.Due, got.Created)
	}
	if got.Priority != task.PriorityHigh || got.Recurrence != task.RecurWeekly || got.Interval != 1 {
		t.Errorf("Enum fields differ: %+v", got)
	}
	if got.NextDue == nil || !got.NextDue.Equal(next) {
		t.Errorf("Expected NextDue %v, got %v", next, got.NextDue)
	}
	if got.CategoryID != "cat-home" || len(got.TagIDs) != 2 || got.TagIDs[0] != "tag-1" {
		t.Errorf("References differ: %q %v", got.CategoryID, got.TagIDs)
	}

	// Dangling references are persisted verbatim, not scrubbed.
	if loaded[1].CategoryID != "cat-deleted-long-ago" || loaded[1].TagIDs[0] != "tag-gone" {
		t.Errorf("Expected dangling refs preserved, got %q %v", loaded[1].CategoryID, loaded[1].TagIDs)
	}
	if !loaded[1].Completed {
		t.Error("Expected completed flag preserved")
	}
}

func TestTaskFileMissingIsEmpty(t *testing.T) {
	t.Parallel()
	repo := NewTaskFile(t.TempDir())

	tasks, err := repo.GetAll()
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("Expected empty collection, got %d", len(tasks))
	}
}

func TestTaskFileSaveUpsertsAndDeleteRemoves(t *testing.T) {
	t.Parallel()
	repo := NewTaskFile(t.TempDir())

	a := task.New("First")
	a.Due = time.Now().Add(time.Hour)
	if err := repo.Save(a); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	a.Title = "First, renamed"
	if err := repo.Save(a); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	tasks, err := repo.GetAll()
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("Expected upsert, got %d tasks", len(tasks))
	}
	if tasks[0].Title != "First, renamed" {
		t.Errorf("Expected renamed title, got %q", tasks[0].Title)
	}

	if err := repo.Delete(a); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	tasks, _ = repo.GetAll()
	if len(tasks) != 0 {
		t.Errorf("Expected empty after delete, got %d", len(tasks))
	}
}

func TestCategorySeedsWhenFileMissing(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	cats, err := NewCategoryFile(dir).GetAll()
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if len(cats) != 4 {
		t.Fatalf("Expected 4 seeded categories, got %d", len(cats))
	}
	if cats[0].Name != "Work" {
		t.Errorf("Expected Work first, got %q", cats[0].Name)
	}

	tags, err := NewTagFile(dir).GetAll()
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if len(tags) != 4 {
		t.Fatalf("Expected 4 seeded tags, got %d", len(tags))
	}
	if tags[0].Name != "Important" || tags[0].Color != "#FF0000" {
		t.Errorf("Expected Important #FF0000, got %q %q", tags[0].Name, tags[0].Color)
	}
}

func TestSeedIDsStableAcrossLoads(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	first, err := NewCategoryFile(dir).GetAll()
	if err != nil {
		t.Fatalf("First GetAll failed: %v", err)
	}
	second, err := NewCategoryFile(dir).GetAll()
	if err != nil {
		t.Fatalf("Second GetAll failed: %v", err)
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Errorf("Category %q id changed across loads: %s vs %s",
				first[i].Name, first[i].ID, second[i].ID)
		}
	}

	firstTags, err := NewTagFile(dir).GetAll()
	if err != nil {
		t.Fatalf("First GetAll failed: %v", err)
	}
	secondTags, err := NewTagFile(dir).GetAll()
	if err != nil {
		t.Fatalf("Second GetAll failed: %v", err)
	}
	for i := range firstTags {
		if firstTags[i].ID != secondTags[i].ID {
			t.Errorf("Tag %q id changed across loads: %s vs %s",
				firstTags[i].Name, firstTags[i].ID, secondTags[i].ID)
		}
	}
}

func TestTagSelectedIsNotPersisted(t *testing.T) {
	t.Parallel()
	repo := NewTagFile(t.TempDir())

	tg := task.NewTag("Focus", "#123456")
	tg.Selected = true
	if err := repo.SaveAll([]task.Tag{tg}); err != nil {
		t.Fatalf("SaveAll failed: %v", err)
	}

	loaded, err := repo.GetAll()
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if len(loaded) != 1 {
		t.Fatalf("Expected 1 tag, got %d", len(loaded))
	}
	if loaded[0].Selected {
		t.Error("Expected Selected to be transient, got true after reload")
	}
}
