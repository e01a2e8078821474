package view

import (
	"testing"
	"time"

	"github.com/taskpilot/taskpilot/internal/registry"
	"github.com/taskpilot/taskpilot/internal/task"
)

type memRepo struct{ tasks []*task.Task }

func (r *memRepo) GetAll() ([]*task.Task, error) { return r.tasks, nil }
func (r *memRepo) SaveAll([]*task.Task) error    { return nil }
func (r *memRepo) Save(*task.Task) error         { return nil }
func (r *memRepo) Delete(*task.Task) error       { return nil }

func newCoordinatorSetup(t *testing.T) (*registry.Registry, *Coordinator) {
	t.Helper()
	v := &task.Validator{Now: func() time.Time { return testNow }}
	reg, err := registry.New(&memRepo{}, v)
	if err != nil {
		t.Fatalf("registry.New failed: %v", err)
	}
	reg.SetNow(func() time.Time { return testNow })
	c := NewCoordinator(reg, map[string]string{"cat-1": "Work"})
	c.SetNow(func() time.Time { return testNow })
	return reg, c
}

func addCoordinatorTask(t *testing.T, reg *registry.Registry, title string, due time.Time) *task.Task {
	t.Helper()
	tk := task.New(title)
	tk.Due = due
	tk.CategoryID = "cat-1"
	tk.TagIDs = []string{"tag-1"}
	if err := reg.Add(tk); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	return tk
}

func TestCoordinatorPublishesOnRegistryChange(t *testing.T) {
	reg, c := newCoordinatorSetup(t)
	defer c.Close()

	var snaps []Snapshot
	unsubscribe := c.Subscribe(func(s Snapshot) { snaps = append(snaps, s) })

	addCoordinatorTask(t, reg, "Buy milk", testNow.Add(48*time.Hour))
	addCoordinatorTask(t, reg, "Pay rent", testNow.Add(24*time.Hour))

	if len(snaps) != 2 {
		t.Fatalf("Expected 2 snapshots, got %d", len(snaps))
	}
	last := snaps[len(snaps)-1]
	if last.Stats.Total != 2 {
		t.Errorf("Expected total 2, got %d", last.Stats.Total)
	}
	// Default sort is by due date.
	if last.Tasks[0].Title != "Pay rent" {
		t.Errorf("Expected %q first, got %q", "Pay rent", last.Tasks[0].Title)
	}

	unsubscribe()
	addCoordinatorTask(t, reg, "Walk dog", testNow.Add(12*time.Hour))
	if len(snaps) != 2 {
		t.Errorf("Expected no snapshot after unsubscribe, got %d", len(snaps))
	}
}

func TestCoordinatorCriteriaChangeRecomputes(t *testing.T) {
	reg, c := newCoordinatorSetup(t)
	defer c.Close()

	addCoordinatorTask(t, reg, "Buy milk", testNow.Add(48*time.Hour))
	addCoordinatorTask(t, reg, "Pay rent", testNow.Add(24*time.Hour))

	var snap Snapshot
	c.Subscribe(func(s Snapshot) { snap = s })

	c.SetCriteria(Criteria{Search: "milk"})
	if len(snap.Tasks) != 1 || snap.Tasks[0].Title != "Buy milk" {
		t.Fatalf("Expected only %q in view, got %d tasks", "Buy milk", len(snap.Tasks))
	}
	// Statistics stay over the full set regardless of the filter.
	if snap.Stats.Total != 2 {
		t.Errorf("Expected stats total 2, got %d", snap.Stats.Total)
	}

	c.SetSort(SortTitle, true)
	if len(snap.Tasks) != 1 {
		t.Errorf("Expected filtered view to persist across sort change, got %d tasks", len(snap.Tasks))
	}
}

func TestCoordinatorCloseDetaches(t *testing.T) {
	reg, c := newCoordinatorSetup(t)

	calls := 0
	c.Subscribe(func(Snapshot) { calls++ })
	c.Close()

	addCoordinatorTask(t, reg, "Buy milk", testNow.Add(48*time.Hour))
	if calls != 0 {
		t.Errorf("Expected no publishes after Close, got %d", calls)
	}
}
