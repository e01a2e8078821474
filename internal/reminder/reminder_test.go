package reminder

import (
	"testing"
	"time"

	"github.com/taskpilot/taskpilot/internal/registry"
	"github.com/taskpilot/taskpilot/internal/task"
)

var testNow = time.Date(2026, time.July, 1, 12, 0, 0, 0, time.UTC)

type memRepo struct{ tasks []*task.Task }

func (r *memRepo) GetAll() ([]*task.Task, error) { return r.tasks, nil }
func (r *memRepo) SaveAll([]*task.Task) error    { return nil }
func (r *memRepo) Save(*task.Task) error         { return nil }
func (r *memRepo) Delete(*task.Task) error       { return nil }

func newTestSetup(t *testing.T) (*registry.Registry, *Monitor) {
	t.Helper()
	v := &task.Validator{Now: func() time.Time { return testNow }}
	reg, err := registry.New(&memRepo{}, v)
	if err != nil {
		t.Fatalf("registry.New failed: %v", err)
	}
	reg.SetNow(func() time.Time { return testNow })
	m := New(reg)
	m.SetNow(func() time.Time { return testNow })
	return reg, m
}

func addTask(t *testing.T, reg *registry.Registry, title string, due time.Time) *task.Task {
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

func TestScanFiresInsideWindowExactlyOnce(t *testing.T) {
	reg, m := newTestSetup(t)
	addTask(t, reg, "Soon", testNow.Add(10*time.Minute))

	var events []*task.Task
	m.Subscribe(func(tk *task.Task) { events = append(events, tk) })

	for i := 0; i < 5; i++ {
		m.Scan(testNow.Add(time.Duration(i) * time.Minute))
	}
	if len(events) != 1 {
		t.Fatalf("Expected exactly one reminder across 5 ticks, got %d", len(events))
	}
	if events[0].Title != "Soon" {
		t.Errorf("Expected the due-soon task, got %q", events[0].Title)
	}
}

func TestScanWaitsUntilWindowEntered(t *testing.T) {
	reg, m := newTestSetup(t)
	addTask(t, reg, "Later", testNow.Add(20*time.Minute))

	if got := m.Scan(testNow); len(got) != 0 {
		t.Fatalf("Expected no reminder outside the window, got %d", len(got))
	}
	// 6 minutes later the task is 14 minutes out, inside the window.
	got := m.Scan(testNow.Add(6 * time.Minute))
	if len(got) != 1 {
		t.Fatalf("Expected reminder after entering window, got %d", len(got))
	}
	if got = m.Scan(testNow.Add(7 * time.Minute)); len(got) != 0 {
		t.Errorf("Expected no re-fire, got %d", len(got))
	}
}

func TestScanRetiresPastDueWithoutFiring(t *testing.T) {
	reg, m := newTestSetup(t)
	// Due dates must be in the future at creation; the task passes due
	// between ticks instead.
	addTask(t, reg, "Missed", testNow.Add(5*time.Second))

	if got := m.Scan(testNow.Add(time.Minute)); len(got) != 0 {
		t.Fatalf("Expected past-due task retired silently, got %d", len(got))
	}
	// Retired stays retired even if the clock were rewound.
	if got := m.Scan(testNow); len(got) != 0 {
		t.Errorf("Expected retired task never to fire, got %d", len(got))
	}
}

func TestScanRetiresCompleted(t *testing.T) {
	reg, m := newTestSetup(t)
	tk := addTask(t, reg, "Done early", testNow.Add(10*time.Minute))
	tk.SetCompleted(true)

	if got := m.Scan(testNow); len(got) != 0 {
		t.Errorf("Expected completed task retired without firing, got %d", len(got))
	}
}

func TestDeletedTaskLeavesMonitoredSet(t *testing.T) {
	reg, m := newTestSetup(t)
	tk := addTask(t, reg, "Short lived", testNow.Add(10*time.Minute))
	if err := reg.Delete(tk); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if got := m.Scan(testNow); len(got) != 0 {
		t.Errorf("Expected deleted task dropped from scanning, got %d", len(got))
	}
}

func TestAddedTaskIsArmed(t *testing.T) {
	reg, m := newTestSetup(t)

	var events int
	m.Subscribe(func(*task.Task) { events++ })

	// Added after the monitor exists, armed via the subscription.
	addTask(t, reg, "New arrival", testNow.Add(5*time.Minute))
	m.Scan(testNow)
	if events != 1 {
		t.Errorf("Expected reminder for task added after monitor start, got %d", events)
	}
}

func TestRecurringNextOccurrenceFiresIndependently(t *testing.T) {
	reg, m := newTestSetup(t)
	tk := addTask(t, reg, "Daily", testNow.Add(10*time.Minute))
	tk.SetRecurrence(task.RecurDaily, 1)

	var events int
	m.Subscribe(func(*task.Task) { events++ })

	m.Scan(testNow)
	if events != 1 {
		t.Fatalf("Expected original occurrence to fire, got %d", events)
	}

	// Completing spawns the next occurrence, which is armed fresh and
	// fires on its own approach to the due date.
	if err := reg.Complete(tk); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	next := reg.Tasks()[0]
	m.Scan(next.Due.Add(-10 * time.Minute))
	if events != 2 {
		t.Errorf("Expected the new occurrence to fire once, got %d", events)
	}
}

func TestInheritKeepsFiredStateAcrossRebuild(t *testing.T) {
	reg, m := newTestSetup(t)
	addTask(t, reg, "Soon", testNow.Add(10*time.Minute))

	if fired := m.Scan(testNow); len(fired) != 1 {
		t.Fatalf("Expected one reminder before rebuild, got %d", len(fired))
	}

	rebuilt := New(reg)
	rebuilt.SetNow(func() time.Time { return testNow })
	rebuilt.Inherit(m)

	if fired := rebuilt.Scan(testNow.Add(time.Minute)); len(fired) != 0 {
		t.Errorf("Expected no re-fire after rebuild, got %d", len(fired))
	}
}

func TestStopIsIdempotent(t *testing.T) {
	_, m := newTestSetup(t)
	m.SetInterval(time.Millisecond)
	m.Start()
	m.Stop()
	m.Stop()
}
