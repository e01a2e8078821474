package task

import (
	"testing"
	"time"
)

func TestIsRecurringTracksPattern(t *testing.T) {
	tk := New("Stretch")
	if tk.IsRecurring() {
		t.Error("Expected new task to be non-recurring")
	}

	for _, p := range []Pattern{RecurDaily, RecurWeekly, RecurMonthly} {
		tk.SetRecurrence(p, 1)
		if !tk.IsRecurring() {
			t.Errorf("Expected recurring for pattern %s", p)
		}
	}

	tk.SetRecurrence(RecurNone, 1)
	if tk.IsRecurring() {
		t.Error("Expected non-recurring after pattern reset")
	}
}

func TestStatusDerivedFromCompleted(t *testing.T) {
	tk := New("Call dentist")
	if tk.Status() != StatusPending {
		t.Errorf("Expected pending, got %s", tk.Status())
	}
	tk.SetCompleted(true)
	if tk.Status() != StatusCompleted {
		t.Errorf("Expected completed, got %s", tk.Status())
	}
}

func TestSubscribeOrderAndUnsubscribe(t *testing.T) {
	tk := New("Mow lawn")

	var order []string
	unsub := tk.Subscribe(func(field string) { order = append(order, "first:"+field) })
	tk.Subscribe(func(field string) { order = append(order, "second:"+field) })

	tk.SetDescription("back yard only")
	if len(order) != 2 || order[0] != "first:description" || order[1] != "second:description" {
		t.Fatalf("Expected registration-order delivery, got %v", order)
	}

	order = nil
	unsub()
	tk.SetDescription("front yard too")
	if len(order) != 1 || order[0] != "second:description" {
		t.Errorf("Expected only the remaining listener, got %v", order)
	}
}

func TestSetCompletedNotifiesStatusToo(t *testing.T) {
	tk := New("Ship package")

	var fields []string
	tk.Subscribe(func(field string) { fields = append(fields, field) })

	tk.SetCompleted(true)
	if len(fields) != 2 || fields[0] != FieldCompleted || fields[1] != FieldStatus {
		t.Errorf("Expected [completed status], got %v", fields)
	}
}

func TestSetTagsReplacesWholesale(t *testing.T) {
	tk := New("Plan trip")
	tk.SetTags([]string{"a", "b"})
	tk.SetTags([]string{"c"})

	if len(tk.TagIDs) != 1 || tk.TagIDs[0] != "c" {
		t.Errorf("Expected tag set replaced, got %v", tk.TagIDs)
	}

	// The setter copies its argument; mutating the caller's slice must not
	// leak into the task.
	src := []string{"x"}
	tk.SetTags(src)
	src[0] = "mutated"
	if tk.TagIDs[0] != "x" {
		t.Errorf("Expected defensive copy, got %v", tk.TagIDs)
	}
}

func TestSetRecurrenceClampsInterval(t *testing.T) {
	tk := New("Review budget")
	tk.SetRecurrence(RecurDaily, 0)
	if tk.Interval != 1 {
		t.Errorf("Expected interval clamped to 1, got %d", tk.Interval)
	}
}

func TestNewAssignsUniqueIDs(t *testing.T) {
	a := New("one")
	b := New("two")
	if a.ID == "" || b.ID == "" {
		t.Fatal("Expected non-empty ids")
	}
	if a.ID == b.ID {
		t.Error("Expected unique ids")
	}
	if a.Created != (time.Time{}) {
		t.Error("Expected Created unset until the registry stamps it")
	}
}
