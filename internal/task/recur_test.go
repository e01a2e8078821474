package task

import (
	"testing"
	"time"
)

func TestRescheduleDaily(t *testing.T) {
	due := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)
	tk := New("Water plants")
	tk.Due = due
	tk.Recurrence = RecurDaily
	tk.Interval = 2

	tk.Reschedule()
	if tk.NextDue == nil {
		t.Fatal("Expected NextDue to be set")
	}
	want := due.AddDate(0, 0, 2)
	if !tk.NextDue.Equal(want) {
		t.Errorf("Expected %v, got %v", want, tk.NextDue)
	}
	if !tk.Due.Equal(due) {
		t.Errorf("Expected Due untouched, got %v", tk.Due)
	}
}

func TestRescheduleWeekly(t *testing.T) {
	due := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)
	tk := New("Weekly review")
	tk.Due = due
	tk.Recurrence = RecurWeekly
	tk.Interval = 1

	tk.Reschedule()
	want := due.AddDate(0, 0, 7)
	if tk.NextDue == nil || !tk.NextDue.Equal(want) {
		t.Errorf("Expected %v, got %v", want, tk.NextDue)
	}
}

func TestRescheduleMonthlyIs30Days(t *testing.T) {
	// Monthly adds 30-day blocks, not calendar months.
	due := time.Date(2026, time.January, 31, 9, 0, 0, 0, time.UTC)
	tk := New("Pay rent")
	tk.Due = due
	tk.Recurrence = RecurMonthly
	tk.Interval = 1

	tk.Reschedule()
	want := due.AddDate(0, 0, 30)
	if tk.NextDue == nil || !tk.NextDue.Equal(want) {
		t.Errorf("Expected %v (30 days), got %v", want, tk.NextDue)
	}
}

func TestRescheduleNonRecurringIsNoop(t *testing.T) {
	tk := New("One-off errand")
	tk.Due = time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)

	tk.Reschedule()
	if tk.NextDue != nil {
		t.Errorf("Expected NextDue nil for non-recurring task, got %v", tk.NextDue)
	}
}
