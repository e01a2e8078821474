package task

import "time"

const (
	daysPerWeek = 7
	// daysPerMonth is a deliberate approximation: monthly recurrence adds
	// 30-day blocks rather than doing calendar-month arithmetic, so "every
	// month" drifts against month boundaries. Kept simple on purpose.
	daysPerMonth = 30
)

// Reschedule computes the next due date for a recurring task and writes it
// to NextDue. The due date itself is not touched. No-op for non-recurring
// tasks.
func (t *Task) Reschedule() {
	if !t.IsRecurring() {
		return
	}

	var days int
	switch t.Recurrence {
	case RecurDaily:
		days = t.Interval
	case RecurWeekly:
		days = daysPerWeek * t.Interval
	case RecurMonthly:
		days = daysPerMonth * t.Interval
	default:
		return
	}

	next := t.Due.Add(time.Duration(days) * 24 * time.Hour)
	t.NextDue = &next
}
