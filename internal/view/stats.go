package view

import (
	"time"

	"github.com/taskpilot/taskpilot/internal/task"
)

// Stats is a full recount over a task set. Counts are rebuilt from
// scratch on every call rather than maintained incrementally; at
// personal-task-list scale the O(n) pass is cheaper than keeping
// increments correct across completes and recurrence clones.
type Stats struct {
	Total      int                   `json:"total"`
	Completed  int                   `json:"completed"`
	Overdue    int                   `json:"overdue"`
	ByCategory map[string]int        `json:"by_category"`
	ByPriority map[task.Priority]int `json:"by_priority"`
}

// Aggregate recounts the given tasks. Overdue means pending with a due
// date strictly before now. Callers pass the full collection, not the
// filtered view; the totals describe the whole task set regardless of
// what is currently displayed.
func Aggregate(tasks []*task.Task, now time.Time) Stats {
	s := Stats{
		ByCategory: make(map[string]int),
		ByPriority: make(map[task.Priority]int),
	}
	for _, t := range tasks {
		s.Total++
		if t.Completed {
			s.Completed++
		} else if t.Due.Before(now) {
			s.Overdue++
		}
		if t.CategoryID != "" {
			s.ByCategory[t.CategoryID]++
		}
		s.ByPriority[t.Priority]++
	}
	return s
}

// Pending returns the count of open tasks.
func (s Stats) Pending() int {
	return s.Total - s.Completed
}
