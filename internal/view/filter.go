// Package view derives filtered, sorted, and aggregated slices from the
// task collection. Everything here is a pure function over a snapshot;
// callers recompute on demand or after a registry change.
package view

import (
	"strings"

	"github.com/taskpilot/taskpilot/internal/task"
)

// Criteria defines which tasks to include.
type Criteria struct {
	Search           string         // case-insensitive substring match across title and description
	CategoryID       string         // empty = no filter
	TagIDs           []string       // empty = no filter, otherwise OR across selected tags
	Priority         *task.Priority // nil = no filter
	IncludeCompleted bool
}

// Strategy is a single boolean test over a task. Strategies compose via
// All into an AND chain.
type Strategy interface {
	Matches(t *task.Task) bool
}

// StrategyFunc adapts a plain function to Strategy.
type StrategyFunc func(t *task.Task) bool

func (f StrategyFunc) Matches(t *task.Task) bool { return f(t) }

// All combines strategies with AND logic, short-circuiting on the first
// failure.
func All(strategies ...Strategy) Strategy {
	return StrategyFunc(func(t *task.Task) bool {
		for _, s := range strategies {
			if !s.Matches(t) {
				return false
			}
		}
		return true
	})
}

// Filter returns tasks matching all criteria (AND logic).
func Filter(tasks []*task.Task, c Criteria) []*task.Task {
	var result []*task.Task
	for _, t := range tasks {
		if matchesCriteria(t, c) {
			result = append(result, t)
		}
	}
	return result
}

func matchesCriteria(t *task.Task, c Criteria) bool {
	if !c.IncludeCompleted && t.Completed {
		return false
	}
	if c.Search != "" && !matchesSearch(t, c.Search) {
		return false
	}
	if c.CategoryID != "" && t.CategoryID != c.CategoryID {
		return false
	}
	if len(c.TagIDs) > 0 && !matchesAnyTag(t.TagIDs, c.TagIDs) {
		return false
	}
	if c.Priority != nil && t.Priority != *c.Priority {
		return false
	}
	return true
}

// matchesSearch performs case-insensitive substring matching across
// title and description.
func matchesSearch(t *task.Task, query string) bool {
	q := strings.ToLower(query)
	if strings.Contains(strings.ToLower(t.Title), q) {
		return true
	}
	return strings.Contains(strings.ToLower(t.Description), q)
}

// matchesAnyTag reports whether the task carries at least one of the
// selected tags (OR semantics, not AND).
func matchesAnyTag(taskTags, selected []string) bool {
	for _, want := range selected {
		for _, have := range taskTags {
			if have == want {
				return true
			}
		}
	}
	return false
}
