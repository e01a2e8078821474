package view

import (
	"sort"

	"github.com/taskpilot/taskpilot/internal/task"
)

// Sort keys accepted by Sort. An unknown key leaves the order untouched.
const (
	SortDue      = "due"
	SortPriority = "priority"
	SortTitle    = "title"
	SortStatus   = "status"
	SortCategory = "category"
)

// SortKeys lists the accepted sort keys for flag validation and help text.
var SortKeys = []string{SortDue, SortPriority, SortTitle, SortStatus, SortCategory}

// ValidSortKey reports whether key names a known ordering.
func ValidSortKey(key string) bool {
	for _, k := range SortKeys {
		if k == key {
			return true
		}
	}
	return false
}

// Sort orders tasks in place by the given key, stable with respect to
// equal keys. Category sorts by resolved category name; categoryNames
// maps category id to name and may be nil, in which case raw ids are
// compared. Unknown keys are a no-op so callers never lose the incoming
// order to a typo'd flag.
func Sort(tasks []*task.Task, key string, reverse bool, categoryNames map[string]string) {
	if !ValidSortKey(key) {
		return
	}
	sort.SliceStable(tasks, func(i, j int) bool {
		less := compareTasks(tasks[i], tasks[j], key, categoryNames)
		if reverse {
			return !less
		}
		return less
	})
}

func compareTasks(a, b *task.Task, key string, categoryNames map[string]string) bool {
	switch key {
	case SortDue:
		return a.Due.Before(b.Due)
	case SortPriority:
		return a.Priority < b.Priority
	case SortTitle:
		return a.Title < b.Title
	case SortStatus:
		// Pending before completed.
		return !a.Completed && b.Completed
	case SortCategory:
		return categoryName(a, categoryNames) < categoryName(b, categoryNames)
	default:
		return false
	}
}

func categoryName(t *task.Task, names map[string]string) string {
	if names == nil {
		return t.CategoryID
	}
	// Unresolved ids fall back to the raw id; uncategorized tasks sort
	// first on the empty string.
	if name, ok := names[t.CategoryID]; ok {
		return name
	}
	return t.CategoryID
}
