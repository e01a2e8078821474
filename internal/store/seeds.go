package store

import "github.com/taskpilot/taskpilot/internal/task"

// DefaultCategories returns the seeded categories used when no category
// file exists yet. Each call mints fresh ids.
func DefaultCategories() []task.Category {
	return []task.Category{
		task.NewCategory("Work"),
		task.NewCategory("Personal"),
		task.NewCategory("Shopping"),
		task.NewCategory("Health"),
	}
}

// DefaultTags returns the seeded tags used when no tag file exists yet.
func DefaultTags() []task.Tag {
	return []task.Tag{
		task.NewTag("Important", "#FF0000"),
		task.NewTag("Urgent", "#FF6B00"),
		task.NewTag("Later", "#00FF00"),
		task.NewTag("Ideas", "#0000FF"),
	}
}
