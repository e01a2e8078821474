// Package store persists tasks, categories, and tags as YAML files.
// The registry and CLI depend only on the repository interfaces; the file
// implementations are swappable collaborators.
package store

import (
	"github.com/taskpilot/taskpilot/internal/task"
)

// Data file names within the data directory.
const (
	TasksFileName      = "tasks.yml"
	CategoriesFileName = "categories.yml"
	TagsFileName       = "tags.yml"

	fileMode = 0o600
)

// TaskRepository loads and saves the task collection.
type TaskRepository interface {
	GetAll() ([]*task.Task, error)
	SaveAll(tasks []*task.Task) error
	Save(t *task.Task) error
	Delete(t *task.Task) error
}

// CategoryRepository loads and saves the category collection.
type CategoryRepository interface {
	GetAll() ([]task.Category, error)
	SaveAll(categories []task.Category) error
}

// TagRepository loads and saves the tag collection.
type TagRepository interface {
	GetAll() ([]task.Tag, error)
	SaveAll(tags []task.Tag) error
}
