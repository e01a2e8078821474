package store

import (
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/taskpilot/taskpilot/internal/task"
)

// TaskFile is a TaskRepository backed by a single YAML file holding the
// full task list. The list is small by design, so Save and Delete are
// read-modify-write over the whole file.
type TaskFile struct {
	path string
}

// NewTaskFile creates a TaskFile repository under the given data directory.
func NewTaskFile(dataDir string) *TaskFile {
	return &TaskFile{path: filepath.Join(dataDir, TasksFileName)}
}

// GetAll reads all tasks. A missing file is an empty collection.
func (r *TaskFile) GetAll() ([]*task.Task, error) {
	data, err := os.ReadFile(r.path) //nolint:gosec // data path from trusted config
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading tasks file: %w", err)
	}

	var tasks []*task.Task
	if err := yaml.Unmarshal(data, &tasks); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", r.path, err)
	}
	return tasks, nil
}

// SaveAll writes the full task list.
func (r *TaskFile) SaveAll(tasks []*task.Task) error {
	return writeYAML(r.path, tasks)
}

// Save upserts a single task by id.
func (r *TaskFile) Save(t *task.Task) error {
	tasks, err := r.GetAll()
	if err != nil {
		return err
	}
	replaced := false
	for i, existing := range tasks {
		if existing.ID == t.ID {
			tasks[i] = t
			replaced = true
			break
		}
	}
	if !replaced {
		tasks = append(tasks, t)
	}
	return r.SaveAll(tasks)
}

// Delete removes a single task by id. Unknown ids are a no-op.
func (r *TaskFile) Delete(t *task.Task) error {
	tasks, err := r.GetAll()
	if err != nil {
		return err
	}
	kept := tasks[:0]
	for _, existing := range tasks {
		if existing.ID != t.ID {
			kept = append(kept, existing)
		}
	}
	return r.SaveAll(kept)
}

// CategoryFile is a CategoryRepository backed by a YAML file. A missing
// file is seeded with the default categories on first read.
type CategoryFile struct {
	path string
}

// NewCategoryFile creates a CategoryFile repository under the data directory.
func NewCategoryFile(dataDir string) *CategoryFile {
	return &CategoryFile{path: filepath.Join(dataDir, CategoriesFileName)}
}

// GetAll reads all categories. A missing file gets the default seeds
// written to it first, so the seeded ids survive across invocations.
func (r *CategoryFile) GetAll() ([]task.Category, error) {
	data, err := os.ReadFile(r.path) //nolint:gosec // data path from trusted config
	if err != nil {
		if os.IsNotExist(err) {
			seeds := DefaultCategories()
			if err := r.SaveAll(seeds); err != nil {
				return nil, fmt.Errorf("seeding categories file: %w", err)
			}
			return seeds, nil
		}
		return nil, fmt.Errorf("reading categories file: %w", err)
	}

	var categories []task.Category
	if err := yaml.Unmarshal(data, &categories); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", r.path, err)
	}
	return categories, nil
}

// SaveAll writes the full category list.
func (r *CategoryFile) SaveAll(categories []task.Category) error {
	return writeYAML(r.path, categories)
}

// TagFile is a TagRepository backed by a YAML file. A missing file is
// seeded with the default tags on first read.
type TagFile struct {
	path string
}

// NewTagFile creates a TagFile repository under the data directory.
func NewTagFile(dataDir string) *TagFile {
	return &TagFile{path: filepath.Join(dataDir, TagsFileName)}
}

// GetAll reads all tags. A missing file gets the default seeds written
// to it first, so the seeded ids survive across invocations.
func (r *TagFile) GetAll() ([]task.Tag, error) {
	data, err := os.ReadFile(r.path) //nolint:gosec // data path from trusted config
	if err != nil {
		if os.IsNotExist(err) {
			seeds := DefaultTags()
			if err := r.SaveAll(seeds); err != nil {
				return nil, fmt.Errorf("seeding tags file: %w", err)
			}
			return seeds, nil
		}
		return nil, fmt.Errorf("reading tags file: %w", err)
	}

	var tags []task.Tag
	if err := yaml.Unmarshal(data, &tags); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", r.path, err)
	}
	return tags, nil
}

// SaveAll writes the full tag list.
func (r *TagFile) SaveAll(tags []task.Tag) error {
	return writeYAML(r.path, tags)
}

func writeYAML(path string, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, fileMode); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	return nil
}
