package task

import "github.com/google/uuid"

// Category groups tasks. Tasks reference categories by id; deleting a
// category never cascades, so dangling ids are expected and views render
// them as uncategorized.
type Category struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
}

// NewCategory creates a Category with a fresh id.
func NewCategory(name string) Category {
	return Category{ID: uuid.NewString(), Name: name}
}

// Tag labels tasks. Selected is UI-local state and is never persisted.
type Tag struct {
	ID       string `yaml:"id" json:"id"`
	Name     string `yaml:"name" json:"name"`
	Color    string `yaml:"color" json:"color"`
	Selected bool   `yaml:"-" json:"-"`
}

// NewTag creates a Tag with a fresh id and a hex color.
func NewTag(name, color string) Tag {
	return Tag{ID: uuid.NewString(), Name: name, Color: color}
}

// CategoryNames returns an id → name lookup map.
func CategoryNames(categories []Category) map[string]string {
	names := make(map[string]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}
	return names
}

// TagNames returns an id → name lookup map.
func TagNames(tags []Tag) map[string]string {
	names := make(map[string]string, len(tags))
	for _, tg := range tags {
		names[tg.ID] = tg.Name
	}
	return names
}
