package output

import (
	"github.com/charmbracelet/glamour"
)

// RenderDescription renders a task description as terminal markdown.
// Falls back to the raw text when rendering fails.
func RenderDescription(desc string) string {
	out, err := glamour.Render(desc, "auto")
	if err != nil {
		return desc + "\n"
	}
	return out
}
