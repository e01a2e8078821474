package output

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/taskpilot/taskpilot/internal/task"
	"github.com/taskpilot/taskpilot/internal/view"
)

// TaskCompact renders a list of tasks in one-line-per-record compact format.
func TaskCompact(w io.Writer, tasks []*task.Task, names Names) {
	if len(tasks) == 0 {
		fmt.Fprintln(os.Stderr, "No tasks found.")
		return
	}

	for _, t := range tasks {
		fmt.Fprintln(w, formatTaskLine(t, names))
	}
}

// TaskDetailCompact renders a single task with detail in compact format.
func TaskDetailCompact(w io.Writer, t *task.Task, names Names) {
	fmt.Fprintln(w, formatTaskLine(t, names))

	meta := "  created:" + t.Created.Format("2006-01-02")
	if t.IsRecurring() {
		meta += " repeats:" + t.Recurrence.String() + "/" + strconv.Itoa(t.Interval)
		if t.NextDue != nil {
			meta += " next:" + t.NextDue.Format("2006-01-02")
		}
	}
	fmt.Fprintln(w, meta)

	if t.Description != "" {
		for _, line := range strings.Split(t.Description, "\n") {
			fmt.Fprintln(w, "  "+line)
		}
	}
}

// StatsCompact renders the statistics rollup in compact format.
func StatsCompact(w io.Writer, s view.Stats, names Names) {
	fmt.Fprintf(w, "%d tasks (%d pending, %d completed, %d overdue)\n",
		s.Total, s.Pending(), s.Completed, s.Overdue)

	parts := make([]string, 0, len(s.ByPriority))
	for _, p := range []task.Priority{task.PriorityHigh, task.PriorityMedium, task.PriorityLow} {
		if s.ByPriority[p] > 0 {
			parts = append(parts, p.String()+"="+strconv.Itoa(s.ByPriority[p]))
		}
	}
	if len(parts) > 0 {
		fmt.Fprintln(w, "Priority: "+strings.Join(parts, " "))
	}

	if len(s.ByCategory) > 0 {
		parts = parts[:0]
		for _, id := range sortedKeys(s.ByCategory) {
			parts = append(parts, names.Category(id)+"="+strconv.Itoa(s.ByCategory[id]))
		}
		fmt.Fprintln(w, "Category: "+strings.Join(parts, " "))
	}
}

// formatTaskLine builds the one-line representation of a task.
func formatTaskLine(t *task.Task, names Names) string {
	line := ShortID(t.ID) + " [" + t.Status().String() + "/" + t.Priority.String() + "] " + t.Title

	if t.CategoryID != "" {
		line += " @" + names.Category(t.CategoryID)
	}
	if len(t.TagIDs) > 0 {
		line += " (" + strings.Join(names.TagList(t.TagIDs), ", ") + ")"
	}
	line += " due:" + t.Due.Format("2006-01-02 15:04")

	return line
}
