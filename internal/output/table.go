package output

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/taskpilot/taskpilot/internal/task"
	"github.com/taskpilot/taskpilot/internal/view"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("244"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	// Status colors for the pending/completed column.
	statusStyles = map[string]lipgloss.Style{
		"pending":   lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		"completed": lipgloss.NewStyle().Foreground(lipgloss.Color("34")),
	}

	// Priority colors matching the TUI priority palette.
	priorityStyles = map[string]lipgloss.Style{
		"high":   lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
		"medium": lipgloss.NewStyle().Foreground(lipgloss.Color("226")),
		"low":    lipgloss.NewStyle().Foreground(lipgloss.Color("242")),
	}

	tagStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("110"))
	overdueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	dueSoonStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	bannerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("226"))
)

// DisableColor strips all styling from table output.
func DisableColor() {
	headerStyle = lipgloss.NewStyle()
	dimStyle = lipgloss.NewStyle()
	statusStyles = map[string]lipgloss.Style{}
	priorityStyles = map[string]lipgloss.Style{}
	tagStyle = lipgloss.NewStyle()
	overdueStyle = lipgloss.NewStyle()
	dueSoonStyle = lipgloss.NewStyle()
	bannerStyle = lipgloss.NewStyle()
}

// shortIDLen is how much of a task id the CLI shows; enough to stay
// unique at personal-list scale and short enough to type.
const shortIDLen = 8

// ShortID returns the display form of a task id.
func ShortID(id string) string {
	if len(id) <= shortIDLen {
		return id
	}
	return id[:shortIDLen]
}

// TaskTable renders a list of tasks as a formatted table.
func TaskTable(w io.Writer, tasks []*task.Task, names Names, now time.Time) {
	if len(tasks) == 0 {
		fmt.Fprintln(os.Stderr, "No tasks found.")
		return
	}

	// Calculate column widths.
	const pad = 2
	idW, statusW, prioW, titleW, catW, tagsW := 10, 11, 10, 7, 10, 6
	for _, t := range tasks {
		titleW = max(titleW, min(len(t.Title)+pad, 50)) //nolint:mnd // max title column width
		catW = max(catW, len(names.Category(t.CategoryID))+pad)
		tagsW = max(tagsW, min(len(strings.Join(names.TagList(t.TagIDs), ","))+pad, 30)) //nolint:mnd // max tags column width
	}

	// Print header.
	header := fmt.Sprintf("%-*s %-*s %-*s %-*s %-*s %-*s %s",
		idW, "ID", statusW, "STATUS", prioW, "PRIORITY",
		titleW, "TITLE", catW, "CATEGORY", tagsW, "TAGS", "DUE")
	fmt.Fprintln(w, headerStyle.Render(strings.TrimRight(header, " ")))

	// Print rows.
	for _, t := range tasks {
		title := t.Title
		const maxTitle = 48
		if len(title) > maxTitle {
			title = title[:maxTitle-3] + "..."
		}
		category := names.Category(t.CategoryID)
		if category == Uncategorized {
			category = dimStyle.Render(category)
		}
		tags := strings.Join(names.TagList(t.TagIDs), ",")
		if tags == "" {
			tags = dimStyle.Render("--")
		} else {
			tags = tagStyle.Render(tags)
		}

		row := fmt.Sprintf("%-*s %s %s %s %s %s %s",
			idW, ShortID(t.ID),
			padRight(styledValue(t.Status().String(), statusStyles), statusW),
			padRight(styledValue(t.Priority.String(), priorityStyles), prioW),
			padRight(title, titleW),
			padRight(category, catW),
			padRight(tags, tagsW),
			dueDisplay(t, now))
		fmt.Fprintln(w, strings.TrimRight(row, " "))
	}
}

// TaskDetail renders a single task with full detail.
func TaskDetail(w io.Writer, t *task.Task, names Names, now time.Time) {
	titleLine := fmt.Sprintf("Task %s: %s", ShortID(t.ID), t.Title)
	fmt.Fprintln(w, lipgloss.NewStyle().Bold(true).Render(titleLine))
	fmt.Fprintln(w, strings.Repeat("─", len(titleLine)))

	printField(w, "Status", styledValue(t.Status().String(), statusStyles))
	printField(w, "Priority", styledValue(t.Priority.String(), priorityStyles))
	if category := names.Category(t.CategoryID); category == Uncategorized {
		printField(w, "Category", dimStyle.Render(category))
	} else {
		printField(w, "Category", category)
	}
	if len(t.TagIDs) > 0 {
		printField(w, "Tags", tagStyle.Render(strings.Join(names.TagList(t.TagIDs), ", ")))
	} else {
		printField(w, "Tags", dimStyle.Render("--"))
	}
	printField(w, "Due", dueDisplay(t, now))
	if t.IsRecurring() {
		recur := t.Recurrence.String()
		if t.Interval > 1 {
			recur += " (every " + strconv.Itoa(t.Interval) + ")"
		}
		printField(w, "Repeats", recur)
		if t.NextDue != nil {
			printField(w, "Next due", t.NextDue.Format("2006-01-02 15:04"))
		}
	}
	printField(w, "Created", t.Created.Format("2006-01-02 15:04"))

	if t.Description != "" {
		fmt.Fprintln(w)
		fmt.Fprint(w, RenderDescription(t.Description))
	}
}

// StatsTable renders the statistics rollup as a formatted dashboard.
func StatsTable(w io.Writer, s view.Stats, names Names) {
	fmt.Fprintf(w, "Total: %d tasks (%d pending, %d completed)\n",
		s.Total, s.Pending(), s.Completed)
	if s.Overdue > 0 {
		fmt.Fprintln(w, overdueStyle.Render(fmt.Sprintf("Overdue: %d", s.Overdue)))
	} else {
		fmt.Fprintln(w, "Overdue: 0")
	}

	fmt.Fprintln(w)
	prioHeader := fmt.Sprintf("%-16s %6s", "PRIORITY", "COUNT")
	fmt.Fprintln(w, headerStyle.Render(prioHeader))
	for _, p := range []task.Priority{task.PriorityHigh, task.PriorityMedium, task.PriorityLow} {
		const prioColW = 16
		fmt.Fprintf(w, "%s %6d\n",
			padRight(styledValue(p.String(), priorityStyles), prioColW), s.ByPriority[p])
	}

	if len(s.ByCategory) > 0 {
		fmt.Fprintln(w)
		catHeader := fmt.Sprintf("%-16s %6s", "CATEGORY", "COUNT")
		fmt.Fprintln(w, headerStyle.Render(catHeader))
		for _, id := range sortedKeys(s.ByCategory) {
			fmt.Fprintf(w, "%-16s %6d\n", names.Category(id), s.ByCategory[id])
		}
	}
}

// Messagef prints a simple formatted message line.
func Messagef(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(w, format+"\n", args...)
}

// Bannerf prints a highlighted one-line banner, used for reminders.
func Bannerf(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintln(w, bannerStyle.Render(fmt.Sprintf(format, args...)))
}

func printField(w io.Writer, label, value string) {
	fmt.Fprintf(w, "  %-12s %s\n", label+":", value)
}

// dueDisplay renders a due date, highlighting overdue and due-today
// tasks. Completed tasks render dim regardless of the date.
func dueDisplay(t *task.Task, now time.Time) string {
	s := t.Due.Format("2006-01-02 15:04")
	if t.Completed {
		return dimStyle.Render(s)
	}
	switch {
	case t.Due.Before(now):
		return overdueStyle.Render(s + " (overdue)")
	case t.Due.Sub(now) <= 24*time.Hour:
		return dueSoonStyle.Render(s)
	default:
		return s
	}
}

// padRight pads s with spaces to the given visible width, accounting for ANSI
// escape codes that are invisible but consume bytes.
func padRight(s string, width int) string {
	visible := lipgloss.Width(s)
	if visible >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visible)
}

// styledValue renders s using a matching style from the map, or returns s unchanged.
func styledValue(s string, styles map[string]lipgloss.Style) string {
	if st, ok := styles[s]; ok {
		return st.Render(s)
	}
	return s
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
