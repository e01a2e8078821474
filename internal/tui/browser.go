// Package tui implements the interactive taskpilot task browser.
package tui

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/taskpilot/taskpilot/internal/config"
	"github.com/taskpilot/taskpilot/internal/filelock"
	"github.com/taskpilot/taskpilot/internal/output"
	"github.com/taskpilot/taskpilot/internal/registry"
	"github.com/taskpilot/taskpilot/internal/store"
	"github.com/taskpilot/taskpilot/internal/task"
	"github.com/taskpilot/taskpilot/internal/view"
)

// screen represents the current display state.
type screen int

const (
	screenList screen = iota
	screenDetail
	screenConfirmDelete
)

// Key and layout constants.
const (
	keyEsc = "esc"

	listChrome   = 4                // header + search line + blank line + status bar
	errorChrome  = 1                // extra line when error toast is displayed
	tickInterval = 30 * time.Second // how often due countdowns refresh
)

// Browser is the top-level bubbletea model: a filterable, sortable list
// of tasks with a detail screen and inline complete/delete actions.
type Browser struct {
	cfg   *config.Config
	reg   *registry.Registry
	names output.Names

	tasks     []*task.Task // current filtered+sorted view
	cursor    int
	scrollOff int
	screen    screen
	width     int
	height    int
	err       error
	now       func() time.Time // clock for due display; defaults to time.Now

	search        textinput.Model
	searching     bool
	showCompleted bool
	sortKey       string
	reverse       bool

	// Delete confirmation.
	deleteID    string
	deleteTitle string
}

// New creates a Browser model wired to the profile's data directory.
func New(cfg *config.Config) *Browser {
	ti := textinput.New()
	ti.Placeholder = "search title or description"
	ti.Prompt = "/ "
	ti.CharLimit = 100

	b := &Browser{
		cfg:     cfg,
		now:     time.Now,
		search:  ti,
		sortKey: cfg.Defaults.SortKey,
	}
	if b.sortKey == "" || !view.ValidSortKey(b.sortKey) {
		b.sortKey = view.SortDue
	}
	b.load()
	return b
}

// SetNow overrides the clock function used for due display (for testing).
func (b *Browser) SetNow(fn func() time.Time) {
	b.now = fn
}

// Init implements tea.Model.
func (b *Browser) Init() tea.Cmd {
	return tickCmd()
}

// Update implements tea.Model.
func (b *Browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return b.handleKey(msg)
	case tea.WindowSizeMsg:
		b.width = msg.Width
		b.height = msg.Height
		return b, nil
	case ReloadMsg:
		b.load()
		return b, nil
	case TickMsg:
		return b, tickCmd()
	}
	return b, nil
}

// View implements tea.Model.
func (b *Browser) View() string {
	if b.width == 0 {
		return "Loading..."
	}

	switch b.screen {
	case screenDetail:
		return b.viewDetail()
	case screenConfirmDelete:
		return b.viewDeleteConfirm()
	default:
		return b.viewList()
	}
}

func (b *Browser) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global keys.
	if key.Matches(msg, key.NewBinding(key.WithKeys("ctrl+c"))) {
		return b, tea.Quit
	}

	if b.searching {
		return b.handleSearchKey(msg)
	}

	switch b.screen {
	case screenList:
		return b.handleListKey(msg)
	case screenDetail:
		return b.handleDetailKey(msg)
	case screenConfirmDelete:
		return b.handleDeleteKey(msg)
	}

	return b, nil
}

func (b *Browser) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return b, tea.Quit
	case keyEsc:
		if b.search.Value() != "" {
			b.search.SetValue("")
			b.refresh()
			return b, nil
		}
		return b, tea.Quit
	case "j", "down":
		if b.cursor < len(b.tasks)-1 {
			b.cursor++
			b.ensureVisible()
		}
	case "k", "up":
		if b.cursor > 0 {
			b.cursor--
			b.ensureVisible()
		}
	case "g", "home":
		b.cursor = 0
		b.ensureVisible()
	case "G", "end":
		if len(b.tasks) > 0 {
			b.cursor = len(b.tasks) - 1
			b.ensureVisible()
		}
	case "/":
		b.searching = true
		return b, b.search.Focus()
	case "a":
		b.showCompleted = !b.showCompleted
		b.refresh()
	case "s":
		b.cycleSort()
	case "R":
		b.reverse = !b.reverse
		b.refresh()
	case "c":
		b.completeSelected()
	case "d", "D":
		b.handleDeleteStart()
	case "enter":
		if b.selectedTask() != nil {
			b.screen = screenDetail
		}
	}
	return b, nil
}

func (b *Browser) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		b.searching = false
		b.search.Blur()
		return b, nil
	case keyEsc:
		b.searching = false
		b.search.Blur()
		b.search.SetValue("")
		b.refresh()
		return b, nil
	}

	var cmd tea.Cmd
	b.search, cmd = b.search.Update(msg)
	b.refresh()
	return b, cmd
}

func (b *Browser) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", keyEsc, "enter":
		b.screen = screenList
	case "c":
		b.completeSelected()
		b.screen = screenList
	case "d", "D":
		b.handleDeleteStart()
	}
	return b, nil
}

func (b *Browser) handleDeleteStart() {
	if t := b.selectedTask(); t != nil {
		b.reg.Select(t)
		b.deleteID = t.ID
		b.deleteTitle = t.Title
		b.screen = screenConfirmDelete
	}
}

func (b *Browser) handleDeleteKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		b.executeDelete()
		b.screen = screenList
	case "n", "N", keyEsc, "q":
		b.screen = screenList
	}
	return b, nil
}

// cycleSort advances to the next sort key in display order.
func (b *Browser) cycleSort() {
	for i, k := range view.SortKeys {
		if k == b.sortKey {
			b.sortKey = view.SortKeys[(i+1)%len(view.SortKeys)]
			b.refresh()
			return
		}
	}
	b.sortKey = view.SortDue
	b.refresh()
}

// lockData takes the same advisory lock the CLI commands hold while
// rewriting the data files, so a concurrent invocation cannot
// interleave with a mutation made from the browser.
func (b *Browser) lockData() (unlock func() error, err error) {
	return filelock.Lock(filepath.Join(b.cfg.DataPath(), ".lock"))
}

func (b *Browser) completeSelected() {
	t := b.selectedTask()
	if t == nil {
		return
	}
	unlock, err := b.lockData()
	if err != nil {
		b.err = err
		return
	}
	defer unlock() //nolint:errcheck // best-effort unlock on exit
	b.reg.Select(t)
	if err := b.reg.Complete(t); err != nil {
		b.err = err
	}
	store.LogMutation(b.cfg.DataPath(), "complete", t.ID, t.Title)
	b.refresh()
}

func (b *Browser) executeDelete() {
	t := b.reg.Selected()
	if t == nil || t.ID != b.deleteID {
		t = b.reg.Get(b.deleteID)
	}
	if t == nil {
		return
	}
	unlock, err := b.lockData()
	if err != nil {
		b.err = err
		return
	}
	defer unlock() //nolint:errcheck // best-effort unlock on exit
	if err := b.reg.Delete(t); err != nil {
		b.err = err
		return
	}
	store.LogMutation(b.cfg.DataPath(), "delete", b.deleteID, b.deleteTitle)
	b.refresh()
}

// load rebuilds the registry and lookup tables from the data directory.
// Called at startup and whenever the file watcher reports a change.
func (b *Browser) load() {
	dataDir := b.cfg.DataPath()

	reg, err := registry.New(store.NewTaskFile(dataDir), task.NewValidator())
	if err != nil {
		b.err = err
		return
	}
	reg.SetNow(b.now)

	categories, err := store.NewCategoryFile(dataDir).GetAll()
	if err != nil {
		b.err = err
		return
	}
	tags, err := store.NewTagFile(dataDir).GetAll()
	if err != nil {
		b.err = err
		return
	}

	b.err = nil
	b.reg = reg
	b.names = output.Names{
		Categories: task.CategoryNames(categories),
		Tags:       task.TagNames(tags),
	}
	b.refresh()
}

// refresh recomputes the visible task list from the current criteria.
func (b *Browser) refresh() {
	if b.reg == nil {
		return
	}
	c := view.Criteria{
		Search:           b.search.Value(),
		IncludeCompleted: b.showCompleted,
	}
	b.tasks = view.View(b.reg.Tasks(), c, b.sortKey, b.reverse, b.names.Categories)
	b.clampCursor()
}

func (b *Browser) selectedTask() *task.Task {
	if b.cursor >= 0 && b.cursor < len(b.tasks) {
		return b.tasks[b.cursor]
	}
	return nil
}

func (b *Browser) clampCursor() {
	if len(b.tasks) == 0 {
		b.cursor = 0
		b.scrollOff = 0
		return
	}
	if b.cursor >= len(b.tasks) {
		b.cursor = len(b.tasks) - 1
	}
	b.ensureVisible()
}

// chromeHeight returns the number of lines consumed by non-list elements.
func (b *Browser) chromeHeight() int {
	h := listChrome
	if b.err != nil {
		h += errorChrome
	}
	return h
}

// visibleRows returns how many task rows fit in the terminal, reserving
// lines for the "↑/↓ N more" scroll indicators when they apply.
func (b *Browser) visibleRows() int {
	avail := b.height - b.chromeHeight()
	if avail < 1 {
		return 1
	}
	if b.scrollOff > 0 {
		avail--
	}
	if b.scrollOff+avail < len(b.tasks) {
		avail--
	}
	if avail < 1 {
		return 1
	}
	return avail
}

// ensureVisible adjusts the scroll offset so the cursor row is within
// the visible window.
func (b *Browser) ensureVisible() {
	for range len(b.tasks) + 1 {
		vis := b.visibleRows()
		switch {
		case b.cursor >= b.scrollOff+vis:
			b.scrollOff = b.cursor - vis + 1
		case b.cursor < b.scrollOff:
			b.scrollOff = b.cursor
		default:
			return
		}
	}
}

// --- Messages ---

// ReloadMsg is sent by the file watcher to trigger a reload from disk.
type ReloadMsg struct{}

// TickMsg is sent periodically to refresh due countdowns.
type TickMsg struct{}

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(time.Time) tea.Msg { return TickMsg{} })
}

// WatchPaths returns the paths that should be watched for file changes.
func (b *Browser) WatchPaths() []string {
	return []string{b.cfg.DataPath()}
}

// --- Styles ---

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	selectedRowStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("230")).
				Background(lipgloss.Color("237")).
				Bold(true)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	overdueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	dueSoonStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("35"))

	priorityStyles = map[task.Priority]lipgloss.Style{
		task.PriorityHigh:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		task.PriorityMedium: lipgloss.NewStyle().Foreground(lipgloss.Color("226")),
		task.PriorityLow:    lipgloss.NewStyle().Foreground(lipgloss.Color("35")),
	}

	dialogPadY = 1
	dialogPadX = 2

	dialogStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(dialogPadY, dialogPadX)
)

// --- View rendering ---

func (b *Browser) viewList() string {
	header := headerStyle.Width(b.width).Render(b.headerText())

	searchLine := b.search.View()
	if !b.searching && b.search.Value() == "" {
		searchLine = dimStyle.Render("/ to search")
	}

	rows := b.renderRows()
	listView := strings.Join(rows, "\n")

	// Pad or clamp the list area so the status bar stays anchored.
	target := b.height - b.chromeHeight()
	if target > 0 {
		actual := strings.Count(listView, "\n") + 1
		if actual > target {
			lines := strings.SplitN(listView, "\n", target+1)
			listView = strings.Join(lines[:target], "\n")
		} else if actual < target {
			listView += strings.Repeat("\n", target-actual)
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, searchLine, listView, "", b.renderStatusBar())
}

func (b *Browser) headerText() string {
	scope := "pending"
	if b.showCompleted {
		scope = "all"
	}
	sortLabel := b.sortKey
	if b.reverse {
		sortLabel += " desc"
	}
	return truncate(fmt.Sprintf("%s | %d tasks (%s) | sort: %s",
		b.cfg.Profile.Name, len(b.tasks), scope, sortLabel), b.width-2)
}

func (b *Browser) renderRows() []string {
	if len(b.tasks) == 0 {
		if b.search.Value() != "" {
			return []string{dimStyle.Render("  no tasks match the current filter")}
		}
		return []string{dimStyle.Render("  no tasks; add one with `taskpilot add`")}
	}

	vis := b.visibleRows()
	start := b.scrollOff
	end := start + vis
	if end > len(b.tasks) {
		end = len(b.tasks)
	}

	var rows []string
	if start > 0 {
		rows = append(rows, dimStyle.Render(fmt.Sprintf("  ↑ %d more", start)))
	}
	for i := start; i < end; i++ {
		rows = append(rows, b.renderRow(b.tasks[i], i == b.cursor))
	}
	if end < len(b.tasks) {
		rows = append(rows, dimStyle.Render(fmt.Sprintf("  ↓ %d more", len(b.tasks)-end)))
	}
	return rows
}

func (b *Browser) renderRow(t *task.Task, active bool) string {
	marker := "  "
	if active {
		marker = "> "
	}

	check := "[ ]"
	if t.Completed {
		check = "[x]"
	}

	prio := t.Priority.String()
	due := b.dueLabel(t)

	meta := fmt.Sprintf("  %s  %s", b.names.Category(t.CategoryID), due)
	titleWidth := b.width - lipgloss.Width(marker) - len(check) - len(prio) - lipgloss.Width(meta) - 4
	if titleWidth < 8 {
		titleWidth = 8
	}
	title := truncate(t.Title, titleWidth)

	if active {
		line := fmt.Sprintf("%s%s %s  %s%s", marker, check, prio, title, meta)
		return selectedRowStyle.Width(b.width).Render(truncate(line, b.width))
	}

	prioStr := prio
	if st, ok := priorityStyles[t.Priority]; ok {
		prioStr = st.Render(prio)
	}
	return fmt.Sprintf("%s%s %s  %s%s", marker, check, prioStr, title, dimStyle.Render(meta))
}

// dueLabel formats the due date relative to now: overdue in red, due
// within a day in yellow, completed tasks dimmed.
func (b *Browser) dueLabel(t *task.Task) string {
	if t.Completed {
		return doneStyle.Render("done")
	}
	now := b.now()
	d := t.Due.Sub(now)
	switch {
	case d < 0:
		return overdueStyle.Render("overdue " + humanDuration(-d))
	case d < 24*time.Hour:
		return dueSoonStyle.Render("in " + humanDuration(d))
	default:
		return "in " + humanDuration(d)
	}
}

func (b *Browser) renderStatusBar() string {
	status := " j/k:move  enter:detail  /:search  a:all  s:sort  c:done  d:del  q:quit"
	status = truncate(status, b.width)

	if b.err != nil {
		errStr := errorStyle.Render(truncate("Error: "+b.err.Error(), b.width))
		return errStr + "\n" + statusBarStyle.Render(status)
	}

	return statusBarStyle.Render(status)
}

func (b *Browser) viewDetail() string {
	t := b.selectedTask()
	if t == nil {
		b.screen = screenList
		return b.viewList()
	}

	var sb strings.Builder
	sb.WriteString(headerStyle.Render(truncate(t.Title, b.width-4)) + "\n\n")

	field := func(label, value string) {
		sb.WriteString(fmt.Sprintf("  %-12s %s\n", label, value))
	}

	field("ID", output.ShortID(t.ID))
	field("Status", t.Status().String())
	field("Priority", t.Priority.String())
	field("Due", t.Due.Format("2006-01-02 15:04")+"  ("+b.dueLabelPlain(t)+")")
	field("Category", b.names.Category(t.CategoryID))
	if len(t.TagIDs) > 0 {
		field("Tags", strings.Join(b.names.TagList(t.TagIDs), ", "))
	}
	if t.IsRecurring() {
		field("Repeats", fmt.Sprintf("every %d %s", t.Interval, t.Recurrence.String()))
		if t.NextDue != nil {
			field("Next due", t.NextDue.Format("2006-01-02 15:04"))
		}
	}
	field("Created", t.Created.Format("2006-01-02"))

	if t.Description != "" {
		sb.WriteString("\n")
		for _, line := range wrapText(t.Description, b.width-4) {
			sb.WriteString("  " + line + "\n")
		}
	}

	sb.WriteString("\n" + statusBarStyle.Render(" esc:back  c:done  d:del"))
	return sb.String()
}

func (b *Browser) viewDeleteConfirm() string {
	content := errorStyle.Render("Delete task?") + "\n\n" +
		fmt.Sprintf("  %s: %s", output.ShortID(b.deleteID), b.deleteTitle) + "\n\n" +
		dimStyle.Render("y:yes  n:no")

	return dialogStyle.Render(content)
}

// dueLabelPlain is dueLabel without color, for embedding in field text.
func (b *Browser) dueLabelPlain(t *task.Task) string {
	if t.Completed {
		return "done"
	}
	d := t.Due.Sub(b.now())
	if d < 0 {
		return "overdue " + humanDuration(-d)
	}
	return "in " + humanDuration(d)
}

// wrapText word-wraps text to the given width, preserving paragraph
// breaks.
func wrapText(text string, width int) []string {
	if width < 8 {
		width = 8
	}
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		if strings.TrimSpace(para) == "" {
			lines = append(lines, "")
			continue
		}
		var current strings.Builder
		for _, word := range strings.Fields(para) {
			if current.Len() == 0 {
				current.WriteString(word)
				continue
			}
			if lipgloss.Width(current.String())+1+lipgloss.Width(word) <= width {
				current.WriteByte(' ')
				current.WriteString(word)
			} else {
				lines = append(lines, current.String())
				current.Reset()
				current.WriteString(word)
			}
		}
		if current.Len() > 0 {
			lines = append(lines, current.String())
		}
	}
	return lines
}

func truncate(s string, maxLen int) string {
	if maxLen < 4 { //nolint:mnd // minimum length for truncation
		maxLen = 4
	}
	if lipgloss.Width(s) <= maxLen {
		return s
	}
	// Slice by runes to avoid breaking multi-byte UTF-8 characters.
	runes := []rune(s)
	target := maxLen - 3 //nolint:mnd // room for "..."
	if target > len(runes) {
		target = len(runes)
	}
	// Trim runes from the end until the display width fits.
	for target > 0 && lipgloss.Width(string(runes[:target])) > maxLen-3 {
		target--
	}
	return string(runes[:target]) + "..."
}

// humanDuration formats a duration as a compact human-readable string.
// Examples: "<1m", "5m", "2h", "3d", "2w", "3mo", "1y".
func humanDuration(d time.Duration) string {
	const (
		day   = 24 * time.Hour
		week  = 7 * day
		month = 30 * day
		year  = 365 * day
	)

	switch {
	case d < time.Minute:
		return "<1m"
	case d < time.Hour:
		return strconv.Itoa(int(d.Minutes())) + "m"
	case d < day:
		return strconv.Itoa(int(d.Hours())) + "h"
	case d < week:
		return strconv.Itoa(int(d/day)) + "d"
	case d < month:
		return strconv.Itoa(int(d/week)) + "w"
	case d < year:
		return strconv.Itoa(int(d/month)) + "mo"
	default:
		return strconv.Itoa(int(d/year)) + "y"
	}
}
