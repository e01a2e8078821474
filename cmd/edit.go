package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/taskpilot/taskpilot/internal/apperr"
	"github.com/taskpilot/taskpilot/internal/date"
	"github.com/taskpilot/taskpilot/internal/output"
	"github.com/taskpilot/taskpilot/internal/task"
)

var editCmd = &cobra.Command{
	Use:   "edit ID[,ID,...]",
	Short: "Edit a task",
	Long: `Modifies fields of an existing task. Only specified fields are changed.
Multiple IDs can be provided as a comma-separated list.`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

func init() {
	editCmd.Flags().String("title", "", "new title")
	editCmd.Flags().String("description", "", "new description (replaces the existing one)")
	editCmd.Flags().StringP("append-description", "a", "", "append text to the description")
	editCmd.Flags().BoolP("timestamp", "t", false, "prefix a timestamp line when appending")
	editCmd.Flags().String("due", "", "new due date (YYYY-MM-DD, 'YYYY-MM-DD HH:MM', today, tomorrow)")
	editCmd.Flags().String("priority", "", "new priority (low, medium, high)")
	editCmd.Flags().String("category", "", "new category name")
	editCmd.Flags().StringSlice("tags", nil, "replace the tag set (comma-separated names)")
	editCmd.Flags().StringSlice("add-tag", nil, "add tags")
	editCmd.Flags().StringSlice("remove-tag", nil, "remove tags")
	editCmd.Flags().String("recur", "", "recurrence pattern (daily, weekly, monthly)")
	editCmd.Flags().Int("every", 0, "recurrence interval")
	editCmd.Flags().Bool("no-recur", false, "stop the task repeating")
	rootCmd.AddCommand(editCmd)
}

func runEdit(cmd *cobra.Command, args []string) error {
	ids, err := parseIDs(args[0])
	if err != nil {
		return err
	}

	unlock, err := lockData()
	if err != nil {
		return err
	}
	defer unlock() //nolint:errcheck // best-effort unlock on exit

	a, err := loadApp()
	if err != nil {
		return err
	}

	// Single ID: preserve exact current behavior.
	if len(ids) == 1 {
		return editSingleTask(a, ids[0], cmd)
	}

	// Batch mode.
	return runBatch(ids, func(id string) error {
		_, err := executeEdit(a, id, cmd)
		return err
	})
}

// editSingleTask handles a single task edit with full output.
func editSingleTask(a *app, id string, cmd *cobra.Command) error {
	t, err := executeEdit(a, id, cmd)
	if err != nil {
		return err
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, t)
	}

	output.Messagef(os.Stdout, "Updated task %s: %s", output.ShortID(t.ID), t.Title)
	return nil
}

// executeEdit performs the core edit: find, apply flags onto a snapshot,
// push it through the registry, log.
func executeEdit(a *app, id string, cmd *cobra.Command) (*task.Task, error) {
	existing, err := a.reg.Find(id)
	if err != nil {
		return nil, err
	}

	snapshot := snapshotOf(existing)
	changed, err := applyEditFlags(cmd, snapshot, a)
	if err != nil {
		return nil, err
	}
	if !changed {
		return nil, apperr.New(apperr.InvalidInput, "no changes specified")
	}

	if err := a.reg.Update(snapshot); err != nil {
		return nil, err
	}

	a.logActivity("edit", existing.ID, existing.Title)
	return existing, nil
}

// snapshotOf copies the mutable fields of a task into a detached value
// the flag helpers can modify freely before the registry applies it.
func snapshotOf(t *task.Task) *task.Task {
	snap := &task.Task{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Due:         t.Due,
		Priority:    t.Priority,
		CategoryID:  t.CategoryID,
		TagIDs:      append([]string(nil), t.TagIDs...),
		Recurrence:  t.Recurrence,
		Interval:    t.Interval,
	}
	return snap
}

func applyEditFlags(cmd *cobra.Command, t *task.Task, a *app) (bool, error) {
	changed, err := applySimpleEditFlags(cmd, t)
	if err != nil {
		return false, err
	}

	for _, fn := range []func(*cobra.Command, *task.Task, *app) (bool, error){
		applyCategoryTagFlags,
		applyRecurrenceFlags,
	} {
		c, fnErr := fn(cmd, t, a)
		if fnErr != nil {
			return false, fnErr
		}
		if c {
			changed = true
		}
	}

	return changed, nil
}

func applySimpleEditFlags(cmd *cobra.Command, t *task.Task) (bool, error) {
	changed := false

	if v, _ := cmd.Flags().GetString("title"); v != "" {
		t.Title = v
		changed = true
	}

	descSet := cmd.Flags().Changed("description")
	appendSet := cmd.Flags().Changed("append-description")
	if descSet && appendSet {
		return false, apperr.New(apperr.InvalidInput,
			"cannot use --description and --append-description together")
	}
	if descSet {
		v, _ := cmd.Flags().GetString("description")
		t.Description = v
		changed = true
	}
	if appendSet {
		v, _ := cmd.Flags().GetString("append-description")
		ts, _ := cmd.Flags().GetBool("timestamp")
		t.Description = appendDescription(t.Description, v, ts)
		changed = true
	}

	if v, _ := cmd.Flags().GetString("due"); v != "" {
		due, err := date.ParseDue(v, nowFunc())
		if err != nil {
			return false, err
		}
		t.Due = due
		changed = true
	}
	if v, _ := cmd.Flags().GetString("priority"); v != "" {
		p, err := task.ParsePriority(v)
		if err != nil {
			return false, err
		}
		t.Priority = p
		changed = true
	}

	return changed, nil
}

func applyCategoryTagFlags(cmd *cobra.Command, t *task.Task, a *app) (bool, error) {
	changed := false

	if v, _ := cmd.Flags().GetString("category"); v != "" {
		id, err := a.categoryByName(v)
		if err != nil {
			return false, err
		}
		t.CategoryID = id
		changed = true
	}

	tagsSet := cmd.Flags().Changed("tags")
	addTags, _ := cmd.Flags().GetStringSlice("add-tag")
	removeTags, _ := cmd.Flags().GetStringSlice("remove-tag")
	if tagsSet && (len(addTags) > 0 || len(removeTags) > 0) {
		return false, apperr.New(apperr.InvalidInput,
			"cannot use --tags with --add-tag or --remove-tag")
	}

	if tagsSet {
		v, _ := cmd.Flags().GetStringSlice("tags")
		ids, err := a.tagsByName(v)
		if err != nil {
			return false, err
		}
		t.TagIDs = ids
		changed = true
	}
	if len(addTags) > 0 {
		ids, err := a.tagsByName(addTags)
		if err != nil {
			return false, err
		}
		t.TagIDs = appendUnique(t.TagIDs, ids...)
		changed = true
	}
	if len(removeTags) > 0 {
		ids, err := a.tagsByName(removeTags)
		if err != nil {
			return false, err
		}
		t.TagIDs = removeAll(t.TagIDs, ids...)
		changed = true
	}

	return changed, nil
}

func applyRecurrenceFlags(cmd *cobra.Command, t *task.Task, _ *app) (bool, error) {
	noRecur, _ := cmd.Flags().GetBool("no-recur")
	recurSet := cmd.Flags().Changed("recur")
	everySet := cmd.Flags().Changed("every")

	if noRecur && (recurSet || everySet) {
		return false, apperr.New(apperr.InvalidInput,
			"cannot use --no-recur with --recur or --every")
	}
	if noRecur {
		t.Recurrence = task.RecurNone
		t.Interval = 1
		return true, nil
	}

	changed := false
	if recurSet {
		v, _ := cmd.Flags().GetString("recur")
		pattern, err := task.ParsePattern(v)
		if err != nil {
			return false, err
		}
		t.Recurrence = pattern
		changed = true
	}
	if everySet {
		v, _ := cmd.Flags().GetInt("every")
		if v < 1 {
			return false, apperr.New(apperr.InvalidInput, "--every must be at least 1")
		}
		t.Interval = v
		changed = true
	}
	return changed, nil
}

func appendUnique(slice []string, items ...string) []string {
	seen := make(map[string]bool, len(slice))
	for _, s := range slice {
		seen[s] = true
	}
	for _, item := range items {
		if !seen[item] {
			slice = append(slice, item)
			seen[item] = true
		}
	}
	return slice
}

func removeAll(slice []string, items ...string) []string {
	remove := make(map[string]bool, len(items))
	for _, item := range items {
		remove[item] = true
	}
	result := make([]string, 0, len(slice))
	for _, s := range slice {
		if !remove[s] {
			result = append(result, s)
		}
	}
	return result
}

// appendDescription appends text to the existing description, optionally
// prefixed with a timestamp line.
func appendDescription(existing, text string, addTimestamp bool) string {
	var b strings.Builder

	if existing != "" {
		b.WriteString(strings.TrimRight(existing, "\n"))
		b.WriteString("\n\n")
	}

	if addTimestamp {
		b.WriteString(nowFunc().Format("[[2006-01-02]] Mon 15:04"))
		b.WriteByte('\n')
	}

	b.WriteString(text)

	return b.String()
}
