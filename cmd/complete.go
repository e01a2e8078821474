package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/taskpilot/taskpilot/internal/output"
	"github.com/taskpilot/taskpilot/internal/task"
)

var completeCmd = &cobra.Command{
	Use:     "complete ID[,ID,...]",
	Aliases: []string{"done"},
	Short:   "Complete a task",
	Long: `Marks a task as completed and removes it from the active list.
A recurring task spawns its next occurrence at the rescheduled due date.
Multiple IDs can be provided as a comma-separated list.`,
	Args: cobra.ExactArgs(1),
	RunE: runComplete,
}

func init() {
	rootCmd.AddCommand(completeCmd)
}

func runComplete(_ *cobra.Command, args []string) error {
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

	if len(ids) == 1 {
		return completeSingleTask(a, ids[0])
	}

	return runBatch(ids, func(id string) error {
		_, _, err := executeComplete(a, id)
		return err
	})
}

func completeSingleTask(a *app, id string) error {
	t, next, err := executeComplete(a, id)
	if err != nil {
		return err
	}

	if outputFormat() == output.FormatJSON {
		result := map[string]any{
			"status": "completed",
			"id":     t.ID,
			"title":  t.Title,
		}
		if next != nil {
			result["next"] = next
		}
		return output.JSON(os.Stdout, result)
	}

	output.Messagef(os.Stdout, "Completed task %s: %s", output.ShortID(t.ID), t.Title)
	if next != nil {
		output.Messagef(os.Stdout, "  Next occurrence %s due %s",
			output.ShortID(next.ID), next.Due.Format("2006-01-02 15:04"))
	}
	return nil
}

// executeComplete finishes the task and returns it along with the next
// occurrence when the task recurs.
func executeComplete(a *app, id string) (*task.Task, *task.Task, error) {
	t, err := a.reg.Find(id)
	if err != nil {
		return nil, nil, err
	}

	before := taskIDs(a.reg.Tasks())
	if err := a.reg.Complete(t); err != nil {
		return nil, nil, err
	}

	a.logActivity("complete", t.ID, t.Title)

	// The new occurrence, if any, is the one task present now that
	// was not before.
	var next *task.Task
	for _, candidate := range a.reg.Tasks() {
		if !before[candidate.ID] {
			next = candidate
			break
		}
	}
	return t, next, nil
}

func taskIDs(tasks []*task.Task) map[string]bool {
	ids := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		ids[t.ID] = true
	}
	return ids
}
