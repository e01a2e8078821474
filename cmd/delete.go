package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/taskpilot/taskpilot/internal/apperr"
	"github.com/taskpilot/taskpilot/internal/output"
	"github.com/taskpilot/taskpilot/internal/task"
)

var deleteCmd = &cobra.Command{
	Use:     "delete ID[,ID,...]",
	Aliases: []string{"rm"},
	Short:   "Delete a task",
	Long: `Deletes a task permanently. Prompts for confirmation in interactive mode.
Multiple IDs can be provided as a comma-separated list (requires --yes).`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func init() {
	deleteCmd.Flags().BoolP("yes", "y", false, "skip confirmation prompt")
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
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

	yes, _ := cmd.Flags().GetBool("yes")

	// Batch mode requires --yes.
	if len(ids) > 1 && !yes {
		return apperr.New(apperr.ConfirmationReq,
			"batch delete requires --yes")
	}

	// Single ID: preserve exact current behavior.
	if len(ids) == 1 {
		return deleteSingleTask(a, ids[0], yes)
	}

	// Batch mode (yes is guaranteed true here).
	return runBatch(ids, func(id string) error {
		return executeDelete(a, id)
	})
}

// deleteSingleTask handles a single task delete with confirmation and output.
func deleteSingleTask(a *app, id string, yes bool) error {
	t, err := a.reg.Find(id)
	if err != nil {
		return err
	}

	// Require confirmation in TTY mode unless --yes.
	if !yes {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return apperr.New(apperr.ConfirmationReq,
				"cannot prompt for confirmation (not a terminal); use --yes")
		}
		fmt.Fprintf(os.Stderr, "Delete task %s %q? [y/N] ", output.ShortID(t.ID), t.Title)
		reader := bufio.NewReader(os.Stdin)
		answer, _ := reader.ReadString('\n')
		answer = strings.TrimSpace(strings.ToLower(answer))
		if answer != "y" && answer != "yes" {
			fmt.Fprintln(os.Stderr, "Canceled.")
			return nil
		}
	}

	if err := deleteAndLog(a, t); err != nil {
		return err
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]interface{}{
			"status": "deleted",
			"id":     t.ID,
			"title":  t.Title,
		})
	}

	output.Messagef(os.Stdout, "Deleted task %s: %s", output.ShortID(t.ID), t.Title)
	return nil
}

// executeDelete performs the core delete: find, remove, log.
func executeDelete(a *app, id string) error {
	t, err := a.reg.Find(id)
	if err != nil {
		return err
	}
	return deleteAndLog(a, t)
}

func deleteAndLog(a *app, t *task.Task) error {
	if err := a.reg.Delete(t); err != nil {
		return err
	}
	a.logActivity("delete", t.ID, t.Title)
	return nil
}
