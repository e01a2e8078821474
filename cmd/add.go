package cmd

import (
	"errors"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/taskpilot/taskpilot/internal/apperr"
	"github.com/taskpilot/taskpilot/internal/date"
	"github.com/taskpilot/taskpilot/internal/output"
	"github.com/taskpilot/taskpilot/internal/task"
)

var addCmd = &cobra.Command{
	Use:     "add [TITLE]",
	Aliases: []string{"create"},
	Short:   "Add a new task",
	Long: `Adds a new task with the given title and optional fields.

Title can be provided as a positional argument or via --title flag.
New tasks require a category and at least one tag.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAdd,
}

func init() {
	addCmd.Flags().String("title", "", "task title (alternative to positional argument)")
	addCmd.Flags().String("description", "", "task description (markdown)")
	addCmd.Flags().String("due", "", "due date (YYYY-MM-DD, 'YYYY-MM-DD HH:MM', today, tomorrow)")
	addCmd.Flags().String("priority", "", "task priority (low, medium, high; default from config)")
	addCmd.Flags().String("category", "", "category name")
	addCmd.Flags().StringSlice("tags", nil, "comma-separated tag names")
	addCmd.Flags().SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		switch name {
		case "tag":
			name = "tags"
		case "desc", "body":
			name = "description"
		}
		return pflag.NormalizedName(name)
	})
	addCmd.Flags().String("recur", "", "recurrence pattern (daily, weekly, monthly)")
	addCmd.Flags().Int("every", 1, "recurrence interval (e.g. --recur daily --every 2)")
	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	unlock, err := lockData()
	if err != nil {
		return err
	}
	defer unlock() //nolint:errcheck // best-effort unlock on exit

	a, err := loadApp()
	if err != nil {
		return err
	}

	title, err := resolveAddTitle(cmd, args)
	if err != nil {
		return err
	}

	t := task.New(title)
	t.Priority = a.cfg.DefaultPriority()

	if err := applyAddFlags(cmd, t, a); err != nil {
		return err
	}

	if err := a.reg.Add(t); err != nil {
		return validationError(err)
	}

	a.logActivity("add", t.ID, t.Title)

	return outputAddResult(t, a)
}

func outputAddResult(t *task.Task, a *app) error {
	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, t)
	}

	names := a.names()
	output.Messagef(os.Stdout, "Added task %s: %s", output.ShortID(t.ID), t.Title)
	output.Messagef(os.Stdout, "  Due: %s | Priority: %s", t.Due.Format("2006-01-02 15:04"), t.Priority)
	output.Messagef(os.Stdout, "  Category: %s | Tags: %s",
		names.Category(t.CategoryID), strings.Join(names.TagList(t.TagIDs), ", "))
	if t.IsRecurring() {
		output.Messagef(os.Stdout, "  Repeats: %s (every %d)", t.Recurrence, t.Interval)
	}
	return nil
}

// resolveAddTitle returns the task title from either the positional arg or --title flag.
func resolveAddTitle(cmd *cobra.Command, args []string) (string, error) {
	flagTitle, _ := cmd.Flags().GetString("title")
	hasPositional := len(args) > 0
	hasFlag := flagTitle != ""

	switch {
	case hasPositional && hasFlag:
		return "", apperr.New(apperr.InvalidInput,
			"title provided both as argument and --title flag; use one or the other")
	case hasPositional:
		return args[0], nil
	case hasFlag:
		return flagTitle, nil
	default:
		return "", errors.New("title is required: provide it as an argument or with --title")
	}
}

func applyAddFlags(cmd *cobra.Command, t *task.Task, a *app) error {
	if v, _ := cmd.Flags().GetString("description"); v != "" {
		t.Description = v
	}
	if v, _ := cmd.Flags().GetString("due"); v != "" {
		due, err := date.ParseDue(v, nowFunc())
		if err != nil {
			return err
		}
		t.Due = due
	} else {
		// No flag: due tomorrow, matching the interactive default.
		due, _ := date.ParseDue("tomorrow", nowFunc())
		t.Due = due
	}
	if v, _ := cmd.Flags().GetString("priority"); v != "" {
		p, err := task.ParsePriority(v)
		if err != nil {
			return err
		}
		t.Priority = p
	}
	if v, _ := cmd.Flags().GetString("category"); v != "" {
		id, err := a.categoryByName(v)
		if err != nil {
			return err
		}
		t.CategoryID = id
	}
	if v, _ := cmd.Flags().GetStringSlice("tags"); len(v) > 0 {
		ids, err := a.tagsByName(v)
		if err != nil {
			return err
		}
		t.TagIDs = ids
	}
	if v, _ := cmd.Flags().GetString("recur"); v != "" {
		pattern, err := task.ParsePattern(v)
		if err != nil {
			return err
		}
		every, _ := cmd.Flags().GetInt("every")
		t.SetRecurrence(pattern, every)
	}
	return nil
}
