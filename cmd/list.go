package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/taskpilot/taskpilot/internal/apperr"
	"github.com/taskpilot/taskpilot/internal/output"
	"github.com/taskpilot/taskpilot/internal/task"
	"github.com/taskpilot/taskpilot/internal/view"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tasks",
	Long:    `Lists tasks with optional filtering, sorting, and output format control.`,
	RunE:    runList,
}

func init() {
	listCmd.Flags().StringP("search", "s", "", "search tasks by title or description (case-insensitive)")
	listCmd.Flags().String("category", "", "filter by category name")
	listCmd.Flags().StringSlice("tags", nil, "filter by tag names (any match)")
	listCmd.Flags().String("priority", "", "filter by priority (low, medium, high)")
	listCmd.Flags().BoolP("all", "a", false, "include completed tasks")
	listCmd.Flags().String("sort", "", "sort field ("+strings.Join(view.SortKeys, ", ")+")")
	listCmd.Flags().BoolP("reverse", "r", false, "reverse sort order")
	listCmd.Flags().IntP("limit", "n", 0, "limit number of results")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}

	criteria, err := buildCriteria(cmd, a)
	if err != nil {
		return err
	}

	sortBy, _ := cmd.Flags().GetString("sort")
	if sortBy == "" {
		sortBy = a.cfg.Defaults.SortKey
	}
	if sortBy != "" && !view.ValidSortKey(sortBy) {
		return apperr.Newf(apperr.InvalidSortKey, "invalid --sort field %q; valid: %s",
			sortBy, strings.Join(view.SortKeys, ", "))
	}
	reverse, _ := cmd.Flags().GetBool("reverse")
	limit, _ := cmd.Flags().GetInt("limit")

	names := a.names()
	tasks := view.View(a.reg.Tasks(), criteria, sortBy, reverse, names.Categories)
	if limit > 0 && limit < len(tasks) {
		tasks = tasks[:limit]
	}

	return outputTaskList(tasks, names)
}

func buildCriteria(cmd *cobra.Command, a *app) (view.Criteria, error) {
	search, _ := cmd.Flags().GetString("search")
	all, _ := cmd.Flags().GetBool("all")

	criteria := view.Criteria{
		Search:           search,
		IncludeCompleted: all,
	}

	if v, _ := cmd.Flags().GetString("category"); v != "" {
		id, err := a.categoryByName(v)
		if err != nil {
			return view.Criteria{}, err
		}
		criteria.CategoryID = id
	}
	if v, _ := cmd.Flags().GetStringSlice("tags"); len(v) > 0 {
		ids, err := a.tagsByName(v)
		if err != nil {
			return view.Criteria{}, err
		}
		criteria.TagIDs = ids
	}
	if v, _ := cmd.Flags().GetString("priority"); v != "" {
		p, err := task.ParsePriority(v)
		if err != nil {
			return view.Criteria{}, err
		}
		criteria.Priority = &p
	}

	return criteria, nil
}

func outputTaskList(tasks []*task.Task, names output.Names) error {
	format := outputFormat()
	if format == output.FormatJSON {
		if tasks == nil {
			tasks = []*task.Task{}
		}
		return output.JSON(os.Stdout, tasks)
	}
	if format == output.FormatCompact {
		output.TaskCompact(os.Stdout, tasks, names)
		return nil
	}

	output.TaskTable(os.Stdout, tasks, names, nowFunc())
	return nil
}
