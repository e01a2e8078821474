package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/taskpilot/taskpilot/internal/apperr"
	"github.com/taskpilot/taskpilot/internal/output"
	"github.com/taskpilot/taskpilot/internal/store"
	"github.com/taskpilot/taskpilot/internal/task"
)

var categoryCmd = &cobra.Command{
	Use:     "category",
	Aliases: []string{"cat"},
	Short:   "Manage categories",
	RunE:    runCategoryList,
}

var categoryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List categories",
	RunE:  runCategoryList,
}

var categoryAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Add a category",
	Args:  cobra.ExactArgs(1),
	RunE:  runCategoryAdd,
}

var categoryRemoveCmd = &cobra.Command{
	Use:   "remove NAME",
	Short: "Remove an unused category",
	Args:  cobra.ExactArgs(1),
	RunE:  runCategoryRemove,
}

func init() {
	categoryCmd.AddCommand(categoryListCmd)
	categoryCmd.AddCommand(categoryAddCmd)
	categoryCmd.AddCommand(categoryRemoveCmd)
	rootCmd.AddCommand(categoryCmd)
}

func runCategoryList(_ *cobra.Command, _ []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, a.categories)
	}

	counts := categoryUsage(a)
	for _, c := range a.categories {
		fmt.Fprintf(os.Stdout, "%s  %-20s %d task(s)\n", output.ShortID(c.ID), c.Name, counts[c.ID])
	}
	return nil
}

func runCategoryAdd(_ *cobra.Command, args []string) error {
	unlock, err := lockData()
	if err != nil {
		return err
	}
	defer unlock() //nolint:errcheck // best-effort unlock on exit

	a, err := loadApp()
	if err != nil {
		return err
	}

	name := strings.TrimSpace(args[0])
	if name == "" {
		return apperr.New(apperr.InvalidInput, "category name must not be empty")
	}
	for _, c := range a.categories {
		if strings.EqualFold(c.Name, name) {
			return apperr.Newf(apperr.InvalidInput, "category %q already exists", c.Name)
		}
	}

	c := task.NewCategory(name)
	a.categories = append(a.categories, c)
	if err := store.NewCategoryFile(a.cfg.DataPath()).SaveAll(a.categories); err != nil {
		return apperr.Wrap(apperr.PersistenceFailed, err)
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, c)
	}
	output.Messagef(os.Stdout, "Added category %q (%s)", c.Name, output.ShortID(c.ID))
	return nil
}

func runCategoryRemove(_ *cobra.Command, args []string) error {
	unlock, err := lockData()
	if err != nil {
		return err
	}
	defer unlock() //nolint:errcheck // best-effort unlock on exit

	a, err := loadApp()
	if err != nil {
		return err
	}

	id, err := a.categoryByName(args[0])
	if err != nil {
		return err
	}

	// Tasks keep the id; a dangling category renders as uncategorized.
	kept := a.categories[:0]
	var removed task.Category
	for _, c := range a.categories {
		if c.ID == id {
			removed = c
			continue
		}
		kept = append(kept, c)
	}
	if err := store.NewCategoryFile(a.cfg.DataPath()).SaveAll(kept); err != nil {
		return apperr.Wrap(apperr.PersistenceFailed, err)
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, removed)
	}
	if n := categoryUsage(a)[id]; n > 0 {
		output.Messagef(os.Stdout, "Removed category %q (%d task(s) now uncategorized)", removed.Name, n)
		return nil
	}
	output.Messagef(os.Stdout, "Removed category %q", removed.Name)
	return nil
}

// categoryUsage counts tasks per category id.
func categoryUsage(a *app) map[string]int {
	counts := make(map[string]int)
	for _, t := range a.reg.Tasks() {
		counts[t.CategoryID]++
	}
	return counts
}
