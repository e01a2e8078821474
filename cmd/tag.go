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

var flagTagColor string

var tagCmd = &cobra.Command{
	Use:   "tag",
	Short: "Manage tags",
	RunE:  runTagList,
}

var tagListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tags",
	RunE:  runTagList,
}

var tagAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Add a tag",
	Args:  cobra.ExactArgs(1),
	RunE:  runTagAdd,
}

var tagRemoveCmd = &cobra.Command{
	Use:   "remove NAME",
	Short: "Remove a tag and detach it from tasks",
	RunE:  runTagRemove,
	Args:  cobra.ExactArgs(1),
}

func init() {
	tagAddCmd.Flags().StringVar(&flagTagColor, "color", "", "hex color, e.g. #FF0000")

	tagCmd.AddCommand(tagListCmd)
	tagCmd.AddCommand(tagAddCmd)
	tagCmd.AddCommand(tagRemoveCmd)
	rootCmd.AddCommand(tagCmd)
}

func runTagList(_ *cobra.Command, _ []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, a.tags)
	}

	counts := tagUsage(a)
	for _, tg := range a.tags {
		fmt.Fprintf(os.Stdout, "%s  %-20s %-8s %d task(s)\n",
			output.ShortID(tg.ID), tg.Name, tg.Color, counts[tg.ID])
	}
	return nil
}

func runTagAdd(_ *cobra.Command, args []string) error {
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
		return apperr.New(apperr.InvalidInput, "tag name must not be empty")
	}
	for _, tg := range a.tags {
		if strings.EqualFold(tg.Name, name) {
			return apperr.Newf(apperr.InvalidInput, "tag %q already exists", tg.Name)
		}
	}
	if flagTagColor != "" && !validHexColor(flagTagColor) {
		return apperr.Newf(apperr.InvalidInput, "invalid color %q; expected #RRGGBB", flagTagColor)
	}

	tg := task.NewTag(name, flagTagColor)
	a.tags = append(a.tags, tg)
	if err := store.NewTagFile(a.cfg.DataPath()).SaveAll(a.tags); err != nil {
		return apperr.Wrap(apperr.PersistenceFailed, err)
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, tg)
	}
	output.Messagef(os.Stdout, "Added tag %q (%s)", tg.Name, output.ShortID(tg.ID))
	return nil
}

func runTagRemove(_ *cobra.Command, args []string) error {
	unlock, err := lockData()
	if err != nil {
		return err
	}
	defer unlock() //nolint:errcheck // best-effort unlock on exit

	a, err := loadApp()
	if err != nil {
		return err
	}

	ids, err := a.tagsByName(args[:1])
	if err != nil {
		return err
	}
	id := ids[0]

	// Tasks keep the id; dangling tag references simply stop rendering.
	kept := a.tags[:0]
	var removed task.Tag
	for _, tg := range a.tags {
		if tg.ID == id {
			removed = tg
			continue
		}
		kept = append(kept, tg)
	}
	if err := store.NewTagFile(a.cfg.DataPath()).SaveAll(kept); err != nil {
		return apperr.Wrap(apperr.PersistenceFailed, err)
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, removed)
	}
	if n := tagUsage(a)[id]; n > 0 {
		output.Messagef(os.Stdout, "Removed tag %q (still referenced by %d task(s))", removed.Name, n)
		return nil
	}
	output.Messagef(os.Stdout, "Removed tag %q", removed.Name)
	return nil
}

// tagUsage counts tasks per tag id.
func tagUsage(a *app) map[string]int {
	counts := make(map[string]int)
	for _, t := range a.reg.Tasks() {
		for _, id := range t.TagIDs {
			counts[id]++
		}
	}
	return counts
}

func validHexColor(s string) bool {
	if len(s) != 7 || s[0] != '#' {
		return false
	}
	for _, r := range s[1:] {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}
