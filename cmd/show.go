package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/taskpilot/taskpilot/internal/output"
)

var showCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show task details",
	Long: `Displays full details of a single task including its markdown description.
The ID may be abbreviated to any unique prefix.`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func runShow(_ *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}

	t, err := a.reg.Find(args[0])
	if err != nil {
		return err
	}

	format := outputFormat()
	if format == output.FormatJSON {
		return output.JSON(os.Stdout, t)
	}
	if format == output.FormatCompact {
		output.TaskDetailCompact(os.Stdout, t, a.names())
		return nil
	}

	output.TaskDetail(os.Stdout, t, a.names(), nowFunc())
	return nil
}
