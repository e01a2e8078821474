package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/taskpilot/taskpilot/internal/output"
	"github.com/taskpilot/taskpilot/internal/view"
	"github.com/taskpilot/taskpilot/internal/watcher"
)

var flagWatch bool

var statsCmd = &cobra.Command{
	Use:     "stats",
	Aliases: []string{"summary"},
	Short:   "Show task statistics",
	Long: `Displays a rollup over the full task set: totals, completed and overdue
counts, and per-category and per-priority breakdowns.

Use --watch to keep the display live-updating. The stats re-render automatically
whenever the data files change on disk. Press Ctrl+C to stop.`,
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().BoolVarP(&flagWatch, "watch", "w", false, "live-update the stats on file changes")
}

func runStats(_ *cobra.Command, _ []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}

	// Render once.
	if err := renderStats(a); err != nil {
		return err
	}

	if !flagWatch {
		return nil
	}

	return watchStats(a)
}

func renderStats(a *app) error {
	stats := view.Aggregate(a.reg.Tasks(), nowFunc())

	format := outputFormat()
	if format == output.FormatJSON {
		return output.JSON(os.Stdout, stats)
	}
	if format == output.FormatCompact {
		output.StatsCompact(os.Stdout, stats, a.names())
		return nil
	}

	output.StatsTable(os.Stdout, stats, a.names())
	return nil
}

func watchStats(a *app) error {
	watchPaths := []string{a.cfg.DataPath()}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	w, err := watcher.New(watchPaths, func() {
		clearScreen()
		// Re-load the whole app in case tasks changed externally.
		fresh, loadErr := loadApp()
		if loadErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: reloading tasks: %v\n", loadErr)
			fresh = a
		}
		if renderErr := renderStats(fresh); renderErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: rendering stats: %v\n", renderErr)
		}
	})
	if err != nil {
		return fmt.Errorf("starting file watcher: %w", err)
	}
	defer w.Close()

	fmt.Fprintln(os.Stderr, "Watching for changes... (Ctrl+C to stop)")

	w.Run(ctx, func(watchErr error) {
		fmt.Fprintf(os.Stderr, "Warning: file watcher: %v\n", watchErr)
	})

	return nil
}

// clearScreen sends ANSI escape codes to clear the terminal and move the
// cursor to the top-left corner.
func clearScreen() {
	fmt.Fprint(os.Stdout, "\033[2J\033[H")
}
