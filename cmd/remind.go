package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/taskpilot/taskpilot/internal/output"
	"github.com/taskpilot/taskpilot/internal/reminder"
	"github.com/taskpilot/taskpilot/internal/task"
	"github.com/taskpilot/taskpilot/internal/watcher"
)

var remindCmd = &cobra.Command{
	Use:   "remind",
	Short: "Watch for due-soon tasks",
	Long: `Runs the reminder monitor in the foreground. Each pending task whose due
date enters the reminder window triggers one notification line; a task never
fires twice. Press Ctrl+C to stop.

With --once, runs a single scan and prints the tasks currently inside the
window instead of polling.`,
	RunE: runRemind,
}

func init() {
	remindCmd.Flags().Bool("once", false, "scan once and exit instead of polling")
	rootCmd.AddCommand(remindCmd)
}

func runRemind(cmd *cobra.Command, _ []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}

	monitor := reminder.New(a.reg)
	monitor.SetInterval(a.cfg.ReminderInterval())
	monitor.SetWindow(a.cfg.ReminderWindow())

	if once, _ := cmd.Flags().GetBool("once"); once {
		return remindOnce(a, monitor)
	}
	return remindLoop(a, monitor)
}

func remindOnce(a *app, monitor *reminder.Monitor) error {
	due := monitor.Scan(nowFunc())

	if outputFormat() == output.FormatJSON {
		if due == nil {
			due = []*task.Task{}
		}
		return output.JSON(os.Stdout, due)
	}
	if len(due) == 0 {
		output.Messagef(os.Stdout, "Nothing due within %s", a.cfg.ReminderWindow())
		return nil
	}
	for _, t := range due {
		printReminder(a, t)
	}
	return nil
}

func remindLoop(a *app, monitor *reminder.Monitor) error {
	monitor.Subscribe(func(t *task.Task) {
		printReminder(a, t)
	})
	monitor.Start()
	defer monitor.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Reload the registry when the data files change externally, so
	// tasks added from another terminal still get their reminder.
	w, err := watcher.New([]string{a.cfg.DataPath()}, func() {
		fresh, loadErr := loadApp()
		if loadErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: reloading tasks: %v\n", loadErr)
			return
		}
		prev := monitor
		prev.Stop()
		*a = *fresh
		monitor = reminder.New(a.reg)
		monitor.Inherit(prev)
		monitor.SetInterval(a.cfg.ReminderInterval())
		monitor.SetWindow(a.cfg.ReminderWindow())
		monitor.Subscribe(func(t *task.Task) {
			printReminder(a, t)
		})
		monitor.Start()
	})
	if err != nil {
		return fmt.Errorf("starting file watcher: %w", err)
	}
	defer w.Close()

	fmt.Fprintf(os.Stderr, "Watching %d tasks, polling every %s... (Ctrl+C to stop)\n",
		a.reg.Len(), a.cfg.ReminderInterval())

	w.Run(ctx, func(watchErr error) {
		fmt.Fprintf(os.Stderr, "Warning: file watcher: %v\n", watchErr)
	})

	return nil
}

func printReminder(a *app, t *task.Task) {
	due := t.Due.Format("15:04")
	output.Bannerf(os.Stdout, "Reminder: %s (due %s, %s)",
		t.Title, due, a.names().Category(t.CategoryID))
}
