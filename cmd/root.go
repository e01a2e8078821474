// Package cmd implements the taskpilot CLI commands.
package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/taskpilot/taskpilot/internal/apperr"
	"github.com/taskpilot/taskpilot/internal/config"
	"github.com/taskpilot/taskpilot/internal/filelock"
	"github.com/taskpilot/taskpilot/internal/output"
	"github.com/taskpilot/taskpilot/internal/registry"
	"github.com/taskpilot/taskpilot/internal/store"
	"github.com/taskpilot/taskpilot/internal/task"
)

// version is set at build time via ldflags.
var version = "dev"

// Global flags.
var (
	flagJSON    bool
	flagTable   bool
	flagCompact bool
	flagDir     string
	flagNoColor bool
)

var rootCmd = &cobra.Command{
	Use:   "taskpilot",
	Short: "Personal task tracker with categories, tags, and reminders",
	Long: `taskpilot tracks your tasks from the terminal: create, edit, complete, and
delete tasks, organize them by category and tag, and get due-date reminders.
Run taskpilot without arguments to open the interactive task browser.`,
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE:          runTUI,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if flagNoColor || termenv.EnvNoColor() {
			output.DisableColor()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVar(&flagTable, "table", false, "output as table")
	rootCmd.PersistentFlags().BoolVar(&flagCompact, "compact", false, "compact one-line-per-record output")
	rootCmd.PersistentFlags().BoolVar(&flagCompact, "oneline", false, "alias for --compact")
	rootCmd.PersistentFlags().StringVar(&flagDir, "dir", "", "path to taskpilot directory")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable color output")
}

// Execute runs the root command.
func Execute() {
	_, err := rootCmd.ExecuteC()
	if err == nil {
		return
	}

	// Handle SilentError — exit with code, no output.
	var silent *apperr.SilentError
	if errors.As(err, &silent) {
		os.Exit(silent.Code)
	}

	// Determine if JSON mode is active.
	jsonMode := flagJSON
	if !jsonMode {
		jsonMode = os.Getenv("TASKPILOT_OUTPUT") == "json"
	}

	if jsonMode {
		var appErr *apperr.Error
		if errors.As(err, &appErr) {
			output.JSONError(os.Stdout, appErr.Code, appErr.Message, appErr.Details)
			os.Exit(appErr.ExitCode())
		}
		// Unknown error — wrap as INTERNAL_ERROR.
		output.JSONError(os.Stdout, apperr.InternalError, err.Error(), nil)
		os.Exit(2) //nolint:mnd // exit code 2 for internal errors
	}

	// Non-JSON mode: print to stderr.
	fmt.Fprintln(os.Stderr, err)
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		os.Exit(appErr.ExitCode())
	}
	os.Exit(1)
}

// resolveDir returns the absolute path to the taskpilot directory.
// Falls back to the per-user config directory if no profile is found in
// the current directory tree.
func resolveDir() (string, error) {
	if flagDir != "" {
		return flagDir, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting working directory: %w", err)
	}

	dir, err := config.FindDir(cwd)
	if err == nil {
		return dir, nil
	}

	if home := config.UserDir(); home != "" {
		return home, nil
	}
	return "", err
}

// loadConfig finds and loads the taskpilot config. If the resolved
// directory is the per-user default and no profile exists yet, one is
// auto-created so the first run just works.
func loadConfig() (*config.Config, error) {
	dir, err := resolveDir()
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(dir)
	if err == nil {
		return cfg, nil
	}

	if !errors.Is(err, config.ErrNotFound) {
		return nil, err
	}
	if home := config.UserDir(); home != "" && dir == home {
		return config.Init(home, config.DefaultProfileName)
	}
	return nil, err
}

// lockData acquires an exclusive advisory lock on the profile
// directory. Mutating commands hold it for their whole run so two
// concurrent invocations do not interleave whole-file rewrites of the
// data files.
func lockData() (unlock func() error, err error) {
	dir, err := resolveDir()
	if err != nil {
		return nil, err
	}
	unlock, err = filelock.Lock(filepath.Join(dir, ".lock"))
	if err != nil {
		return nil, fmt.Errorf("acquiring lock: %w", err)
	}
	return unlock, nil
}

// app bundles the wired core for a command invocation: config, the
// task registry, and the category/tag collections with name lookups.
type app struct {
	cfg        *config.Config
	reg        *registry.Registry
	categories []task.Category
	tags       []task.Tag
}

// loadApp loads the config, opens the file repositories, and builds the
// registry. Every command that touches tasks goes through here so the
// wiring happens in exactly one place.
func loadApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	dataDir := cfg.DataPath()
	reg, err := registry.New(store.NewTaskFile(dataDir), task.NewValidator())
	if err != nil {
		return nil, err
	}
	reg.SetNow(nowFunc)
	reg.SubscribeErrors(func(msg string) {
		fmt.Fprintln(os.Stderr, "Warning: "+msg)
	})

	categories, err := store.NewCategoryFile(dataDir).GetAll()
	if err != nil {
		return nil, apperr.Wrap(apperr.PersistenceFailed, err)
	}
	tags, err := store.NewTagFile(dataDir).GetAll()
	if err != nil {
		return nil, apperr.Wrap(apperr.PersistenceFailed, err)
	}

	return &app{cfg: cfg, reg: reg, categories: categories, tags: tags}, nil
}

// names returns the id → display-name lookups for rendering.
func (a *app) names() output.Names {
	return output.Names{
		Categories: task.CategoryNames(a.categories),
		Tags:       task.TagNames(a.tags),
	}
}

// categoryByName resolves a category reference (name or id, names
// case-insensitive) to its id.
func (a *app) categoryByName(ref string) (string, error) {
	for _, c := range a.categories {
		if strings.EqualFold(c.Name, ref) || c.ID == ref {
			return c.ID, nil
		}
	}
	return "", apperr.Newf(apperr.CategoryNotFound, "no category named %q", ref)
}

// tagsByName resolves tag references (names or ids) to ids.
func (a *app) tagsByName(refs []string) ([]string, error) {
	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		id := ""
		for _, tg := range a.tags {
			if strings.EqualFold(tg.Name, ref) || tg.ID == ref {
				id = tg.ID
				break
			}
		}
		if id == "" {
			return nil, apperr.Newf(apperr.TagNotFound, "no tag named %q", ref)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// logActivity appends an entry to the activity log. Errors are silently
// discarded because logging should never fail a command.
func (a *app) logActivity(action, taskID, detail string) {
	store.LogMutation(a.cfg.DataPath(), action, taskID, detail)
}

// outputFormat returns the detected output format from flags/env.
func outputFormat() output.Format {
	return output.Detect(flagJSON, flagTable, flagCompact)
}

// parseIDs splits a comma-separated id list, trimming blanks and
// dropping duplicates while preserving order.
func parseIDs(arg string) ([]string, error) {
	seen := make(map[string]bool)
	var ids []string
	for _, part := range strings.Split(arg, ",") {
		id := strings.TrimSpace(part)
		if id == "" {
			continue
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, apperr.New(apperr.InvalidInput, "no task ids given")
	}
	return ids, nil
}

// runBatch executes fn for each id and collects results. Returns a
// SilentError with exit code 1 if any operation failed (after
// outputting results).
func runBatch(ids []string, fn func(string) error) error {
	results := make([]output.BatchResult, 0, len(ids))
	anyFailed := false

	for _, id := range ids {
		err := fn(id)
		if err != nil {
			anyFailed = true
			var appErr *apperr.Error
			if errors.As(err, &appErr) {
				results = append(results, output.BatchResult{ID: id, OK: false, Error: appErr.Message, Code: appErr.Code})
			} else {
				results = append(results, output.BatchResult{ID: id, OK: false, Error: err.Error()})
			}
		} else {
			results = append(results, output.BatchResult{ID: id, OK: true})
		}
	}

	if outputFormat() == output.FormatJSON {
		if err := output.JSON(os.Stdout, results); err != nil {
			return err
		}
	} else {
		var succeeded int
		for _, r := range results {
			if r.OK {
				succeeded++
			} else {
				fmt.Fprintf(os.Stderr, "Error: task %s: %s\n", r.ID, r.Error)
			}
		}
		output.Messagef(os.Stdout, "Completed %d/%d operations", succeeded, len(ids))
	}

	if anyFailed {
		return &apperr.SilentError{Code: 1}
	}
	return nil
}

// validationError renders per-field validation messages for human
// output; JSON mode carries them in the error details instead.
func validationError(err error) error {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Code != apperr.ValidationFailed {
		return err
	}
	errsAny, ok := appErr.Details["errors"]
	if !ok {
		return err
	}
	errs, ok := errsAny.(task.Errors)
	if !ok {
		return err
	}
	for _, field := range sortedFields(errs) {
		for _, msg := range errs[field] {
			fmt.Fprintf(os.Stderr, "  %s: %s\n", field, msg)
		}
	}
	return err
}

func sortedFields(errs task.Errors) []string {
	fields := make([]string, 0, len(errs))
	for f := range errs {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// nowFunc is the command-level clock. Tests replace it.
var nowFunc = time.Now
