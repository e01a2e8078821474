package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/taskpilot/taskpilot/internal/apperr"
	"github.com/taskpilot/taskpilot/internal/config"
	"github.com/taskpilot/taskpilot/internal/output"
	"github.com/taskpilot/taskpilot/internal/store"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new taskpilot profile",
	Long: `Creates a taskpilot directory with config.yml and a data/ subdirectory,
seeded with the default categories and tags.`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().String("name", "", "profile name (defaults to current directory name)")
	initCmd.Flags().Bool("user", false, "initialize in the per-user config directory instead of here")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, _ []string) error {
	dir := flagDir
	if user, _ := cmd.Flags().GetBool("user"); user && dir == "" {
		dir = config.UserDir()
		if dir == "" {
			return apperr.New(apperr.ConfigError, "cannot determine the per-user config directory")
		}
	}
	if dir == "" {
		dir = config.DefaultDir
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolving path: %w", err)
	}

	// Check if already initialized.
	if _, err := os.Stat(filepath.Join(absDir, config.ConfigFileName)); err == nil {
		return apperr.Newf(apperr.ConfigError, "profile already initialized in %s", absDir).
			WithDetails(map[string]any{"dir": absDir})
	}

	name, _ := cmd.Flags().GetString("name")
	if name == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting working directory: %w", err)
		}
		name = filepath.Base(cwd)
	}

	cfg, err := config.Init(absDir, name)
	if err != nil {
		return err
	}

	// Seed the default categories and tags so the first add has
	// something to reference.
	dataDir := cfg.DataPath()
	if err := store.NewCategoryFile(dataDir).SaveAll(store.DefaultCategories()); err != nil {
		return fmt.Errorf("seeding categories: %w", err)
	}
	if err := store.NewTagFile(dataDir).SaveAll(store.DefaultTags()); err != nil {
		return fmt.Errorf("seeding tags: %w", err)
	}

	// Output result.
	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]string{
			"status": "initialized",
			"dir":    absDir,
			"name":   name,
			"config": cfg.ConfigPath(),
			"data":   dataDir,
		})
	}

	output.Messagef(os.Stdout, "Initialized profile %q in %s", name, absDir)
	output.Messagef(os.Stdout, "  Config: %s", cfg.ConfigPath())
	output.Messagef(os.Stdout, "  Data:   %s", dataDir)
	output.Messagef(os.Stdout, "  Hint:   Add your first task with: taskpilot add \"Buy milk\" --due tomorrow")
	return nil
}
