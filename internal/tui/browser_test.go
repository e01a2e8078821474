package tui

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/taskpilot/taskpilot/internal/config"
	"github.com/taskpilot/taskpilot/internal/filelock"
	"github.com/taskpilot/taskpilot/internal/registry"
	"github.com/taskpilot/taskpilot/internal/store"
	"github.com/taskpilot/taskpilot/internal/task"
)

func newBrowserSetup(t *testing.T) (*Browser, string) {
	t.Helper()
	cfg, err := config.Init(t.TempDir(), "test")
	if err != nil {
		t.Fatalf("config.Init failed: %v", err)
	}

	reg, err := registry.New(store.NewTaskFile(cfg.DataPath()), task.NewValidator())
	if err != nil {
		t.Fatalf("registry.New failed: %v", err)
	}
	tk := task.New("Water plants")
	tk.Due = time.Now().Add(48 * time.Hour)
	tk.CategoryID = "cat-1"
	tk.TagIDs = []string{"tag-1"}
	if err := reg.Add(tk); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	return New(cfg), cfg.DataPath()
}

func TestCompleteHoldsAndReleasesDataLock(t *testing.T) {
	b, dataDir := newBrowserSetup(t)
	if len(b.tasks) != 1 {
		t.Fatalf("Expected 1 task loaded, got %d", len(b.tasks))
	}

	b.completeSelected()
	if b.err != nil {
		t.Fatalf("completeSelected failed: %v", b.err)
	}
	if b.reg.Len() != 0 {
		t.Errorf("Expected task removed on complete, got %d remaining", b.reg.Len())
	}

	lockPath := filepath.Join(dataDir, ".lock")
	if _, err := os.Stat(lockPath); err != nil {
		t.Fatalf("Expected lock file at %s, got %v", lockPath, err)
	}
	// Re-acquiring proves the mutation released its lock.
	unlock, err := filelock.Lock(lockPath)
	if err != nil {
		t.Fatalf("Lock after complete failed: %v", err)
	}
	if err := unlock(); err != nil {
		t.Errorf("Unlock failed: %v", err)
	}
}

func TestDeleteConfirmHoldsDataLock(t *testing.T) {
	b, dataDir := newBrowserSetup(t)
	if len(b.tasks) != 1 {
		t.Fatalf("Expected 1 task loaded, got %d", len(b.tasks))
	}

	b.handleDeleteStart()
	if b.screen != screenConfirmDelete {
		t.Fatalf("Expected confirm screen, got %d", b.screen)
	}
	b.executeDelete()
	if b.err != nil {
		t.Fatalf("executeDelete failed: %v", b.err)
	}
	if b.reg.Len() != 0 {
		t.Errorf("Expected task removed on delete, got %d remaining", b.reg.Len())
	}

	unlock, err := filelock.Lock(filepath.Join(dataDir, ".lock"))
	if err != nil {
		t.Fatalf("Lock after delete failed: %v", err)
	}
	if err := unlock(); err != nil {
		t.Errorf("Unlock failed: %v", err)
	}
}
