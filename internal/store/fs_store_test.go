package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cwbudde/gradmin/internal/config"
	"github.com/cwbudde/gradmin/internal/descent"
)

// setupTestStore creates a temporary directory and returns an FSStore for testing.
func setupTestStore(t *testing.T) (*FSStore, string) {
	t.Helper()

	tempDir := t.TempDir()
	store, err := NewFSStore(tempDir)
	if err != nil {
		t.Fatalf("Failed to create test store: %v", err)
	}

	return store, tempDir
}

// createTestRecord creates a run record with test data.
func createTestRecord(runID string) *RunRecord {
	return &RunRecord{
		RunID: runID,
		Config: config.Run{
			Function:  "quadratic",
			Interval:  descent.Interval{Low: -0.5, High: 0.5},
			LearnRate: 0.01,
			MaxIters:  10000,
			Seed:      42,
			Dispatch:  config.DispatchBoth,
			DataDir:   "./data",
		},
		Results: []VariantResult{
			{Variant: "static", Result: descent.Result{X: 0.25, Value: -0.125, Iterations: 10000, Status: descent.MaxIterations}},
			{Variant: "dynamic", Result: descent.Result{X: 0.25, Value: -0.125, Iterations: 10000, Status: descent.MaxIterations}},
		},
		Elapsed:   125 * time.Millisecond,
		Timestamp: time.Now(),
	}
}

func TestNewFSStore(t *testing.T) {
	tempDir := t.TempDir()

	store, err := NewFSStore(tempDir)
	if err != nil {
		t.Fatalf("NewFSStore failed: %v", err)
	}
	if store == nil {
		t.Fatal("Expected non-nil store")
	}

	if _, err := os.Stat(tempDir); os.IsNotExist(err) {
		t.Fatal("Base directory was not created")
	}
}

func TestSaveRun(t *testing.T) {
	store, tempDir := setupTestStore(t)

	runID := "test-run-123"
	record := createTestRecord(runID)

	if err := store.SaveRun(runID, record); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}

	expectedPath := filepath.Join(tempDir, "runs", runID, "record.json")
	if _, err := os.Stat(expectedPath); os.IsNotExist(err) {
		t.Fatalf("Record file was not created at %s", expectedPath)
	}

	// No leftover temp file
	if _, err := os.Stat(expectedPath + ".tmp"); !os.IsNotExist(err) {
		t.Error("Temp file was not cleaned up")
	}
}

func TestSaveRunInvalidArgs(t *testing.T) {
	store, _ := setupTestStore(t)

	if err := store.SaveRun("", createTestRecord("x")); err == nil {
		t.Error("Expected error for empty runID")
	}
	if err := store.SaveRun("id", nil); err == nil {
		t.Error("Expected error for nil record")
	}
}

func TestLoadRun(t *testing.T) {
	store, _ := setupTestStore(t)

	runID := "test-run-456"
	original := createTestRecord(runID)

	if err := store.SaveRun(runID, original); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}

	loaded, err := store.LoadRun(runID)
	if err != nil {
		t.Fatalf("LoadRun failed: %v", err)
	}

	if loaded.RunID != original.RunID {
		t.Errorf("RunID mismatch: got %q, want %q", loaded.RunID, original.RunID)
	}
	if len(loaded.Results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(loaded.Results))
	}
	if loaded.Results[0].Result.X != 0.25 {
		t.Errorf("Result X mismatch: got %v", loaded.Results[0].Result.X)
	}
	if loaded.Config.Function != "quadratic" {
		t.Errorf("Config function mismatch: got %q", loaded.Config.Function)
	}
}

func TestLoadRunNotFound(t *testing.T) {
	store, _ := setupTestStore(t)

	_, err := store.LoadRun("nonexistent")
	if err == nil {
		t.Fatal("Expected error for missing run")
	}
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestListRuns(t *testing.T) {
	store, _ := setupTestStore(t)

	// Empty store lists nothing
	infos, err := store.ListRuns()
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(infos) != 0 {
		t.Errorf("Expected empty list, got %d entries", len(infos))
	}

	for _, id := range []string{"run-a", "run-b", "run-c"} {
		if err := store.SaveRun(id, createTestRecord(id)); err != nil {
			t.Fatalf("SaveRun %s failed: %v", id, err)
		}
	}

	infos, err = store.ListRuns()
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(infos) != 3 {
		t.Fatalf("Expected 3 runs, got %d", len(infos))
	}

	// Metadata projection carries the first variant's result
	for _, info := range infos {
		if info.Function != "quadratic" {
			t.Errorf("Expected function quadratic, got %q", info.Function)
		}
		if info.Status != descent.MaxIterations.String() {
			t.Errorf("Unexpected status %q", info.Status)
		}
	}
}

func TestDeleteRun(t *testing.T) {
	store, tempDir := setupTestStore(t)

	runID := "run-to-delete"
	if err := store.SaveRun(runID, createTestRecord(runID)); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}

	if err := store.DeleteRun(runID); err != nil {
		t.Fatalf("DeleteRun failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(tempDir, "runs", runID)); !os.IsNotExist(err) {
		t.Error("Run directory still exists after delete")
	}

	err := store.DeleteRun(runID)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound on second delete, got %v", err)
	}
}

func TestRunRecordValidate(t *testing.T) {
	record := createTestRecord("valid-run")
	if err := record.Validate(); err != nil {
		t.Fatalf("Valid record failed validation: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*RunRecord)
	}{
		{"empty run ID", func(r *RunRecord) { r.RunID = "" }},
		{"no results", func(r *RunRecord) { r.Results = nil }},
		{"unnamed variant", func(r *RunRecord) { r.Results[0].Variant = "" }},
		{"zero timestamp", func(r *RunRecord) { r.Timestamp = time.Time{} }},
		{"invalid config", func(r *RunRecord) { r.Config.LearnRate = -1 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			record := createTestRecord("valid-run")
			tc.mutate(record)
			if err := record.Validate(); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}
