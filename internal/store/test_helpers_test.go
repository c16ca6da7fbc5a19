package store

import (
	"path/filepath"
	"testing"
	"time"
)

// createTestStore creates a new store in a temporary directory for testing.
func createTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, opts...)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRun creates a solved run with minimal required fields.
func createTestRun(hash string, paths ...string) Run {
	run := Run{
		RequestHash: hash,
		Family:      "space-exploration",
		Source:      "EO",
		Target:      "LG",
		Config:      `{"maximum_recipes":10}`,
		Status:      RunSolved,
		Duration:    12 * time.Millisecond,
	}
	for _, p := range paths {
		run.Results = append(run.Results, Result{Path: p, Stages: 1, Recipes: 1})
	}
	return run
}
