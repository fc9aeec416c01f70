// Package testutil provides testing utilities for srake-eutils packages.
// It includes helpers for temporary files, run caches, fixtures and mocks.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// TempFile writes content to a file under a test-scoped temporary
// directory and returns its path.
func TempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}

// RequireNoError fails the test immediately if err is not nil.
func RequireNoError(t *testing.T, err error, msg string) {
	t.Helper()
	if err != nil {
		t.Fatalf("%s: %v", msg, err)
	}
}
