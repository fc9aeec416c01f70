package testutil

import (
	"path/filepath"
	"testing"

	"github.com/nishad/srake-eutils/internal/store"
)

// TestStore opens an empty run cache in a temporary directory.
// It is closed when the test finishes.
func TestStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.Open(filepath.Join(t.TempDir(), "runs.db"))
	RequireNoError(t, err, "failed to open run cache")
	t.Cleanup(func() { s.Close() })
	return s
}

// TestStoreWithRuns opens a run cache holding TestRuns under TestTerm.
func TestStoreWithRuns(t *testing.T) *store.Store {
	t.Helper()

	s := TestStore(t)
	_, err := s.SaveRuns(TestTerm, TestRuns())
	RequireNoError(t, err, "failed to save test runs")
	return s
}

// CachedAccessions lists the accessions cached for term, in order.
func CachedAccessions(t *testing.T, s *store.Store, term string) []string {
	t.Helper()

	runs, err := s.RunsForTerm(term)
	RequireNoError(t, err, "failed to read cached runs")
	out := make([]string, 0, len(runs))
	for _, run := range runs {
		out = append(out, run.Accession())
	}
	return out
}
