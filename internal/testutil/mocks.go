package testutil

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/nishad/srake-eutils/internal/eutils"
	"github.com/nishad/srake-eutils/internal/runinfo"
)

// MockLookup answers FASTA and run lookups from in-memory data.
// Unknown accessions and terms yield no result, like the live service.
type MockLookup struct {
	mu      sync.Mutex
	FASTA   map[string][]string // accession -> defline followed by body lines
	Runs    map[string][]runinfo.Run
	Err     error
	queries []string
}

// NewMockLookup creates a lookup seeded with the fixture record and runs.
func NewMockLookup() *MockLookup {
	return &MockLookup{
		FASTA: map[string][]string{
			TestAccession: append([]string{TestDefline}, TestSequence...),
		},
		Runs: map[string][]runinfo.Run{
			TestTerm: TestRuns(),
		},
	}
}

// FetchFASTA returns the stored record for accession.
func (m *MockLookup) FetchFASTA(ctx context.Context, accession string) (*eutils.FASTA, error) {
	m.record(accession)
	if m.Err != nil {
		return nil, m.Err
	}
	record, ok := m.FASTA[accession]
	if !ok || len(record) == 0 {
		return nil, nil
	}
	body := strings.Join(record[1:], "\n")
	return &eutils.FASTA{
		ID:      "1",
		Defline: record[0],
		Lines:   eutils.NewLineReader(io.NopCloser(strings.NewReader(body)), 0),
	}, nil
}

// FetchRuns returns a copy of the runs stored for term.
func (m *MockLookup) FetchRuns(ctx context.Context, term string) ([]runinfo.Run, error) {
	m.record(term)
	if m.Err != nil {
		return nil, m.Err
	}
	runs := m.Runs[term]
	if runs == nil {
		return nil, nil
	}
	out := make([]runinfo.Run, len(runs))
	for i, run := range runs {
		out[i] = run.Clone()
	}
	return out, nil
}

// Queries returns every accession or term looked up so far.
func (m *MockLookup) Queries() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.queries...)
}

func (m *MockLookup) record(q string) {
	m.mu.Lock()
	m.queries = append(m.queries, q)
	m.mu.Unlock()
}
