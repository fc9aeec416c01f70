// Package store provides a SQLite-backed cache of run records fetched from
// the SRA, keyed by run accession and remembering the search term that
// produced them.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/nishad/srake-eutils/internal/errors"
	"github.com/nishad/srake-eutils/internal/runinfo"
)

// Store wraps the SQL database connection
type Store struct {
	db   *sql.DB
	path string
}

// CachedRun is a run record together with its cache metadata.
type CachedRun struct {
	RunAccession string      `json:"run_accession"`
	Term         string      `json:"term"`
	TotalSpots   int64       `json:"total_spots"`
	TotalBases   int64       `json:"total_bases"`
	IsPublic     bool        `json:"is_public"`
	LoadDone     bool        `json:"load_done"`
	Attributes   runinfo.Run `json:"attributes"`
	FetchedAt    time.Time   `json:"fetched_at"`
}

// Open creates and configures the database connection
func Open(path string) (*Store, error) {
	const op errors.Op = "store.Open"

	db, err := sql.Open("sqlite3", path+"?_journal=WAL&_timeout=5000&_sync=NORMAL")
	if err != nil {
		return nil, errors.E(op, errors.KindDatabase, err, "failed to open database")
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA temp_store = MEMORY",
		"PRAGMA busy_timeout = 10000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, errors.E(op, errors.KindDatabase, err, fmt.Sprintf("failed to set pragma %s", pragma))
		}
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, errors.E(op, errors.KindDatabase, err, "failed to create tables")
	}

	return &Store{db: db, path: path}, nil
}

func createTables(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		run_accession TEXT PRIMARY KEY,
		term TEXT NOT NULL,
		total_spots INTEGER,
		total_bases INTEGER,
		is_public INTEGER,
		load_done INTEGER,
		attributes JSON,
		fetched_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_run_term ON runs(term);
	`
	_, err := db.Exec(schema)
	return err
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path
func (s *Store) Path() string {
	return s.path
}

// SaveRuns inserts or replaces runs fetched for term in one transaction.
// Records without an accession are skipped. It returns the number saved,
// which is 0 when the transaction fails.
func (s *Store) SaveRuns(term string, runs []runinfo.Run) (int, error) {
	const op errors.Op = "store.SaveRuns"

	tx, err := s.db.Begin()
	if err != nil {
		return 0, errors.E(op, errors.KindDatabase, err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO runs (
			run_accession, term, total_spots, total_bases,
			is_public, load_done, attributes, fetched_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, errors.E(op, errors.KindDatabase, err)
	}
	defer stmt.Close()

	skipped := errors.NewSkipCounter("saving runs for " + term)
	defer skipped.Report()

	now := time.Now().UTC()
	saved := 0
	for i, run := range runs {
		if !run.Valid() {
			skipped.Skip(fmt.Errorf("run has no accession"), fmt.Sprintf("record %d", i))
			continue
		}
		attrs, err := json.Marshal(run)
		if err != nil {
			return 0, errors.E(op, errors.KindDatabase, err, "encoding attributes of "+run.Accession())
		}
		if _, err := stmt.Exec(run.Accession(), term, run.TotalSpots(), run.TotalBases(),
			run.IsPublic(), run.LoadDone(), string(attrs), now); err != nil {
			return 0, errors.E(op, errors.KindDatabase, err, "inserting "+run.Accession())
		}
		saved++
	}

	if err := tx.Commit(); err != nil {
		return 0, errors.E(op, errors.KindDatabase, err)
	}
	return saved, nil
}

// GetRun retrieves a cached run by its accession.
// Returns a KindNoMatch error if the run is not cached.
func (s *Store) GetRun(accession string) (*CachedRun, error) {
	const op errors.Op = "store.GetRun"

	row := s.db.QueryRow(`
		SELECT run_accession, term, total_spots, total_bases,
			   is_public, load_done, COALESCE(attributes, '{}'), fetched_at
		FROM runs
		WHERE run_accession = ?
	`, accession)

	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, errors.E(op, errors.KindNoMatch, fmt.Sprintf("run not cached: %s", accession))
	}
	if err != nil {
		return nil, errors.E(op, errors.KindDatabase, err)
	}
	return run, nil
}

// RunsForTerm returns the cached runs saved for term, ordered by accession.
func (s *Store) RunsForTerm(term string) ([]runinfo.Run, error) {
	const op errors.Op = "store.RunsForTerm"

	rows, err := s.db.Query(`
		SELECT run_accession, term, total_spots, total_bases,
			   is_public, load_done, COALESCE(attributes, '{}'), fetched_at
		FROM runs
		WHERE term = ?
		ORDER BY run_accession
	`, term)
	if err != nil {
		return nil, errors.E(op, errors.KindDatabase, err)
	}
	defer rows.Close()

	var runs []runinfo.Run
	for rows.Next() {
		cached, err := scanRun(rows)
		if err != nil {
			errors.LogAndContinue("scanning cached run", err)
			continue
		}
		runs = append(runs, cached.Attributes)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.E(op, errors.KindDatabase, err)
	}
	return runs, nil
}

// CountRuns returns the number of cached runs.
func (s *Store) CountRuns() (int64, error) {
	var count int64
	if err := s.db.QueryRow("SELECT COUNT(*) FROM runs").Scan(&count); err != nil {
		return 0, errors.E(errors.Op("store.CountRuns"), errors.KindDatabase, err)
	}
	return count, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(sc scanner) (*CachedRun, error) {
	var (
		run   CachedRun
		attrs string
	)
	if err := sc.Scan(&run.RunAccession, &run.Term, &run.TotalSpots, &run.TotalBases,
		&run.IsPublic, &run.LoadDone, &attrs, &run.FetchedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(attrs), &run.Attributes); err != nil {
		return nil, fmt.Errorf("decoding attributes of %s: %w", run.RunAccession, err)
	}
	return &run, nil
}
