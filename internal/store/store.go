// Package store persists experiment results to SQLite.
//
// Each protocol run becomes one row in the runs table; its per-fold
// validation scores go into fold_scores. Scores survive across
// processes so runs with different hyperparameters can be compared
// later.
package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	protocol    TEXT NOT NULL,
	model       TEXT NOT NULL,
	config      TEXT NOT NULL,
	started_at  TIMESTAMP NOT NULL,
	finished_at TIMESTAMP,
	mean_loss   REAL,
	mean_acc    REAL,
	test_loss   REAL,
	test_acc    REAL
);

CREATE TABLE IF NOT EXISTS fold_scores (
	run_id    INTEGER NOT NULL REFERENCES runs(id),
	iteration INTEGER NOT NULL,
	fold      INTEGER NOT NULL,
	loss      REAL NOT NULL,
	accuracy  REAL NOT NULL,
	PRIMARY KEY (run_id, iteration, fold)
);
`

// Store is a SQLite-backed experiment results store.
type Store struct {
	db *sql.DB
}

// Run is one persisted protocol run.
type Run struct {
	ID         int64
	Protocol   string
	Model      string
	Config     string
	StartedAt  time.Time
	FinishedAt *time.Time
	MeanLoss   *float64
	MeanAcc    *float64
	TestLoss   *float64
	TestAcc    *float64
}

// Open opens (and if needed creates) the results database at path.
// Use ":memory:" for an ephemeral store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: init schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// BeginRun records the start of a protocol run and returns its id.
func (s *Store) BeginRun(protocol, model, configSummary string) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO runs (protocol, model, config, started_at) VALUES (?, ?, ?, ?)`,
		protocol, model, configSummary, time.Now().UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("store: begin run: %w", err)
	}
	return res.LastInsertId()
}

// RecordFold persists one fold's validation score for a run.
func (s *Store) RecordFold(runID int64, iteration, fold int, loss, accuracy float64) error {
	_, err := s.db.Exec(
		`INSERT INTO fold_scores (run_id, iteration, fold, loss, accuracy) VALUES (?, ?, ?, ?, ?)`,
		runID, iteration, fold, loss, accuracy,
	)
	if err != nil {
		return fmt.Errorf("store: record fold %d/%d: %w", iteration, fold, err)
	}
	return nil
}

// FinishRun stamps the run as finished and stores its aggregate
// scores. Test scores may be nil when no test set was evaluated.
func (s *Store) FinishRun(runID int64, meanLoss, meanAcc float64, testLoss, testAcc *float64) error {
	_, err := s.db.Exec(
		`UPDATE runs SET finished_at = ?, mean_loss = ?, mean_acc = ?, test_loss = ?, test_acc = ?
		 WHERE id = ?`,
		time.Now().UTC(), meanLoss, meanAcc, testLoss, testAcc, runID,
	)
	if err != nil {
		return fmt.Errorf("store: finish run %d: %w", runID, err)
	}
	return nil
}

// Runs returns all persisted runs, newest first.
func (s *Store) Runs() ([]Run, error) {
	rows, err := s.db.Query(
		`SELECT id, protocol, model, config, started_at, finished_at,
		        mean_loss, mean_acc, test_loss, test_acc
		 FROM runs ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("store: list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Protocol, &r.Model, &r.Config, &r.StartedAt,
			&r.FinishedAt, &r.MeanLoss, &r.MeanAcc, &r.TestLoss, &r.TestAcc); err != nil {
			return nil, fmt.Errorf("store: scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// FoldRecord is one persisted fold score.
type FoldRecord struct {
	Iteration int
	Fold      int
	Loss      float64
	Accuracy  float64
}

// FoldScores returns the per-fold scores of a run in (iteration, fold)
// order.
func (s *Store) FoldScores(runID int64) ([]FoldRecord, error) {
	rows, err := s.db.Query(
		`SELECT iteration, fold, loss, accuracy FROM fold_scores
		 WHERE run_id = ? ORDER BY iteration, fold`, runID)
	if err != nil {
		return nil, fmt.Errorf("store: fold scores for run %d: %w", runID, err)
	}
	defer rows.Close()

	var records []FoldRecord
	for rows.Next() {
		var r FoldRecord
		if err := rows.Scan(&r.Iteration, &r.Fold, &r.Loss, &r.Accuracy); err != nil {
			return nil, fmt.Errorf("store: scan fold score: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
