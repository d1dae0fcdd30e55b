// Package tracestore persists simulation runs and their step records in
// SQLite. It is an export collaborator: the simulation core never reads
// from it.
package tracestore

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/danielpatrickdp/rupture-state/internal/logging"
	"github.com/danielpatrickdp/rupture-state/internal/state"
)

// ErrRunNotFound is returned when a run ID does not exist.
var ErrRunNotFound = errors.New("run not found")

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id        TEXT PRIMARY KEY,
	name          TEXT,
	seed          INTEGER NOT NULL,
	agents        INTEGER NOT NULL,
	steps         INTEGER NOT NULL,
	ruptures      INTEGER NOT NULL,
	config_json   TEXT,
	summary_json  TEXT,
	created_at    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS step_records (
	run_id         TEXT NOT NULL,
	seq            INTEGER NOT NULL,
	t              INTEGER NOT NULL,
	agent          TEXT NOT NULL,
	r              REAL NOT NULL,
	prior          REAL NOT NULL,
	delta          REAL NOT NULL,
	theta          REAL NOT NULL,
	ruptured       INTEGER NOT NULL,
	collapse_label TEXT,
	margin         REAL NOT NULL,
	probability    REAL NOT NULL,
	stochastic     INTEGER NOT NULL,
	v              REAL NOT NULL,
	e              REAL NOT NULL,
	reason         TEXT,
	PRIMARY KEY (run_id, seq),
	FOREIGN KEY (run_id) REFERENCES runs(run_id)
);

CREATE TABLE IF NOT EXISTS rupture_log (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id        TEXT NOT NULL,
	agent         TEXT NOT NULL,
	t             INTEGER NOT NULL,
	delta         REAL NOT NULL,
	theta         REAL NOT NULL,
	label         TEXT NOT NULL,
	reason        TEXT,
	created_at    TEXT NOT NULL,
	FOREIGN KEY (run_id) REFERENCES runs(run_id)
);
`

// #endregion schema

// #region store-struct
// Store manages stored runs in SQLite.
type Store struct {
	db *sql.DB
}

// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// #endregion constructor

// #region close
// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB.
func (s *Store) DB() *sql.DB {
	return s.db
}

// #endregion close

// #region save-run
// SaveRun stores run, its records and its rupture log in one transaction.
// An empty run.ID is replaced by a new UUID; a zero CreatedAt by now.
func (s *Store) SaveRun(run Run, records []state.StepRecord) (Run, error) {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	run.Ruptures = 0
	for _, rec := range records {
		if rec.Ruptured {
			run.Ruptures++
		}
	}

	tx, err := s.db.Begin()
	if err != nil {
		return Run{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO runs (run_id, name, seed, agents, steps, ruptures, config_json, summary_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, nullIfEmpty(run.Name), int64(run.Seed), run.Agents, run.Steps, run.Ruptures,
		nullIfEmpty(run.ConfigJSON), nullIfEmpty(run.SummaryJSON),
		run.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return Run{}, fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.Prepare(
		`INSERT INTO step_records (run_id, seq, t, agent, r, prior, delta, theta, ruptured,
		 collapse_label, margin, probability, stochastic, v, e, reason)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return Run{}, fmt.Errorf("prepare records: %w", err)
	}
	defer stmt.Close()

	for i, rec := range records {
		_, err := stmt.Exec(
			run.ID, i, rec.T, rec.Agent, rec.R, rec.Prior, rec.Delta, rec.Theta, rec.Ruptured,
			nullIfEmpty(rec.CollapseLabel), rec.Margin, rec.Probability, rec.Stochastic, rec.V, rec.E,
			nullIfEmpty(rec.Reason),
		)
		if err != nil {
			return Run{}, fmt.Errorf("insert record %d: %w", i, err)
		}
	}

	for _, rec := range records {
		if !rec.Ruptured {
			continue
		}
		err := logging.LogRupture(tx, logging.RuptureEntry{
			RunID:     run.ID,
			Agent:     rec.Agent,
			T:         rec.T,
			Delta:     rec.Delta,
			Theta:     rec.Theta,
			Label:     rec.CollapseLabel,
			Reason:    rec.Reason,
			CreatedAt: run.CreatedAt,
		})
		if err != nil {
			return Run{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("commit: %w", err)
	}
	return run, nil
}

// #endregion save-run

// #region get-run
// GetRun retrieves a run by ID.
func (s *Store) GetRun(id string) (Run, error) {
	row := s.db.QueryRow(
		`SELECT run_id, name, seed, agents, steps, ruptures, config_json, summary_json, created_at
		 FROM runs WHERE run_id = ?`, id,
	)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("get run %s: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return Run{}, fmt.Errorf("get run %s: %w", id, err)
	}
	return run, nil
}

// #endregion get-run

// #region list-runs
// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(limit int) ([]Run, error) {
	rows, err := s.db.Query(
		`SELECT run_id, name, seed, agents, steps, ruptures, config_json, summary_json, created_at
		 FROM runs ORDER BY created_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// #endregion list-runs

// #region load-records
// LoadRecords returns the step records of a run in their original order.
func (s *Store) LoadRecords(runID string) ([]state.StepRecord, error) {
	if _, err := s.GetRun(runID); err != nil {
		return nil, err
	}
	rows, err := s.db.Query(
		`SELECT t, agent, r, prior, delta, theta, ruptured, collapse_label, margin, probability, stochastic, v, e, reason
		 FROM step_records WHERE run_id = ? ORDER BY seq`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}
	defer rows.Close()

	var records []state.StepRecord
	for rows.Next() {
		var rec state.StepRecord
		var label, reason sql.NullString
		if err := rows.Scan(&rec.T, &rec.Agent, &rec.R, &rec.Prior, &rec.Delta, &rec.Theta, &rec.Ruptured,
			&label, &rec.Margin, &rec.Probability, &rec.Stochastic, &rec.V, &rec.E, &reason); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		rec.CollapseLabel = label.String
		rec.Reason = reason.String
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Ruptures returns the rupture log of a run in step order.
func (s *Store) Ruptures(runID string) ([]logging.RuptureEntry, error) {
	rows, err := s.db.Query(
		`SELECT run_id, agent, t, delta, theta, label, reason, created_at
		 FROM rupture_log WHERE run_id = ? ORDER BY id`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("list ruptures: %w", err)
	}
	defer rows.Close()

	var entries []logging.RuptureEntry
	for rows.Next() {
		var e logging.RuptureEntry
		var reason sql.NullString
		var created string
		if err := rows.Scan(&e.RunID, &e.Agent, &e.T, &e.Delta, &e.Theta, &e.Label, &reason, &created); err != nil {
			return nil, fmt.Errorf("scan rupture: %w", err)
		}
		e.Reason = reason.String
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// #endregion load-records

// #region helpers
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var run Run
	var name, configJSON, summaryJSON sql.NullString
	var seed int64
	var created string
	if err := row.Scan(&run.ID, &name, &seed, &run.Agents, &run.Steps, &run.Ruptures,
		&configJSON, &summaryJSON, &created); err != nil {
		return Run{}, err
	}
	run.Name = name.String
	run.Seed = uint64(seed)
	run.ConfigJSON = configJSON.String
	run.SummaryJSON = summaryJSON.String
	run.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	return run, nil
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers
