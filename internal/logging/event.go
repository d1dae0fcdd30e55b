package logging

import (
	"database/sql"
	"fmt"
	"time"
)

// #region log-rupture
// Execer is satisfied by *sql.DB and *sql.Tx.
type Execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

// LogRupture writes a rupture entry to the rupture_log table. Pass a
// *sql.Tx to make the entry part of a larger write.
func LogRupture(db Execer, entry RuptureEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := db.Exec(
		`INSERT INTO rupture_log (run_id, agent, t, delta, theta, label, reason, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.RunID,
		entry.Agent,
		entry.T,
		entry.Delta,
		entry.Theta,
		entry.Label,
		nullIfEmpty(entry.Reason),
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log rupture: %w", err)
	}
	return nil
}

// #endregion log-rupture

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers
