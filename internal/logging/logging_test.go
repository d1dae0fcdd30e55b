package logging

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/danielpatrickdp/rupture-state/internal/state"
)

// #region helpers
func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	_, err = db.Exec(`CREATE TABLE rupture_log (
		run_id     TEXT NOT NULL,
		agent      TEXT NOT NULL,
		t          INTEGER NOT NULL,
		delta      REAL NOT NULL,
		theta      REAL NOT NULL,
		label      TEXT NOT NULL,
		reason     TEXT,
		created_at TEXT NOT NULL
	)`)
	if err != nil {
		t.Fatalf("create table: %v", err)
	}
	return db
}

// #endregion helpers

// #region log-rupture-tests
func TestLogRupture_Success(t *testing.T) {
	db := setupDB(t)
	defer db.Close()

	entry := RuptureEntry{
		RunID:     "run-1",
		Agent:     "a",
		T:         4,
		Delta:     1.2,
		Theta:     0.5,
		Label:     "reset",
		Reason:    "delta exceeds theta",
		CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := LogRupture(db, entry); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var label string
	var step int
	if err := db.QueryRow("SELECT label, t FROM rupture_log").Scan(&label, &step); err != nil {
		t.Fatalf("query: %v", err)
	}
	if label != "reset" || step != 4 {
		t.Errorf("got label=%q t=%d", label, step)
	}
}

func TestLogRupture_EmptyReasonStoredAsNull(t *testing.T) {
	db := setupDB(t)
	defer db.Close()

	if err := LogRupture(db, RuptureEntry{RunID: "r", Agent: "a", Label: "reset"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var reason sql.NullString
	var created string
	if err := db.QueryRow("SELECT reason, created_at FROM rupture_log").Scan(&reason, &created); err != nil {
		t.Fatalf("query: %v", err)
	}
	if reason.Valid {
		t.Errorf("expected NULL reason, got %q", reason.String)
	}
	if created == "" {
		t.Error("expected created_at to be defaulted")
	}
}

func TestLogRupture_InsideTxRollsBack(t *testing.T) {
	db := setupDB(t)
	defer db.Close()
	db.SetMaxOpenConns(1)

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := LogRupture(tx, RuptureEntry{RunID: "r", Agent: "a", Label: "reset"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatalf("rollback: %v", err)
	}

	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM rupture_log").Scan(&n); err != nil {
		t.Fatalf("query: %v", err)
	}
	if n != 0 {
		t.Errorf("expected rolled back entry to be gone, got %d rows", n)
	}
}

func TestLogRupture_MissingTable(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()
	if err := LogRupture(db, RuptureEntry{RunID: "r"}); err == nil {
		t.Fatal("expected error without rupture_log table")
	}
}

// #endregion log-rupture-tests

// #region logger-tests
func TestNew_JSONIncludesStepAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, slog.LevelDebug, FormatJSON)
	rec := state.StepRecord{T: 2, Agent: "a", Delta: 1, Theta: 0.5, Ruptured: true, CollapseLabel: "reset",
		Reason: "delta 1.0000 exceeds theta 0.5000"}
	logger.LogAttrs(context.Background(), slog.LevelDebug, "rupture", Step(rec)...)

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("decode: %v (%s)", err, buf.String())
	}
	if line["collapse"] != "reset" || line["agent"] != "a" || line["reason"] != rec.Reason {
		t.Errorf("unexpected attrs: %v", line)
	}
	if _, ok := line["p"]; ok {
		t.Error("probability should be omitted for deterministic steps")
	}
}

func TestNew_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, slog.LevelWarn, FormatText)
	logger.Info("hidden")
	logger.Warn("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Errorf("unexpected output: %s", buf.String())
	}
}

func TestParseLevelAndFormat(t *testing.T) {
	if l, err := ParseLevel("DEBUG"); err != nil || l != slog.LevelDebug {
		t.Errorf("ParseLevel(DEBUG) = %v, %v", l, err)
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
	if f, err := ParseFormat("json"); err != nil || f != FormatJSON {
		t.Errorf("ParseFormat(json) = %v, %v", f, err)
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("expected error for unknown format")
	}
}

// #endregion logger-tests
