package tracestore

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/danielpatrickdp/rupture-state/internal/state"
)

func tempDB(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := NewStore(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleRecords() []state.StepRecord {
	return []state.StepRecord{
		{T: 0, Agent: "a", R: 1, Delta: 1, Theta: 0.5, Ruptured: true, CollapseLabel: "reset", Margin: 0.5,
			Reason: "delta 1.0000 exceeds theta 0.5000"},
		{T: 0, Agent: "b", R: 1, Prior: 0.2, Delta: 0.8, Theta: 1.5, Margin: -0.7, V: 0.44, E: 0.08},
		{T: 1, Agent: "a", R: 0.5, Delta: 0.5, Theta: 0.4, Ruptured: true, CollapseLabel: "randomized",
			Margin: 0.1, Probability: 0.62, Stochastic: true, V: -0.13, Reason: "p=0.6200 u=0.4100"},
	}
}

func TestSaveAndGetRun(t *testing.T) {
	s := tempDB(t)

	run, err := s.SaveRun(Run{Name: "golden", Seed: 7, Agents: 2, Steps: 2, ConfigJSON: `{"k":0.3}`}, sampleRecords())
	if err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	if run.ID == "" {
		t.Fatal("expected generated run ID")
	}
	if run.Ruptures != 2 {
		t.Fatalf("expected 2 ruptures, got %d", run.Ruptures)
	}

	got, err := s.GetRun(run.ID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got.Name != "golden" || got.Seed != 7 || got.Agents != 2 || got.ConfigJSON != `{"k":0.3}` {
		t.Fatalf("unexpected run %+v", got)
	}
	if got.SummaryJSON != "" {
		t.Fatalf("expected empty summary, got %q", got.SummaryJSON)
	}
}

func TestLoadRecordsRoundTrip(t *testing.T) {
	s := tempDB(t)
	run, err := s.SaveRun(Run{Agents: 2, Steps: 2}, sampleRecords())
	if err != nil {
		t.Fatalf("SaveRun: %v", err)
	}

	got, err := s.LoadRecords(run.ID)
	if err != nil {
		t.Fatalf("LoadRecords: %v", err)
	}
	want := sampleRecords()
	if len(got) != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("record %d mismatch:\n got %+v\nwant %+v", i, got[i], want[i])
		}
	}
}

func TestRupturesLogged(t *testing.T) {
	s := tempDB(t)
	run, err := s.SaveRun(Run{Agents: 2, Steps: 2}, sampleRecords())
	if err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	entries, err := s.Ruptures(run.ID)
	if err != nil {
		t.Fatalf("Ruptures: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Label != "reset" || entries[1].Label != "randomized" || entries[1].T != 1 {
		t.Fatalf("unexpected entries %+v", entries)
	}
	if entries[0].Reason != "delta 1.0000 exceeds theta 0.5000" {
		t.Fatalf("expected policy reason in rupture log, got %q", entries[0].Reason)
	}
}

func TestSaveRunRollsBackWhenRuptureLogFails(t *testing.T) {
	s := tempDB(t)
	if _, err := s.DB().Exec("DROP TABLE rupture_log"); err != nil {
		t.Fatalf("drop rupture_log: %v", err)
	}

	if _, err := s.SaveRun(Run{ID: "partial", Agents: 2, Steps: 2}, sampleRecords()); err == nil {
		t.Fatal("expected error when rupture log is unwritable")
	}
	if _, err := s.GetRun("partial"); !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("failed save must leave no run behind, got %v", err)
	}
	var n int
	if err := s.DB().QueryRow("SELECT COUNT(*) FROM step_records WHERE run_id = ?", "partial").Scan(&n); err != nil {
		t.Fatalf("count records: %v", err)
	}
	if n != 0 {
		t.Fatalf("failed save must leave no records behind, got %d", n)
	}
}

func TestListRuns(t *testing.T) {
	s := tempDB(t)
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	if _, err := s.SaveRun(Run{ID: "older", CreatedAt: base}, nil); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	if _, err := s.SaveRun(Run{ID: "newer", CreatedAt: base.Add(time.Hour)}, nil); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}

	runs, err := s.ListRuns(10)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "newer" || runs[1].ID != "older" {
		t.Fatalf("unexpected order %+v", runs)
	}
	if !runs[1].CreatedAt.Equal(base) {
		t.Fatalf("created_at did not round-trip: %v", runs[1].CreatedAt)
	}

	runs, err = s.ListRuns(1)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected limit to apply, got %d", len(runs))
	}
}

func TestGetRunNotFound(t *testing.T) {
	s := tempDB(t)
	if _, err := s.GetRun("nonexistent-id"); !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound, got %v", err)
	}
	if _, err := s.LoadRecords("nonexistent-id"); !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound, got %v", err)
	}
}

func TestSaveRunDuplicateID(t *testing.T) {
	s := tempDB(t)
	if _, err := s.SaveRun(Run{ID: "dup"}, sampleRecords()); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	if _, err := s.SaveRun(Run{ID: "dup"}, sampleRecords()); err == nil {
		t.Fatal("expected error for duplicate run ID")
	}
	recs, err := s.LoadRecords("dup")
	if err != nil {
		t.Fatalf("LoadRecords: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("failed save must not add records, got %d", len(recs))
	}
}

func TestNewStoreInvalidPath(t *testing.T) {
	_, err := NewStore(filepath.Join(string(os.PathSeparator), "nonexistent", "deep", "path", "test.db"))
	if err == nil {
		t.Fatal("expected error for invalid path")
	}
}

func TestNewStoreNotADatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.db")
	junk := make([]byte, 4096)
	for i := range junk {
		junk[i] = 'x'
	}
	if err := os.WriteFile(path, junk, 0o600); err != nil {
		t.Fatalf("write garbage: %v", err)
	}

	s, err := NewStore(path)
	if err == nil {
		s.Close()
		t.Fatal("expected error for a file that is not a database")
	}
	if s != nil {
		t.Fatalf("expected nil store on error, got %+v", s)
	}
	if err := os.Remove(path); err != nil {
		t.Fatalf("remove after failed open: %v", err)
	}
}

func TestDBAccessor(t *testing.T) {
	s := tempDB(t)
	if s.DB() == nil {
		t.Fatal("expected non-nil *sql.DB")
	}
}

func TestSaveRunOnClosedDB(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	s.Close()

	if _, err := s.SaveRun(Run{}, sampleRecords()); err == nil {
		t.Fatal("expected error on closed DB")
	}
}
