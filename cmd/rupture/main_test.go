package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danielpatrickdp/rupture-state/internal/replay"
)

const goldenYAML = `name: golden
steps: 3
signals: [1.0, 1.0, 1.0]
params:
  k: 0.3
  theta0: 0.5
  theta_rate: 0.1
  memory_rate: 0.1
agents:
  - name: a
    realign: linear
    threshold: linear_growth
    rupture: threshold
    collapse: reset
`

const peersYAML = `name: peers
steps: 30
signal:
  mode: shock
  noise: 0.05
  shock_magnitude: 1.5
agents:
  - name: cautious
    realign: fatigue
    threshold: peer_coupled
    rupture: consensus
    collapse: soft_decay
  - name: volatile
    seed: 11
    realign: bounded
    threshold: stochastic
    rupture: hybrid
    collapse: randomized
`

// isolateEnv clears process configuration so tests do not pick up a real
// database or log settings.
func isolateEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"RUPTURE_DB_PATH", "RUPTURE_LOG_LEVEL", "RUPTURE_LOG_FORMAT",
		"RUPTURE_TRACE_EXPORTER", "RUPTURE_WORKERS",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestVersionJSON(t *testing.T) {
	isolateEnv(t)
	out, err := execute(t, "version", "--json")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	var got map[string]string
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got["version"] != version {
		t.Fatalf("expected version %s, got %v", version, got)
	}
}

func TestSimulateGolden(t *testing.T) {
	isolateEnv(t)
	path := writeFile(t, t.TempDir(), "golden.yaml", goldenYAML)

	out, err := execute(t, "simulate", path, "--json")
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	var got runOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if got.Summary.Ruptures != 3 || got.Summary.FirstRupture != 0 {
		t.Fatalf("unexpected summary: %+v", got.Summary)
	}
	if got.Summary.Collapses["reset"] != 3 {
		t.Fatalf("expected 3 resets, got %v", got.Summary.Collapses)
	}
	if got.Mode != "explicit" {
		t.Fatalf("expected explicit signal mode, got %q", got.Mode)
	}
	if got.Topology.Volatility != "volatile" {
		t.Fatalf("expected volatile field, got %q", got.Topology.Volatility)
	}
}

func TestSimulateExportCSV(t *testing.T) {
	isolateEnv(t)
	path := writeFile(t, t.TempDir(), "golden.yaml", goldenYAML)

	out, err := execute(t, "simulate", path, "--export", "csv")
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header and 3 rows, got %d lines:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "t,agent,r") {
		t.Fatalf("unexpected header %q", lines[0])
	}
}

func TestSimulateMetrics(t *testing.T) {
	isolateEnv(t)
	path := writeFile(t, t.TempDir(), "golden.yaml", goldenYAML)

	out, err := execute(t, "simulate", path, "--metrics")
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	if !strings.Contains(out, `rupture_ruptures_total{agent="a",label="reset"} 3`) {
		t.Fatalf("metrics missing rupture counter:\n%s", out)
	}
}

func TestSaveInspectExportReplay(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	scPath := writeFile(t, dir, "peers.yaml", peersYAML)
	dbPath := filepath.Join(dir, "runs.db")
	fixturePath := filepath.Join(dir, "fixture.json")

	out, err := execute(t, "simulate", scPath, "--seed", "7", "--save", "--db", dbPath, "--json")
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	var sim runOutput
	if err := json.Unmarshal([]byte(out), &sim); err != nil {
		t.Fatalf("decode simulate: %v", err)
	}
	if sim.RunID == "" {
		t.Fatal("expected a run id")
	}

	out, err = execute(t, "inspect", "--db", dbPath, "--json")
	if err != nil {
		t.Fatalf("inspect list: %v", err)
	}
	var rows []listRow
	if err := json.Unmarshal([]byte(out), &rows); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(rows) != 1 || rows[0].RunID != sim.RunID || rows[0].Seed != 7 || rows[0].Agents != 2 {
		t.Fatalf("unexpected runs: %+v", rows)
	}

	out, err = execute(t, "inspect", sim.RunID, "--db", dbPath, "--agent", "volatile", "--json")
	if err != nil {
		t.Fatalf("inspect detail: %v", err)
	}
	var detail detailOutput
	if err := json.Unmarshal([]byte(out), &detail); err != nil {
		t.Fatalf("decode detail: %v", err)
	}
	if len(detail.Records) != 30 {
		t.Fatalf("expected 30 records for one agent, got %d", len(detail.Records))
	}
	for _, rec := range detail.Records {
		if rec.Agent != "volatile" {
			t.Fatalf("agent filter leaked %q", rec.Agent)
		}
	}

	if _, err := execute(t, "fixture-export", "--db", dbPath, "--out", fixturePath); err != nil {
		t.Fatalf("fixture-export: %v", err)
	}
	f, err := replay.LoadFixture(fixturePath)
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}
	if len(f.Expected) != 60 {
		t.Fatalf("expected 60 records in fixture, got %d", len(f.Expected))
	}

	out, err = execute(t, "replay", fixturePath)
	if err != nil {
		t.Fatalf("replay: %v\n%s", err, out)
	}
	if !strings.Contains(out, "All records match.") {
		t.Fatalf("unexpected replay output:\n%s", out)
	}
}

func TestReplayMismatch(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	fixture := `{
  "description": "wrong expectation",
  "scenario": {
    "name": "golden",
    "steps": 1,
    "signals": [1],
    "signal": {"mode": "constant"},
    "params": {"k": 0.3, "theta0": 0.5, "theta_rate": 0.1, "memory_rate": 0.1},
    "agents": [{"name": "a", "realign": "linear", "threshold": "linear_growth", "rupture": "threshold", "collapse": "reset"}]
  },
  "expected": [{"t": 0, "agent": "a", "r": 1, "delta": 1, "theta": 0.5, "ruptured": false, "margin": 0.5, "v": 0.3, "e": 0.1}]
}`
	path := writeFile(t, dir, "bad.json", fixture)
	out, err := execute(t, "replay", path)
	if err == nil {
		t.Fatalf("expected replay failure, got:\n%s", out)
	}
	if !strings.Contains(out, "MISMATCH") {
		t.Fatalf("expected mismatch lines:\n%s", out)
	}
}

func TestSweep(t *testing.T) {
	isolateEnv(t)
	path := writeFile(t, t.TempDir(), "peers.yaml", peersYAML)

	out, err := execute(t, "sweep", path, "--seeds", "4", "--start", "10", "--workers", "2", "--json")
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	var got sweepOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Seeds != 4 || len(got.Rows) != 4 {
		t.Fatalf("unexpected sweep: %+v", got)
	}
	for i, r := range got.Rows {
		if r.Seed != uint64(10+i) {
			t.Fatalf("row %d has seed %d", i, r.Seed)
		}
	}

	again, err := execute(t, "sweep", path, "--seeds", "4", "--start", "10", "--workers", "4", "--json")
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if again != out {
		t.Fatal("sweep output depends on worker count")
	}

	if _, err := execute(t, "sweep", path, "--seeds", "0"); err == nil {
		t.Fatal("expected error for zero seeds")
	}
}

func TestDescribe(t *testing.T) {
	isolateEnv(t)
	out, err := execute(t, "describe", "rupture")
	if err != nil {
		t.Fatalf("describe: %v", err)
	}
	if !strings.Contains(out, "hybrid") || !strings.Contains(out, "consensus") {
		t.Fatalf("rupture catalogue incomplete:\n%s", out)
	}
	if _, err := execute(t, "describe", "gravity"); err == nil {
		t.Fatal("expected error for unknown role")
	}

	path := writeFile(t, t.TempDir(), "peers.yaml", peersYAML)
	out, err = execute(t, "describe", "--scenario", path, "--json")
	if err != nil {
		t.Fatalf("describe scenario: %v", err)
	}
	var got struct {
		Agents []struct {
			Name      string            `json:"name"`
			Operators map[string]string `json:"operators"`
		} `json:"agents"`
		Steps int `json:"steps"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got.Agents) != 2 || got.Agents[1].Operators["rupture"] != "hybrid" || got.Steps != 30 {
		t.Fatalf("unexpected description: %+v", got)
	}
}

func TestInspectRequiresDB(t *testing.T) {
	isolateEnv(t)
	if _, err := execute(t, "inspect"); err == nil {
		t.Fatal("expected error without a database")
	}
}
