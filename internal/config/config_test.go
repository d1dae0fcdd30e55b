package config

import (
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LogLevel != "info" || cfg.LogFormat != "text" || cfg.TraceExporter != "none" || cfg.Workers != 4 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.DBPath != "" {
		t.Fatalf("expected empty db path, got %q", cfg.DBPath)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("RUPTURE_DB_PATH", "/tmp/runs.db")
	t.Setenv("RUPTURE_LOG_LEVEL", "debug")
	t.Setenv("RUPTURE_WORKERS", "8")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DBPath != "/tmp/runs.db" || cfg.LogLevel != "debug" || cfg.Workers != 8 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
}

func TestLoadError(t *testing.T) {
	t.Setenv("RUPTURE_WORKERS", "many")
	_, err := Load()
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}

func TestLoadRejectsZeroWorkers(t *testing.T) {
	t.Setenv("RUPTURE_WORKERS", "0")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for zero workers")
	}
}
