package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "8080" || cfg.Quiz.ProgressBackend != "file" || cfg.Quiz.PassThreshold != 0.8 {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.Quiz.ProgressKey != "quiz_progress" {
		t.Fatalf("unexpected progress key %q", cfg.Quiz.ProgressKey)
	}
	if cfg.Quiz.StudyKey != "study_progress" {
		t.Fatalf("unexpected study key %q", cfg.Quiz.StudyKey)
	}
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `env: production
server:
  port: "9090"
redis:
  addr: localhost:6379
quiz:
  catalog_path: data/catalog
  progress_backend: redis
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("QUIZ_QUIZ_PROGRESS_BACKEND", "postgres")
	t.Setenv("QUIZ_POSTGRES_URL", "postgres://quiz@localhost/quizdb")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Env != "production" || cfg.Server.Port != "9090" || cfg.Redis.Addr != "localhost:6379" {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.Quiz.CatalogPath != "data/catalog" {
		t.Fatalf("expected catalog path from file, got %q", cfg.Quiz.CatalogPath)
	}
	if cfg.Quiz.ProgressBackend != "postgres" || cfg.Postgres.URL == "" {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
}

func TestTTLDuration(t *testing.T) {
	if got := TTLDuration("", time.Minute); got != time.Minute {
		t.Fatalf("expected fallback, got %v", got)
	}
	if got := TTLDuration("garbage", time.Minute); got != time.Minute {
		t.Fatalf("expected fallback for bad input, got %v", got)
	}
	if got := TTLDuration("30s", time.Minute); got != 30*time.Second {
		t.Fatalf("expected 30s, got %v", got)
	}
}
