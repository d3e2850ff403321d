package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("FORM_NOTICE_TTL", "")
	t.Setenv("STOCK_KEY_MAX_ATTEMPTS", "")

	cfg := Load()
	if cfg.Port != "3000" {
		t.Fatalf("expected default port 3000, got %s", cfg.Port)
	}
	if cfg.NoticeTTL != 4*time.Second {
		t.Fatalf("expected 4s notice ttl, got %s", cfg.NoticeTTL)
	}
	if cfg.KeyMaxAttempts != 5 {
		t.Fatalf("expected 5 attempts, got %d", cfg.KeyMaxAttempts)
	}
	if !strings.Contains(cfg.DatabaseURL, "dbname=pos_inventory") {
		t.Fatalf("unexpected dsn: %s", cfg.DatabaseURL)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/x")
	t.Setenv("FORM_NOTICE_TTL", "250ms")
	t.Setenv("SESSION_IDLE_TTL", "not-a-duration")
	t.Setenv("STOCK_KEY_MAX_ATTEMPTS", "2")

	cfg := Load()
	if cfg.DatabaseURL != "postgres://u:p@db:5432/x" {
		t.Fatalf("DATABASE_URL not honoured: %s", cfg.DatabaseURL)
	}
	if cfg.NoticeTTL != 250*time.Millisecond {
		t.Fatalf("expected 250ms, got %s", cfg.NoticeTTL)
	}
	if cfg.SessionIdleTTL != 30*time.Minute {
		t.Fatalf("invalid duration should fall back to default, got %s", cfg.SessionIdleTTL)
	}
	if cfg.KeyMaxAttempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", cfg.KeyMaxAttempts)
	}
}
