package config

import (
	"os"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/coldm_test")
	t.Setenv("CRON_SECRET", "cron-secret")
	t.Setenv("SESSION_SECRET", "session-secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Port)
	}
	if cfg.SendHour != 8 {
		t.Errorf("expected default send hour 8, got %d", cfg.SendHour)
	}
	if cfg.Mode != "all" {
		t.Errorf("expected default mode all, got %s", cfg.Mode)
	}
	if cfg.UnsubscribeSecret != "session-secret" {
		t.Errorf("expected unsubscribe secret to fall back to session secret, got %s", cfg.UnsubscribeSecret)
	}
	if cfg.IsProduction() {
		t.Error("default env should not be production")
	}
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "placeholder") // registers cleanup restoring the original
	os.Unsetenv("DATABASE_URL")
	t.Setenv("CRON_SECRET", "cron-secret")

	if _, err := Load(); err == nil {
		t.Error("expected error when DATABASE_URL is missing")
	}
}
