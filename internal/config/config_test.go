package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"HTTP_ADDR", "PROFILE_STORE", "SEARCH_TIME_MIN_MS", "SEARCH_TIME_MAX_MS", "REDIS_URL", "DATABASE_URL"} {
		t.Setenv(k, "")
	}
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":8080" || cfg.ProfileStore != "auto" || cfg.SearchTimeMin != 2*time.Second || cfg.SearchTimeMax != 8*time.Second {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.MaxRatingDiff != 150 || cfg.RatingKFactor != 32 || cfg.ClockTick != 100*time.Millisecond {
		t.Fatalf("unexpected numeric defaults: %+v", cfg)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PLAYER_NAME", " Ana ")
	t.Setenv("PROFILE_STORE", "Memory")
	t.Setenv("SEARCH_TIME_MIN_MS", "500")
	t.Setenv("SEARCH_TIME_MAX_MS", "900")
	t.Setenv("MAX_RATING_DIFF", "200")
	t.Setenv("CLOCK_TICK_MS", "not-a-number")
	t.Setenv("WEBHOOK_URL", "http://hook.local/x")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.PlayerName != "Ana" || cfg.ProfileStore != "memory" || cfg.SearchTimeMin != 500*time.Millisecond || cfg.SearchTimeMax != 900*time.Millisecond {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.MaxRatingDiff != 200 || cfg.ClockTick != 100*time.Millisecond || cfg.WebhookURL != "http://hook.local/x" {
		t.Fatalf("unexpected values: %+v", cfg)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Setenv("SEARCH_TIME_MIN_MS", "5000")
	t.Setenv("SEARCH_TIME_MAX_MS", "1000")
	if _, err := Load(); err == nil {
		t.Fatalf("expected window error")
	}
	t.Setenv("SEARCH_TIME_MAX_MS", "")
	t.Setenv("SEARCH_TIME_MIN_MS", "")
	t.Setenv("PROFILE_STORE", "redis")
	t.Setenv("REDIS_URL", "")
	if _, err := Load(); err == nil {
		t.Fatalf("expected missing REDIS_URL error")
	}
	t.Setenv("PROFILE_STORE", "sqlite")
	if _, err := Load(); err == nil {
		t.Fatalf("expected unknown store error")
	}
}
