package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

type AppConfig struct {
	HTTPAddr string

	RedisURL    string
	DatabaseURL string

	PlayerName   string
	ProfileStore string

	OpponentCatalogFile string
	ModeCatalogFile     string
	MessagesDir         string

	SearchTimeMin     time.Duration
	SearchTimeMax     time.Duration
	MaxRatingDiff     int
	RatingKFactor     int
	ClockTick         time.Duration
	DefaultDifficulty string

	WebhookURL     string
	WebhookTimeout time.Duration
}

func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		HTTPAddr:          ":8080",
		PlayerName:        "player",
		ProfileStore:      "auto",
		SearchTimeMin:     2 * time.Second,
		SearchTimeMax:     8 * time.Second,
		MaxRatingDiff:     150,
		RatingKFactor:     32,
		ClockTick:         100 * time.Millisecond,
		DefaultDifficulty: "intermediate",
		WebhookTimeout:    5 * time.Second,
	}

	if v := strings.TrimSpace(os.Getenv("HTTP_ADDR")); v != "" {
		cfg.HTTPAddr = v
	}
	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))
	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))

	if v := strings.TrimSpace(os.Getenv("PLAYER_NAME")); v != "" {
		cfg.PlayerName = v
	}
	if v := strings.TrimSpace(os.Getenv("PROFILE_STORE")); v != "" {
		cfg.ProfileStore = strings.ToLower(v)
	}

	cfg.OpponentCatalogFile = strings.TrimSpace(os.Getenv("OPPONENT_CATALOG_FILE"))
	cfg.ModeCatalogFile = strings.TrimSpace(os.Getenv("MODE_CATALOG_FILE"))
	cfg.MessagesDir = strings.TrimSpace(os.Getenv("MESSAGES_DIR"))

	if d, ok := millis("SEARCH_TIME_MIN_MS"); ok {
		cfg.SearchTimeMin = d
	}
	if d, ok := millis("SEARCH_TIME_MAX_MS"); ok {
		cfg.SearchTimeMax = d
	}
	if v := strings.TrimSpace(os.Getenv("MAX_RATING_DIFF")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.MaxRatingDiff = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("RATING_K_FACTOR")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.RatingKFactor = n
		}
	}
	if d, ok := millis("CLOCK_TICK_MS"); ok && d > 0 {
		cfg.ClockTick = d
	}
	if v := strings.TrimSpace(os.Getenv("DEFAULT_DIFFICULTY")); v != "" {
		cfg.DefaultDifficulty = strings.ToLower(v)
	}

	cfg.WebhookURL = strings.TrimSpace(os.Getenv("WEBHOOK_URL"))
	if d, ok := millis("WEBHOOK_TIMEOUT_MS"); ok && d > 0 {
		cfg.WebhookTimeout = d
	}

	if cfg.SearchTimeMax < cfg.SearchTimeMin {
		return nil, errors.New("SEARCH_TIME_MAX_MS must not be below SEARCH_TIME_MIN_MS")
	}
	switch cfg.ProfileStore {
	case "auto", "memory", "redis", "postgres":
	default:
		return nil, errors.New("PROFILE_STORE must be one of auto, memory, redis, postgres")
	}
	if cfg.ProfileStore == "redis" && cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL is required when PROFILE_STORE=redis")
	}
	if cfg.ProfileStore == "postgres" && cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required when PROFILE_STORE=postgres")
	}

	return cfg, nil
}

// millis reads a non-negative integer millisecond value.
func millis(key string) (time.Duration, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, false
	}
	return time.Duration(n) * time.Millisecond, true
}
