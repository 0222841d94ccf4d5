package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type AppConfig struct {
	EnginesFile string

	RedisURL    string
	DatabaseURL string

	WatchAddr string

	PlyCap    int
	MoveDelay time.Duration
	LiveTTL   time.Duration
}

func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		WatchAddr: ":8807",
		PlyCap:    512,
		LiveTTL:   time.Hour,
	}

	cfg.EnginesFile = strings.TrimSpace(os.Getenv("ARENA_ENGINES_FILE"))
	cfg.RedisURL = strings.TrimSpace(os.Getenv("ARENA_REDIS_URL"))
	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("ARENA_DATABASE_URL"))

	if v := strings.TrimSpace(os.Getenv("ARENA_WATCH_ADDR")); v != "" {
		cfg.WatchAddr = v
	}
	if v := strings.TrimSpace(os.Getenv("ARENA_PLY_CAP")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("ARENA_PLY_CAP must be a positive integer, got %q", v)
		}
		cfg.PlyCap = n
	}
	if v := strings.TrimSpace(os.Getenv("ARENA_MOVE_DELAY")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			return nil, fmt.Errorf("ARENA_MOVE_DELAY must be a duration like 250ms, got %q", v)
		}
		cfg.MoveDelay = d
	}
	if v := strings.TrimSpace(os.Getenv("ARENA_LIVE_TTL")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("ARENA_LIVE_TTL must be a positive duration, got %q", v)
		}
		cfg.LiveTTL = d
	}

	return cfg, nil
}
