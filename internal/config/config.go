package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port        string     `envconfig:"PORT" default:"8080"`
	Environment string     `envconfig:"ENVIRONMENT" default:"development"`
	LogLevelRaw string     `envconfig:"LOG_LEVEL" default:"info"`
	LogLevel    slog.Level `ignored:"true"`

	RedisURL string `envconfig:"REDIS_URL" default:"localhost:6379"`
	DataDir  string `envconfig:"DATA_DIR" default:"./data"`

	// BranchTTL is how long prepared branches and game state live in Redis.
	BranchTTL time.Duration `envconfig:"BRANCH_TTL" default:"1h"`
	// LockTTL bounds a single collapse's hold on a game.
	LockTTL    time.Duration `envconfig:"COLLAPSE_LOCK_TTL" default:"30s"`
	AuditLimit int           `envconfig:"AUDIT_LIMIT" default:"500"`

	// DiceSeed fixes the dice source for reproducible sessions. Zero seeds
	// from the clock.
	DiceSeed int64 `envconfig:"DICE_SEED" default:"0"`
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	level, err := parseLogLevel(cfg.LogLevelRaw)
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = level

	if cfg.BranchTTL <= 0 {
		return nil, fmt.Errorf("BRANCH_TTL must be positive, got %s", cfg.BranchTTL)
	}
	if cfg.LockTTL <= 0 {
		return nil, fmt.Errorf("COLLAPSE_LOCK_TTL must be positive, got %s", cfg.LockTTL)
	}
	if cfg.AuditLimit <= 0 {
		return nil, fmt.Errorf("AUDIT_LIMIT must be positive, got %d", cfg.AuditLimit)
	}
	if cfg.DiceSeed == 0 {
		cfg.DiceSeed = time.Now().UnixNano()
	}

	return &cfg, nil
}

func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown LOG_LEVEL %q", level)
	}
}
