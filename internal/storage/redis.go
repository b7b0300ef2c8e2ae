// Package storage implements storage.Storage on Redis, with character
// sheets read from the data directory.
package storage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/branch-engine/pkg/storage"
)

// DefaultTTL applies to game state and branches unless WithTTL is used.
const DefaultTTL = time.Hour

// RedisStorage implements the Storage interface using Redis for game state
// and branches, and the filesystem for PC sheets
type RedisStorage struct {
	client  *redis.Client
	logger  *slog.Logger
	dataDir string
	ttl     time.Duration
}

// Ensure RedisStorage implements Storage interface
var _ storage.Storage = (*RedisStorage)(nil)

// Options parses a redis:// URL, or treats a bare host:port as an address.
func Options(redisURL string) (*redis.Options, error) {
	if strings.Contains(redisURL, "://") {
		opt, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse redis URL: %w", err)
		}
		return opt, nil
	}
	return &redis.Options{Addr: redisURL}, nil
}

// NewRedisStorage creates a new Redis storage instance
func NewRedisStorage(redisURL string, dataDir string, logger *slog.Logger) (*RedisStorage, error) {
	opt, err := Options(redisURL)
	if err != nil {
		return nil, err
	}
	if dataDir == "" {
		dataDir = "./data"
	}
	return &RedisStorage{
		client:  redis.NewClient(opt),
		logger:  logger,
		dataDir: dataDir,
		ttl:     DefaultTTL,
	}, nil
}

// WithTTL sets the expiry of saved game states and branches.
// Returns the RedisStorage for method chaining
func (r *RedisStorage) WithTTL(ttl time.Duration) *RedisStorage {
	if ttl > 0 {
		r.ttl = ttl
	}
	return r
}

// Client returns the underlying Redis client so other services can share
// the connection pool.
func (r *RedisStorage) Client() *redis.Client {
	return r.client
}

// Health and lifecycle methods

func (r *RedisStorage) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStorage) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	r.logger.Info("Redis connection closed")
	return nil
}

// WaitForConnection waits for Redis to become available (used during startup)
func (r *RedisStorage) WaitForConnection(ctx context.Context) error {
	maxRetries := 30
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		if err := r.Ping(ctx); err != nil {
			r.logger.Debug("Redis not ready yet", "error", err, "attempt", i+1)

			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled while waiting for redis: %w", ctx.Err())
			case <-time.After(retryDelay):
				continue
			}
		}

		r.logger.Info("Redis connection established")
		return nil
	}

	return fmt.Errorf("redis did not become available after %d attempts", maxRetries)
}
