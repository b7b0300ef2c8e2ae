// Package queue keeps per-game Redis lists of collapse audit records.
package queue

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// Client wraps the Redis client for queue operations
type Client struct {
	rdb    *redis.Client
	logger *slog.Logger
}

// NewClient creates a new queue client
func NewClient(redisURL string, logger *slog.Logger) (*Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	rdb := redis.NewClient(opt)

	// Test connection
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("Connected to Redis for queue service", "url", redisURL)

	return &Client{
		rdb:    rdb,
		logger: logger,
	}, nil
}

// NewClientFrom wraps an existing connection pool. Close on the returned
// Client closes rdb.
func NewClientFrom(rdb *redis.Client, logger *slog.Logger) *Client {
	return &Client{rdb: rdb, logger: logger}
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}
