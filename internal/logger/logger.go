package logger

import (
	"io"
	"log/slog"
	"os"

	"github.com/jwebster45206/branch-engine/internal/config"
)

// ServiceName is attached to every record written by the configured logger.
const ServiceName = "branch-engine"

// Setup configures the global slog logger based on environment
func Setup(cfg *config.Config) *slog.Logger {
	logger := New(cfg, os.Stdout)
	slog.SetDefault(logger)
	return logger
}

// New builds the service logger writing to w. Production gets JSON records,
// everything else gets text. Records carry the service name and environment.
func New(cfg *config.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	if cfg.Environment == "production" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler).With("service", ServiceName, "env", cfg.Environment)
}

// WithRequestID adds request ID to logger context
func WithRequestID(logger *slog.Logger, requestID string) *slog.Logger {
	return logger.With("request_id", requestID)
}

// WithError adds error to logger context
func WithError(logger *slog.Logger, err error) *slog.Logger {
	return logger.With("error", err.Error())
}

