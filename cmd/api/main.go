package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jwebster45206/branch-engine/internal/config"
	"github.com/jwebster45206/branch-engine/internal/handlers"
	"github.com/jwebster45206/branch-engine/internal/logger"
	"github.com/jwebster45206/branch-engine/internal/middleware"
	"github.com/jwebster45206/branch-engine/internal/services/events"
	"github.com/jwebster45206/branch-engine/internal/services/queue"
	"github.com/jwebster45206/branch-engine/internal/storage"
	"github.com/jwebster45206/branch-engine/pkg/collapse"
	"github.com/jwebster45206/branch-engine/pkg/dice"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting Branch Engine API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"branch_ttl", cfg.BranchTTL,
		"data_dir", cfg.DataDir)

	redisStorage, err := storage.NewRedisStorage(cfg.RedisURL, cfg.DataDir, log)
	if err != nil {
		logger.WithError(log, err).Error("Failed to create storage")
		os.Exit(1)
	}
	redisStorage.WithTTL(cfg.BranchTTL)

	storageCtx, storageCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer storageCancel()
	if err := redisStorage.WaitForConnection(storageCtx); err != nil {
		logger.WithError(log, err).Error("Failed to connect to storage")
		os.Exit(1)
	}
	log.Info("Storage connection established successfully")

	// The audit log shares the storage connection pool.
	audit := queue.NewAuditLog(queue.NewClientFrom(redisStorage.Client(), log), log).WithLimit(cfg.AuditLimit)
	broadcaster := events.NewBroadcaster(redisStorage.Client(), log)

	roller := dice.NewRoller(dice.NewLockedSource(dice.NewSource(cfg.DiceSeed)))

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collapse.RegisterMetrics(registry)
	metrics := collapse.NewMetrics()

	mux := http.NewServeMux()
	mux.Handle("/health", handlers.NewHealthHandler(redisStorage, log))
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	mux.Handle("/v1/roll", handlers.NewRollHandler(roller, log))
	mux.Handle("/v1/check", handlers.NewCheckHandler(roller, log))
	handlers.NewGameStateHandler(redisStorage, audit, log).Register(mux)
	handlers.NewBranchHandler(redisStorage, audit, roller, metrics, log).
		WithLockTTL(cfg.LockTTL).
		WithEvents(broadcaster).
		Register(mux)
	handlers.NewEventsHandler(broadcaster, log).Register(mux)

	handler := middleware.Logger(mux)
	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		// No WriteTimeout: the event stream holds connections open
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(log, err).Error("Server failed to start")
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	if err := redisStorage.Close(); err != nil {
		log.Error("Error closing storage connection", "error", err)
	}

	log.Info("Server exited")
}
