// Package main provides the maintenance worker for the material pipeline.
// It runs two cron jobs: a temp-directory cleanup and a materials gauge
// refresh, and exposes Prometheus metrics and health probes over HTTP.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"studyforge/internal/infra/db"
	"studyforge/internal/infra/storage"
	workerPkg "studyforge/internal/infra/worker"
	"studyforge/internal/observability/logging"
	"studyforge/internal/observability/metrics"
	"studyforge/internal/observability/slo"
	"studyforge/internal/resilience/circuitbreaker"
	"studyforge/internal/resilience/retry"

	"github.com/robfig/cron/v3"
)

func main() {
	logger := initLogger()

	workerMetrics := workerPkg.NewWorkerMetrics()

	cfg, err := workerPkg.LoadConfigFromEnv(logger, workerMetrics)
	if err != nil {
		// LoadConfigFromEnv is fail-open and never errors; keep the guard anyway
		logger.Error("failed to load worker configuration", slog.Any("error", err))
		os.Exit(1)
	}

	database, err := db.Open()
	if err != nil {
		logger.Error("failed to open database", slog.Any("error", err))
		os.Exit(1)
	}
	defer database.Close()

	if err := db.MigrateUp(database); err != nil {
		logger.Error("failed to run migrations", slog.Any("error", err))
		os.Exit(1)
	}

	breaker := circuitbreaker.NewDBCircuitBreaker(database)

	storageConfig := storage.LoadConfig()
	if err := storageConfig.Validate(); err != nil {
		logger.Error("invalid storage configuration", slog.Any("error", err))
		os.Exit(1)
	}

	store, err := storage.NewLocal(storageConfig, logger)
	if err != nil {
		logger.Error("failed to create storage", slog.Any("error", err))
		os.Exit(1)
	}
	if err := store.Initialize(); err != nil {
		logger.Error("failed to initialize storage", slog.Any("error", err))
		os.Exit(1)
	}

	ctx := context.Background()

	startMetricsServer(ctx, logger)

	healthServer := workerPkg.NewHealthServer(fmt.Sprintf(":%d", cfg.HealthPort), logger)
	go func() {
		if err := healthServer.Start(ctx); err != nil && err != http.ErrServerClosed {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()

	startCronWorker(logger, cfg, workerMetrics, store, breaker, healthServer)
}

// startCronWorker starts the cron scheduler and blocks forever.
func startCronWorker(logger *slog.Logger, cfg *workerPkg.WorkerConfig, workerMetrics *workerPkg.WorkerMetrics, store *storage.Local, breaker *circuitbreaker.DBCircuitBreaker, healthServer *workerPkg.HealthServer) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Error("failed to load timezone", slog.String("timezone", cfg.Timezone), slog.Any("error", err))
		os.Exit(1)
	}

	c := cron.New(cron.WithLocation(loc))

	if _, err := c.AddFunc(cfg.CleanupSchedule, func() {
		runCleanupJob(logger, cfg, workerMetrics, store)
	}); err != nil {
		logger.Error("failed to schedule cleanup job", slog.Any("error", err))
		os.Exit(1)
	}

	if _, err := c.AddFunc(cfg.RefreshSchedule, func() {
		runRefreshJob(logger, cfg, workerMetrics, breaker)
	}); err != nil {
		logger.Error("failed to schedule refresh job", slog.Any("error", err))
		os.Exit(1)
	}

	c.Start()
	healthServer.SetReady(true)

	logger.Info("maintenance worker started",
		slog.String("cleanup_schedule", cfg.CleanupSchedule),
		slog.String("refresh_schedule", cfg.RefreshSchedule),
		slog.String("timezone", cfg.Timezone))

	select {}
}

// runCleanupJob clears the storage temp directory.
func runCleanupJob(logger *slog.Logger, cfg *workerPkg.WorkerConfig, workerMetrics *workerPkg.WorkerMetrics, store *storage.Local) {
	start := time.Now()

	logger.Info("cleanup job starting", slog.String("temp_dir", store.TempDir()))

	store.CleanupTemp()

	duration := time.Since(start)
	workerMetrics.RecordJobRun("cleanup", "success")
	workerMetrics.RecordJobDuration("cleanup", duration.Seconds())
	workerMetrics.RecordLastSuccess("cleanup")

	logger.Info("cleanup job finished", slog.Duration("duration", duration))
}

// runRefreshJob refreshes the materials_total gauge and the processing
// success SLO ratio from the database. Queries go through the circuit
// breaker so a struggling database is probed instead of hammered.
func runRefreshJob(logger *slog.Logger, cfg *workerPkg.WorkerConfig, workerMetrics *workerPkg.WorkerMetrics, breaker *circuitbreaker.DBCircuitBreaker) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.JobTimeout)
	defer cancel()

	var counts map[string]int
	err := retry.WithBackoff(ctx, retry.DBConfig(), func() error {
		var queryErr error
		counts, queryErr = countByStatus(ctx, breaker)
		return queryErr
	})
	duration := time.Since(start)

	if err != nil {
		workerMetrics.RecordJobRun("refresh", "failure")
		workerMetrics.RecordJobDuration("refresh", duration.Seconds())
		logger.Error("refresh job failed",
			slog.Any("error", err),
			slog.Bool("breaker_open", breaker.IsOpen()))
		return
	}

	metrics.RecordOperationDuration("count_by_status", duration)

	stats := breaker.DB().Stats()
	metrics.DBConnectionsActive.Set(float64(stats.InUse))
	metrics.DBConnectionsIdle.Set(float64(stats.Idle))

	total := 0
	for _, count := range counts {
		total += count
	}
	metrics.UpdateMaterialsTotal(total)

	// Terminal states only: in-flight materials say nothing about success
	completed := counts["completed"]
	failed := counts["error"]
	if completed+failed > 0 {
		slo.UpdateProcessingSuccess(float64(completed) / float64(completed+failed))
	}

	workerMetrics.RecordJobRun("refresh", "success")
	workerMetrics.RecordJobDuration("refresh", duration.Seconds())
	workerMetrics.RecordLastSuccess("refresh")

	logger.Info("refresh job finished",
		slog.Int("materials_total", total),
		slog.Int("completed", completed),
		slog.Int("failed", failed),
		slog.Duration("duration", duration))
}

// countByStatus returns material counts keyed by lifecycle status.
func countByStatus(ctx context.Context, breaker *circuitbreaker.DBCircuitBreaker) (map[string]int, error) {
	rows, err := breaker.QueryContext(ctx, "SELECT status, COUNT(*) FROM materials GROUP BY status")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

// initLogger initializes the worker's structured logger and installs it
// as the process default.
func initLogger() *slog.Logger {
	logger := logging.NewLogger()
	slog.SetDefault(logger)
	return logger
}
