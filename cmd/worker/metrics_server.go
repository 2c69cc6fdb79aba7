package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"studyforge/internal/pkg/config"
)

// startMetricsServer serves GET /metrics for Prometheus scrapes on
// METRICS_PORT (default 9090) and wires graceful shutdown to ctx. Liveness
// and readiness probes live on the separate health server so a slow scrape
// can never fail a probe.
func startMetricsServer(ctx context.Context, logger *slog.Logger) *http.Server {
	portResult := config.LoadEnvInt("METRICS_PORT", 9090, func(v int) error {
		return config.ValidateIntRange(v, 1, 65535)
	})
	for _, warning := range portResult.Warnings {
		logger.Warn("metrics port fallback", slog.String("warning", warning))
	}
	port := portResult.Value.(int)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("metrics server starting", slog.Int("port", port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server error", slog.Any("error", err))
		}
	}()

	go func() {
		<-ctx.Done()
		logger.Info("metrics server shutdown initiated")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("metrics server shutdown error", slog.Any("error", err))
		}
	}()

	return server
}
