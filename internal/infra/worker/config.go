package worker

import (
	"fmt"
	"log/slog"
	"time"

	"studyforge/internal/pkg/config"
)

// WorkerConfig holds the configuration for the maintenance worker.
// It controls the cleanup and gauge-refresh schedules, the timezone the
// schedules are evaluated in, the per-job timeout, and the health port.
//
// Configuration sources:
//   - Environment variables (loaded via LoadConfigFromEnv)
//   - Default values (provided by DefaultConfig)
//
// All fields have defaults and validation rules so the worker can start
// safely even with invalid or missing configuration.
type WorkerConfig struct {
	// CleanupSchedule is the cron expression for the temp-directory cleanup job.
	// Format: "minute hour day month weekday"
	// Default: "0 3 * * *" (every day at 03:00)
	CleanupSchedule string

	// RefreshSchedule is the cron expression for the materials gauge refresh job.
	// Default: "*/15 * * * *" (every 15 minutes)
	RefreshSchedule string

	// Timezone is the IANA timezone name for cron scheduling.
	// Example: "UTC", "Asia/Tokyo", "America/New_York"
	// Default: "UTC"
	Timezone string

	// JobTimeout is the maximum duration for a single maintenance job.
	// Must be positive; range 1 minute to 1 hour.
	// Default: 10 minutes
	JobTimeout time.Duration

	// HealthPort is the port number for the health check HTTP server.
	// Range: 1024-65535 (avoid privileged ports)
	// Default: 9091
	HealthPort int
}

// DefaultConfig returns a WorkerConfig with production default values:
// nightly cleanup at a low-traffic hour, frequent gauge refresh, a timeout
// generous enough for large temp trees, and the common exporter port.
func DefaultConfig() WorkerConfig {
	return WorkerConfig{
		CleanupSchedule: "0 3 * * *",
		RefreshSchedule: "*/15 * * * *",
		Timezone:        "UTC",
		JobTimeout:      10 * time.Minute,
		HealthPort:      9091,
	}
}

// Validate checks if the configuration values are valid.
// If multiple fields are invalid, all errors are collected and returned together.
//
// Validation rules:
//   - CleanupSchedule, RefreshSchedule: valid cron expressions (robfig/cron parser)
//   - Timezone: valid IANA timezone name (time.LoadLocation)
//   - JobTimeout: positive (> 0)
//   - HealthPort: between 1024 and 65535
func (c *WorkerConfig) Validate() error {
	var errors []error

	if err := config.ValidateCronSchedule(c.CleanupSchedule); err != nil {
		errors = append(errors, fmt.Errorf("cleanup schedule: %w", err))
	}

	if err := config.ValidateCronSchedule(c.RefreshSchedule); err != nil {
		errors = append(errors, fmt.Errorf("refresh schedule: %w", err))
	}

	if err := config.ValidateTimezone(c.Timezone); err != nil {
		errors = append(errors, fmt.Errorf("timezone: %w", err))
	}

	if err := config.ValidatePositiveDuration(c.JobTimeout); err != nil {
		errors = append(errors, fmt.Errorf("job timeout: %w", err))
	}

	if err := config.ValidateIntRange(c.HealthPort, 1024, 65535); err != nil {
		errors = append(errors, fmt.Errorf("health port: %w", err))
	}

	if len(errors) > 0 {
		return fmt.Errorf("validation failed: %v", errors)
	}

	return nil
}

// LoadConfigFromEnv loads worker configuration from environment variables
// with validation and automatic fallback to default values on failure.
//
// This function implements the fail-open strategy:
//  1. Start with DefaultConfig() as base
//  2. Load each field from environment variables
//  3. Validate each loaded value
//  4. If validation fails: use default value, log warning, increment metrics
//  5. Never return error - always return a valid configuration
//
// Environment variables:
//   - CLEANUP_CRON: Cleanup cron expression (default: "0 3 * * *")
//   - MATERIALS_REFRESH_CRON: Gauge refresh cron expression (default: "*/15 * * * *")
//   - WORKER_TIMEZONE: IANA timezone name (default: "UTC")
//   - MAINTENANCE_TIMEOUT: Duration string, e.g. "10m" (range 1m-1h)
//   - WORKER_HEALTH_PORT: Integer 1024-65535 (default: 9091)
//
// Metrics updated:
//   - ValidationErrorsTotal: incremented for each validation failure
//   - FallbacksTotal: incremented for each fallback applied
//   - FallbackActive: 1 if any fallback is active, 0 otherwise
//   - LoadTimestamp: set to current time after load
func LoadConfigFromEnv(logger *slog.Logger, metrics *WorkerMetrics) (*WorkerConfig, error) {
	cfg := DefaultConfig()
	fallbackApplied := false

	result := config.LoadEnvWithFallback("CLEANUP_CRON", cfg.CleanupSchedule, config.ValidateCronSchedule)
	cfg.CleanupSchedule = result.Value.(string)
	if result.FallbackApplied {
		fallbackApplied = true
		metrics.RecordValidationError("cleanup_cron")
		metrics.RecordFallback("cleanup_cron", "default")
		for _, warning := range result.Warnings {
			logger.Warn("Configuration fallback applied",
				slog.String("field", "CleanupSchedule"),
				slog.String("warning", warning))
		}
	}

	result = config.LoadEnvWithFallback("MATERIALS_REFRESH_CRON", cfg.RefreshSchedule, config.ValidateCronSchedule)
	cfg.RefreshSchedule = result.Value.(string)
	if result.FallbackApplied {
		fallbackApplied = true
		metrics.RecordValidationError("materials_refresh_cron")
		metrics.RecordFallback("materials_refresh_cron", "default")
		for _, warning := range result.Warnings {
			logger.Warn("Configuration fallback applied",
				slog.String("field", "RefreshSchedule"),
				slog.String("warning", warning))
		}
	}

	result = config.LoadEnvWithFallback("WORKER_TIMEZONE", cfg.Timezone, config.ValidateTimezone)
	cfg.Timezone = result.Value.(string)
	if result.FallbackApplied {
		fallbackApplied = true
		metrics.RecordValidationError("timezone")
		metrics.RecordFallback("timezone", "default")
		for _, warning := range result.Warnings {
			logger.Warn("Configuration fallback applied",
				slog.String("field", "Timezone"),
				slog.String("warning", warning))
		}
	}

	result = config.LoadEnvDuration("MAINTENANCE_TIMEOUT", cfg.JobTimeout, func(d time.Duration) error {
		return config.ValidateDuration(d, 1*time.Minute, 1*time.Hour)
	})
	cfg.JobTimeout = result.Value.(time.Duration)
	if result.FallbackApplied {
		fallbackApplied = true
		metrics.RecordValidationError("maintenance_timeout")
		metrics.RecordFallback("maintenance_timeout", "default")
		for _, warning := range result.Warnings {
			logger.Warn("Configuration fallback applied",
				slog.String("field", "JobTimeout"),
				slog.String("warning", warning))
		}
	}

	result = config.LoadEnvInt("WORKER_HEALTH_PORT", cfg.HealthPort, func(v int) error {
		return config.ValidateIntRange(v, 1024, 65535)
	})
	cfg.HealthPort = result.Value.(int)
	if result.FallbackApplied {
		fallbackApplied = true
		metrics.RecordValidationError("health_port")
		metrics.RecordFallback("health_port", "default")
		for _, warning := range result.Warnings {
			logger.Warn("Configuration fallback applied",
				slog.String("field", "HealthPort"),
				slog.String("warning", warning))
		}
	}

	metrics.SetFallbackActive("", fallbackApplied)
	metrics.RecordLoadTimestamp()

	// Always return valid config (fail-open strategy)
	return &cfg, nil
}
