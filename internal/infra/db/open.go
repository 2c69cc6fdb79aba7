// Package db owns the PostgreSQL connection pool and schema migration for the
// material store.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"studyforge/internal/pkg/config"
)

// ConnectionConfig holds database connection pool configuration.
type ConnectionConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// DefaultConnectionConfig returns the default connection pool configuration.
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		MaxOpenConns:    25,
		MaxIdleConns:    10,
		ConnMaxLifetime: 1 * time.Hour,
		ConnMaxIdleTime: 30 * time.Minute,
	}
}

// Open connects to the database named by DATABASE_URL, applies pool
// settings from the DB_* environment variables, and verifies the
// connection with a five second ping.
func Open() (*sql.DB, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return nil, fmt.Errorf("DATABASE_URL not set")
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	cfg := connectionConfigFromEnv()
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	slog.Info("database connection pool configured",
		slog.Int("max_open_conns", cfg.MaxOpenConns),
		slog.Int("max_idle_conns", cfg.MaxIdleConns),
		slog.Duration("conn_max_lifetime", cfg.ConnMaxLifetime),
		slog.Duration("conn_max_idle_time", cfg.ConnMaxIdleTime))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	slog.Info("database connection established")
	return db, nil
}

// connectionConfigFromEnv loads pool settings fail-open: a malformed or
// non-positive value keeps the default and logs a warning.
func connectionConfigFromEnv() ConnectionConfig {
	def := DefaultConnectionConfig()
	positiveInt := func(v int) error { return config.ValidateIntRange(v, 1, 10000) }

	maxOpen := config.LoadEnvInt("DB_MAX_OPEN_CONNS", def.MaxOpenConns, positiveInt)
	maxIdle := config.LoadEnvInt("DB_MAX_IDLE_CONNS", def.MaxIdleConns, positiveInt)
	lifetime := config.LoadEnvDuration("DB_CONN_MAX_LIFETIME", def.ConnMaxLifetime, config.ValidatePositiveDuration)
	idleTime := config.LoadEnvDuration("DB_CONN_MAX_IDLE_TIME", def.ConnMaxIdleTime, config.ValidatePositiveDuration)

	for _, result := range []config.ConfigLoadResult{maxOpen, maxIdle, lifetime, idleTime} {
		for _, warning := range result.Warnings {
			slog.Warn("database pool config fallback", slog.String("warning", warning))
		}
	}

	return ConnectionConfig{
		MaxOpenConns:    maxOpen.Value.(int),
		MaxIdleConns:    maxIdle.Value.(int),
		ConnMaxLifetime: lifetime.Value.(time.Duration),
		ConnMaxIdleTime: idleTime.Value.(time.Duration),
	}
}
