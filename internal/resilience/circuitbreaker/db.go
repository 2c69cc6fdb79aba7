package circuitbreaker

import (
	"context"
	"database/sql"
	"time"

	"github.com/sony/gobreaker"
)

// DBCircuitBreaker routes queries against the materials database through a
// circuit breaker, so a down or overloaded Postgres fails fast instead of
// piling up blocked maintenance jobs.
type DBCircuitBreaker struct {
	cb *CircuitBreaker
	db *sql.DB
}

// DBConfig returns breaker settings tuned for the database: trip after five
// consecutive failures, probe again after 30 seconds with up to three
// half-open requests.
func DBConfig() Config {
	return Config{
		Name:             "database",
		MaxRequests:      3,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 1.0,
		MinRequests:      5,
	}
}

// NewDBCircuitBreaker wraps db with the default DBConfig settings.
func NewDBCircuitBreaker(db *sql.DB) *DBCircuitBreaker {
	return NewDBCircuitBreakerWithConfig(db, DBConfig())
}

// NewDBCircuitBreakerWithConfig wraps db with custom breaker settings.
func NewDBCircuitBreakerWithConfig(db *sql.DB, cfg Config) *DBCircuitBreaker {
	return &DBCircuitBreaker{
		cb: New(cfg),
		db: db,
	}
}

// QueryContext runs a query through the breaker. While the circuit is open
// it returns gobreaker.ErrOpenState without touching the database.
func (b *DBCircuitBreaker) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	result, err := b.cb.Execute(func() (interface{}, error) {
		return b.db.QueryContext(ctx, query, args...)
	})
	if err != nil {
		return nil, err
	}
	return result.(*sql.Rows), nil
}

// ExecContext runs a statement through the breaker. While the circuit is
// open it returns gobreaker.ErrOpenState without touching the database.
func (b *DBCircuitBreaker) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	result, err := b.cb.Execute(func() (interface{}, error) {
		return b.db.ExecContext(ctx, query, args...)
	})
	if err != nil {
		return nil, err
	}
	return result.(sql.Result), nil
}

// QueryRowContext bypasses the breaker. sql.Row defers its error to Scan,
// so a wrapped call could not feed failures back into the breaker state.
func (b *DBCircuitBreaker) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return b.db.QueryRowContext(ctx, query, args...)
}

// State reports the breaker state.
func (b *DBCircuitBreaker) State() gobreaker.State {
	return b.cb.State()
}

// IsOpen reports whether the breaker is currently rejecting calls.
func (b *DBCircuitBreaker) IsOpen() bool {
	return b.cb.IsOpen()
}

// DB exposes the wrapped connection for callers that need pool stats or
// deliberately unprotected access.
func (b *DBCircuitBreaker) DB() *sql.DB {
	return b.db
}
