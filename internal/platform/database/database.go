// Package database owns the PostgreSQL side of the lab event sink: the pool,
// the lab_events table, and the insert the sink performs.
package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const eventsDDL = `CREATE TABLE IF NOT EXISTS lab_events (
	id         BIGSERIAL PRIMARY KEY,
	bench_id   TEXT NOT NULL,
	event_type TEXT NOT NULL,
	data       JSONB NOT NULL DEFAULT '{}'::jsonb,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

const eventsBenchIndexDDL = `CREATE INDEX IF NOT EXISTS lab_events_bench_id_idx
	ON lab_events (bench_id, created_at)`

// ErrEventsTableMissing is reported by HealthCheck when lab_events is gone.
var ErrEventsTableMissing = errors.New("lab_events table missing")

// DB is the event store's connection pool.
type DB struct {
	Pool *pgxpool.Pool
}

// ParseURL validates a PostgreSQL connection URL.
func ParseURL(url string) (*pgxpool.Config, error) {
	if url == "" {
		return nil, fmt.Errorf("database URL is empty")
	}
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("invalid database URL: %w", err)
	}
	return cfg, nil
}

// PoolConfig builds the pool settings for the event sink. Events are small
// and bursty, so idle connections are recycled quickly.
func PoolConfig(url string, maxConns, minConns int) (*pgxpool.Config, error) {
	cfg, err := ParseURL(url)
	if err != nil {
		return nil, err
	}
	if maxConns < 1 {
		return nil, fmt.Errorf("max conns must be positive, got %d", maxConns)
	}
	if minConns < 0 || minConns > maxConns {
		return nil, fmt.Errorf("min conns %d outside [0, %d]", minConns, maxConns)
	}
	cfg.MaxConns = int32(maxConns)
	cfg.MinConns = int32(minConns)
	cfg.MaxConnLifetime = 15 * time.Minute
	cfg.MaxConnIdleTime = 2 * time.Minute
	return cfg, nil
}

// New opens the pool and makes sure the lab_events table exists.
func New(ctx context.Context, url string, maxConns, minConns int) (*DB, error) {
	cfg, err := PoolConfig(url, maxConns, minConns)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	db := &DB{Pool: pool}
	if err := db.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return db, nil
}

// EnsureSchema creates lab_events and its bench index. Safe to repeat.
func (db *DB) EnsureSchema(ctx context.Context) error {
	for _, stmt := range []string{eventsDDL, eventsBenchIndexDDL} {
		if _, err := db.Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure lab_events: %w", err)
		}
	}
	return nil
}

// InsertEvent stores one lab event. data must be a JSON object.
func (db *DB) InsertEvent(ctx context.Context, benchID, eventType string, data []byte, createdAt time.Time) error {
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO lab_events (bench_id, event_type, data, created_at)
		 VALUES ($1, $2, $3::jsonb, $4)`,
		benchID,
		eventType,
		string(data),
		createdAt,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// CountEvents returns how many events a bench has recorded.
func (db *DB) CountEvents(ctx context.Context, benchID string) (int64, error) {
	var n int64
	err := db.Pool.QueryRow(ctx,
		`SELECT count(*) FROM lab_events WHERE bench_id = $1`, benchID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return n, nil
}

// Close shuts down the connection pool.
func (db *DB) Close() {
	db.Pool.Close()
}

// HealthCheck verifies the pool is alive and lab_events is still in place.
func (db *DB) HealthCheck(ctx context.Context) error {
	var exists bool
	if err := db.Pool.QueryRow(ctx, `SELECT to_regclass('lab_events') IS NOT NULL`).Scan(&exists); err != nil {
		return fmt.Errorf("checking lab_events: %w", err)
	}
	if !exists {
		return ErrEventsTableMissing
	}
	return nil
}
