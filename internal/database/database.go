// Package database provides PostgreSQL connection management using pgx.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campushub/clubevents/internal/config"
)

// NewPool creates and validates a pgxpool connection pool.
// It retries up to 5 times to accommodate containers starting up.
func NewPool(ctx context.Context, cfg config.Config) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse db config: %w", err)
	}

	// Sensible pool defaults for a small service.
	poolCfg.MaxConns = 20
	poolCfg.MinConns = 2
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	var pool *pgxpool.Pool
	for attempt := 1; attempt <= 5; attempt++ {
		pool, err = pgxpool.NewWithConfig(ctx, poolCfg)
		if err == nil {
			pingErr := pool.Ping(ctx)
			if pingErr == nil {
				return pool, nil
			}
			pool.Close()
			err = fmt.Errorf("ping: %w", pingErr)
		}
		time.Sleep(2 * time.Second)
	}
	return nil, fmt.Errorf("connect to postgres: %w", err)
}

// InitSchema creates the tables and constraints the engine relies on.
//
// Two uniqueness constraints are load-bearing rather than decorative:
// clubs.coordinator_id UNIQUE enforces one club per coordinator, and the
// partial unique index on registrations enforces at most one
// non-cancelled registration per (event, student). Application-level
// pre-checks produce friendly errors, but these constraints are the
// safety net under concurrent writers.
//
// events.club_id carries no foreign key: deleting a club does not
// cascade to its events, which keep a dangling club reference.
func InitSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL DEFAULT '',
			email TEXT NOT NULL DEFAULT '',
			role TEXT NOT NULL DEFAULT 'student',
			managed_club_id UUID
		)`,
		`CREATE TABLE IF NOT EXISTS clubs (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			category TEXT NOT NULL,
			coordinator_id UUID NOT NULL UNIQUE,
			contact_email TEXT NOT NULL DEFAULT '',
			is_approved BOOLEAN NOT NULL DEFAULT FALSE,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS events (
			id UUID PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			club_id UUID NOT NULL,
			event_date TIMESTAMPTZ NOT NULL,
			event_time TEXT NOT NULL DEFAULT '',
			registration_deadline TIMESTAMPTZ NOT NULL,
			venue TEXT NOT NULL DEFAULT '',
			category TEXT NOT NULL,
			max_participants INT NOT NULL CHECK (max_participants > 0),
			requirements TEXT NOT NULL DEFAULT '',
			created_by UUID NOT NULL,
			is_approved BOOLEAN NOT NULL DEFAULT FALSE,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS registrations (
			id UUID PRIMARY KEY,
			event_id UUID NOT NULL REFERENCES events(id),
			student_id UUID NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			comments TEXT NOT NULL DEFAULT '',
			registration_date TIMESTAMPTZ NOT NULL
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS registrations_event_student_live
			ON registrations (event_id, student_id) WHERE status <> 'cancelled'`,
		`CREATE INDEX IF NOT EXISTS registrations_event_status
			ON registrations (event_id, status)`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}
