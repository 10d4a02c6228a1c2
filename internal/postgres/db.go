// Package postgres implements the domain stores on PostgreSQL via pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hammamikhairi/simmr/internal/domain"
	"github.com/hammamikhairi/simmr/internal/logger"
)

// PoolOptions tune the connection pool.
type PoolOptions struct {
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

// Connect opens a pool, pings the server and creates the schema.
func Connect(ctx context.Context, dsn string, opts PoolOptions, log *logger.Logger) (*pgxpool.Pool, error) {
	if dsn == "" {
		return nil, errors.New("DATABASE_URL not set")
	}

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parsing database url: %w", err)
	}
	if opts.MaxConns > 0 {
		cfg.MaxConns = opts.MaxConns
	}
	if opts.MinConns > 0 {
		cfg.MinConns = opts.MinConns
	}
	if opts.MaxConnLifetime > 0 {
		cfg.MaxConnLifetime = opts.MaxConnLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres connection failed: %w", err)
	}
	log.Info("connected to postgres")

	if err := InitSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}
	log.Info("schema initialized")
	return pool, nil
}

// InitSchema creates every table simmr needs. Safe to run repeatedly.
func InitSchema(ctx context.Context, db *pgxpool.Pool) error {
	statements := []string{
		// ── users ──
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			email TEXT UNIQUE NOT NULL,
			display_name TEXT NOT NULL DEFAULT '',
			password_hash TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'user',
			contacts TEXT[] NOT NULL DEFAULT '{}',
			settings JSONB NOT NULL DEFAULT '{}',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,

		// ── recipes ──
		`CREATE TABLE IF NOT EXISTS recipes (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			ingredients TEXT[] NOT NULL DEFAULT '{}',
			instructions TEXT NOT NULL DEFAULT '',
			category TEXT NOT NULL,
			difficulty TEXT NOT NULL DEFAULT '',
			restriction TEXT NOT NULL DEFAULT '',
			kid_friendly BOOLEAN NOT NULL DEFAULT false,
			num_servings TEXT NOT NULL DEFAULT '',
			cook_time_minutes INTEGER NOT NULL DEFAULT 0,
			story_tone TEXT NOT NULL DEFAULT '',
			image_url TEXT NOT NULL DEFAULT '',
			steps JSONB NOT NULL DEFAULT '[]',
			version INTEGER NOT NULL DEFAULT 1,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,

		// ── pantry ──
		`CREATE TABLE IF NOT EXISTS pantry_items (
			id BIGSERIAL PRIMARY KEY,
			user_id TEXT NOT NULL,
			name TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (user_id, name)
		)`,

		// ── story logs ──
		`CREATE TABLE IF NOT EXISTS story_logs (
			id TEXT PRIMARY KEY,
			recipe_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			story_summary TEXT NOT NULL DEFAULT '',
			dish_image_url TEXT NOT NULL DEFAULT '',
			date TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_story_logs_user ON story_logs(user_id)`,

		// ── group sessions ──
		`CREATE TABLE IF NOT EXISTS cooking_sessions (
			id TEXT PRIMARY KEY,
			creator_id TEXT NOT NULL,
			invited_friends TEXT[] NOT NULL DEFAULT '{}',
			location TEXT NOT NULL DEFAULT '',
			recipe_id TEXT NOT NULL DEFAULT '',
			session_date TIMESTAMPTZ NOT NULL,
			story_theme TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS session_invites (
			session_id TEXT NOT NULL REFERENCES cooking_sessions(id) ON DELETE CASCADE,
			user_id TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			responded_at TIMESTAMPTZ NULL,
			PRIMARY KEY (session_id, user_id)
		)`,

		// ── cook-along sessions ──
		`CREATE TABLE IF NOT EXISTS cook_sessions (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL DEFAULT '',
			recipe_id TEXT NOT NULL,
			recipe_title TEXT NOT NULL DEFAULT '',
			tone TEXT NOT NULL DEFAULT '',
			current_step INTEGER NOT NULL DEFAULT 0,
			step_states JSONB NOT NULL DEFAULT '{}',
			status INTEGER NOT NULL DEFAULT 0,
			started_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// mapErr translates driver errors into domain sentinels.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return domain.ErrAlreadyExists
	}
	return err
}
