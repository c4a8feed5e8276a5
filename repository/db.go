// repository/db.go
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog/log"

	"github.com/casualfootball/cffa-backend/config"
	"github.com/casualfootball/cffa-backend/utils"
)

// Open connects to PostgreSQL and checks the connection
func Open(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.MaxConnLifetime)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().Str("host", cfg.Host).Str("database", cfg.Name).Msg("connected to database")
	return db, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS teams (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS players (
		team_id TEXT NOT NULL REFERENCES teams(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		retired BOOLEAN NOT NULL DEFAULT FALSE,
		comment TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (team_id, name)
	)`,
	`CREATE TABLE IF NOT EXISTS games (
		id TEXT PRIMARY KEY,
		team_id TEXT NOT NULL REFERENCES teams(id) ON DELETE CASCADE,
		game_date DATE NOT NULL,
		total_cost NUMERIC(12,2) NOT NULL,
		booker TEXT NOT NULL,
		seq BIGSERIAL NOT NULL
	)`,
	`ALTER TABLE games ADD COLUMN IF NOT EXISTS seq BIGSERIAL`,
	`CREATE INDEX IF NOT EXISTS games_team_date_idx ON games (team_id, game_date)`,
	`CREATE TABLE IF NOT EXISTS game_participants (
		game_id TEXT NOT NULL REFERENCES games(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		name TEXT NOT NULL,
		played BOOLEAN NOT NULL DEFAULT FALSE,
		booker BOOLEAN NOT NULL DEFAULT FALSE,
		guests INTEGER NOT NULL DEFAULT 0 CHECK (guests >= 0),
		PRIMARY KEY (game_id, position)
	)`,
	`CREATE TABLE IF NOT EXISTS payments (
		id TEXT PRIMARY KEY,
		team_id TEXT NOT NULL REFERENCES teams(id) ON DELETE CASCADE,
		player TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		amount NUMERIC(12,2) NOT NULL,
		payment_date DATE NOT NULL,
		game_id TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		seq BIGSERIAL NOT NULL
	)`,
	`ALTER TABLE payments ADD COLUMN IF NOT EXISTS seq BIGSERIAL`,
	`CREATE INDEX IF NOT EXISTS payments_team_date_idx ON payments (team_id, payment_date)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS payments_autopay_game_idx ON payments (game_id) WHERE game_id IS NOT NULL`,
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		team_id TEXT NOT NULL REFERENCES teams(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		auth_id TEXT NOT NULL UNIQUE,
		role TEXT NOT NULL CHECK (role IN ('manager', 'player')),
		revoked BOOLEAN NOT NULL DEFAULT FALSE
	)`,
}

// Migrate creates the schema if it does not exist yet
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}

// queryer is satisfied by both *sql.DB and *sql.Tx
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// withTx runs fn in a transaction, committing only if fn succeeds
func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// segment records a datastore call on the request's New Relic transaction.
// It is a no-op when the context carries no transaction.
func segment(ctx context.Context, collection, operation string) *newrelic.DatastoreSegment {
	txn := newrelic.FromContext(ctx)
	return &newrelic.DatastoreSegment{
		StartTime:  txn.StartSegmentNow(),
		Product:    newrelic.DatastorePostgres,
		Collection: collection,
		Operation:  operation,
	}
}

// mapError converts driver errors into the sentinel errors services check
func mapError(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, utils.ErrNotFound)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return fmt.Errorf("%s: %w", what, utils.ErrConflict)
	}
	return fmt.Errorf("%s: %w", what, err)
}
