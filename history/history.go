// Package history provides an optional Postgres audit log of redemption
// attempts. It records what happened, never what to do next: the dedup set
// stays in memory and is not rebuilt from this table.
package history

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx postgres driver registered as 'pgx'
)

// Store wraps the attempts table.
type Store struct {
	db *sql.DB
}

// Open connects to Postgres with the given DSN.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Migrate applies the idempotent schema for the attempts table.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS snipe_attempts (
		id SERIAL PRIMARY KEY,
		code TEXT NOT NULL,
		outcome TEXT NOT NULL,
		elapsed_ms BIGINT,
		channel_id TEXT,
		guild_id TEXT,
		author TEXT,
		session TEXT,
		created_at TIMESTAMPTZ DEFAULT NOW()
	)`)
	return err
}

// Attempt is one recorded redemption attempt.
type Attempt struct {
	Code      string
	Outcome   string
	Elapsed   time.Duration
	ChannelID string
	GuildID   string
	Author    string
	Session   string
}

// RecordAttempt inserts one attempt row.
func (s *Store) RecordAttempt(ctx context.Context, a Attempt) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO snipe_attempts (code, outcome, elapsed_ms, channel_id, guild_id, author, session) VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		a.Code, a.Outcome, a.Elapsed.Milliseconds(), a.ChannelID, a.GuildID, a.Author, a.Session)
	return err
}

// Close releases the underlying connection pool.
func (s *Store) Close() error { return s.db.Close() }
