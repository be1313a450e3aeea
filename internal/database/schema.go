// internal/database/schema.go
package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS players (
		id           UUID PRIMARY KEY,
		email        TEXT UNIQUE,
		password     TEXT NOT NULL DEFAULT '',
		username     TEXT NOT NULL,
		is_ephemeral BOOLEAN NOT NULL DEFAULT FALSE,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS saved_games (
		session_id UUID PRIMARY KEY,
		player_id  UUID NOT NULL,
		variant    TEXT NOT NULL,
		game_type  TEXT NOT NULL,
		state      JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS saved_games_player_idx ON saved_games (player_id)`,
	`CREATE TABLE IF NOT EXISTS game_stats (
		player_id    UUID NOT NULL,
		game_type    TEXT NOT NULL,
		attempts     INTEGER NOT NULL DEFAULT 0,
		wins         INTEGER NOT NULL DEFAULT 0,
		best_time_ms BIGINT NOT NULL DEFAULT 0,
		best_score   INTEGER,
		PRIMARY KEY (player_id, game_type)
	)`,
	`CREATE TABLE IF NOT EXISTS game_actions (
		session_id     UUID NOT NULL,
		action_index   INTEGER NOT NULL,
		player_id      UUID NOT NULL,
		action_type    TEXT NOT NULL,
		action_payload JSONB NOT NULL,
		created_at     TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (session_id, action_index)
	)`,
}

// Migrate creates any missing tables.
func Migrate(ctx context.Context) error {
	return pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		for _, q := range schema {
			if _, err := tx.Exec(ctx, q); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
		}
		return nil
	})
}
