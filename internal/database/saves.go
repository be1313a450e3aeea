// internal/database/saves.go
package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jason-s-yu/solitaire/internal/models"
)

// UpsertSavedGame stores the latest save state of a session.
func UpsertSavedGame(ctx context.Context, g *models.SavedGame) error {
	q := `
	INSERT INTO saved_games (session_id, player_id, variant, game_type, state, updated_at)
	VALUES ($1, $2, $3, $4, $5, NOW())
	ON CONFLICT (session_id)
	DO UPDATE SET game_type = EXCLUDED.game_type,
	              state = EXCLUDED.state,
	              updated_at = NOW()
	`
	err := pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, q, g.SessionID, g.PlayerID, g.Variant, g.GameType, g.State)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to save game %s: %w", g.SessionID, err)
	}
	return nil
}

func GetSavedGame(ctx context.Context, sessionID uuid.UUID) (*models.SavedGame, error) {
	var g models.SavedGame
	q := `
	SELECT session_id, player_id, variant, game_type, state, updated_at
	FROM saved_games
	WHERE session_id=$1
	`
	err := DB.QueryRow(ctx, q, sessionID).Scan(
		&g.SessionID, &g.PlayerID, &g.Variant, &g.GameType, &g.State, &g.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// ListSavedGames returns a player's saves, newest first, without their state.
func ListSavedGames(ctx context.Context, playerID uuid.UUID) ([]models.SavedGame, error) {
	q := `
	SELECT session_id, player_id, variant, game_type, updated_at
	FROM saved_games
	WHERE player_id=$1
	ORDER BY updated_at DESC
	`
	rows, err := DB.Query(ctx, q, playerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.SavedGame
	for rows.Next() {
		var g models.SavedGame
		if err := rows.Scan(&g.SessionID, &g.PlayerID, &g.Variant, &g.GameType, &g.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func DeleteSavedGame(ctx context.Context, sessionID uuid.UUID) error {
	return pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `DELETE FROM saved_games WHERE session_id=$1`, sessionID)
		return err
	})
}
