// internal/database/stats.go
package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jason-s-yu/solitaire/internal/models"
)

// RecordAttempt counts one started game of gameType for the player.
func RecordAttempt(ctx context.Context, playerID uuid.UUID, gameType string) error {
	q := `
	INSERT INTO game_stats (player_id, game_type, attempts)
	VALUES ($1, $2, 1)
	ON CONFLICT (player_id, game_type)
	DO UPDATE SET attempts = game_stats.attempts + 1
	`
	err := pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, q, playerID, gameType)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to record attempt: %w", err)
	}
	return nil
}

// RecordWin counts a win and keeps the fastest time and, when the game is
// scored, the best score. score is nil for unscored games.
func RecordWin(ctx context.Context, playerID uuid.UUID, gameType string, elapsedMs int64, score *int) error {
	q := `
	INSERT INTO game_stats (player_id, game_type, attempts, wins, best_time_ms, best_score)
	VALUES ($1, $2, 0, 1, $3, $4)
	ON CONFLICT (player_id, game_type)
	DO UPDATE SET wins = game_stats.wins + 1,
	              best_time_ms = CASE
	                  WHEN game_stats.best_time_ms = 0 THEN EXCLUDED.best_time_ms
	                  ELSE LEAST(game_stats.best_time_ms, EXCLUDED.best_time_ms)
	              END,
	              best_score = CASE
	                  WHEN EXCLUDED.best_score IS NULL THEN game_stats.best_score
	                  ELSE GREATEST(COALESCE(game_stats.best_score, EXCLUDED.best_score), EXCLUDED.best_score)
	              END
	`
	err := pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, q, playerID, gameType, elapsedMs, score)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to record win: %w", err)
	}
	return nil
}

// GetStats returns every game type the player has attempted.
func GetStats(ctx context.Context, playerID uuid.UUID) ([]models.GameStats, error) {
	q := `
	SELECT player_id, game_type, attempts, wins, best_time_ms, best_score
	FROM game_stats
	WHERE player_id=$1
	ORDER BY game_type
	`
	rows, err := DB.Query(ctx, q, playerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.GameStats
	for rows.Next() {
		var st models.GameStats
		if err := rows.Scan(&st.PlayerID, &st.GameType, &st.Attempts, &st.Wins, &st.BestTimeMs, &st.BestScore); err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}
