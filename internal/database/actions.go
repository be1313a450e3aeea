// internal/database/actions.go
package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jason-s-yu/solitaire/internal/models"
)

// InsertGameActions writes a batch of logged actions in one transaction.
// Rows already stored for a (session, index) pair are skipped.
func InsertGameActions(ctx context.Context, actions []models.GameAction) error {
	if len(actions) == 0 {
		return nil
	}
	q := `
	INSERT INTO game_actions (session_id, action_index, player_id, action_type, action_payload, created_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (session_id, action_index) DO NOTHING
	`
	return pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, a := range actions {
			payload, err := json.Marshal(a.Payload)
			if err != nil {
				return fmt.Errorf("marshal payload for %s#%d: %w", a.SessionID, a.ActionIndex, err)
			}
			batch.Queue(q, a.SessionID, a.ActionIndex, a.PlayerID, a.ActionType, payload, a.CreatedAt)
		}
		br := tx.SendBatch(ctx, batch)
		for range actions {
			if _, err := br.Exec(); err != nil {
				br.Close()
				return fmt.Errorf("insert game action: %w", err)
			}
		}
		return br.Close()
	})
}
