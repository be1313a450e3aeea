package models

import (
	"time"

	"github.com/google/uuid"
)

// GameAction is one logged session action as stored by the historian.
type GameAction struct {
	SessionID   uuid.UUID              `json:"session_id"`
	ActionIndex int                    `json:"action_index"`
	PlayerID    uuid.UUID              `json:"player_id"`
	ActionType  string                 `json:"action_type"`
	Payload     map[string]interface{} `json:"payload"`
	CreatedAt   time.Time              `json:"created_at"`
}

// GameStats is a player's record for one game type string, e.g.
// "SolitaireVegasDeal3" or "Spider2Suit".
type GameStats struct {
	PlayerID   uuid.UUID `json:"player_id"`
	GameType   string    `json:"game_type"`
	Attempts   int       `json:"attempts"`
	Wins       int       `json:"wins"`
	BestTimeMs int64     `json:"best_time_ms"` // 0 until the first win
	BestScore  *int      `json:"best_score,omitempty"`
}

// SavedGame is an autosaved session in its encoded save-state form.
type SavedGame struct {
	SessionID uuid.UUID `json:"session_id"`
	PlayerID  uuid.UUID `json:"player_id"`
	Variant   string    `json:"variant"`
	GameType  string    `json:"game_type"`
	State     []byte    `json:"-"`
	UpdatedAt time.Time `json:"updated_at"`
}
