package models

import "github.com/google/uuid"

// Player is a registered or guest account. Stats and saved games are keyed
// by player id.
type Player struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	Password string    `json:"password,omitempty"`
	Username string    `json:"username"`

	IsEphemeral bool `json:"is_ephemeral"`
}
