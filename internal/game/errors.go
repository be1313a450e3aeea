// internal/game/errors.go
package game

import "errors"

var (
	ErrUnknownVariant  = errors.New("unknown variant")
	ErrInvalidSave     = errors.New("invalid save state")
	ErrSessionNotFound = errors.New("session not found")
	ErrInvalidOption   = errors.New("invalid option")
)
