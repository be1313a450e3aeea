// internal/database/store.go
package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jason-s-yu/solitaire/internal/models"
)

// Postgres binds the package functions to a value so handlers can take
// a store interface. It uses the global DB pool.
type Postgres struct{}

func (Postgres) CreatePlayer(ctx context.Context, p *models.Player) error {
	return CreatePlayer(ctx, p)
}

func (Postgres) GetPlayerByID(ctx context.Context, id uuid.UUID) (*models.Player, error) {
	return GetPlayerByID(ctx, id)
}

func (Postgres) AuthenticatePlayer(ctx context.Context, email, password string) (string, error) {
	return AuthenticatePlayer(ctx, email, password)
}

func (Postgres) ClaimPlayer(ctx context.Context, id uuid.UUID, email, username, password string) error {
	return ClaimPlayer(ctx, id, email, username, password)
}

func (Postgres) UpsertSavedGame(ctx context.Context, g *models.SavedGame) error {
	return UpsertSavedGame(ctx, g)
}

func (Postgres) GetSavedGame(ctx context.Context, sessionID uuid.UUID) (*models.SavedGame, error) {
	return GetSavedGame(ctx, sessionID)
}

func (Postgres) ListSavedGames(ctx context.Context, playerID uuid.UUID) ([]models.SavedGame, error) {
	return ListSavedGames(ctx, playerID)
}

func (Postgres) DeleteSavedGame(ctx context.Context, sessionID uuid.UUID) error {
	return DeleteSavedGame(ctx, sessionID)
}

func (Postgres) RecordAttempt(ctx context.Context, playerID uuid.UUID, gameType string) error {
	return RecordAttempt(ctx, playerID, gameType)
}

func (Postgres) RecordWin(ctx context.Context, playerID uuid.UUID, gameType string, elapsedMs int64, score *int) error {
	return RecordWin(ctx, playerID, gameType, elapsedMs, score)
}

func (Postgres) GetStats(ctx context.Context, playerID uuid.UUID) ([]models.GameStats, error) {
	return GetStats(ctx, playerID)
}
