// internal/database/players.go
package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jason-s-yu/solitaire/internal/auth"
	"github.com/jason-s-yu/solitaire/internal/models"
)

// ErrInvalidCredentials is returned by AuthenticatePlayer on a bad email or password.
var ErrInvalidCredentials = errors.New("invalid credentials")

// CreatePlayer inserts p, assigning an id when it has none. A non-empty
// password is replaced with its argon2id hash.
func CreatePlayer(ctx context.Context, p *models.Player) error {
	if p.ID == uuid.Nil {
		id, err := uuid.NewRandom()
		if err != nil {
			return fmt.Errorf("failed to generate player id: %w", err)
		}
		p.ID = id
	}

	if p.Password != "" {
		hash, err := auth.CreateHash(p.Password, auth.Params)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
		p.Password = hash
	}

	var email *string
	if p.Email != "" {
		email = &p.Email
	}

	q := `INSERT INTO players (id, email, password, username, is_ephemeral)
	      VALUES ($1, $2, $3, $4, $5)`

	err := pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, execErr := tx.Exec(ctx, q, p.ID, email, p.Password, p.Username, p.IsEphemeral)
		return execErr
	})
	if err != nil {
		return fmt.Errorf("failed to insert player: %w", err)
	}
	return nil
}

func scanPlayer(row pgx.Row) (*models.Player, error) {
	var p models.Player
	var email *string
	err := row.Scan(&p.ID, &email, &p.Password, &p.Username, &p.IsEphemeral)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if email != nil {
		p.Email = *email
	}
	return &p, nil
}

func GetPlayerByEmail(ctx context.Context, email string) (*models.Player, error) {
	q := `SELECT id, email, password, username, is_ephemeral FROM players WHERE email=$1`
	return scanPlayer(DB.QueryRow(ctx, q, email))
}

func GetPlayerByID(ctx context.Context, id uuid.UUID) (*models.Player, error) {
	q := `SELECT id, email, password, username, is_ephemeral FROM players WHERE id=$1`
	return scanPlayer(DB.QueryRow(ctx, q, id))
}

// AuthenticatePlayer checks the credentials and returns a signed token for the player.
func AuthenticatePlayer(ctx context.Context, email, password string) (string, error) {
	p, err := GetPlayerByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", fmt.Errorf("failed to load player: %w", err)
	}

	match, err := auth.ComparePasswordAndHash(password, p.Password)
	if err != nil || !match {
		return "", ErrInvalidCredentials
	}

	token, err := auth.CreateJWT(p.ID.String())
	if err != nil {
		return "", fmt.Errorf("failed to create jwt: %w", err)
	}
	return token, nil
}

// ClaimPlayer turns a guest into a registered player, keeping its id so its
// saved games and stats carry over.
func ClaimPlayer(ctx context.Context, id uuid.UUID, email, username, password string) error {
	hash, err := auth.CreateHash(password, auth.Params)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	q := `
	UPDATE players
	SET email=$1, username=$2, password=$3, is_ephemeral=FALSE
	WHERE id=$4 AND is_ephemeral
	`
	return pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, q, email, username, hash, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}
