// internal/handlers/player.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jason-s-yu/solitaire/internal/auth"
	"github.com/jason-s-yu/solitaire/internal/database"
	"github.com/jason-s-yu/solitaire/internal/models"
)

// EnsurePlayer returns the player behind the request's token. A request
// without a valid token gets a new guest player and a cookie for it.
func (srv *SessionServer) EnsurePlayer(w http.ResponseWriter, r *http.Request) (uuid.UUID, error) {
	if token := tokenFromRequest(r); token != "" {
		if sub, err := auth.AuthenticateJWT(token); err == nil {
			id, err := uuid.Parse(sub)
			if err != nil {
				return uuid.Nil, fmt.Errorf("invalid player id in token: %w", err)
			}
			return id, nil
		}
	}

	guest := models.Player{Username: "Guest", IsEphemeral: true}
	if err := srv.Store.CreatePlayer(r.Context(), &guest); err != nil {
		return uuid.Nil, fmt.Errorf("failed to create guest player: %w", err)
	}
	token, err := auth.CreateJWT(guest.ID.String())
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create guest token: %w", err)
	}
	setAuthCookie(w, token)
	return guest.ID, nil
}

// requirePlayer returns the player behind a valid token, or writes 401.
func requirePlayer(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	sub, err := auth.AuthenticateJWT(tokenFromRequest(r))
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return uuid.Nil, false
	}
	id, err := uuid.Parse(sub)
	if err != nil {
		http.Error(w, "invalid player id in token", http.StatusUnauthorized)
		return uuid.Nil, false
	}
	return id, true
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username"`
}

// CreatePlayerHandler registers a player.
//
// Request payload:
//
//	{
//	  "email": "someone@example.com",
//	  "password": "password",
//	  "username": "someone"
//	}
func (srv *SessionServer) CreatePlayerHandler(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	if req.Email == "" || req.Password == "" || req.Username == "" {
		http.Error(w, "email, password and username are required", http.StatusBadRequest)
		return
	}

	p := models.Player{Email: req.Email, Password: req.Password, Username: req.Username}
	if err := srv.Store.CreatePlayer(r.Context(), &p); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			http.Error(w, "email already exists", http.StatusConflict)
			return
		}
		srv.Logger.WithError(err).Error("failed to create player")
		http.Error(w, "error creating player", http.StatusInternalServerError)
		return
	}
	p.Password = ""
	writeJSON(w, http.StatusCreated, p)
}

// LoginHandler exchanges an email and password for a token, which is also
// set as the auth_token cookie.
//
// Response payload:
//
//	{
//	  "token": "{jwt}"
//	}
func (srv *SessionServer) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request payload", http.StatusBadRequest)
		return
	}

	token, err := srv.Store.AuthenticatePlayer(context.WithoutCancel(r.Context()), req.Email, req.Password)
	if err != nil {
		if !errors.Is(err, database.ErrInvalidCredentials) {
			srv.Logger.WithError(err).Warn("failed to authenticate player")
		}
		http.Error(w, "authentication failed", http.StatusForbidden)
		return
	}

	setAuthCookie(w, token)
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// ClaimPlayerHandler gives the calling guest an email and password, keeping
// its saved games and stats.
func (srv *SessionServer) ClaimPlayerHandler(w http.ResponseWriter, r *http.Request) {
	playerID, ok := requirePlayer(w, r)
	if !ok {
		return
	}

	p, err := srv.Store.GetPlayerByID(r.Context(), playerID)
	if err != nil {
		http.Error(w, "player not found", http.StatusNotFound)
		return
	}
	if !p.IsEphemeral {
		http.Error(w, "player is not a guest", http.StatusBadRequest)
		return
	}

	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
		http.Error(w, "invalid claim payload", http.StatusBadRequest)
		return
	}
	if req.Username == "" {
		req.Username = p.Username
	}

	if err := srv.Store.ClaimPlayer(r.Context(), playerID, req.Email, req.Username, req.Password); err != nil {
		srv.Logger.WithError(err).Error("failed to claim guest player")
		http.Error(w, "failed to claim guest player", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
