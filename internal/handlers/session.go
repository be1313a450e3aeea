// internal/handlers/session.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/solitaire/internal/database"
	"github.com/jason-s-yu/solitaire/internal/game"
	"github.com/sirupsen/logrus"
)

type createSessionRequest struct {
	Variant string                 `json:"variant"`
	Options map[string]interface{} `json:"options"`
}

// CreateSessionHandler deals a new game for the calling player, creating a
// guest when the request carries no token.
//
// Request payload:
//
//	{
//	  "variant": "spider",
//	  "options": {"spiderSuits": 2}
//	}
func (srv *SessionServer) CreateSessionHandler(w http.ResponseWriter, r *http.Request) {
	playerID, err := srv.EnsurePlayer(w, r)
	if err != nil {
		srv.Logger.WithError(err).Error("failed to ensure player")
		http.Error(w, "could not authenticate", http.StatusInternalServerError)
		return
	}

	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	variant, err := game.ParseVariant(req.Variant)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	opts, err := game.ParseOptions(req.Options, srv.Config.OptionsFor(variant))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s, err := game.NewSession(variant, opts, srv.Config.Seed, srv.Logger)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.PlayerID = playerID
	// the clock starts when a socket attaches
	s.Pause()
	srv.track(s)

	srv.Logger.WithFields(logrus.Fields{
		"session": s.ID,
		"player":  playerID,
		"variant": variant,
	}).Info("session created")
	writeJSON(w, http.StatusCreated, s.View())
}

type resumeSessionRequest struct {
	SessionID uuid.UUID `json:"sessionId"`
}

type resumeSessionResponse struct {
	Restored bool           `json:"restored"`
	Board    game.BoardView `json:"board"`
}

// ResumeSessionHandler brings a session back: the live one when it is still
// in memory, otherwise the stored save. A save that no longer validates is
// replaced by a fresh deal under the same id and "restored" is false.
func (srv *SessionServer) ResumeSessionHandler(w http.ResponseWriter, r *http.Request) {
	playerID, ok := requirePlayer(w, r)
	if !ok {
		return
	}
	var req resumeSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SessionID == uuid.Nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	if s, ok := srv.Sessions.GetSession(req.SessionID); ok {
		if s.PlayerID != playerID {
			http.Error(w, "session belongs to another player", http.StatusForbidden)
			return
		}
		writeJSON(w, http.StatusOK, resumeSessionResponse{Restored: true, Board: s.View()})
		return
	}

	st, err := srv.loadSaveState(r.Context(), req.SessionID, playerID)
	switch {
	case errors.Is(err, database.ErrNotFound):
		http.Error(w, game.ErrSessionNotFound.Error(), http.StatusNotFound)
		return
	case errors.Is(err, errForbidden):
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	case errors.Is(err, game.ErrInvalidSave):
		// RestoreSession falls back to a fresh game below.
	case err != nil:
		srv.Logger.WithError(err).Errorf("failed to load session %s", req.SessionID)
		http.Error(w, "failed to load session", http.StatusInternalServerError)
		return
	}

	s, restored := game.RestoreSession(req.SessionID, playerID, st, srv.Config.Seed, srv.Logger)
	s.Pause()
	srv.track(s)

	writeJSON(w, http.StatusOK, resumeSessionResponse{Restored: restored, Board: s.View()})
}

type sessionSummary struct {
	SessionID uuid.UUID  `json:"sessionId"`
	Variant   string     `json:"variant"`
	Type      string     `json:"type"`
	Live      bool       `json:"live"`
	Won       bool       `json:"won,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// ListSessionsHandler lists the caller's live sessions followed by saved
// sessions that are not currently live.
func (srv *SessionServer) ListSessionsHandler(w http.ResponseWriter, r *http.Request) {
	playerID, ok := requirePlayer(w, r)
	if !ok {
		return
	}

	out := []sessionSummary{}
	live := map[uuid.UUID]bool{}
	for _, s := range srv.Sessions.SessionsForPlayer(playerID) {
		live[s.ID] = true
		out = append(out, sessionSummary{
			SessionID: s.ID,
			Variant:   s.Variant.String(),
			Type:      s.TypeString(),
			Live:      true,
			Won:       s.Won(),
		})
	}

	saved, err := srv.Store.ListSavedGames(r.Context(), playerID)
	if err != nil {
		srv.Logger.WithError(err).Error("failed to list saved games")
		http.Error(w, "failed to list sessions", http.StatusInternalServerError)
		return
	}
	for _, g := range saved {
		if live[g.SessionID] {
			continue
		}
		out = append(out, sessionSummary{
			SessionID: g.SessionID,
			Variant:   g.Variant,
			Type:      g.GameType,
			UpdatedAt: &g.UpdatedAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// StatsHandler returns the caller's attempts, wins and bests per game type.
func (srv *SessionServer) StatsHandler(w http.ResponseWriter, r *http.Request) {
	playerID, ok := requirePlayer(w, r)
	if !ok {
		return
	}
	stats, err := srv.Store.GetStats(r.Context(), playerID)
	if err != nil {
		srv.Logger.WithError(err).Error("failed to load stats")
		http.Error(w, "failed to load stats", http.StatusInternalServerError)
		return
	}
	if stats == nil {
		writeJSON(w, http.StatusOK, []struct{}{})
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
