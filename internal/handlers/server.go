// internal/handlers/server.go
package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/solitaire/internal/config"
	"github.com/jason-s-yu/solitaire/internal/game"
	"github.com/jason-s-yu/solitaire/internal/models"
	"github.com/sirupsen/logrus"
)

// Store is the persistent state the handlers need. database.Postgres
// implements it.
type Store interface {
	CreatePlayer(ctx context.Context, p *models.Player) error
	GetPlayerByID(ctx context.Context, id uuid.UUID) (*models.Player, error)
	AuthenticatePlayer(ctx context.Context, email, password string) (string, error)
	ClaimPlayer(ctx context.Context, id uuid.UUID, email, username, password string) error

	UpsertSavedGame(ctx context.Context, g *models.SavedGame) error
	GetSavedGame(ctx context.Context, sessionID uuid.UUID) (*models.SavedGame, error)
	ListSavedGames(ctx context.Context, playerID uuid.UUID) ([]models.SavedGame, error)
	DeleteSavedGame(ctx context.Context, sessionID uuid.UUID) error

	RecordAttempt(ctx context.Context, playerID uuid.UUID, gameType string) error
	RecordWin(ctx context.Context, playerID uuid.UUID, gameType string, elapsedMs int64, score *int) error
	GetStats(ctx context.Context, playerID uuid.UUID) ([]models.GameStats, error)
}

// SnapshotStore keeps short-lived save states. cache.Snapshots implements it.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, sessionID uuid.UUID, data []byte) error
	LoadSnapshot(ctx context.Context, sessionID uuid.UUID) ([]byte, error)
	DeleteSnapshot(ctx context.Context, sessionID uuid.UUID) error
}

// SessionServer owns the live sessions and the stores behind them.
type SessionServer struct {
	Logger    *logrus.Logger
	Config    *config.Config
	Store     Store
	Snapshots SnapshotStore // optional
	Sessions  *game.SessionStore
}

func NewSessionServer(logger *logrus.Logger, cfg *config.Config, store Store, snapshots SnapshotStore) *SessionServer {
	return &SessionServer{
		Logger:    logger,
		Config:    cfg,
		Store:     store,
		Snapshots: snapshots,
		Sessions:  game.NewSessionStore(),
	}
}

// track wires the stats callbacks and registers s as live.
func (srv *SessionServer) track(s *game.Session) {
	s.OnAttempt = func(res game.Result) {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Store.RecordAttempt(ctx, res.PlayerID, res.TypeString); err != nil {
				srv.Logger.WithError(err).Warnf("failed to record attempt for session %s", res.SessionID)
			}
		}()
	}
	s.OnWin = func(res game.Result) {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			var score *int
			if res.HasScore {
				score = &res.Score
			}
			if err := srv.Store.RecordWin(ctx, res.PlayerID, res.TypeString, res.Elapsed.Milliseconds(), score); err != nil {
				srv.Logger.WithError(err).Warnf("failed to record win for session %s", res.SessionID)
			}
		}()
	}
	srv.Sessions.AddSession(s)
}

// saveSession stores the session's current state in the snapshot cache and
// the database. A won game has nothing left to resume and is removed instead.
func (srv *SessionServer) saveSession(ctx context.Context, s *game.Session) error {
	if s.Won() {
		if srv.Snapshots != nil {
			if err := srv.Snapshots.DeleteSnapshot(ctx, s.ID); err != nil {
				srv.Logger.WithError(err).Warnf("failed to drop snapshot for session %s", s.ID)
			}
		}
		return srv.Store.DeleteSavedGame(ctx, s.ID)
	}

	st := s.Snapshot()
	data, err := st.Encode()
	if err != nil {
		return err
	}
	if srv.Snapshots != nil {
		if err := srv.Snapshots.SaveSnapshot(ctx, s.ID, data); err != nil {
			srv.Logger.WithError(err).Warnf("failed to cache snapshot for session %s", s.ID)
		}
	}
	return srv.Store.UpsertSavedGame(ctx, &models.SavedGame{
		SessionID: s.ID,
		PlayerID:  s.PlayerID,
		Variant:   s.Variant.String(),
		GameType:  s.TypeString(),
		State:     data,
	})
}

// loadSaveState finds the newest stored state for a session owned by
// playerID. The snapshot cache is newer than the database when both exist.
func (srv *SessionServer) loadSaveState(ctx context.Context, sessionID, playerID uuid.UUID) (game.SaveState, error) {
	saved, err := srv.Store.GetSavedGame(ctx, sessionID)
	if err != nil {
		return game.SaveState{}, err
	}
	if saved.PlayerID != playerID {
		return game.SaveState{}, errForbidden
	}

	data := saved.State
	if srv.Snapshots != nil {
		if cached, err := srv.Snapshots.LoadSnapshot(ctx, sessionID); err == nil {
			data = cached
		}
	}
	return game.DecodeSaveState(data)
}

// SweepIdle saves and unloads every session that has been paused for at
// least idle. It returns how many were unloaded.
func (srv *SessionServer) SweepIdle(ctx context.Context, idle time.Duration) int {
	swept := srv.Sessions.Sweep(idle, time.Now())
	for _, s := range swept {
		if err := srv.saveSession(ctx, s); err != nil {
			srv.Logger.WithError(err).Warnf("failed to save idle session %s", s.ID)
		}
	}
	if len(swept) > 0 {
		srv.Logger.Debugf("unloaded %d idle sessions", len(swept))
	}
	return len(swept)
}

// RunSweeper unloads idle sessions every interval until ctx is cancelled.
func (srv *SessionServer) RunSweeper(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			srv.SweepIdle(ctx, idle)
		}
	}
}

var errForbidden = errors.New("session belongs to another player")
