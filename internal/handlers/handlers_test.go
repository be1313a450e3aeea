// internal/handlers/handlers_test.go
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/solitaire/internal/auth"
	"github.com/jason-s-yu/solitaire/internal/card"
	"github.com/jason-s-yu/solitaire/internal/config"
	"github.com/jason-s-yu/solitaire/internal/database"
	"github.com/jason-s-yu/solitaire/internal/game"
	"github.com/jason-s-yu/solitaire/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	if err := auth.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// memStore is an in-memory Store.
type memStore struct {
	mu       sync.Mutex
	players  map[uuid.UUID]*models.Player
	saves    map[uuid.UUID]models.SavedGame
	stats    map[string]*models.GameStats
	attempts int
	wins     int
}

func newMemStore() *memStore {
	return &memStore{
		players: map[uuid.UUID]*models.Player{},
		saves:   map[uuid.UUID]models.SavedGame{},
		stats:   map[string]*models.GameStats{},
	}
}

func (m *memStore) CreatePlayer(_ context.Context, p *models.Player) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	cp := *p
	m.players[p.ID] = &cp
	return nil
}

func (m *memStore) GetPlayerByID(_ context.Context, id uuid.UUID) (*models.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.players[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memStore) AuthenticatePlayer(_ context.Context, email, password string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.players {
		if p.Email == email && p.Password == password {
			return auth.CreateJWT(p.ID.String())
		}
	}
	return "", database.ErrInvalidCredentials
}

func (m *memStore) ClaimPlayer(_ context.Context, id uuid.UUID, email, username, password string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.players[id]
	if !ok || !p.IsEphemeral {
		return database.ErrNotFound
	}
	p.Email, p.Username, p.Password, p.IsEphemeral = email, username, password, false
	return nil
}

func (m *memStore) UpsertSavedGame(_ context.Context, g *models.SavedGame) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *g
	cp.UpdatedAt = time.Now()
	m.saves[g.SessionID] = cp
	return nil
}

func (m *memStore) GetSavedGame(_ context.Context, id uuid.UUID) (*models.SavedGame, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.saves[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return &g, nil
}

func (m *memStore) ListSavedGames(_ context.Context, playerID uuid.UUID) ([]models.SavedGame, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.SavedGame
	for _, g := range m.saves {
		if g.PlayerID == playerID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (m *memStore) DeleteSavedGame(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.saves, id)
	return nil
}

func (m *memStore) statsFor(playerID uuid.UUID, gameType string) *models.GameStats {
	key := playerID.String() + "/" + gameType
	st, ok := m.stats[key]
	if !ok {
		st = &models.GameStats{PlayerID: playerID, GameType: gameType}
		m.stats[key] = st
	}
	return st
}

func (m *memStore) RecordAttempt(_ context.Context, playerID uuid.UUID, gameType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts++
	m.statsFor(playerID, gameType).Attempts++
	return nil
}

func (m *memStore) RecordWin(_ context.Context, playerID uuid.UUID, gameType string, elapsedMs int64, score *int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.wins++
	st := m.statsFor(playerID, gameType)
	st.Wins++
	if st.BestTimeMs == 0 || elapsedMs < st.BestTimeMs {
		st.BestTimeMs = elapsedMs
	}
	if score != nil && (st.BestScore == nil || *score > *st.BestScore) {
		st.BestScore = score
	}
	return nil
}

func (m *memStore) GetStats(_ context.Context, playerID uuid.UUID) ([]models.GameStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.GameStats
	for _, st := range m.stats {
		if st.PlayerID == playerID {
			out = append(out, *st)
		}
	}
	return out, nil
}

func (m *memStore) savedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.saves)
}

func (m *memStore) attemptCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.attempts
}

func newTestServer(t *testing.T) (*SessionServer, *memStore) {
	t.Helper()
	logger, _ := test.NewNullLogger()
	store := newMemStore()
	cfg := &config.Config{Seed: 42, Defaults: map[game.Variant]game.Options{}}
	return NewSessionServer(logger, cfg, store, nil), store
}

func do(t *testing.T, h http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: authCookie, Value: token})
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func cookieToken(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == authCookie {
			return c.Value
		}
	}
	t.Fatal("no auth cookie set")
	return ""
}

// createSession deals a game as a new guest and returns the guest's token.
func createSession(t *testing.T, srv *SessionServer, variant string) (game.BoardView, string) {
	t.Helper()
	w := do(t, srv.Routes(), http.MethodPost, "/session/create", "", map[string]interface{}{"variant": variant})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var board game.BoardView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &board))
	return board, cookieToken(t, w)
}

func TestCreateSessionCreatesGuest(t *testing.T) {
	srv, store := newTestServer(t)
	board, token := createSession(t, srv, "klondike")

	assert.Equal(t, game.Klondike, board.Variant)
	assert.NotEmpty(t, board.Stacks)
	assert.Equal(t, game.ModeNormal, board.Mode)
	assert.NotEmpty(t, token)
	require.Len(t, store.players, 1)

	s, ok := srv.Sessions.GetSession(board.SessionID)
	require.True(t, ok)
	for id, p := range store.players {
		assert.Equal(t, id, s.PlayerID)
		assert.True(t, p.IsEphemeral)
	}

	// The guest token is reused rather than minting another guest.
	w := do(t, srv.Routes(), http.MethodPost, "/session/create", token, map[string]interface{}{"variant": "spider"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Len(t, store.players, 1)
	assert.Len(t, srv.Sessions.SessionsForPlayer(s.PlayerID), 2)
}

func TestCreateSessionRejectsBadInput(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Routes()

	w := do(t, h, http.MethodPost, "/session/create", "", map[string]interface{}{"variant": "pyramid"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, http.MethodPost, "/session/create", "", map[string]interface{}{
		"variant": "spider",
		"options": map[string]interface{}{"spiderSuits": 3},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, http.MethodPost, "/session/create", "", map[string]interface{}{
		"variant": "klondike",
		"options": map[string]interface{}{"vegas": "yes"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateSessionAppliesOptions(t *testing.T) {
	srv, _ := newTestServer(t)
	w := do(t, srv.Routes(), http.MethodPost, "/session/create", "", map[string]interface{}{
		"variant": "klondike",
		"options": map[string]interface{}{"vegas": true, "dealThree": false, "autoMove": 0},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var board game.BoardView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &board))
	assert.True(t, board.Options.Vegas)
	assert.False(t, board.Options.DealThree)
	assert.Equal(t, -52, board.Score)
}

func TestPlayerCreateAndLogin(t *testing.T) {
	srv, store := newTestServer(t)
	h := srv.Routes()

	w := do(t, h, http.MethodPost, "/player/create", "", map[string]string{
		"email": "ada@example.com", "password": "hunter2", "username": "ada",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created models.Player
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Empty(t, created.Password)
	assert.Contains(t, store.players, created.ID)

	w = do(t, h, http.MethodPost, "/player/create", "", map[string]string{"email": "x@example.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, http.MethodPost, "/player/login", "", map[string]string{"email": "ada@example.com", "password": "hunter2"})
	require.Equal(t, http.StatusOK, w.Code)
	token := cookieToken(t, w)
	sub, err := auth.AuthenticateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, created.ID.String(), sub)

	w = do(t, h, http.MethodPost, "/player/login", "", map[string]string{"email": "ada@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestClaimGuestPlayer(t *testing.T) {
	srv, store := newTestServer(t)
	_, token := createSession(t, srv, "freecell")
	h := srv.Routes()

	w := do(t, h, http.MethodPost, "/player/claim", token, map[string]string{"email": "g@example.com", "password": "pw"})
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())
	for _, p := range store.players {
		assert.False(t, p.IsEphemeral)
		assert.Equal(t, "Guest", p.Username)
		assert.Equal(t, "g@example.com", p.Email)
	}

	w = do(t, h, http.MethodPost, "/player/claim", token, map[string]string{"email": "g@example.com", "password": "pw"})
	assert.Equal(t, http.StatusBadRequest, w.Code, "already claimed")

	w = do(t, h, http.MethodPost, "/player/claim", "", map[string]string{"email": "g@example.com", "password": "pw"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestResumeSession(t *testing.T) {
	srv, store := newTestServer(t)
	board, token := createSession(t, srv, "klondike")
	h := srv.Routes()

	s, ok := srv.Sessions.GetSession(board.SessionID)
	require.True(t, ok)
	require.True(t, s.Deal())
	moves := len(s.History())
	require.NoError(t, srv.saveSession(context.Background(), s))
	require.Equal(t, 1, store.savedCount())
	srv.Sessions.DeleteSession(s.ID)

	w := do(t, h, http.MethodPost, "/session/resume", token, map[string]interface{}{"sessionId": board.SessionID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp resumeSessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Restored)
	assert.Equal(t, board.SessionID, resp.Board.SessionID)
	assert.Equal(t, moves, resp.Board.Moves)

	restored, ok := srv.Sessions.GetSession(board.SessionID)
	require.True(t, ok)
	assert.Equal(t, s.PlayerID, restored.PlayerID)
	assert.NoError(t, restored.SanityCheck())

	// live sessions resume without touching the store
	w = do(t, h, http.MethodPost, "/session/resume", token, map[string]interface{}{"sessionId": board.SessionID})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestResumeSessionErrors(t *testing.T) {
	srv, store := newTestServer(t)
	board, token := createSession(t, srv, "spider")
	_, other := createSession(t, srv, "spider")
	h := srv.Routes()

	w := do(t, h, http.MethodPost, "/session/resume", other, map[string]interface{}{"sessionId": board.SessionID})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(t, h, http.MethodPost, "/session/resume", token, map[string]interface{}{"sessionId": uuid.New()})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, h, http.MethodPost, "/session/resume", "", map[string]interface{}{"sessionId": board.SessionID})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// A save that fails to decode is replaced by a fresh deal.
	s, _ := srv.Sessions.GetSession(board.SessionID)
	srv.Sessions.DeleteSession(board.SessionID)
	require.NoError(t, store.UpsertSavedGame(context.Background(), &models.SavedGame{
		SessionID: board.SessionID,
		PlayerID:  s.PlayerID,
		Variant:   "spider",
		State:     []byte("{not json"),
	}))
	w = do(t, h, http.MethodPost, "/session/resume", token, map[string]interface{}{"sessionId": board.SessionID})
	require.Equal(t, http.StatusOK, w.Code)
	var resp resumeSessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Restored)
	assert.Equal(t, 0, resp.Board.Moves)
}

func TestListSessionsAndStats(t *testing.T) {
	srv, store := newTestServer(t)
	board, token := createSession(t, srv, "klondike")
	h := srv.Routes()

	s, _ := srv.Sessions.GetSession(board.SessionID)
	require.True(t, s.Deal())
	assert.Eventually(t, func() bool { return store.attemptCount() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, store.UpsertSavedGame(context.Background(), &models.SavedGame{
		SessionID: uuid.New(),
		PlayerID:  s.PlayerID,
		Variant:   "freecell",
		GameType:  "Freecell",
	}))

	w := do(t, h, http.MethodGet, "/session/list", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []sessionSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 2)
	assert.True(t, list[0].Live)
	assert.Equal(t, board.SessionID, list[0].SessionID)
	assert.False(t, list[1].Live)
	assert.Equal(t, "freecell", list[1].Variant)

	w = do(t, h, http.MethodGet, "/session/stats", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats []models.GameStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	require.Len(t, stats, 1)
	assert.Equal(t, s.TypeString(), stats[0].GameType)
	assert.Equal(t, 1, stats[0].Attempts)
	assert.Zero(t, stats[0].Wins)
}

func TestSweepIdleUnloadsPausedSessions(t *testing.T) {
	srv, store := newTestServer(t)
	idle, token := createSession(t, srv, "freecell")
	running, _ := createSession(t, srv, "klondike")

	s, ok := srv.Sessions.GetSession(running.SessionID)
	require.True(t, ok)
	s.Resume()

	assert.Equal(t, 1, srv.SweepIdle(context.Background(), 0))
	_, ok = srv.Sessions.GetSession(idle.SessionID)
	assert.False(t, ok)
	_, ok = srv.Sessions.GetSession(running.SessionID)
	assert.True(t, ok)
	assert.Equal(t, 1, store.savedCount(), "an unloaded session is saved first")

	w := do(t, srv.Routes(), http.MethodPost, "/session/resume", token, map[string]interface{}{"sessionId": idle.SessionID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp resumeSessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Restored)
}

type brokenSnapshots struct{}

func (brokenSnapshots) SaveSnapshot(context.Context, uuid.UUID, []byte) error {
	return errors.New("redis down")
}

func (brokenSnapshots) LoadSnapshot(context.Context, uuid.UUID) ([]byte, error) {
	return nil, errors.New("redis down")
}

func (brokenSnapshots) DeleteSnapshot(context.Context, uuid.UUID) error {
	return errors.New("redis down")
}

// wonFreecell returns a Freecell session with every card on the foundations.
func wonFreecell(t *testing.T, playerID uuid.UUID) *game.Session {
	t.Helper()
	s, err := game.NewSession(game.Freecell, game.DefaultOptions(), 42, nil)
	require.NoError(t, err)
	st := s.Snapshot()
	l := s.Layout()

	st.Value, st.Suit = nil, nil
	for i := range st.AnchorCardCount {
		st.AnchorCardCount[i], st.AnchorHiddenCount[i] = 0, 0
	}
	for i, id := range l.Sinks {
		st.AnchorCardCount[id] = card.King
		for v := card.Ace; v <= card.King; v++ {
			st.Value = append(st.Value, v)
			st.Suit = append(st.Suit, i)
		}
	}
	won, restored := game.RestoreSession(uuid.New(), playerID, st, 42, nil)
	require.True(t, restored)
	require.True(t, won.Won())
	return won
}

func TestSaveWonSessionLogsSnapshotFailure(t *testing.T) {
	logger, hook := test.NewNullLogger()
	store := newMemStore()
	cfg := &config.Config{Seed: 42, Defaults: map[game.Variant]game.Options{}}
	srv := NewSessionServer(logger, cfg, store, brokenSnapshots{})

	s := wonFreecell(t, uuid.New())
	require.NoError(t, store.UpsertSavedGame(context.Background(), &models.SavedGame{SessionID: s.ID, PlayerID: s.PlayerID}))

	require.NoError(t, srv.saveSession(context.Background(), s))
	assert.Zero(t, store.savedCount(), "a won game is removed from the store")
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Contains(t, hook.LastEntry().Message, "failed to drop snapshot")
}
