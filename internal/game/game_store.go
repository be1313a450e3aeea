// internal/game/game_store.go
package game

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// SessionStore holds the sessions that are live on this server.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[uuid.UUID]*Session),
	}
}

func (st *SessionStore) AddSession(s *Session) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.sessions[s.ID] = s
}

func (st *SessionStore) GetSession(id uuid.UUID) (*Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, exists := st.sessions[id]
	return s, exists
}

func (st *SessionStore) DeleteSession(id uuid.UUID) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, id)
}

// SessionsForPlayer returns every live session owned by playerID.
func (st *SessionStore) SessionsForPlayer(playerID uuid.UUID) []*Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	var out []*Session
	for _, s := range st.sessions {
		if s.PlayerID == playerID {
			out = append(out, s)
		}
	}
	return out
}

// Sweep removes and returns the sessions that have been paused for at least
// idle as of now.
func (st *SessionStore) Sweep(idle time.Duration, now time.Time) []*Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	var out []*Session
	for id, s := range st.sessions {
		if since, paused := s.IdleSince(); paused && now.Sub(since) >= idle {
			delete(st.sessions, id)
			out = append(out, s)
		}
	}
	return out
}
