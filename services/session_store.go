package services

import (
	"errors"
	"sync"
	"time"

	"summarysnap/internal/logger"

	"github.com/google/uuid"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionStore keeps sessions in memory. Sessions share nothing with each
// other.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
}

func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (st *SessionStore) Create() *Session {
	s := newSession(uuid.NewString(), st.now())

	st.mu.Lock()
	st.sessions[s.ID] = s
	st.mu.Unlock()

	logger.Info("session created", "session_id", s.ID)
	return s
}

// Get returns the session and marks it active.
func (st *SessionStore) Get(id string) (*Session, error) {
	st.mu.RLock()
	s, ok := st.sessions[id]
	st.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	s.touch(st.now())
	return s, nil
}

// Destroy drops the session and everything it holds. An action still running
// on it completes against the detached session.
func (st *SessionStore) Destroy(id string) error {
	st.mu.Lock()
	_, ok := st.sessions[id]
	delete(st.sessions, id)
	st.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	logger.Info("session destroyed", "session_id", id)
	return nil
}

// Sweep destroys sessions idle for longer than the TTL and returns how many
// were removed. Sessions with a running action are skipped.
func (st *SessionStore) Sweep() int {
	if st.ttl <= 0 {
		return 0
	}
	cutoff := st.now().Add(-st.ttl)

	st.mu.Lock()
	defer st.mu.Unlock()

	removed := 0
	for id, s := range st.sessions {
		if !s.LastActive().Before(cutoff) {
			continue
		}
		if !s.action.TryLock() {
			continue
		}
		delete(st.sessions, id)
		s.action.Unlock()
		removed++
	}
	if removed > 0 {
		logger.Info("expired sessions swept", "removed", removed, "remaining", len(st.sessions))
	}
	return removed
}

func (st *SessionStore) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

func (st *SessionStore) TTL() time.Duration { return st.ttl }
