package services

import (
	"sync"
	"time"

	"summarysnap/models"
)

// Session is the per-user pipeline state: the processed document, its chunk
// set and index, and the chat transcript.
//
// action serialises pipeline actions. mu guards the fields and is only held
// for short reads and commits, so snapshots never wait for a running action.
type Session struct {
	ID        string
	CreatedAt time.Time

	action sync.Mutex

	mu         sync.RWMutex
	state      models.SessionState
	document   *models.DocumentInfo
	chunks     []models.Chunk
	index      *Index
	transcript []models.ConversationTurn
	lastActive time.Time
}

func newSession(id string, now time.Time) *Session {
	return &Session{
		ID:         id,
		CreatedAt:  now,
		state:      models.SessionEmpty,
		lastActive: now,
	}
}

// sessionView is what a read-only action needs from the session.
type sessionView struct {
	state      models.SessionState
	chunks     []models.Chunk
	index      *Index
	transcript []models.ConversationTurn
}

// prior holds what a failed processing action restores.
type prior struct {
	state models.SessionState
}

func (s *Session) view() sessionView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sessionView{
		state:      s.state,
		chunks:     s.chunks,
		index:      s.index,
		transcript: append([]models.ConversationTurn(nil), s.transcript...),
	}
}

// beginProcessing moves to Processing and returns the state to restore on
// failure. The previous document and index stay in place until commit.
func (s *Session) beginProcessing() prior {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := prior{state: s.state}
	s.state = models.SessionProcessing
	return p
}

func (s *Session) restore(p prior) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = p.state
}

// commitDocument swaps in a new document, chunk set and index together. The
// previous index is dropped. The transcript is kept.
func (s *Session) commitDocument(info *models.DocumentInfo, chunks []models.Chunk, ix *Index) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.document = info
	s.chunks = chunks
	s.index = ix
	s.state = models.SessionReady
}

func (s *Session) appendTurns(turns ...models.ConversationTurn) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcript = append(s.transcript, turns...)
	return len(s.transcript)
}

func (s *Session) clearTranscript() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcript = nil
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if now.After(s.lastActive) {
		s.lastActive = now
	}
}

// Snapshot returns a consistent copy of the session's visible state.
func (s *Session) Snapshot() models.SessionSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := models.SessionSnapshot{
		ID:         s.ID,
		State:      s.state,
		Chunks:     len(s.chunks),
		Turns:      len(s.transcript),
		CreatedAt:  s.CreatedAt,
		LastActive: s.lastActive,
	}
	if s.document != nil {
		doc := *s.document
		snap.Document = &doc
	}
	return snap
}

// Transcript returns a copy of the conversation so far.
func (s *Session) Transcript() []models.ConversationTurn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.ConversationTurn(nil), s.transcript...)
}

// Index returns the current index, nil before the first processed document.
func (s *Session) Index() *Index {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index
}

func (s *Session) LastActive() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastActive
}
