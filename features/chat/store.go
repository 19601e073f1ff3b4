package chat

import (
	"sync"

	"github.com/shriyansnaik/multimodal-rag/internal/synthesis"
)

// SessionStore holds per-session conversation history in memory. Sessions
// are created on first append and live until cleared or the process exits.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string][]synthesis.Turn
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string][]synthesis.Turn),
	}
}

// History returns a copy of the session's turns in order, or nil for an
// unknown session.
func (s *SessionStore) History(id string) []synthesis.Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()

	turns := s.sessions[id]
	if len(turns) == 0 {
		return nil
	}

	out := make([]synthesis.Turn, len(turns))
	copy(out, turns)
	return out
}

// Append adds turns to the end of the session, creating it if needed.
func (s *SessionStore) Append(id string, turns ...synthesis.Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[id] = append(s.sessions[id], turns...)
}

// Clear removes the session's history. Unknown sessions are a no-op.
func (s *SessionStore) Clear(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
}
