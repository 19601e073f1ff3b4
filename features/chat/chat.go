package chat

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/shriyansnaik/multimodal-rag/internal/synthesis"
)

// Answerer produces a grounded answer for a question given prior turns.
type Answerer interface {
	Answer(ctx context.Context, history []synthesis.Turn, question string) string
}

type Service struct {
	answerer Answerer
	sessions *SessionStore
}

func NewService(answerer Answerer, sessions *SessionStore) *Service {
	return &Service{
		answerer: answerer,
		sessions: sessions,
	}
}

// Ask answers the question within the given session and records both the
// question and the answer as new turns. An empty session id starts a new
// session. The history handed to the answerer excludes the current
// question; the model receives that separately as the active message.
func (s *Service) Ask(ctx context.Context, sessionID, question string) (string, string) {
	if sessionID == "" {
		sessionID = uuid.New().String()
		slog.InfoContext(ctx, "chat session started", "session_id", sessionID)
	}

	history := s.sessions.History(sessionID)
	answer := s.answerer.Answer(ctx, history, question)

	s.sessions.Append(sessionID,
		synthesis.Turn{Role: synthesis.RoleUser, Content: question},
		synthesis.Turn{Role: synthesis.RoleAssistant, Content: answer},
	)

	slog.InfoContext(ctx, "chat turn completed",
		"session_id", sessionID,
		"history_turns", len(history),
	)

	return sessionID, answer
}

// History returns the session's turns in order. Unknown sessions yield an
// empty history.
func (s *Service) History(sessionID string) []synthesis.Turn {
	return s.sessions.History(sessionID)
}

// Clear drops the session's history.
func (s *Service) Clear(ctx context.Context, sessionID string) {
	s.sessions.Clear(sessionID)
	slog.InfoContext(ctx, "chat session cleared", "session_id", sessionID)
}
