package synthesis

import (
	"context"
	"log/slog"
	"strings"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is a single message in a chat conversation.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Retriever interface {
	Retrieve(ctx context.Context, question string) []string
}

type Generator interface {
	Generate(ctx context.Context, system string, history []Turn, message string) (string, error)
}

type Service struct {
	retriever Retriever
	generator Generator
}

func NewService(r Retriever, g Generator) *Service {
	return &Service{retriever: r, generator: g}
}

// Answer retrieves context for the question and asks the model for a
// grounded markdown answer. The prior conversation is passed through as
// chat history; the question itself only appears inside the prompt.
// Generation failures come back as FallbackAnswer so the caller always
// has a displayable reply.
func (s *Service) Answer(ctx context.Context, history []Turn, question string) string {
	chunks := s.retriever.Retrieve(ctx, question)
	prompt := UserPrompt(strings.Join(chunks, "\n\n"), question)

	answer, err := s.generator.Generate(ctx, SystemPrompt, history, prompt)
	if err != nil {
		slog.ErrorContext(ctx, "answer generation failed", "error", err, "question_length", len(question))
		return FallbackAnswer
	}

	slog.InfoContext(ctx, "answer generated", "context_chunks", len(chunks), "answer_length", len(answer))
	return answer
}
