package retrieval

import (
	"context"
	"log/slog"
	"time"

	"github.com/shriyansnaik/multimodal-rag/internal/middleware"
	"github.com/shriyansnaik/multimodal-rag/internal/settings"
)

// SearchResult is one scored chunk returned from the vector store.
type SearchResult struct {
	Content  string            `json:"content"`
	Score    float32           `json:"score"`
	Metadata map[string]string `json:"metadata"`
}

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type VectorStore interface {
	Query(ctx context.Context, vector []float32, limit int) ([]SearchResult, error)
}

type Service struct {
	embedder Embedder
	store    VectorStore
	settings *settings.Service
	logger   *QueryLogger
}

func NewService(e Embedder, vs VectorStore, set *settings.Service, l *QueryLogger) *Service {
	return &Service{embedder: e, store: vs, settings: set, logger: l}
}

// Search embeds the question and returns the closest chunks, at most the
// configured top K. A collection holding fewer entries yields fewer results.
func (s *Service) Search(ctx context.Context, question string) ([]SearchResult, error) {
	start := time.Now()
	var results []SearchResult
	var topK int
	var err error

	defer func() {
		if s.logger != nil && err == nil {
			s.logger.Log(QueryLogEntry{
				Query:         question,
				TopK:          topK,
				NumResults:    len(results),
				Duration:      time.Since(start),
				CorrelationID: middleware.GetCorrelationID(ctx),
			})
		}
	}()

	cfg, err := s.settings.Get(ctx)
	if err != nil {
		// Fallback defaults if settings fail (shouldn't happen)
		cfg = &settings.Settings{SearchTopK: 3}
	}
	topK = cfg.SearchTopK

	vec, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return nil, err
	}

	results, err = s.store.Query(ctx, vec, topK)
	if err != nil {
		return nil, err
	}
	return results, nil
}

// Retrieve returns the chunk texts closest to the question. Any failure
// degrades to an empty context instead of propagating, so the answer
// flow keeps going and the model refuses from lack of context.
func (s *Service) Retrieve(ctx context.Context, question string) []string {
	results, err := s.Search(ctx, question)
	if err != nil {
		slog.ErrorContext(ctx, "retrieval failed, continuing with empty context", "error", err)
		return nil
	}

	texts := make([]string, len(results))
	for i, r := range results {
		texts[i] = r.Content
	}
	return texts
}
