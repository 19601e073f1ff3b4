package chromem

import (
	"context"
	"fmt"
	"sync"

	chromemgo "github.com/philippgille/chromem-go"

	"github.com/shriyansnaik/multimodal-rag/internal/retrieval"
	"github.com/shriyansnaik/multimodal-rag/internal/vector"
)

// Store is a file-backed vector store. Every mutation is flushed to the
// persistence directory, so indexed documents survive restarts.
type Store struct {
	db  *chromemgo.DB
	col *chromemgo.Collection

	// Excludes writers during the count-then-query window.
	mu sync.RWMutex
}

func NewStore(path, collection string) (*Store, error) {
	db, err := chromemgo.NewPersistentDB(path, false)
	if err != nil {
		return nil, fmt.Errorf("open vector store: %w", err)
	}

	col, err := db.GetOrCreateCollection(collection, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("open collection %q: %w", collection, err)
	}

	return &Store{db: db, col: col}, nil
}

// Add indexes the entries in one batch. An empty batch is a no-op.
func (s *Store) Add(ctx context.Context, entries []vector.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, len(entries))
	embeddings := make([][]float32, len(entries))
	metadatas := make([]map[string]string, len(entries))
	contents := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.ID()
		embeddings[i] = e.Embedding
		metadatas[i] = e.Metadata()
		contents[i] = e.Text
	}

	if err := s.col.Add(ctx, ids, embeddings, metadatas, contents); err != nil {
		return fmt.Errorf("add entries: %w", err)
	}
	return nil
}

// DeleteByDocument removes every chunk indexed for the named document.
// A document with no indexed chunks deletes cleanly.
func (s *Store) DeleteByDocument(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.col.Delete(ctx, map[string]string{vector.MetaPDFName: name}, nil); err != nil {
		return fmt.Errorf("delete chunks for %q: %w", name, err)
	}
	return nil
}

// Query returns the closest entries by similarity. The limit is clamped
// to the collection size; an empty collection yields no results.
func (s *Store) Query(ctx context.Context, vec []float32, limit int) ([]retrieval.SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := s.col.Count()
	if count == 0 {
		return nil, nil
	}
	if limit > count {
		limit = count
	}
	if limit < 1 {
		limit = 1
	}

	res, err := s.col.QueryEmbedding(ctx, vec, limit, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query collection: %w", err)
	}

	results := make([]retrieval.SearchResult, len(res))
	for i, r := range res {
		results[i] = retrieval.SearchResult{
			Content:  r.Content,
			Score:    r.Similarity,
			Metadata: r.Metadata,
		}
	}
	return results, nil
}

// Count reports how many chunks are indexed across all documents.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.col.Count()
}
