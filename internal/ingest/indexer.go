package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/shriyansnaik/multimodal-rag/internal/vector"
)

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type Store interface {
	Add(ctx context.Context, entries []vector.Entry) error
}

// Indexer embeds chunks in parallel and writes them to the vector store
// as a single batch.
type Indexer struct {
	embedder Embedder
	store    Store
	workers  int
}

func NewIndexer(embedder Embedder, store Store, workers int) *Indexer {
	if workers < 1 {
		workers = 1
	}
	return &Indexer{embedder: embedder, store: store, workers: workers}
}

// Index embeds every chunk and stores the batch, preserving chunk order.
// Nothing is written unless every chunk embedded successfully.
func (ix *Indexer) Index(ctx context.Context, documentName string, chunks []Chunk) (int, error) {
	if len(chunks) == 0 {
		return 0, nil
	}

	entries := make([]vector.Entry, len(chunks))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(ix.workers)

	for i, chunk := range chunks {
		g.Go(func() error {
			emb, err := ix.embedder.Embed(ctx, chunk.Text)
			if err != nil {
				return fmt.Errorf("embed chunk %d: %w", chunk.Ordinal, err)
			}
			entries[i] = vector.Entry{
				DocumentName: documentName,
				Ordinal:      chunk.Ordinal,
				SourcePage:   chunk.SourcePage,
				Text:         chunk.Text,
				Embedding:    emb,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return 0, err
	}

	if err := ix.store.Add(ctx, entries); err != nil {
		return 0, fmt.Errorf("store entries: %w", err)
	}

	slog.InfoContext(ctx, "chunks indexed", "document", documentName, "chunks", len(entries))
	return len(entries), nil
}
