package app

import (
	"fmt"
	"os"

	"github.com/shriyansnaik/multimodal-rag/features/document"
	"github.com/shriyansnaik/multimodal-rag/internal/adapter/chromem"
	"github.com/shriyansnaik/multimodal-rag/internal/config"
)

// Dependencies holds the stateful backends the app is built on: the
// file-backed vector store and the document record catalog. Both live
// under the store root and survive restarts.
type Dependencies struct {
	ChunkStore   *chromem.Store
	DocumentRepo *document.FileRepo
}

func Bootstrap(cfg *config.Config) (*Dependencies, error) {
	if err := os.MkdirAll(cfg.UploadsDir, 0o750); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}
	if err := os.MkdirAll(cfg.StoreDir, 0o750); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}

	// The metadata/ and settings.json entries share the store root with the
	// vector store's own collection directories; chromem skips files and
	// directories it does not recognize.
	store, err := chromem.NewStore(cfg.StoreDir, cfg.Collection)
	if err != nil {
		return nil, fmt.Errorf("vector store error: %w", err)
	}

	repo, err := document.NewFileRepo(cfg.StoreDir)
	if err != nil {
		return nil, fmt.Errorf("document repo error: %w", err)
	}

	return &Dependencies{
		ChunkStore:   store,
		DocumentRepo: repo,
	}, nil
}
