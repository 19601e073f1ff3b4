package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const defaultTopK = 3

// FileRepo persists settings as a single JSON file under the store root,
// next to the vector store it configures.
type FileRepo struct {
	path string
	mu   sync.Mutex
}

func NewFileRepo(dir string) (*FileRepo, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create settings dir: %w", err)
	}
	return &FileRepo{path: filepath.Join(dir, "settings.json")}, nil
}

func (r *FileRepo) Get(ctx context.Context) (*Settings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		return &Settings{SearchTopK: defaultTopK}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	s := &Settings{}
	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}
	if s.SearchTopK < 1 {
		s.SearchTopK = defaultTopK
	}
	return s, nil
}

func (r *FileRepo) Update(ctx context.Context, s *Settings) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s.SearchTopK < 1 {
		s.SearchTopK = defaultTopK
	}

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	// Write-then-rename so a crash mid-write never leaves a torn file.
	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		return fmt.Errorf("replace settings: %w", err)
	}
	return nil
}
