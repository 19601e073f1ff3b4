package document

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Record tracks one ingested PDF. It is written only after every chunk
// of the document has been indexed, so a record's presence means the
// document is queryable.
type Record struct {
	PDFName          string `json:"pdf_name"`
	FullPath         string `json:"full_path"`
	ChunkCount       int    `json:"chunk_count"`
	ProcessingStatus string `json:"processing_status"`
}

const StatusCompleted = "completed"

var ErrNotFound = errors.New("document record not found")

type Repository interface {
	Save(ctx context.Context, rec *Record) error
	Get(ctx context.Context, pdfName string) (*Record, error)
	List(ctx context.Context) ([]Record, error)
	Delete(ctx context.Context, pdfName string) error
	Count(ctx context.Context) (int, error)
}

// FileRepo keeps one JSON record per document under <storeRoot>/metadata,
// next to the vector store the records describe.
type FileRepo struct {
	dir string
}

func NewFileRepo(storeRoot string) (*FileRepo, error) {
	dir := filepath.Join(storeRoot, "metadata")
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create metadata dir: %w", err)
	}
	return &FileRepo{dir: dir}, nil
}

func (r *FileRepo) path(pdfName string) string {
	return filepath.Join(r.dir, filepath.Base(pdfName)+".json")
}

func (r *FileRepo) Save(ctx context.Context, rec *Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}

	// Write-then-rename so a crash mid-write never leaves a torn record.
	target := r.path(rec.PDFName)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	if err := os.Rename(tmp, target); err != nil {
		return fmt.Errorf("replace record: %w", err)
	}
	return nil
}

func (r *FileRepo) Get(ctx context.Context, pdfName string) (*Record, error) {
	data, err := os.ReadFile(r.path(pdfName))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read record: %w", err)
	}

	rec := &Record{}
	if err := json.Unmarshal(data, rec); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return rec, nil
}

func (r *FileRepo) List(ctx context.Context) ([]Record, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("read metadata dir: %w", err)
	}

	var records []Record
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(r.dir, entry.Name()))
		if err != nil {
			slog.WarnContext(ctx, "skipping unreadable record", "file", entry.Name(), "error", err)
			continue
		}

		var rec Record
		if err := json.Unmarshal(data, &rec); err != nil {
			slog.WarnContext(ctx, "skipping corrupt record", "file", entry.Name(), "error", err)
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// Delete removes the record. A missing record deletes cleanly.
func (r *FileRepo) Delete(ctx context.Context, pdfName string) error {
	err := os.Remove(r.path(pdfName))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete record: %w", err)
	}
	return nil
}

func (r *FileRepo) Count(ctx context.Context) (int, error) {
	records, err := r.List(ctx)
	if err != nil {
		return 0, err
	}
	return len(records), nil
}
