package document

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

type Ingestor interface {
	Run(ctx context.Context, pdfPath, figuresDir, documentName string) (int, error)
}

type ChunkStore interface {
	DeleteByDocument(ctx context.Context, name string) error
}

// Service owns the document lifecycle: every ingested PDF gets its own
// folder under the uploads directory holding the PDF and its extracted
// figures, a set of chunks in the vector store, and a record.
type Service struct {
	repo       Repository
	pipeline   Ingestor
	chunkStore ChunkStore
	uploadsDir string
}

func NewService(repo Repository, pipeline Ingestor, chunkStore ChunkStore, uploadsDir string) *Service {
	return &Service{
		repo:       repo,
		pipeline:   pipeline,
		chunkStore: chunkStore,
		uploadsDir: uploadsDir,
	}
}

// Ingest stores the PDF and runs it through the ingestion pipeline. A
// document that was ingested before is removed first, so re-uploading
// replaces it. The record is saved only after indexing succeeded;
// on failure the document folder and any indexed chunks are cleaned up.
func (s *Service) Ingest(ctx context.Context, r io.Reader, filename string) (*Record, error) {
	pdfName := filepath.Base(filename)

	if _, err := s.repo.Get(ctx, pdfName); err == nil {
		slog.InfoContext(ctx, "document already ingested, replacing", "document", pdfName)
		if err := s.Remove(ctx, pdfName); err != nil {
			return nil, fmt.Errorf("replace existing document: %w", err)
		}
	}

	folder := filepath.Join(s.uploadsDir, docStem(pdfName))
	figuresDir := filepath.Join(folder, "figures")
	if err := os.MkdirAll(figuresDir, 0o750); err != nil {
		return nil, fmt.Errorf("create document folder: %w", err)
	}

	pdfDest := filepath.Join(folder, pdfName)
	if err := writeFile(pdfDest, r); err != nil {
		s.cleanup(ctx, pdfName, folder)
		return nil, fmt.Errorf("store pdf: %w", err)
	}

	count, err := s.pipeline.Run(ctx, pdfDest, figuresDir, pdfName)
	if err != nil {
		s.cleanup(ctx, pdfName, folder)
		return nil, fmt.Errorf("ingest %s: %w", pdfName, err)
	}

	rec := &Record{
		PDFName:          pdfName,
		FullPath:         pdfDest,
		ChunkCount:       count,
		ProcessingStatus: StatusCompleted,
	}
	if err := s.repo.Save(ctx, rec); err != nil {
		return nil, fmt.Errorf("save record for %s: %w", pdfName, err)
	}

	slog.InfoContext(ctx, "document ingested", "document", pdfName, "chunks", count)
	return rec, nil
}

// Remove deletes the document's chunks, record, and folder. Each step is
// attempted even if an earlier one failed. Removing a document that has
// no record logs and succeeds.
func (s *Service) Remove(ctx context.Context, pdfName string) error {
	pdfName = filepath.Base(pdfName)

	if _, err := s.repo.Get(ctx, pdfName); errors.Is(err, ErrNotFound) {
		slog.InfoContext(ctx, "no record for document, nothing to remove", "document", pdfName)
		return nil
	}

	var errs []error

	if err := s.chunkStore.DeleteByDocument(ctx, pdfName); err != nil {
		errs = append(errs, fmt.Errorf("delete chunks: %w", err))
	}
	if err := s.repo.Delete(ctx, pdfName); err != nil {
		errs = append(errs, fmt.Errorf("delete record: %w", err))
	}
	if err := os.RemoveAll(filepath.Join(s.uploadsDir, docStem(pdfName))); err != nil {
		errs = append(errs, fmt.Errorf("remove files: %w", err))
	}

	if err := errors.Join(errs...); err != nil {
		return err
	}

	slog.InfoContext(ctx, "document removed", "document", pdfName)
	return nil
}

func (s *Service) List(ctx context.Context) ([]Record, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, pdfName string) (*Record, error) {
	return s.repo.Get(ctx, filepath.Base(pdfName))
}

// Reingest re-runs the pipeline for an already ingested document using
// the stored PDF. The bytes are read up front because Ingest clears the
// document folder before writing the fresh copy.
func (s *Service) Reingest(ctx context.Context, pdfName string) (*Record, error) {
	rec, err := s.repo.Get(ctx, filepath.Base(pdfName))
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(rec.FullPath)
	if err != nil {
		return nil, fmt.Errorf("read stored pdf: %w", err)
	}

	return s.Ingest(ctx, bytes.NewReader(data), rec.PDFName)
}

// Reconcile ingests PDFs found under the uploads directory that have no
// record, picking up files dropped in by hand or left over from a crash
// mid-ingestion. Failures are collected per document so one bad file
// does not block the rest.
func (s *Service) Reconcile(ctx context.Context) error {
	entries, err := os.ReadDir(s.uploadsDir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read uploads dir: %w", err)
	}

	var errs []error
	for _, entry := range entries {
		name := entry.Name()

		var pdfPath string
		switch {
		case !entry.IsDir() && strings.EqualFold(filepath.Ext(name), ".pdf"):
			pdfPath = filepath.Join(s.uploadsDir, name)
		case entry.IsDir():
			candidate := filepath.Join(s.uploadsDir, name, name+".pdf")
			if _, err := os.Stat(candidate); err != nil {
				continue
			}
			pdfPath = candidate
			name += ".pdf"
		default:
			continue
		}

		if _, err := s.repo.Get(ctx, name); err == nil {
			continue
		}

		slog.InfoContext(ctx, "reconciling unindexed pdf", "document", name)
		data, err := os.ReadFile(pdfPath)
		if err != nil {
			errs = append(errs, fmt.Errorf("read %s: %w", name, err))
			continue
		}
		if _, err := s.Ingest(ctx, bytes.NewReader(data), name); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// cleanup undoes a partial ingestion: the document folder and whatever
// chunks made it into the store. No record exists at this point.
func (s *Service) cleanup(ctx context.Context, pdfName, folder string) {
	if err := os.RemoveAll(folder); err != nil {
		slog.WarnContext(ctx, "failed to remove document folder", "document", pdfName, "error", err)
	}
	if err := s.chunkStore.DeleteByDocument(ctx, pdfName); err != nil {
		slog.WarnContext(ctx, "failed to remove document chunks", "document", pdfName, "error", err)
	}
}

func docStem(pdfName string) string {
	return strings.TrimSuffix(pdfName, filepath.Ext(pdfName))
}

func writeFile(path string, r io.Reader) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
