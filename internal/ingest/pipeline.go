package ingest

import (
	"context"
	"log/slog"

	"github.com/shriyansnaik/multimodal-rag/internal/extract"
)

// Pipeline runs the full ingestion flow for one PDF: extract content
// units, caption images, group page-wise into chunks, embed and index.
type Pipeline struct {
	extractor  extract.Extractor
	summarizer *Summarizer
	indexer    *Indexer
	assetBase  string
}

func NewPipeline(extractor extract.Extractor, summarizer *Summarizer, indexer *Indexer, assetBase string) *Pipeline {
	return &Pipeline{
		extractor:  extractor,
		summarizer: summarizer,
		indexer:    indexer,
		assetBase:  assetBase,
	}
}

// Run ingests the PDF at pdfPath, writing extracted figures into
// figuresDir, and returns how many chunks were indexed under
// documentName.
func (p *Pipeline) Run(ctx context.Context, pdfPath, figuresDir, documentName string) (int, error) {
	units, err := p.extractor.Extract(ctx, pdfPath, figuresDir)
	if err != nil {
		return 0, err
	}

	summaries, err := p.summarizer.Run(ctx, units)
	if err != nil {
		return 0, err
	}

	chunks := Materialize(GroupByPage(units), summaries, p.assetBase)

	count, err := p.indexer.Index(ctx, documentName, chunks)
	if err != nil {
		return 0, err
	}

	slog.InfoContext(ctx, "pdf ingested", "document", documentName, "units", len(units), "chunks", count)
	return count, nil
}
