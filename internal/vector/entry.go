package vector

import (
	"fmt"
	"strconv"
)

// Metadata keys attached to every index entry. pdf_name is the removal
// filter key; page_number is the 1-based chunk ordinal kept for wire
// compatibility (see source_page for the real page).
const (
	MetaPDFName     = "pdf_name"
	MetaPageNumber  = "page_number"
	MetaChunkNumber = "chunk_number"
	MetaSourcePage  = "source_page"
)

// Entry is one chunk ready for the vector store: its deterministic id is
// derived from the owning document name and the chunk ordinal.
type Entry struct {
	DocumentName string
	Ordinal      int
	SourcePage   int
	Text         string
	Embedding    []float32
}

// ChunkID builds the deterministic per-chunk identifier. Re-ingesting a
// document reproduces the same ids, which is what makes remove-then-add
// re-ingestion clean.
func ChunkID(documentName string, ordinal int) string {
	return fmt.Sprintf("%s_chunk_%d", documentName, ordinal)
}

func (e Entry) ID() string {
	return ChunkID(e.DocumentName, e.Ordinal)
}

// Metadata renders the entry's provenance as the flat string map the store
// persists. page_number stays the chunk ordinal plus one; the true PDF page
// of the chunk's page group travels in source_page.
func (e Entry) Metadata() map[string]string {
	return map[string]string{
		MetaPDFName:     e.DocumentName,
		MetaPageNumber:  strconv.Itoa(e.Ordinal + 1),
		MetaChunkNumber: strconv.Itoa(e.Ordinal),
		MetaSourcePage:  strconv.Itoa(e.SourcePage),
	}
}
