package extract

import (
	"context"
	"fmt"
)

// Kind tags a content unit with the shape of its payload.
type Kind string

const (
	KindText   Kind = "text"
	KindTable  Kind = "table"
	KindImage  Kind = "image"
	KindFooter Kind = "footer"
)

// Unit is one typed block of PDF content in document reading order.
// Text and Table units carry Text; Image units carry the path of the
// extracted asset file instead.
type Unit struct {
	Kind Kind `json:"kind"`
	Page int  `json:"page"`

	Text      string `json:"text,omitempty"`
	ImagePath string `json:"image_path,omitempty"`
}

// Hints bound how aggressively adjacent small text fragments are merged
// into one unit. They affect chunk granularity, not correctness.
type Hints struct {
	MaxCharacters          int
	NewAfterNChars         int
	CombineTextUnderNChars int
}

// Extractor decomposes a PDF into ordered units. Image assets are written
// under figuresDir. Extraction is all or nothing per document.
type Extractor interface {
	Extract(ctx context.Context, pdfPath, figuresDir string) ([]Unit, error)
}

// Error marks a document as unreadable or the extraction backend as
// unusable. It is fatal to the ingestion of that document.
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("extract %s: %v", e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
