package extract

import (
	"context"
	"log/slog"
	"os"

	"github.com/ledongthuc/pdf"

	"github.com/shriyansnaik/multimodal-rag/internal/text"
)

// Native extracts page-wise plain text locally. It is the degraded fallback
// when no partition service is available: no images, no table structure,
// every unit is a text unit.
type Native struct {
	hints Hints
}

func NewNative(hints Hints) *Native {
	return &Native{hints: hints}
}

func (n *Native) Extract(ctx context.Context, pdfPath, figuresDir string) ([]Unit, error) {
	f, err := os.Open(pdfPath)
	if err != nil {
		return nil, &Error{Path: pdfPath, Err: err}
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, &Error{Path: pdfPath, Err: err}
	}

	reader, err := pdf.NewReader(f, stat.Size())
	if err != nil {
		return nil, &Error{Path: pdfPath, Err: err}
	}

	var units []Unit
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		pageText, err := page.GetPlainText(nil)
		if err != nil {
			// A single unreadable page fails the whole document.
			return nil, &Error{Path: pdfPath, Err: err}
		}

		fragments := text.Combine(
			[]string{pageText},
			n.hints.CombineTextUnderNChars,
			n.hints.NewAfterNChars,
			n.hints.MaxCharacters,
		)
		for _, frag := range fragments {
			units = append(units, Unit{Kind: KindText, Page: i, Text: frag})
		}
	}

	slog.InfoContext(ctx, "native extraction complete", "path", pdfPath, "pages", numPages, "units", len(units))
	return units, nil
}
