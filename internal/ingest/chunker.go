package ingest

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/shriyansnaik/multimodal-rag/internal/extract"
)

// Chunk is one page-wise group of content units rendered to text.
type Chunk struct {
	Ordinal    int
	SourcePage int
	Text       string
}

// GroupByPage splits units into page-wise groups. Footers are dropped.
// A unit whose page differs from the previous kept unit's page starts a
// new group, so a document that revisits a page produces a new group
// rather than merging into the earlier one.
func GroupByPage(units []extract.Unit) [][]extract.Unit {
	var groups [][]extract.Unit
	lastPage := -1

	for _, u := range units {
		if u.Kind == extract.KindFooter {
			continue
		}
		if len(groups) == 0 || u.Page != lastPage {
			groups = append(groups, nil)
		}
		lastPage = u.Page
		groups[len(groups)-1] = append(groups[len(groups)-1], u)
	}
	return groups
}

// Materialize renders each group into one chunk, units joined by
// newlines. Image units become inline markdown references described by
// their generated summary, or by SummaryFailure when none exists.
func Materialize(groups [][]extract.Unit, summaries map[string]Summary, assetBase string) []Chunk {
	chunks := make([]Chunk, 0, len(groups))

	for i, group := range groups {
		parts := make([]string, 0, len(group))
		page := 0
		for _, u := range group {
			if page == 0 {
				page = u.Page
			}
			if u.Kind == extract.KindImage {
				parts = append(parts, imageMarker(u.ImagePath, summaries[u.ImagePath], assetBase))
				continue
			}
			parts = append(parts, u.Text)
		}

		chunks = append(chunks, Chunk{
			Ordinal:    i,
			SourcePage: page,
			Text:       strings.Join(parts, "\n"),
		})
	}
	return chunks
}

func imageMarker(imagePath string, summary Summary, assetBase string) string {
	desc := summary.Text
	if summary.Err != nil || desc == "" {
		desc = SummaryFailure
	}
	return fmt.Sprintf("![%s](%s)", desc, relativePath(imagePath, assetBase))
}

// relativePath rewrites the stored image path relative to the asset base
// with a leading "./", the form the frontend resolves images from.
func relativePath(path, base string) string {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return path
	}
	return "./" + filepath.ToSlash(rel)
}
