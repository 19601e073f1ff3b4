package ingest

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/shriyansnaik/multimodal-rag/internal/extract"
)

const (
	imageSystemPrompt = "Given an image, you need to generate a summary that describes the image precisely. You need to ensure all details are covered and the summary is concise and clear."
	imageInstruction  = "Analyze the provided image and generate a concise, detailed summary."
)

// SummaryFailure is embedded in a chunk as the image description when
// every summary attempt for that image failed. Ingestion carries on and
// keeps the image reference.
const SummaryFailure = "Error: Unable to summarize image"

type Vision interface {
	DescribeImage(ctx context.Context, system, instruction, imagePath string) (string, error)
}

// Summary is the captioning outcome for one image. Err is set when all
// attempts were exhausted.
type Summary struct {
	Text string
	Err  error
}

// Summarizer captions image units through a vision model, a bounded
// number of images in flight at once.
type Summarizer struct {
	vision   Vision
	attempts int
	workers  int
}

func NewSummarizer(vision Vision, attempts, workers int) *Summarizer {
	if attempts < 1 {
		attempts = 1
	}
	if workers < 1 {
		workers = 1
	}
	return &Summarizer{vision: vision, attempts: attempts, workers: workers}
}

// Run captions every image unit and returns the outcomes keyed by image
// path. A failed image records its error instead of aborting the run;
// only cancellation stops it early.
func (s *Summarizer) Run(ctx context.Context, units []extract.Unit) (map[string]Summary, error) {
	var (
		mu        sync.Mutex
		summaries = make(map[string]Summary)
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for _, u := range units {
		if u.Kind != extract.KindImage {
			continue
		}
		g.Go(func() error {
			text, err := s.summarize(ctx, u.ImagePath)

			mu.Lock()
			summaries[u.ImagePath] = Summary{Text: text, Err: err}
			mu.Unlock()

			return ctx.Err()
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return summaries, nil
}

func (s *Summarizer) summarize(ctx context.Context, imagePath string) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= s.attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		text, err := s.vision.DescribeImage(ctx, imageSystemPrompt, imageInstruction, imagePath)
		if err == nil {
			return text, nil
		}
		lastErr = err
		slog.WarnContext(ctx, "image summary attempt failed", "image", imagePath, "attempt", attempt, "error", err)
	}

	slog.ErrorContext(ctx, "image summary exhausted all attempts", "image", imagePath, "attempts", s.attempts, "error", lastErr)
	return "", lastErr
}
