package ingest

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shriyansnaik/multimodal-rag/internal/extract"
)

const alwaysFail = -1

type fakeVision struct {
	mu              sync.Mutex
	calls           map[string]int
	failures        map[string]int // failures before success; alwaysFail never succeeds
	lastSystem      string
	lastInstruction string
}

func newFakeVision() *fakeVision {
	return &fakeVision{calls: map[string]int{}, failures: map[string]int{}}
}

func (f *fakeVision) DescribeImage(ctx context.Context, system, instruction, imagePath string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls[imagePath]++
	f.lastSystem = system
	f.lastInstruction = instruction

	n := f.failures[imagePath]
	if n == alwaysFail || f.calls[imagePath] <= n {
		return "", errors.New("vision unavailable")
	}
	return "summary of " + imagePath, nil
}

func (f *fakeVision) callCount(imagePath string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[imagePath]
}

func imageUnit(page int, path string) extract.Unit {
	return extract.Unit{Kind: extract.KindImage, Page: page, ImagePath: path}
}

func TestSummarizer_Run(t *testing.T) {
	vision := newFakeVision()
	s := NewSummarizer(vision, 3, 2)

	units := []extract.Unit{
		textUnit(1, "some text"),
		imageUnit(1, "figures/a.jpg"),
		imageUnit(2, "figures/b.jpg"),
	}

	summaries, err := s.Run(context.Background(), units)
	require.NoError(t, err)

	assert.Len(t, summaries, 2)
	assert.Equal(t, "summary of figures/a.jpg", summaries["figures/a.jpg"].Text)
	assert.NoError(t, summaries["figures/a.jpg"].Err)
	assert.Equal(t, "summary of figures/b.jpg", summaries["figures/b.jpg"].Text)

	// Text units never reach the vision model.
	assert.Equal(t, 0, vision.callCount("some text"))
}

func TestSummarizer_RetriesThenSucceeds(t *testing.T) {
	vision := newFakeVision()
	vision.failures["figures/a.jpg"] = 2
	s := NewSummarizer(vision, 3, 1)

	summaries, err := s.Run(context.Background(), []extract.Unit{imageUnit(1, "figures/a.jpg")})
	require.NoError(t, err)

	assert.Equal(t, "summary of figures/a.jpg", summaries["figures/a.jpg"].Text)
	assert.Equal(t, 3, vision.callCount("figures/a.jpg"))
}

func TestSummarizer_ExhaustsAttempts(t *testing.T) {
	vision := newFakeVision()
	vision.failures["figures/a.jpg"] = alwaysFail
	s := NewSummarizer(vision, 3, 1)

	summaries, err := s.Run(context.Background(), []extract.Unit{imageUnit(1, "figures/a.jpg")})
	require.NoError(t, err)

	assert.Error(t, summaries["figures/a.jpg"].Err)
	assert.Empty(t, summaries["figures/a.jpg"].Text)
	assert.Equal(t, 3, vision.callCount("figures/a.jpg"))
}

func TestSummarizer_PassesPrompts(t *testing.T) {
	vision := newFakeVision()
	s := NewSummarizer(vision, 1, 1)

	_, err := s.Run(context.Background(), []extract.Unit{imageUnit(1, "figures/a.jpg")})
	require.NoError(t, err)

	assert.Equal(t, imageSystemPrompt, vision.lastSystem)
	assert.Equal(t, imageInstruction, vision.lastInstruction)
}

func TestSummarizer_Cancelled(t *testing.T) {
	vision := newFakeVision()
	s := NewSummarizer(vision, 3, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Run(ctx, []extract.Unit{imageUnit(1, "figures/a.jpg")})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, vision.callCount("figures/a.jpg"))
}

func TestSummarizer_NoImages(t *testing.T) {
	vision := newFakeVision()
	s := NewSummarizer(vision, 3, 4)

	summaries, err := s.Run(context.Background(), []extract.Unit{textUnit(1, "plain")})
	require.NoError(t, err)
	assert.Empty(t, summaries)
}
