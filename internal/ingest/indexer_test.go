package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shriyansnaik/multimodal-rag/internal/vector"
)

type fakeEmbedder struct {
	failOn string
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if f.failOn != "" && strings.Contains(text, f.failOn) {
		return nil, errors.New("embed failed")
	}
	return []float32{float32(len(text))}, nil
}

type captureStore struct {
	mu      sync.Mutex
	entries []vector.Entry
	addErr  error
	calls   int
}

func (c *captureStore) Add(ctx context.Context, entries []vector.Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	c.entries = entries
	return c.addErr
}

func TestIndexer_PreservesOrder(t *testing.T) {
	store := &captureStore{}
	ix := NewIndexer(&fakeEmbedder{}, store, 4)

	chunks := make([]Chunk, 5)
	for i := range chunks {
		chunks[i] = Chunk{Ordinal: i, SourcePage: i + 1, Text: fmt.Sprintf("chunk number %d", i)}
	}

	count, err := ix.Index(context.Background(), "doc.pdf", chunks)
	require.NoError(t, err)
	assert.Equal(t, 5, count)
	assert.Equal(t, 1, store.calls)

	require.Len(t, store.entries, 5)
	for i, e := range store.entries {
		assert.Equal(t, i, e.Ordinal)
		assert.Equal(t, fmt.Sprintf("doc.pdf_chunk_%d", i), e.ID())
		assert.Equal(t, chunks[i].Text, e.Text)
		assert.Equal(t, []float32{float32(len(chunks[i].Text))}, e.Embedding)
	}
}

func TestIndexer_EmbedErrorAborts(t *testing.T) {
	store := &captureStore{}
	ix := NewIndexer(&fakeEmbedder{failOn: "number 2"}, store, 2)

	chunks := []Chunk{
		{Ordinal: 0, Text: "chunk number 0"},
		{Ordinal: 1, Text: "chunk number 1"},
		{Ordinal: 2, Text: "chunk number 2"},
	}

	_, err := ix.Index(context.Background(), "doc.pdf", chunks)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "embed chunk 2")
	assert.Equal(t, 0, store.calls)
}

func TestIndexer_StoreErrorSurfaces(t *testing.T) {
	store := &captureStore{addErr: errors.New("disk full")}
	ix := NewIndexer(&fakeEmbedder{}, store, 1)

	_, err := ix.Index(context.Background(), "doc.pdf", []Chunk{{Ordinal: 0, Text: "x"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store entries")
}

func TestIndexer_EmptyChunks(t *testing.T) {
	store := &captureStore{}
	ix := NewIndexer(&fakeEmbedder{}, store, 2)

	count, err := ix.Index(context.Background(), "doc.pdf", nil)
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Zero(t, store.calls)
}
