package unstructured_test

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shriyansnaik/multimodal-rag/internal/adapter/unstructured"
	"github.com/shriyansnaik/multimodal-rag/internal/extract"
)

var testHints = extract.Hints{
	MaxCharacters:          4000,
	NewAfterNChars:         3800,
	CombineTextUnderNChars: 2000,
}

func writeTestPDF(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 fake"), 0o600))
	return path
}

func TestClient_Extract(t *testing.T) {
	imageBytes := []byte{0xFF, 0xD8, 0xFF, 0xE0}
	imageB64 := base64.StdEncoding.EncodeToString(imageBytes)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/general/v0/general", r.URL.Path)

		require.NoError(t, r.ParseMultipartForm(10<<20))
		assert.Equal(t, "hi_res", r.FormValue("strategy"))
		assert.Equal(t, "by_title", r.FormValue("chunking_strategy"))
		assert.Equal(t, "4000", r.FormValue("max_characters"))

		_, header, err := r.FormFile("files")
		require.NoError(t, err)
		assert.Equal(t, "doc.pdf", header.Filename)

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `[
			{"type": "CompositeElement", "text": "Intro paragraph.", "metadata": {"page_number": 1}},
			{"type": "Table", "text": "Year Revenue 2024 10M", "metadata": {"page_number": 1, "text_as_html": "<table></table>"}},
			{"type": "Image", "text": "", "metadata": {"page_number": 2, "image_base64": %q, "image_mime_type": "image/jpeg"}},
			{"type": "Footer", "text": "Page 2 of 9", "metadata": {"page_number": 2}},
			{"type": "CompositeElement", "text": "  ", "metadata": {"page_number": 2}}
		]`, imageB64)
	}))
	defer ts.Close()

	figuresDir := filepath.Join(t.TempDir(), "figures")
	client := unstructured.NewClient(ts.URL, testHints)

	units, err := client.Extract(context.Background(), writeTestPDF(t), figuresDir)
	require.NoError(t, err)
	require.Len(t, units, 4)

	assert.Equal(t, extract.KindText, units[0].Kind)
	assert.Equal(t, 1, units[0].Page)
	assert.Equal(t, "Intro paragraph.", units[0].Text)

	assert.Equal(t, extract.KindTable, units[1].Kind)
	assert.Equal(t, "Year Revenue 2024 10M", units[1].Text)

	assert.Equal(t, extract.KindImage, units[2].Kind)
	assert.Equal(t, 2, units[2].Page)
	assert.Equal(t, filepath.Join(figuresDir, "figure-2-1.jpg"), units[2].ImagePath)

	written, err := os.ReadFile(units[2].ImagePath)
	require.NoError(t, err)
	assert.Equal(t, imageBytes, written)

	assert.Equal(t, extract.KindFooter, units[3].Kind)
}

func TestClient_Extract_ServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model crashed", http.StatusInternalServerError)
	}))
	defer ts.Close()

	client := unstructured.NewClient(ts.URL, testHints)

	_, err := client.Extract(context.Background(), writeTestPDF(t), t.TempDir())
	require.Error(t, err)

	var extractErr *extract.Error
	assert.True(t, errors.As(err, &extractErr))
	assert.Contains(t, err.Error(), "status 500")
}

func TestClient_Extract_MissingFile(t *testing.T) {
	client := unstructured.NewClient("http://localhost:1", testHints)

	_, err := client.Extract(context.Background(), "/nonexistent/doc.pdf", t.TempDir())
	require.Error(t, err)

	var extractErr *extract.Error
	assert.True(t, errors.As(err, &extractErr))
}

func TestClient_Extract_PNGImage(t *testing.T) {
	pngB64 := base64.StdEncoding.EncodeToString([]byte{0x89, 0x50, 0x4E, 0x47})

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `[
			{"type": "Image", "text": "", "metadata": {"page_number": 3, "image_base64": %q, "image_mime_type": "image/png"}}
		]`, pngB64)
	}))
	defer ts.Close()

	figuresDir := filepath.Join(t.TempDir(), "figures")
	client := unstructured.NewClient(ts.URL, testHints)

	units, err := client.Extract(context.Background(), writeTestPDF(t), figuresDir)
	require.NoError(t, err)
	require.Len(t, units, 1)
	assert.Equal(t, filepath.Join(figuresDir, "figure-3-1.png"), units[0].ImagePath)
}
