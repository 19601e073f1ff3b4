package unstructured

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shriyansnaik/multimodal-rag/internal/extract"
)

// Client partitions PDFs through an unstructured API server. Images come
// back base64-encoded and are written into the document's figures folder
// so chunks can reference them by path.
type Client struct {
	baseURL string
	hints   extract.Hints
	client  *http.Client
}

func NewClient(baseURL string, hints extract.Hints) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		hints:   hints,
		client:  &http.Client{Timeout: 5 * time.Minute},
	}
}

type element struct {
	Type     string `json:"type"`
	Text     string `json:"text"`
	Metadata struct {
		PageNumber    int    `json:"page_number"`
		TextAsHTML    string `json:"text_as_html"`
		ImageBase64   string `json:"image_base64"`
		ImageMIMEType string `json:"image_mime_type"`
	} `json:"metadata"`
}

func (c *Client) Extract(ctx context.Context, pdfPath, figuresDir string) ([]extract.Unit, error) {
	elements, err := c.partition(ctx, pdfPath)
	if err != nil {
		return nil, &extract.Error{Path: pdfPath, Err: err}
	}

	units := make([]extract.Unit, 0, len(elements))
	images := 0
	perPage := map[int]int{}

	for _, el := range elements {
		page := el.Metadata.PageNumber
		if page < 1 {
			page = 1
		}

		switch el.Type {
		case "Image":
			perPage[page]++
			path, err := saveImage(figuresDir, page, perPage[page], el.Metadata.ImageMIMEType, el.Metadata.ImageBase64)
			if err != nil {
				return nil, &extract.Error{Path: pdfPath, Err: err}
			}
			images++
			units = append(units, extract.Unit{Kind: extract.KindImage, Page: page, ImagePath: path})
		case "Table":
			if strings.TrimSpace(el.Text) == "" {
				continue
			}
			units = append(units, extract.Unit{Kind: extract.KindTable, Page: page, Text: el.Text})
		case "Footer":
			units = append(units, extract.Unit{Kind: extract.KindFooter, Page: page, Text: el.Text})
		default:
			if strings.TrimSpace(el.Text) == "" {
				continue
			}
			units = append(units, extract.Unit{Kind: extract.KindText, Page: page, Text: el.Text})
		}
	}

	slog.InfoContext(ctx, "pdf partitioned", "path", pdfPath, "units", len(units), "images", images)
	return units, nil
}

func (c *Client) partition(ctx context.Context, pdfPath string) ([]element, error) {
	f, err := os.Open(pdfPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("files", filepath.Base(pdfPath))
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, err
	}

	fields := map[string]string{
		"strategy":                  "hi_res",
		"pdf_infer_table_structure": "true",
		"extract_image_block_types": `["Image"]`,
		"chunking_strategy":         "by_title",
		"max_characters":            strconv.Itoa(c.hints.MaxCharacters),
		"new_after_n_chars":         strconv.Itoa(c.hints.NewAfterNChars),
		"combine_under_n_chars":     strconv.Itoa(c.hints.CombineTextUnderNChars),
	}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/general/v0/general", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("partition api status %d: %s", resp.StatusCode, body)
	}

	var elements []element
	if err := json.NewDecoder(resp.Body).Decode(&elements); err != nil {
		return nil, fmt.Errorf("decode partition response: %w", err)
	}
	return elements, nil
}

func saveImage(dir string, page, n int, mimeType, b64 string) (string, error) {
	if b64 == "" {
		return "", fmt.Errorf("image element without payload")
	}
	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}

	ext := ".jpg"
	if mimeType == "image/png" {
		ext = ".png"
	}

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", err
	}

	path := filepath.Join(dir, fmt.Sprintf("figure-%d-%d%s", page, n, ext))
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	return path, nil
}
