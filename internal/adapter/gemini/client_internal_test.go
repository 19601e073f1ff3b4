package gemini

import (
	"context"
	"errors"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"

	"github.com/shriyansnaik/multimodal-rag/internal/settings"
)

// MockRepo implements settings.Repository
type MockRepo struct {
	Settings *settings.Settings
	Err      error
}

func (m *MockRepo) Get(ctx context.Context) (*settings.Settings, error) {
	return m.Settings, m.Err
}

func (m *MockRepo) Update(ctx context.Context, s *settings.Settings) error {
	return nil
}

func TestClient_Embed_NoKey(t *testing.T) {
	repo := &MockRepo{
		Settings: &settings.Settings{GeminiAPIKey: ""},
	}
	svc := settings.NewService(repo)
	client := NewClient(svc)

	_, err := client.Embed(context.Background(), "hello")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "gemini api key not configured")
}

func TestClient_Embed_SettingsError(t *testing.T) {
	repo := &MockRepo{
		Err: errors.New("read fail"),
	}
	svc := settings.NewService(repo)
	client := NewClient(svc)

	_, err := client.Embed(context.Background(), "hello")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get settings")
}

func TestClient_Generate_NoKey(t *testing.T) {
	repo := &MockRepo{
		Settings: &settings.Settings{GeminiAPIKey: ""},
	}
	svc := settings.NewService(repo)
	client := NewClient(svc)

	_, err := client.Generate(context.Background(), "system", nil, "hello")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "gemini api key not configured")
}

func TestClient_Switching(t *testing.T) {
	repo := &MockRepo{
		Settings: &settings.Settings{GeminiAPIKey: "key1"},
	}
	svc := settings.NewService(repo)
	c := NewClient(svc)

	// Embed/Generate success needs the real API, but the key switching
	// logic is observable through the private connection cache.

	ctx := context.Background()

	// First call - initializes client
	client1, err := c.getClient(ctx, "key1")
	assert.NoError(t, err)
	assert.NotNil(t, client1)
	assert.Equal(t, "key1", c.currentKey)

	// Second call - same key - should be same client
	client2, err := c.getClient(ctx, "key1")
	assert.NoError(t, err)
	assert.Equal(t, client1, client2)

	// Third call - different key - should be new client
	client3, err := c.getClient(ctx, "key2")
	assert.NoError(t, err)
	assert.NotEqual(t, client1, client3)
	assert.Equal(t, "key2", c.currentKey)
}

func TestMapRole(t *testing.T) {
	assert.Equal(t, "user", mapRole("user"))
	assert.Equal(t, "model", mapRole("assistant"))
	assert.Equal(t, "model", mapRole("anything-else"))
}

func TestImageMIME(t *testing.T) {
	assert.Equal(t, "image/jpeg", imageMIME("figures/figure-1-1.jpg"))
	assert.Equal(t, "image/jpeg", imageMIME("figures/FIGURE-1-2.JPEG"))
	assert.Equal(t, "image/png", imageMIME("figures/diagram.png"))
	assert.Equal(t, "image/jpeg", imageMIME("figures/no-extension"))
}

func TestResponseText(t *testing.T) {
	t.Run("JoinsTextParts", func(t *testing.T) {
		resp := &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{
				Content: &genai.Content{
					Parts: []genai.Part{genai.Text("hello "), genai.Text("world")},
				},
			}},
		}
		got, err := responseText(resp)
		assert.NoError(t, err)
		assert.Equal(t, "hello world", got)
	})

	t.Run("NoCandidates", func(t *testing.T) {
		_, err := responseText(&genai.GenerateContentResponse{})
		assert.Error(t, err)
	})

	t.Run("NoTextParts", func(t *testing.T) {
		resp := &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{
				Content: &genai.Content{
					Parts: []genai.Part{genai.FileData{URI: "files/abc"}},
				},
			}},
		}
		_, err := responseText(resp)
		assert.Error(t, err)
	})
}
