package gemini

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/generative-ai-go/genai"

	"github.com/shriyansnaik/multimodal-rag/internal/synthesis"
)

const generativeModel = "gemini-2.0-flash-exp"

func (c *Client) newModel(client *genai.Client, system string) *genai.GenerativeModel {
	model := client.GenerativeModel(generativeModel)
	model.SetTemperature(0.7)
	model.SetTopP(0.95)
	model.SetTopK(40)
	model.SetMaxOutputTokens(8192)
	model.ResponseMIMEType = "text/plain"
	if system != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}
	return model
}

// Generate runs a chat completion with the given system instruction,
// prior conversation turns, and a new user message.
func (c *Client) Generate(ctx context.Context, system string, history []synthesis.Turn, message string) (string, error) {
	client, err := c.open(ctx)
	if err != nil {
		return "", err
	}

	model := c.newModel(client, system)
	cs := model.StartChat()

	cs.History = make([]*genai.Content, 0, len(history))
	for _, turn := range history {
		cs.History = append(cs.History, &genai.Content{
			Role:  mapRole(turn.Role),
			Parts: []genai.Part{genai.Text(turn.Content)},
		})
	}

	resp, err := cs.SendMessage(ctx, genai.Text(message))
	if err != nil {
		return "", err
	}
	return responseText(resp)
}

// DescribeImage uploads the image to the file API and asks the model to
// summarize it following the instruction.
func (c *Client) DescribeImage(ctx context.Context, system, instruction, imagePath string) (string, error) {
	client, err := c.open(ctx)
	if err != nil {
		return "", err
	}

	f, err := os.Open(imagePath)
	if err != nil {
		return "", fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	file, err := client.UploadFile(ctx, "", f, &genai.UploadFileOptions{MIMEType: imageMIME(imagePath)})
	if err != nil {
		return "", fmt.Errorf("upload image: %w", err)
	}

	model := c.newModel(client, system)
	cs := model.StartChat()
	cs.History = []*genai.Content{{
		Role:  "user",
		Parts: []genai.Part{genai.FileData{MIMEType: file.MIMEType, URI: file.URI}},
	}}

	resp, err := cs.SendMessage(ctx, genai.Text(instruction))
	if err != nil {
		return "", err
	}
	return responseText(resp)
}

// mapRole translates conversation roles into the wire roles the genai
// API accepts. Anything that is not the user is the model.
func mapRole(role string) string {
	if role == synthesis.RoleUser {
		return "user"
	}
	return "model"
}

func imageMIME(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	default:
		return "image/jpeg"
	}
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("empty response from model")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("no text in model response")
	}
	return sb.String(), nil
}
