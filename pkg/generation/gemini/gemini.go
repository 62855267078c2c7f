// Package gemini implements the generation and transcription capabilities on
// top of the Gemini API.
package gemini

import (
	"context"
	"strings"

	"google.golang.org/genai"

	"github.com/mockmate/mockmate/pkg/core"
	"github.com/mockmate/mockmate/pkg/interview"
)

// DefaultModel matches the model the interview engine was tuned against.
const DefaultModel = "gemini-1.5-pro"

// Client wraps a genai client for question generation and audio
// transcription. It is stateless between calls and safe for concurrent use.
type Client struct {
	client *genai.Client
	model  string
}

// New creates a Gemini-backed capability client.
func New(ctx context.Context, apiKey, model string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, core.NewAuthenticationError("gemini api key is required")
	}
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, core.NewGenerationError("create gemini client", err)
	}
	return &Client{client: client, model: model}, nil
}

var _ interview.Capability = (*Client)(nil)

// Generate invokes the model with the rendered prompt and the engine's fixed
// sampling parameters.
func (c *Client) Generate(ctx context.Context, prompt string, cfg interview.GenerationConfig) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(cfg.Temperature),
		TopK:            genai.Ptr(cfg.TopK),
		TopP:            genai.Ptr(cfg.TopP),
		MaxOutputTokens: cfg.MaxOutputTokens,
	})
	if err != nil {
		return "", core.NewGenerationError("gemini generate", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", core.NewGenerationError("gemini returned empty response", nil)
	}
	return text, nil
}
