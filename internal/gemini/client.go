package gemini

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"luna-bot/internal/analysis"
)

const DefaultModel = "gemini-2.5-flash"

var _ analysis.Analyzer = (*Client)(nil)

// Client is an analysis.Analyzer backed by the Gemini API.
type Client struct {
	client *genai.Client
	model  string
}

type Option func(*genai.ClientConfig)

// WithBaseURL points the client at a different endpoint.
func WithBaseURL(url string) Option {
	return func(c *genai.ClientConfig) {
		c.HTTPOptions.BaseURL = url
	}
}

func NewClient(ctx context.Context, apiKey, model string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if model == "" {
		model = DefaultModel
	}

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &Client{client: client, model: model}, nil
}

// Generate sends the image part before the instruction. A nil image sends
// the prompt alone.
func (c *Client) Generate(ctx context.Context, prompt string, image []byte) (string, error) {
	parts := make([]*genai.Part, 0, 2)
	if len(image) > 0 {
		parts = append(parts, genai.NewPartFromBytes(image, "image/jpeg"))
	}
	parts = append(parts, genai.NewPartFromText(prompt))

	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("gemini generate failed: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", analysis.ErrEmptyResponse
	}
	return text, nil
}

func (c *Client) Name() string {
	return "gemini:" + c.model
}
