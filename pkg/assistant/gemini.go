package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// ErrNotConfigured indicates no API key was supplied
var ErrNotConfigured = errors.New("text generator not configured")

// TextGenerator produces a reply for a prompt
type TextGenerator interface {
	// Generate returns the generated text, trimmed. An empty string is a valid reply.
	Generate(ctx context.Context, prompt string) (string, error)

	// GetName returns the backend name
	GetName() string
}

// GeminiClient implements TextGenerator with the Gemini API
type GeminiClient struct {
	client *genai.Client
	model  string
}

// GeminiConfig holds configuration for the Gemini client
type GeminiConfig struct {
	APIKey string
	Model  string
}

// NewGeminiClient creates a new Gemini client
func NewGeminiClient(ctx context.Context, config GeminiConfig) (*GeminiClient, error) {
	if config.APIKey == "" {
		return nil, ErrNotConfigured
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	model := config.Model
	if model == "" {
		model = "gemini-2.5-flash"
	}

	return &GeminiClient{client: client, model: model}, nil
}

// Generate sends a single-turn prompt
func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("gemini generate failed: %w", err)
	}
	return strings.TrimSpace(resp.Text()), nil
}

// GetName returns the backend name
func (c *GeminiClient) GetName() string {
	return "gemini:" + c.model
}
