// Package llm provides the generative client used for reply content.
package llm

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"

	"github.com/AshishRam7/deploy-test-insta-bot/internal/domain"
)

// GeminiClient generates reply text through the Gemini API.
type GeminiClient struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// NewGeminiClient creates a Gemini-backed generator. The timeout bounds
// every Generate call independently of the caller's context.
func NewGeminiClient(ctx context.Context, apiKey, model string, timeout time.Duration) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	return &GeminiClient{client: client, model: model, timeout: timeout}, nil
}

// Generate implements domain.Generator.
func (g *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	res, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}

	text := res.Text()
	if text == "" {
		return "", domain.ErrEmptyGeneration
	}
	return text, nil
}
