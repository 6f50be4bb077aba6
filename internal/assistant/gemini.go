package assistant

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/askcampus/askcampus/internal/config"
)

// geminiGenerator is the production Generator backed by the Gemini API.
type geminiGenerator struct {
	client      *genai.Client
	model       string
	temperature float32
	maxTokens   int32
}

// NewGeminiGenerator creates a Generator talking to the Gemini API with
// the configured model and sampling parameters.
func NewGeminiGenerator(ctx context.Context, cfg *config.Config) (Generator, error) {
	if err := cfg.RequireAPIKey(); err != nil {
		return nil, err
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.GeminiAPIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	return &geminiGenerator{
		client:      client,
		model:       cfg.ModelName,
		temperature: cfg.Temperature,
		maxTokens:   int32(cfg.MaxTokens), // #nosec G115 -- max_tokens validated positive and small
	}, nil
}

func (g *geminiGenerator) GenerateContent(ctx context.Context, system, prompt string) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		Temperature:       genai.Ptr(g.temperature),
		MaxOutputTokens:   g.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("gemini generate: empty response")
	}
	return text, nil
}
