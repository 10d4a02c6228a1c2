package story

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/hammamikhairi/simmr/internal/domain"
	"github.com/hammamikhairi/simmr/internal/logger"
)

// Compile-time interface check.
var _ domain.Narrator = (*GeminiNarrator)(nil)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-2.5-flash"

// generator is the slice of *genai.Models the narrator needs.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiNarrator tells stories with a Gemini model.
type GeminiNarrator struct {
	models generator
	model  string
	log    *logger.Logger
}

// NewGeminiNarrator connects to the Gemini API with the given key.
func NewGeminiNarrator(ctx context.Context, apiKey, model string, log *logger.Logger) (*GeminiNarrator, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: creating client: %w", err)
	}
	return newGeminiNarrator(client.Models, model, log), nil
}

func newGeminiNarrator(models generator, model string, log *logger.Logger) *GeminiNarrator {
	if model == "" {
		model = DefaultGeminiModel
	}
	return &GeminiNarrator{models: models, model: model, log: log}
}

// Narrate implements domain.Narrator.
func (g *GeminiNarrator) Narrate(ctx context.Context, req domain.NarrationRequest) (string, error) {
	temp := float32(0.9)
	cfg := &genai.GenerateContentConfig{
		Temperature:       &temp,
		MaxOutputTokens:   400,
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: systemPrompt}}},
	}

	g.log.Debug("gemini: narrating %q (%s)", req.RecipeTitle, req.Tone)
	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(Prompt(req)), cfg)
	if err != nil {
		return "", fmt.Errorf("gemini: generate: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", errors.New("gemini: empty response")
	}
	return text, nil
}
