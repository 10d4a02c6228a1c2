package story

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hammamikhairi/simmr/internal/domain"
	"github.com/hammamikhairi/simmr/internal/logger"
)

// Compile-time interface check.
var _ domain.Narrator = (*ChatNarrator)(nil)

// ── Wire types ───────────────────────────────────────────────────

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	TopP        float64       `json:"top_p"`
	MaxTokens   int           `json:"max_tokens"`
	Model       string        `json:"model,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// ── Narrator ─────────────────────────────────────────────────────

// ChatOption configures a ChatNarrator.
type ChatOption func(*ChatNarrator)

// WithChatModel sets the model name. Azure deployments leave it empty.
func WithChatModel(model string) ChatOption {
	return func(c *ChatNarrator) { c.model = model }
}

// WithTemperature overrides the sampling temperature.
func WithTemperature(t float64) ChatOption {
	return func(c *ChatNarrator) { c.temperature = t }
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) ChatOption {
	return func(c *ChatNarrator) { c.http = hc }
}

// ChatNarrator tells stories through an OpenAI-compatible
// chat-completions endpoint (OpenAI or an Azure OpenAI deployment).
type ChatNarrator struct {
	endpoint    string
	apiKey      string
	model       string
	temperature float64
	topP        float64
	maxTokens   int
	http        *http.Client
	log         *logger.Logger
}

// NewChatNarrator creates a chat narrator. endpoint is the full URL of
// the chat/completions resource.
func NewChatNarrator(endpoint, apiKey string, log *logger.Logger, opts ...ChatOption) *ChatNarrator {
	c := &ChatNarrator{
		endpoint:    endpoint,
		apiKey:      apiKey,
		temperature: 0.9,
		topP:        0.95,
		maxTokens:   400,
		http:        &http.Client{Timeout: 30 * time.Second},
		log:         log,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Narrate implements domain.Narrator.
func (c *ChatNarrator) Narrate(ctx context.Context, req domain.NarrationRequest) (string, error) {
	body, err := json.Marshal(chatRequest{
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: Prompt(req)},
		},
		Temperature: c.temperature,
		TopP:        c.topP,
		MaxTokens:   c.maxTokens,
		Model:       c.model,
	})
	if err != nil {
		return "", fmt.Errorf("chat: marshal payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("chat: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("api-key", c.apiKey)
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	c.log.Debug("chat: POST %s (%d bytes)", c.endpoint, len(body))

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("chat: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("chat: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("chat: API %s: %s", resp.Status, truncate(string(respBody), 200))
	}

	var result chatResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("chat: unmarshal response: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", errors.New("chat: empty response (no choices)")
	}

	reply := strings.TrimSpace(result.Choices[0].Message.Content)
	c.log.Debug("chat: reply (%d chars): %s", len(reply), truncate(reply, 120))
	return reply, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
