package story

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/hammamikhairi/simmr/internal/domain"
	"github.com/hammamikhairi/simmr/internal/logger"
)

func quietLog() *logger.Logger { return logger.New(logger.LevelOff, nil) }

func request(tone domain.StoryTone) domain.NarrationRequest {
	return domain.NarrationRequest{
		RecipeTitle: "Creamy Chicken Pasta",
		Tone:        tone,
		Steps: []domain.Step{
			{Order: 1, Instruction: "Boil water."},
			{Order: 2, Instruction: "Sear chicken."},
		},
	}
}

func TestToneOrDefault(t *testing.T) {
	tests := map[string]domain.StoryTone{
		"Cozy":        domain.ToneCozy,
		"cozy":        domain.ToneCozy,
		" MYSTERY ":   domain.ToneMystery,
		"Educational": domain.ToneEducational,
		"":            domain.ToneAdventure,
		"Spooky":      domain.ToneAdventure,
	}
	for in, want := range tests {
		assert.Equal(t, want, ToneOrDefault(in), "input %q", in)
	}
}

func TestCannedNarratorCoversEveryTone(t *testing.T) {
	n := NewCannedNarrator()
	for _, tone := range domain.Tones() {
		text, err := n.Narrate(context.Background(), request(tone))
		require.NoError(t, err)
		assert.Contains(t, text, "Creamy Chicken Pasta", "tone %s", tone)
		assert.NotContains(t, text, "%!", "tone %s has a bad format verb", tone)
	}
}

func TestCannedNarratorDefaults(t *testing.T) {
	text, err := NewCannedNarrator().Narrate(context.Background(), domain.NarrationRequest{Tone: "Spooky"})
	require.NoError(t, err)
	assert.Contains(t, text, "quest is complete")
	assert.Contains(t, text, "your dish")
}

type stubNarrator struct {
	text  string
	err   error
	calls int
}

func (s *stubNarrator) Narrate(ctx context.Context, req domain.NarrationRequest) (string, error) {
	s.calls++
	return s.text, s.err
}

func TestFallback(t *testing.T) {
	ctx := context.Background()

	primary := &stubNarrator{text: "from primary"}
	secondary := &stubNarrator{text: "from secondary"}
	text, err := Fallback(primary, secondary, quietLog()).Narrate(ctx, request(domain.ToneCozy))
	require.NoError(t, err)
	assert.Equal(t, "from primary", text)
	assert.Equal(t, 0, secondary.calls)

	primary = &stubNarrator{err: errors.New("quota")}
	text, err = Fallback(primary, secondary, quietLog()).Narrate(ctx, request(domain.ToneCozy))
	require.NoError(t, err)
	assert.Equal(t, "from secondary", text)

	primary = &stubNarrator{text: "   "}
	text, err = Fallback(primary, secondary, quietLog()).Narrate(ctx, request(domain.ToneCozy))
	require.NoError(t, err)
	assert.Equal(t, "from secondary", text)

	assert.Same(t, secondary, Fallback(nil, secondary, quietLog()))
}

func TestPrompt(t *testing.T) {
	p := Prompt(request("romantic"))
	assert.Contains(t, p, "Tone: Romantic")
	assert.Contains(t, p, "Dish: Creamy Chicken Pasta")
	assert.Contains(t, p, "2. Sear chicken.")
}

type fakeModels struct {
	model  string
	prompt string
	text   string
	err    error
}

func (f *fakeModels) GenerateContent(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model = model
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		f.prompt = contents[0].Parts[0].Text
	}
	if f.err != nil {
		return nil, f.err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: f.text}}},
		}},
	}, nil
}

func TestGeminiNarrator(t *testing.T) {
	fake := &fakeModels{text: "  Once upon a pan.  "}
	g := newGeminiNarrator(fake, "", quietLog())

	text, err := g.Narrate(context.Background(), request(domain.ToneMystery))
	require.NoError(t, err)
	assert.Equal(t, "Once upon a pan.", text)
	assert.Equal(t, DefaultGeminiModel, fake.model)
	assert.Contains(t, fake.prompt, "Tone: Mystery")

	fake.text = ""
	_, err = g.Narrate(context.Background(), request(domain.ToneMystery))
	assert.Error(t, err)

	fake.err = errors.New("boom")
	_, err = g.Narrate(context.Background(), request(domain.ToneMystery))
	assert.ErrorContains(t, err, "boom")
}

func TestNewGeminiNarratorNeedsKey(t *testing.T) {
	_, err := NewGeminiNarrator(context.Background(), "", "", quietLog())
	assert.Error(t, err)
}

func TestChatNarrator(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "k3y", r.Header.Get("api-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":" A cozy tale. "}}]}`))
	}))
	defer srv.Close()

	c := NewChatNarrator(srv.URL, "k3y", quietLog(), WithChatModel("gpt-4o-mini"))
	text, err := c.Narrate(context.Background(), request(domain.ToneCozy))
	require.NoError(t, err)
	assert.Equal(t, "A cozy tale.", text)

	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.True(t, strings.HasPrefix(got.Messages[1].Content, "Tone: Cozy"))
	assert.Equal(t, "gpt-4o-mini", got.Model)
}

func TestChatNarratorErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/empty" {
			_, _ = w.Write([]byte(`{"choices":[]}`))
			return
		}
		http.Error(w, "nope", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewChatNarrator(srv.URL+"/limited", "k", quietLog()).Narrate(context.Background(), request(domain.ToneCozy))
	assert.ErrorContains(t, err, "429")

	_, err = NewChatNarrator(srv.URL+"/empty", "k", quietLog()).Narrate(context.Background(), request(domain.ToneCozy))
	assert.ErrorContains(t, err, "no choices")
}
