// Package story writes the short closing narration a cook hears when a
// dish is finished. Narrators are interchangeable: canned templates,
// Gemini, or any OpenAI-compatible chat endpoint.
package story

import (
	"context"
	"fmt"
	"strings"

	"github.com/hammamikhairi/simmr/internal/domain"
	"github.com/hammamikhairi/simmr/internal/logger"
)

// Compile-time interface checks.
var (
	_ domain.Narrator = (*CannedNarrator)(nil)
	_ domain.Narrator = (*FallbackNarrator)(nil)
)

// ToneOrDefault maps a free-form tone name to a known tone. Matching is
// case-insensitive; anything unknown or empty yields domain.DefaultTone.
func ToneOrDefault(s string) domain.StoryTone {
	s = strings.TrimSpace(s)
	for _, t := range domain.Tones() {
		if strings.EqualFold(string(t), s) {
			return t
		}
	}
	return domain.DefaultTone
}

// ── Canned ───────────────────────────────────────────────────────

var templates = map[domain.StoryTone]string{
	domain.ToneCozy:        "The kitchen is warm and quiet now. %s sits in front of you, made one small step at a time. Take the first bite slowly; you earned this calm.",
	domain.ToneRomantic:    "Candlelight would suit %s. Every stir was a little love letter, and now it's ready to share with someone who matters.",
	domain.ToneAdventure:   "The quest is complete! You braved %d steps of heat and chopping, and %s is your treasure. Onward to the next expedition.",
	domain.ToneEducational: "Lesson learned: %s came together in %d steps. Heat, timing and seasoning each played their part. Notice what worked so next time is easier.",
	domain.ToneMystery:     "The clues were there all along. %d steps later, the case of %s is closed, and the only suspect left is your appetite.",
	domain.ToneHumorous:    "Against all odds and at least one questionable flip, %s exists. Nobody panicked. Mostly. Time to eat the evidence.",
}

// CannedNarrator tells a fixed story per tone. It never fails and needs no
// network, which makes it the default.
type CannedNarrator struct{}

// NewCannedNarrator creates a template narrator.
func NewCannedNarrator() *CannedNarrator { return &CannedNarrator{} }

// Narrate fills the tone's template with the recipe title and step count.
func (CannedNarrator) Narrate(ctx context.Context, req domain.NarrationRequest) (string, error) {
	tone := ToneOrDefault(string(req.Tone))
	title := req.RecipeTitle
	if title == "" {
		title = "your dish"
	}
	n := len(req.Steps)

	switch tone {
	case domain.ToneAdventure:
		return fmt.Sprintf(templates[tone], n, title), nil
	case domain.ToneEducational:
		return fmt.Sprintf(templates[tone], title, n), nil
	case domain.ToneMystery:
		return fmt.Sprintf(templates[tone], n, title), nil
	default:
		return fmt.Sprintf(templates[tone], title), nil
	}
}

// ── Fallback ─────────────────────────────────────────────────────

// FallbackNarrator asks the primary narrator first and the secondary when
// the primary errors or returns nothing.
type FallbackNarrator struct {
	primary   domain.Narrator
	secondary domain.Narrator
	log       *logger.Logger
}

// Fallback wraps primary with secondary. A nil primary returns secondary.
func Fallback(primary, secondary domain.Narrator, log *logger.Logger) domain.Narrator {
	if primary == nil {
		return secondary
	}
	return &FallbackNarrator{primary: primary, secondary: secondary, log: log}
}

// Narrate implements domain.Narrator.
func (f *FallbackNarrator) Narrate(ctx context.Context, req domain.NarrationRequest) (string, error) {
	text, err := f.primary.Narrate(ctx, req)
	if err == nil && strings.TrimSpace(text) != "" {
		return text, nil
	}
	if err != nil {
		f.log.Warn("narrator failed, using fallback: %v", err)
	} else {
		f.log.Warn("narrator returned empty story, using fallback")
	}
	return f.secondary.Narrate(ctx, req)
}

// ── Prompt ───────────────────────────────────────────────────────

const systemPrompt = `You are Simmr, a warm cooking companion. When a home cook finishes a dish,
you tell them a very short story (3 to 5 sentences) about what they just made.
Match the requested tone exactly. Do not list the steps back. No markdown, no emoji.`

// Prompt builds the user message sent to LLM narrators.
func Prompt(req domain.NarrationRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Tone: %s\n", ToneOrDefault(string(req.Tone)))
	fmt.Fprintf(&b, "Dish: %s\n", req.RecipeTitle)
	if len(req.Steps) > 0 {
		b.WriteString("What they did:\n")
		for _, s := range req.Steps {
			fmt.Fprintf(&b, "%d. %s\n", s.Order, s.Instruction)
		}
	}
	b.WriteString("Tell the story.")
	return b.String()
}
