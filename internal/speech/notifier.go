package speech

import (
	"context"
	"regexp"
	"strings"

	"github.com/hammamikhairi/simmr/internal/domain"
	"github.com/hammamikhairi/simmr/internal/logger"
)

// Compile-time interface check.
var _ domain.Notifier = (*SpeakingNotifier)(nil)

// Sayer queues text for speech.
type Sayer interface {
	Say(text string, priority Priority)
}

// SpeakingNotifier prints through an inner notifier and queues the same
// message for speech.
type SpeakingNotifier struct {
	text  domain.Notifier
	mouth Sayer
	log   *logger.Logger
}

// NewSpeakingNotifier creates a notifier that both prints and speaks.
func NewSpeakingNotifier(text domain.Notifier, mouth Sayer, log *logger.Logger) *SpeakingNotifier {
	return &SpeakingNotifier{text: text, mouth: mouth, log: log}
}

// Notify prints the message and speaks it at normal priority.
func (n *SpeakingNotifier) Notify(ctx context.Context, message string) error {
	if err := n.text.Notify(ctx, message); err != nil {
		return err
	}
	n.mouth.Say(cleanForSpeech(message), PriorityNormal)
	return nil
}

// NotifyUrgent prints the message and speaks it at high priority.
func (n *SpeakingNotifier) NotifyUrgent(ctx context.Context, message string) error {
	if err := n.text.NotifyUrgent(ctx, message); err != nil {
		return err
	}
	n.mouth.Say(cleanForSpeech(message), PriorityHigh)
	return nil
}

var (
	ansiCodes     = regexp.MustCompile(`\x1b\[[0-9;]*m`)
	bracketPrefix = regexp.MustCompile(`^\[[A-Za-z]+\]\s*`)
	bullets       = regexp.MustCompile(`(?m)^\s*[-*•]\s+`)
)

// cleanForSpeech strips terminal styling and list markup.
func cleanForSpeech(msg string) string {
	s := ansiCodes.ReplaceAllString(msg, "")
	s = bracketPrefix.ReplaceAllString(s, "")
	s = bullets.ReplaceAllString(s, "")
	return strings.Join(strings.Fields(s), " ")
}
