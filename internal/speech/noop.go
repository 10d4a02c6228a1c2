// Package speech reads cook-along prompts aloud: Azure text-to-speech,
// a two-tier audio cache, and oto playback behind a single queue.
package speech

import (
	"context"

	"github.com/hammamikhairi/simmr/internal/domain"
	"github.com/hammamikhairi/simmr/internal/logger"
)

// Compile-time interface check.
var _ domain.SpeechProvider = (*NoOp)(nil)

// NoOp is the speech provider used when voice is disabled.
type NoOp struct {
	log *logger.Logger
}

// NewNoOp creates a silent speech provider.
func NewNoOp(log *logger.Logger) *NoOp {
	return &NoOp{log: log}
}

// Speak logs the text and returns.
func (n *NoOp) Speak(ctx context.Context, text string) error {
	n.log.Debug("speech off: would say %q", text)
	return nil
}
