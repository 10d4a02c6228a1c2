package conversation

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"

	"github.com/hammamikhairi/simmr/internal/domain"
	"github.com/hammamikhairi/simmr/internal/logger"
)

// Compile-time interface check.
var _ domain.Notifier = (*CLINotifier)(nil)

var (
	normalStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	urgentStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	storyStyle  = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("252")).PaddingLeft(2)
)

// CLINotifier writes styled notifications to a terminal.
type CLINotifier struct {
	log *logger.Logger
	out io.Writer
}

// NewCLINotifier creates a terminal notifier. If out is nil, os.Stdout is
// used.
func NewCLINotifier(log *logger.Logger, out io.Writer) *CLINotifier {
	if out == nil {
		out = os.Stdout
	}
	return &CLINotifier{log: log, out: out}
}

// Notify prints a normal notification.
func (n *CLINotifier) Notify(ctx context.Context, message string) error {
	n.log.Debug("notify: %s", message)
	_, err := fmt.Fprintln(n.out, normalStyle.Render(message))
	return err
}

// NotifyUrgent prints an urgent notification in bold red.
func (n *CLINotifier) NotifyUrgent(ctx context.Context, message string) error {
	n.log.Debug("notify-urgent: %s", message)
	_, err := fmt.Fprintln(n.out, urgentStyle.Render(message))
	return err
}

// Story prints a step's narration, indented and italic.
func (n *CLINotifier) Story(ctx context.Context, text string) error {
	if text == "" {
		return nil
	}
	_, err := fmt.Fprintln(n.out, storyStyle.Render(text))
	return err
}
