// Package display renders simmr's terminal output with lipgloss and
// glamour.
//
// [Printer] serialises writes so the cook loop, the idle supervisor and
// auth-state watchers can print from different goroutines.
package display

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// ── Styles ───────────────────────────────────────────────────────

var (
	// BannerStyle is muted slate for the startup banner.
	BannerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#94a3b8"))

	chatStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bae6fd"))

	stepStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bbf7d0")).
			Bold(true)

	primaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d4d4d8"))

	secondaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#71717a"))

	urgentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fca5a5"))

	haveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#86efac"))

	missStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fca5a5"))
)

// ── Printer ──────────────────────────────────────────────────────

// Printer writes styled lines to an output. Safe for concurrent use.
type Printer struct {
	mu  sync.Mutex
	out io.Writer
}

// NewPrinter creates a printer writing to out.
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// Println prints a line.
func (p *Printer) Println(a ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out, a...)
}

// Printf prints formatted text.
func (p *Printer) Printf(format string, a ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, format, a...)
}

// PrintChat prints a conversational assistant line.
func (p *Printer) PrintChat(text string) {
	p.Println(chatStyle.Render("  " + text))
}

// PrintStep prints a step header like "Step 2 of 5".
func (p *Printer) PrintStep(text string) {
	p.Println(stepStyle.Render("  " + text))
}

// PrintInstruction prints body text.
func (p *Printer) PrintInstruction(text string) {
	p.Println(primaryStyle.Render("  " + text))
}

// PrintHint prints dimmed metadata.
func (p *Printer) PrintHint(text string) {
	p.Println(secondaryStyle.Render("  " + text))
}

// PrintUrgent prints an error or alert.
func (p *Printer) PrintUrgent(text string) {
	p.Println(urgentStyle.Render("  " + text))
}
