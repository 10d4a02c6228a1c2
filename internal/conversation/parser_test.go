package conversation

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/hammamikhairi/simmr/internal/domain"
	"github.com/hammamikhairi/simmr/internal/logger"
)

func TestKeywordParser(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	parser := NewKeywordParser(log)
	ctx := context.Background()

	tests := []struct {
		input       string
		wantType    domain.IntentType
		wantPayload string
	}{
		// Next
		{"next step", domain.IntentNext, ""},
		{"Next", domain.IntentNext, ""},
		{"done", domain.IntentNext, ""},
		{"Okay, next step please!", domain.IntentNext, ""},
		{"hey simmr next", domain.IntentNext, ""},

		// Previous
		{"last step", domain.IntentPrevious, ""},
		{"previous", domain.IntentPrevious, ""},
		{"back", domain.IntentPrevious, ""},
		{"go back.", domain.IntentPrevious, ""},

		// Repeat
		{"repeat step", domain.IntentRepeat, ""},
		{"repeat", domain.IntentRepeat, ""},
		{"say that again", domain.IntentRepeat, ""},
		{"what?", domain.IntentRepeat, ""},

		// Skip
		{"skip", domain.IntentSkip, ""},
		{"skip this step", domain.IntentSkip, ""},

		// Pause/Resume
		{"pause", domain.IntentPause, ""},
		{"hold on", domain.IntentPause, ""},
		{"resume", domain.IntentResume, ""},
		{"I'm back", domain.IntentResume, ""},
		{"continue", domain.IntentResume, ""},

		// Status
		{"status", domain.IntentStatus, ""},
		{"where am I", domain.IntentStatus, ""},

		// Finish
		{"finish", domain.IntentFinish, ""},
		{"all done!", domain.IntentFinish, ""},

		// Quit
		{"quit", domain.IntentQuit, ""},
		{"q", domain.IntentQuit, ""},

		// Help
		{"help", domain.IntentHelp, ""},
		{"?", domain.IntentHelp, ""},

		// Unknown
		{"flambé the cat", domain.IntentUnknown, "flambé the cat"},
		{"  next week  ", domain.IntentUnknown, "next week"},
		{"", domain.IntentUnknown, ""},
		{"please", domain.IntentUnknown, "please"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			intent, err := parser.Parse(ctx, tt.input, nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if intent.Type != tt.wantType {
				t.Fatalf("input=%q: expected intent %s, got %s", tt.input, tt.wantType, intent.Type)
			}
			if intent.Payload != tt.wantPayload {
				t.Fatalf("input=%q: expected payload %q, got %q", tt.input, tt.wantPayload, intent.Payload)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Next Step", "next step"},
		{"  okay,   ok, next  ", "next"},
		{"repeat that please.", "repeat that"},
		{"ok", "ok"},
	}
	for _, tt := range tests {
		if got := normalize(tt.in); got != tt.want {
			t.Errorf("normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCLINotifier(t *testing.T) {
	var buf bytes.Buffer
	n := NewCLINotifier(logger.New(logger.LevelOff, nil), &buf)
	ctx := context.Background()

	_ = n.Notify(ctx, "Step 1 of 5")
	_ = n.NotifyUrgent(ctx, "Careful, hot pan")
	_ = n.Story(ctx, "")
	_ = n.Story(ctx, "A long breath in.")

	out := buf.String()
	for _, want := range []string{"Step 1 of 5", "Careful, hot pan", "A long breath in."} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
	if got := strings.Count(out, "\n"); got != 3 {
		t.Fatalf("expected 3 lines, got %d", got)
	}
}
