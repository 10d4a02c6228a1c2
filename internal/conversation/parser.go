// Package conversation turns spoken or typed cook-along commands into
// intents and prints replies to the terminal.
package conversation

import (
	"context"
	"regexp"
	"strings"

	"github.com/hammamikhairi/simmr/internal/domain"
	"github.com/hammamikhairi/simmr/internal/logger"
)

// Compile-time interface check.
var _ domain.IntentParser = (*KeywordParser)(nil)

// KeywordParser matches commands to intents using anchored patterns.
// Inputs are normalized first so "Okay, next step please!" and "next"
// land on the same rule.
type KeywordParser struct {
	log      *logger.Logger
	patterns []patternRule
}

type patternRule struct {
	regex  *regexp.Regexp
	intent domain.IntentType
}

// NewKeywordParser creates a keyword-based intent parser.
func NewKeywordParser(log *logger.Logger) *KeywordParser {
	p := &KeywordParser{log: log}
	p.patterns = []patternRule{
		{regexp.MustCompile(`^(next( step)?|done|n|go on|what'?s next)$`), domain.IntentNext},
		{regexp.MustCompile(`^(last step|previous( step)?|back|go back|step back)$`), domain.IntentPrevious},
		{regexp.MustCompile(`^(repeat( step| that)?|again|say that again|come again|what\??|r)$`), domain.IntentRepeat},
		{regexp.MustCompile(`^(skip( step| this( step)?)?|s)$`), domain.IntentSkip},
		{regexp.MustCompile(`^(pause|wait|hold on|brb)$`), domain.IntentPause},
		{regexp.MustCompile(`^(resume|continue|unpause|i'?m back)$`), domain.IntentResume},
		{regexp.MustCompile(`^(status|progress|where|where am i)$`), domain.IntentStatus},
		{regexp.MustCompile(`^(finish|finished|all done|i'?m done|we'?re done)$`), domain.IntentFinish},
		{regexp.MustCompile(`^(quit|exit|stop|q|abandon)$`), domain.IntentQuit},
		{regexp.MustCompile(`^(help|h|\?|what can i say)$`), domain.IntentHelp},
	}
	return p
}

// Parse converts user input into an intent. Unmatched input comes back as
// IntentUnknown with the trimmed input as payload.
func (p *KeywordParser) Parse(ctx context.Context, input string, session *domain.Session) (*domain.Intent, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return &domain.Intent{Type: domain.IntentUnknown}, nil
	}

	norm := normalize(trimmed)
	p.log.Debug("parsing input: %q (normalized %q)", trimmed, norm)

	for _, rule := range p.patterns {
		if rule.regex.MatchString(norm) {
			p.log.Debug("matched intent: %s", rule.intent)
			return &domain.Intent{Type: rule.intent}, nil
		}
	}

	p.log.Debug("no match, returning unknown intent")
	return &domain.Intent{Type: domain.IntentUnknown, Payload: trimmed}, nil
}

var (
	fillerPrefixes = []string{"hey simmr ", "simmr ", "okay ", "ok ", "um ", "uh ", "please "}
	fillerSuffixes = []string{" please", " now"}
	spaces         = regexp.MustCompile(`\s+`)
)

// normalize lowercases, drops commas and trailing punctuation, collapses
// whitespace and strips filler words at either end.
func normalize(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, ",", " ")
	s = strings.TrimRight(s, ".! ")
	s = spaces.ReplaceAllString(strings.TrimSpace(s), " ")

	for changed := true; changed; {
		changed = false
		for _, f := range fillerPrefixes {
			if strings.HasPrefix(s, f) && len(s) > len(f) {
				s = strings.TrimPrefix(s, f)
				changed = true
			}
		}
		for _, f := range fillerSuffixes {
			if strings.HasSuffix(s, f) && len(s) > len(f) {
				s = strings.TrimSuffix(s, f)
				changed = true
			}
		}
	}
	return s
}

// HelpText lists the commands the parser understands.
const HelpText = `Say or type:
  next step / next / done   move on
  last step / back          go back one step
  repeat step / repeat      hear this step again
  skip                      skip this step
  pause / resume            take a break
  status                    where am I?
  finish                    wrap up and hear your story
  quit                      stop cooking`
