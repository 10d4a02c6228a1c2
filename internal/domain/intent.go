package domain

// IntentType classifies a spoken or typed cook-along command.
type IntentType int

const (
	IntentUnknown IntentType = iota
	IntentNext
	IntentPrevious
	IntentRepeat
	IntentSkip
	IntentPause
	IntentResume
	IntentStatus
	IntentFinish
	IntentQuit
	IntentHelp
)

var intentNames = map[IntentType]string{
	IntentUnknown:  "unknown",
	IntentNext:     "next",
	IntentPrevious: "previous",
	IntentRepeat:   "repeat",
	IntentSkip:     "skip",
	IntentPause:    "pause",
	IntentResume:   "resume",
	IntentStatus:   "status",
	IntentFinish:   "finish",
	IntentQuit:     "quit",
	IntentHelp:     "help",
}

// String returns the snake_case name of the intent.
func (i IntentType) String() string {
	if n, ok := intentNames[i]; ok {
		return n
	}
	return "unknown"
}

// IntentFromString converts a name back to an IntentType.
// Returns IntentUnknown for unrecognized names.
func IntentFromString(name string) IntentType {
	for t, n := range intentNames {
		if n == name {
			return t
		}
	}
	return IntentUnknown
}

// Intent represents a parsed user action.
type Intent struct {
	Type    IntentType
	Payload string
}
