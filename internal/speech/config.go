package speech

import "time"

// DefaultVoice is the Azure neural voice used unless configured otherwise.
// Full list: https://learn.microsoft.com/en-us/azure/ai-services/speech-service/language-support
const DefaultVoice = "en-US-JennyNeural"

// DefaultAudioFormat is what Azure returns and the player expects.
const DefaultAudioFormat = "riff-24khz-16bit-mono-pcm"

// Audio parameters matching DefaultAudioFormat.
const (
	SampleRate   = 24000
	ChannelCount = 1
	BitDepth     = 16
)

// Priority orders queued speech. Higher values speak first.
type Priority int

const (
	PriorityLow      Priority = iota // story flavour, chatter
	PriorityNormal                   // step instructions, status
	PriorityHigh                     // warnings
	PriorityCritical                 // errors the cook must hear
)

// Request is a queued item waiting to be spoken.
type Request struct {
	Text     string
	Priority Priority
	QueuedAt time.Time
}
