package speech

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode"

	"golang.org/x/sync/errgroup"

	"github.com/hammamikhairi/simmr/internal/domain"
	"github.com/hammamikhairi/simmr/internal/logger"
)

// Compile-time interface check.
var _ domain.SpeechProvider = (*Mouth)(nil)

// MouthOption configures the Mouth.
type MouthOption func(*Mouth)

// WithChunkSize sets the approximate max characters per TTS request. Longer
// text is split at sentence boundaries and synthesized in parallel.
func WithChunkSize(n int) MouthOption {
	return func(m *Mouth) { m.chunkSize = n }
}

// WithCacheDir sets the on-disk audio cache directory. Empty disables it.
func WithCacheDir(dir string) MouthOption {
	return func(m *Mouth) { m.cacheDir = dir }
}

// WithDiskWrite controls whether new cache entries are written to disk.
func WithDiskWrite(enabled bool) MouthOption {
	return func(m *Mouth) { m.diskWrite = enabled }
}

// Mouth serializes all speech through one pipeline:
// queue -> chunk -> synthesize (parallel) -> play (sequential).
// Only one thing speaks at a time and higher priorities go first.
type Mouth struct {
	tts    Synthesizer
	player AudioPlayer
	cache  *AudioCache
	log    *logger.Logger

	chunkSize int
	cacheDir  string
	diskWrite bool

	mu          sync.Mutex
	queue       []Request
	speaking    bool
	interrupted bool
	last        string
	notify      chan struct{}
	done        chan struct{}
}

// NewMouth creates a speech dispatcher.
func NewMouth(tts Synthesizer, player AudioPlayer, log *logger.Logger, opts ...MouthOption) *Mouth {
	m := &Mouth{
		tts:       tts,
		player:    player,
		log:       log,
		chunkSize: 200,
		diskWrite: true,
		notify:    make(chan struct{}, 1),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.cache = NewAudioCache(tts.Voice(), m.cacheDir, m.diskWrite, log)
	return m
}

// Speak queues text at normal priority. It does not wait for playback.
func (m *Mouth) Speak(ctx context.Context, text string) error {
	m.Say(text, PriorityNormal)
	return nil
}

// Say queues text at the given priority. Queuing anything at normal
// priority or above drops pending low-priority items.
func (m *Mouth) Say(text string, priority Priority) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	m.mu.Lock()
	if priority >= PriorityNormal {
		n := 0
		for _, r := range m.queue {
			if r.Priority > PriorityLow {
				m.queue[n] = r
				n++
			}
		}
		m.queue = m.queue[:n]
	}
	m.queue = append(m.queue, Request{Text: text, Priority: priority, QueuedAt: time.Now()})
	qLen := len(m.queue)
	m.mu.Unlock()

	m.log.Debug("mouth: queued (priority=%d, queue=%d): %s", priority, qLen, truncate(text, 60))
	select {
	case m.notify <- struct{}{}:
	default:
	}
}

// Interrupt clears the queue and stops current playback.
func (m *Mouth) Interrupt() {
	m.mu.Lock()
	m.queue = m.queue[:0]
	m.interrupted = true
	m.mu.Unlock()

	m.player.Stop()
	m.log.Debug("mouth: interrupted")
}

// IsSpeaking reports whether audio is being synthesized or played.
func (m *Mouth) IsSpeaking() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.speaking
}

// QueueLen returns the number of pending requests.
func (m *Mouth) QueueLen() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

// LastSpoken returns the most recent text that finished processing.
func (m *Mouth) LastSpoken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last
}

// Cache returns the audio cache.
func (m *Mouth) Cache() *AudioCache { return m.cache }

// Start runs the processing loop until ctx is cancelled. Use Wait to block
// until it has exited.
func (m *Mouth) Start(ctx context.Context) {
	go func() {
		defer close(m.done)
		for {
			select {
			case <-ctx.Done():
				m.log.Debug("mouth stopped")
				return
			case <-m.notify:
				m.drain(ctx)
			}
		}
	}()
}

// Wait blocks until the loop started by Start has exited.
func (m *Mouth) Wait() { <-m.done }

func (m *Mouth) drain(ctx context.Context) {
	for ctx.Err() == nil {
		m.mu.Lock()
		m.interrupted = false
		req, ok := m.dequeueLocked()
		if ok {
			m.speaking = true
		}
		m.mu.Unlock()
		if !ok {
			return
		}

		m.process(ctx, req)

		m.mu.Lock()
		m.speaking = false
		m.last = req.Text
		m.mu.Unlock()
	}
}

// dequeueLocked pops the highest-priority request, oldest first within a
// priority.
func (m *Mouth) dequeueLocked() (Request, bool) {
	if len(m.queue) == 0 {
		return Request{}, false
	}
	best := 0
	for i, r := range m.queue {
		if r.Priority > m.queue[best].Priority {
			best = i
		}
	}
	req := m.queue[best]
	m.queue = append(m.queue[:best], m.queue[best+1:]...)
	return req, true
}

func (m *Mouth) process(ctx context.Context, req Request) {
	m.log.Debug("mouth: speaking (priority=%d, waited=%s): %s",
		req.Priority, time.Since(req.QueuedAt).Round(time.Millisecond), truncate(req.Text, 60))

	chunks := m.splitChunks(req.Text)
	audio := make([][]byte, len(chunks))

	var g errgroup.Group
	g.SetLimit(4)
	for i, chunk := range chunks {
		g.Go(func() error {
			data, err := m.synthesize(ctx, chunk)
			if err != nil {
				m.log.Error("mouth: chunk %d synthesis failed: %v", i, err)
				return nil
			}
			audio[i] = data
			return nil
		})
	}
	_ = g.Wait()

	for i, data := range audio {
		if data == nil {
			continue
		}
		m.mu.Lock()
		abort := m.interrupted
		m.mu.Unlock()
		if abort || ctx.Err() != nil {
			return
		}
		if err := m.player.Play(data); err != nil {
			m.log.Error("mouth: chunk %d playback failed: %v", i, err)
		}
	}
}

func (m *Mouth) synthesize(ctx context.Context, text string) ([]byte, error) {
	if audio, ok := m.cache.Get(text); ok {
		return audio, nil
	}
	audio, err := m.tts.Synthesize(ctx, text)
	if err != nil {
		return nil, err
	}
	m.cache.Put(text, audio)
	return audio, nil
}

// Prefetch synthesizes texts that are not cached yet, so they play
// without delay when said. It blocks until every chunk is cached and
// returns the first synthesis error.
func (m *Mouth) Prefetch(ctx context.Context, texts ...string) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, text := range texts {
		for _, chunk := range m.splitChunks(strings.TrimSpace(text)) {
			if chunk == "" || m.cache.Has(chunk) {
				continue
			}
			g.Go(func() error {
				_, err := m.synthesize(ctx, chunk)
				return err
			})
		}
	}
	return g.Wait()
}

// splitChunks breaks text into sentence-aligned chunks of about
// m.chunkSize characters.
func (m *Mouth) splitChunks(text string) []string {
	if m.chunkSize <= 0 || len(text) <= m.chunkSize {
		return []string{text}
	}

	var chunks []string
	var cur strings.Builder
	for _, s := range splitSentences(text) {
		if cur.Len() > 0 && cur.Len()+len(s) > m.chunkSize {
			chunks = append(chunks, strings.TrimSpace(cur.String()))
			cur.Reset()
		}
		cur.WriteString(s)
	}
	if s := strings.TrimSpace(cur.String()); s != "" {
		chunks = append(chunks, s)
	}
	return chunks
}

// splitSentences splits at . ! ? keeping punctuation and trailing space
// with the preceding sentence.
func splitSentences(text string) []string {
	var out []string
	var cur strings.Builder
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		cur.WriteRune(runes[i])
		if runes[i] != '.' && runes[i] != '!' && runes[i] != '?' {
			continue
		}
		for i+1 < len(runes) && unicode.IsSpace(runes[i+1]) {
			i++
			cur.WriteRune(runes[i])
		}
		out = append(out, cur.String())
		cur.Reset()
	}
	if cur.Len() > 0 {
		out = append(out, cur.String())
	}
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
