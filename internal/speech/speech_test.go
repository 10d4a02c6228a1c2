package speech

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/hammamikhairi/simmr/internal/logger"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func quietLog() *logger.Logger { return logger.New(logger.LevelOff, nil) }

type fakeSynth struct {
	mu    sync.Mutex
	calls []string
	fail  string
}

func (f *fakeSynth) Voice() string { return "test-voice" }

func (f *fakeSynth) Synthesize(ctx context.Context, text string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, text)
	if f.fail != "" && strings.Contains(text, f.fail) {
		return nil, errors.New("synth failed")
	}
	return []byte(text), nil
}

func (f *fakeSynth) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakePlayer struct {
	mu     sync.Mutex
	played []string
}

func (p *fakePlayer) Play(wav []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.played = append(p.played, string(wav))
	return nil
}

func (p *fakePlayer) Stop() {}

func (p *fakePlayer) snapshot() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.played...)
}

func TestMouthSpeaksHighestPriorityFirst(t *testing.T) {
	synth := &fakeSynth{}
	player := &fakePlayer{}
	m := NewMouth(synth, player, quietLog(), WithChunkSize(0))

	m.Say("low chatter", PriorityLow)
	m.Say("step one", PriorityNormal)
	m.Say("careful", PriorityHigh)
	m.Say("   ", PriorityCritical)
	assert.Equal(t, 2, m.QueueLen(), "normal priority flushes low, blank is ignored")

	ctx, cancel := context.WithCancel(context.Background())
	m.Start(ctx)
	require.Eventually(t, func() bool { return len(player.snapshot()) == 2 }, time.Second, 5*time.Millisecond)
	cancel()
	m.Wait()

	assert.Equal(t, []string{"careful", "step one"}, player.snapshot())
	assert.Equal(t, "step one", m.LastSpoken())
	assert.False(t, m.IsSpeaking())
}

func TestMouthChunksAndSkipsFailedChunk(t *testing.T) {
	synth := &fakeSynth{fail: "Bad"}
	player := &fakePlayer{}
	m := NewMouth(synth, player, quietLog(), WithChunkSize(12))

	require.NoError(t, m.Speak(context.Background(), "First one. Bad sentence. Last one."))

	ctx, cancel := context.WithCancel(context.Background())
	m.Start(ctx)
	require.Eventually(t, func() bool { return m.LastSpoken() != "" }, time.Second, 5*time.Millisecond)
	cancel()
	m.Wait()

	assert.Equal(t, []string{"First one.", "Last one."}, player.snapshot())
}

func TestMouthPrefetchUsesCache(t *testing.T) {
	synth := &fakeSynth{}
	m := NewMouth(synth, &fakePlayer{}, quietLog(), WithChunkSize(0))

	require.NoError(t, m.Prefetch(context.Background(), "Boil the water.", "", "Boil the water."))
	assert.LessOrEqual(t, synth.count(), 2)
	assert.True(t, m.Cache().Has("Boil the water."))

	before := synth.count()
	require.NoError(t, m.Prefetch(context.Background(), "Boil the water."))
	assert.Equal(t, before, synth.count())

	synth.fail = "Sear"
	assert.Error(t, m.Prefetch(context.Background(), "Sear the chicken."))
}

func TestAudioCacheDisk(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")

	c := NewAudioCache("v1", dir, true, quietLog())
	c.Put("hello", []byte("wav"))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	warm := NewAudioCache("v1", dir, false, quietLog())
	data, ok := warm.Get("hello")
	require.True(t, ok)
	assert.Equal(t, "wav", string(data))

	other := NewAudioCache("v2", dir, false, quietLog())
	_, ok = other.Get("hello")
	assert.False(t, ok, "voice is part of the key")
	hits, misses := other.Stats()
	assert.Equal(t, int64(0), hits)
	assert.Equal(t, int64(1), misses)

	readOnly := NewAudioCache("v1", dir, false, quietLog())
	readOnly.Put("new", []byte("x"))
	entries, err = os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestAzureClientSynthesize(t *testing.T) {
	var body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key", r.Header.Get("Ocp-Apim-Subscription-Key"))
		assert.Equal(t, DefaultAudioFormat, r.Header.Get("X-Microsoft-OutputFormat"))
		b, _ := io.ReadAll(r.Body)
		body = string(b)
		_, _ = w.Write([]byte("RIFF..."))
	}))
	defer srv.Close()

	c := NewAzureClient("key", "westeurope", quietLog(), WithEndpoint(srv.URL), WithVoice("en-GB-SoniaNeural"))
	audio, err := c.Synthesize(context.Background(), "Salt & <pepper>")
	require.NoError(t, err)
	assert.Equal(t, "RIFF...", string(audio))
	assert.Contains(t, body, "name='en-GB-SoniaNeural'")
	assert.Contains(t, body, "Salt &amp; &lt;pepper&gt;")
}

func TestAzureClientError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewAzureClient("nope", "x", quietLog(), WithEndpoint(srv.URL))
	_, err := c.Synthesize(context.Background(), "hi")
	assert.ErrorContains(t, err, "401")
}

func wav(pcm []byte) []byte {
	var b bytes.Buffer
	b.WriteString("RIFF")
	_ = binary.Write(&b, binary.LittleEndian, uint32(36+len(pcm)))
	b.WriteString("WAVEfmt ")
	_ = binary.Write(&b, binary.LittleEndian, uint32(16))
	b.Write(make([]byte, 16))
	b.WriteString("data")
	_ = binary.Write(&b, binary.LittleEndian, uint32(len(pcm)))
	b.Write(pcm)
	return b.Bytes()
}

func TestExtractPCM(t *testing.T) {
	pcm, err := extractPCM(wav([]byte{1, 2, 3, 4}))
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4}, pcm)

	_, err = extractPCM([]byte("short"))
	assert.Error(t, err)

	bad := wav([]byte{1, 2})
	copy(bad[0:4], "JUNK")
	_, err = extractPCM(bad)
	assert.Error(t, err)
}

func TestSplitSentences(t *testing.T) {
	got := splitSentences("Boil water. Add pasta!  Done? ok")
	assert.Equal(t, []string{"Boil water. ", "Add pasta!  ", "Done? ", "ok"}, got)
}

type recordingNotifier struct{ msgs []string }

func (r *recordingNotifier) Notify(ctx context.Context, msg string) error {
	r.msgs = append(r.msgs, msg)
	return nil
}

func (r *recordingNotifier) NotifyUrgent(ctx context.Context, msg string) error {
	r.msgs = append(r.msgs, "!"+msg)
	return nil
}

type recordingSayer struct {
	said []string
	prio []Priority
}

func (r *recordingSayer) Say(text string, p Priority) {
	r.said = append(r.said, text)
	r.prio = append(r.prio, p)
}

func TestSpeakingNotifier(t *testing.T) {
	text := &recordingNotifier{}
	mouth := &recordingSayer{}
	n := NewSpeakingNotifier(text, mouth, quietLog())

	require.NoError(t, n.Notify(context.Background(), "[Step] \x1b[1mBoil\x1b[0m  water"))
	require.NoError(t, n.NotifyUrgent(context.Background(), "- Hot pan"))

	assert.Equal(t, []string{"[Step] \x1b[1mBoil\x1b[0m  water", "!- Hot pan"}, text.msgs)
	assert.Equal(t, []string{"Boil water", "Hot pan"}, mouth.said)
	assert.Equal(t, []Priority{PriorityNormal, PriorityHigh}, mouth.prio)
}
