package speech

import (
	"bytes"
	"encoding/binary"
	"errors"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/hammamikhairi/simmr/internal/logger"
)

// AudioPlayer plays WAV audio. Play blocks until done or stopped.
type AudioPlayer interface {
	Play(wav []byte) error
	Stop()
}

var _ AudioPlayer = (*Player)(nil)

// Player plays 16-bit PCM through the system audio device via oto.
type Player struct {
	ctx    *oto.Context
	log    *logger.Logger
	mu     sync.Mutex
	active *oto.Player
}

// NewPlayer opens the audio device. It fails when no device is available.
func NewPlayer(log *logger.Logger) (*Player, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   SampleRate,
		ChannelCount: ChannelCount,
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		return nil, err
	}
	<-ready

	log.Debug("audio player ready (rate=%d, channels=%d)", SampleRate, ChannelCount)
	return &Player{ctx: ctx, log: log}, nil
}

// Play plays WAV data and blocks until it ends or Stop is called.
func (p *Player) Play(wav []byte) error {
	pcm, err := extractPCM(wav)
	if err != nil {
		return err
	}

	player := p.ctx.NewPlayer(bytes.NewReader(pcm))
	p.mu.Lock()
	p.active = player
	p.mu.Unlock()

	player.Play()
	for player.IsPlaying() {
		time.Sleep(10 * time.Millisecond)
	}

	p.mu.Lock()
	p.active = nil
	p.mu.Unlock()
	return player.Close()
}

// Stop interrupts playback. Safe when idle.
func (p *Player) Stop() {
	p.mu.Lock()
	active := p.active
	p.mu.Unlock()
	if active != nil {
		active.Pause()
	}
}

// extractPCM returns the payload of the WAV "data" chunk.
func extractPCM(wav []byte) ([]byte, error) {
	if len(wav) < 44 {
		return nil, errors.New("wav data too short")
	}
	if string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" {
		return nil, errors.New("not a valid WAV file")
	}

	for pos := 12; pos+8 <= len(wav); {
		id := string(wav[pos : pos+4])
		size := int(binary.LittleEndian.Uint32(wav[pos+4 : pos+8]))
		if id == "data" {
			start := pos + 8
			return wav[start:min(start+size, len(wav))], nil
		}
		// chunks are word-aligned
		pos += 8 + size + size%2
	}
	return nil, errors.New("data chunk not found in WAV")
}
