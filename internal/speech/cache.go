package speech

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"sync"

	"github.com/natefinch/atomic"

	"github.com/hammamikhairi/simmr/internal/logger"
)

// AudioCache keeps synthesized audio in memory and, optionally, on disk.
// Keys are sha256(voice + ":" + text), so switching voices misses cleanly.
//
// The disk directory is always read when set. New entries are only
// written there when diskWrite is on, which lets a read-only cache from a
// previous run still warm the start.
type AudioCache struct {
	mu        sync.RWMutex
	entries   map[string][]byte
	voice     string
	dir       string
	diskWrite bool
	hits      int64
	misses    int64
	log       *logger.Logger
}

// NewAudioCache creates a cache. An empty dir disables the disk layer.
func NewAudioCache(voice, dir string, diskWrite bool, log *logger.Logger) *AudioCache {
	if dir != "" && diskWrite {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Error("audio cache: creating %s: %v", dir, err)
		}
	}
	return &AudioCache{
		entries:   make(map[string][]byte),
		voice:     voice,
		dir:       dir,
		diskWrite: diskWrite,
		log:       log,
	}
}

// Get returns cached audio for text, checking memory then disk. A disk
// hit is promoted to memory.
func (c *AudioCache) Get(text string) ([]byte, bool) {
	key := c.key(text)

	c.mu.Lock()
	defer c.mu.Unlock()

	if data, ok := c.entries[key]; ok {
		c.hits++
		return data, true
	}
	if c.dir != "" {
		if data, err := os.ReadFile(c.path(key)); err == nil {
			c.entries[key] = data
			c.hits++
			c.log.Debug("audio cache: disk hit %s", key[:12])
			return data, true
		}
	}
	c.misses++
	return nil, false
}

// Put stores audio for text.
func (c *AudioCache) Put(text string, audio []byte) {
	key := c.key(text)

	c.mu.Lock()
	c.entries[key] = audio
	c.mu.Unlock()

	if c.dir == "" || !c.diskWrite {
		return
	}
	if err := atomic.WriteFile(c.path(key), bytes.NewReader(audio)); err != nil {
		c.log.Error("audio cache: disk write %s: %v", key[:12], err)
	}
}

// Has reports whether text is cached in memory or on disk.
func (c *AudioCache) Has(text string) bool {
	key := c.key(text)

	c.mu.RLock()
	_, ok := c.entries[key]
	c.mu.RUnlock()
	if ok || c.dir == "" {
		return ok
	}
	_, err := os.Stat(c.path(key))
	return err == nil
}

// Stats returns hit and miss counts.
func (c *AudioCache) Stats() (hits, misses int64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}

func (c *AudioCache) key(text string) string {
	h := sha256.Sum256([]byte(c.voice + ":" + text))
	return hex.EncodeToString(h[:])
}

func (c *AudioCache) path(key string) string {
	return filepath.Join(c.dir, key+".wav")
}
