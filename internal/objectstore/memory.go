package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/hammamikhairi/simmr/internal/domain"
)

var _ domain.ImageStore = (*MemoryStore)(nil)

// Object is a stored upload.
type Object struct {
	ContentType string
	Data        []byte
}

// MemoryStore keeps uploads in memory. Used when no bucket is configured
// and in tests.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]Object
	baseURL string
}

// NewMemoryStore creates an empty store whose URLs start with baseURL.
func NewMemoryStore(baseURL string) *MemoryStore {
	if baseURL == "" {
		baseURL = "memory://images"
	}
	return &MemoryStore{objects: make(map[string]Object), baseURL: baseURL}
}

// Put reads body fully and stores it under key.
func (m *MemoryStore) Put(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, body); err != nil {
		return "", fmt.Errorf("reading upload: %w", err)
	}

	m.mu.Lock()
	m.objects[key] = Object{ContentType: contentType, Data: buf.Bytes()}
	m.mu.Unlock()

	return fmt.Sprintf("%s/%s", m.baseURL, key), nil
}

// Delete removes key. Deleting a missing key is not an error.
func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	delete(m.objects, key)
	m.mu.Unlock()
	return nil
}

// Get returns a stored object.
func (m *MemoryStore) Get(key string) (Object, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[key]
	return obj, ok
}
