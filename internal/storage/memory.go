// Package storage provides in-memory and SQLite implementations of the
// domain stores.
package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/hammamikhairi/simmr/internal/domain"
	"github.com/hammamikhairi/simmr/internal/logger"
)

var _ domain.SessionStore = (*MemoryStore)(nil)

// MemoryStore keeps cook-along sessions in a map keyed by session ID.
// Sessions are copied on the way in and on the way out, so a caller never
// shares step state with the store or with another caller.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Session
	log      *logger.Logger
}

// NewMemoryStore returns an empty session store.
func NewMemoryStore(log *logger.Logger) *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*domain.Session), log: log}
}

// Save inserts or replaces a session.
func (s *MemoryStore) Save(_ context.Context, session *domain.Session) error {
	if session == nil || session.ID == "" {
		return domain.ErrInvalidInput
	}

	s.mu.Lock()
	s.sessions[session.ID] = session.Clone()
	s.mu.Unlock()

	s.log.Debug("session %s saved: user=%s recipe=%s step=%d status=%s",
		session.ID, session.UserID, session.RecipeID, session.CurrentStepIndex, session.Status)
	return nil
}

// Load returns the session with the given ID.
func (s *MemoryStore) Load(_ context.Context, id string) (*domain.Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok {
		return nil, domain.ErrNotFound
	}
	return session.Clone(), nil
}

// Delete drops a session. Deleting an unknown ID is ErrNotFound.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.sessions, id)
	return nil
}

// ListActive returns the open (active or paused) sessions, most recently
// touched first, matching the Postgres repository's ordering.
func (s *MemoryStore) ListActive(_ context.Context) ([]*domain.Session, error) {
	s.mu.RLock()
	open := make([]*domain.Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		if isOpen(session.Status) {
			open = append(open, session.Clone())
		}
	}
	s.mu.RUnlock()

	sort.Slice(open, func(i, j int) bool {
		if !open[i].UpdatedAt.Equal(open[j].UpdatedAt) {
			return open[i].UpdatedAt.After(open[j].UpdatedAt)
		}
		return open[i].ID < open[j].ID
	})
	return open, nil
}

func isOpen(status domain.SessionStatus) bool {
	return status == domain.SessionActive || status == domain.SessionPaused
}
