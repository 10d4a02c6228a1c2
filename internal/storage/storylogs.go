package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/hammamikhairi/simmr/internal/domain"
	"github.com/hammamikhairi/simmr/internal/logger"
)

var _ domain.StoryLogStore = (*MemoryStoryLogs)(nil)

// MemoryStoryLogs is an in-memory story log store.
type MemoryStoryLogs struct {
	mu   sync.RWMutex
	logs []domain.StoryLog
	log  *logger.Logger
}

// NewMemoryStoryLogs creates an empty story log store.
func NewMemoryStoryLogs(log *logger.Logger) *MemoryStoryLogs {
	return &MemoryStoryLogs{log: log}
}

// Insert appends a story log.
func (s *MemoryStoryLogs) Insert(ctx context.Context, entry *domain.StoryLog) error {
	if entry.ID == "" || entry.UserID == "" {
		return domain.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.logs = append(s.logs, *entry)
	s.log.Debug("story log stored: %s (user=%s, recipe=%s)", entry.ID, entry.UserID, entry.RecipeID)
	return nil
}

// ListByUser returns the user's logs, newest first.
func (s *MemoryStoryLogs) ListByUser(ctx context.Context, userID string) ([]domain.StoryLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.StoryLog
	for _, l := range s.logs {
		if l.UserID == userID {
			out = append(out, l)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}
