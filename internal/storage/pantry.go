package storage

import (
	"context"
	"slices"
	"sync"

	"github.com/hammamikhairi/simmr/internal/domain"
	"github.com/hammamikhairi/simmr/internal/logger"
)

var _ domain.PantryStore = (*MemoryPantry)(nil)

// MemoryPantry keeps each user's pantry in insertion order.
type MemoryPantry struct {
	mu    sync.RWMutex
	items map[string][]string
	log   *logger.Logger
}

// NewMemoryPantry creates an empty pantry store.
func NewMemoryPantry(log *logger.Logger) *MemoryPantry {
	return &MemoryPantry{
		items: make(map[string][]string),
		log:   log,
	}
}

// Items returns a copy of the user's pantry.
func (p *MemoryPantry) Items(ctx context.Context, userID string) ([]string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.Clone(p.items[userID]), nil
}

// Add appends name unless it is already present. It reports whether the
// pantry changed.
func (p *MemoryPantry) Add(ctx context.Context, userID, name string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if slices.Contains(p.items[userID], name) {
		return false, nil
	}
	p.items[userID] = append(p.items[userID], name)
	p.log.Debug("pantry add: user=%s item=%q", userID, name)
	return true, nil
}

// Remove deletes name from the user's pantry.
func (p *MemoryPantry) Remove(ctx context.Context, userID, name string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	cur := p.items[userID]
	i := slices.Index(cur, name)
	if i < 0 {
		return domain.ErrNotFound
	}
	p.items[userID] = slices.Delete(slices.Clone(cur), i, i+1)
	p.log.Debug("pantry remove: user=%s item=%q", userID, name)
	return nil
}
