package storage

import (
	"context"
	"strings"
	"sync"

	"github.com/hammamikhairi/simmr/internal/domain"
	"github.com/hammamikhairi/simmr/internal/logger"
)

var _ domain.UserStore = (*MemoryUsers)(nil)

// MemoryUsers is an in-memory account store keyed by ID, with a
// case-insensitive email index.
type MemoryUsers struct {
	mu      sync.RWMutex
	byID    map[string]*domain.User
	byEmail map[string]string
	log     *logger.Logger
}

// NewMemoryUsers creates an empty user store.
func NewMemoryUsers(log *logger.Logger) *MemoryUsers {
	return &MemoryUsers{
		byID:    make(map[string]*domain.User),
		byEmail: make(map[string]string),
		log:     log,
	}
}

// Create stores a new user. Returns ErrAlreadyExists if the email is taken.
func (s *MemoryUsers) Create(ctx context.Context, user *domain.User) error {
	if user.ID == "" || user.Email == "" {
		return domain.ErrInvalidInput
	}
	key := strings.ToLower(user.Email)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byEmail[key]; ok {
		return domain.ErrAlreadyExists
	}
	cp := *user
	s.byID[cp.ID] = &cp
	s.byEmail[key] = cp.ID
	s.log.Debug("user created: %s", cp.ID)
	return nil
}

// ByEmail looks a user up by email.
func (s *MemoryUsers) ByEmail(ctx context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *s.byID[id]
	return &cp, nil
}

// ByID looks a user up by ID.
func (s *MemoryUsers) ByID(ctx context.Context, id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}
