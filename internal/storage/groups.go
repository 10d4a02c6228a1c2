package storage

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/hammamikhairi/simmr/internal/domain"
	"github.com/hammamikhairi/simmr/internal/logger"
)

var _ domain.GroupStore = (*MemoryGroups)(nil)

// MemoryGroups is an in-memory group session and invite store.
type MemoryGroups struct {
	mu       sync.RWMutex
	sessions map[string]*domain.GroupSession
	invites  []domain.Invite
	log      *logger.Logger
}

// NewMemoryGroups creates an empty group store.
func NewMemoryGroups(log *logger.Logger) *MemoryGroups {
	return &MemoryGroups{
		sessions: make(map[string]*domain.GroupSession),
		log:      log,
	}
}

// CreateSession stores a group session along with its invites.
func (s *MemoryGroups) CreateSession(ctx context.Context, session *domain.GroupSession, invites []domain.Invite) error {
	if session.ID == "" {
		return domain.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[session.ID]; ok {
		return domain.ErrAlreadyExists
	}
	cp := *session
	cp.InvitedFriends = slices.Clone(session.InvitedFriends)
	s.sessions[cp.ID] = &cp
	s.invites = append(s.invites, invites...)
	s.log.Debug("group session %s created with %d invites", cp.ID, len(invites))
	return nil
}

// GetSession returns a group session by ID.
func (s *MemoryGroups) GetSession(ctx context.Context, id string) (*domain.GroupSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	gs, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *gs
	cp.InvitedFriends = slices.Clone(gs.InvitedFriends)
	return &cp, nil
}

// SessionsFor returns sessions the user created or was invited to,
// soonest first.
func (s *MemoryGroups) SessionsFor(ctx context.Context, userID string) ([]domain.GroupSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.GroupSession
	for _, gs := range s.sessions {
		if gs.CreatorID == userID || slices.Contains(gs.InvitedFriends, userID) {
			out = append(out, *gs)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SessionDate.Equal(out[j].SessionDate) {
			return out[i].ID < out[j].ID
		}
		return out[i].SessionDate.Before(out[j].SessionDate)
	})
	return out, nil
}

// InvitesFor returns every invite addressed to the user.
func (s *MemoryGroups) InvitesFor(ctx context.Context, userID string) ([]domain.Invite, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Invite
	for _, inv := range s.invites {
		if inv.UserID == userID {
			out = append(out, inv)
		}
	}
	return out, nil
}

// UpdateInvite replaces the stored invite with the same session and user.
func (s *MemoryGroups) UpdateInvite(ctx context.Context, invite domain.Invite) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, inv := range s.invites {
		if inv.SessionID == invite.SessionID && inv.UserID == invite.UserID {
			s.invites[i] = invite
			return nil
		}
	}
	return domain.ErrNotFound
}
