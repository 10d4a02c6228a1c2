// Package friends plans group cooking sessions and tracks invite RSVPs.
package friends

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hammamikhairi/simmr/internal/domain"
	"github.com/hammamikhairi/simmr/internal/logger"
	"github.com/hammamikhairi/simmr/internal/story"
)

// CreateRequest describes a new group session.
type CreateRequest struct {
	InvitedFriends []string  `json:"invited_friends"`
	Location       string    `json:"location"`
	RecipeID       string    `json:"recipe_id" binding:"required"`
	SessionDate    time.Time `json:"session_date" binding:"required"`
	StoryTheme     string    `json:"story_theme"`
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// Service plans group sessions.
type Service struct {
	groups  domain.GroupStore
	recipes domain.RecipeSource
	log     *logger.Logger
	now     func() time.Time
}

// NewService creates a friends service.
func NewService(groups domain.GroupStore, recipes domain.RecipeSource, log *logger.Logger, opts ...Option) *Service {
	s := &Service{groups: groups, recipes: recipes, log: log, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// CreateSession stores a group session and a pending invite for every
// invited friend. The creator is never invited to their own session.
func (s *Service) CreateSession(ctx context.Context, creatorID string, req CreateRequest) (*domain.GroupSession, error) {
	if creatorID == "" {
		return nil, domain.ErrUnauthorized
	}
	if _, err := s.recipes.Get(ctx, req.RecipeID); err != nil {
		return nil, fmt.Errorf("recipe %q: %w", req.RecipeID, err)
	}
	if req.SessionDate.IsZero() {
		return nil, fmt.Errorf("session date is required: %w", domain.ErrInvalidInput)
	}
	if req.SessionDate.Before(s.now()) {
		return nil, fmt.Errorf("session date is in the past: %w", domain.ErrInvalidInput)
	}

	var invited []string
	for _, f := range req.InvitedFriends {
		f = strings.TrimSpace(f)
		if f == "" || f == creatorID || slices.Contains(invited, f) {
			continue
		}
		invited = append(invited, f)
	}

	gs := &domain.GroupSession{
		ID:             uuid.NewString(),
		CreatorID:      creatorID,
		InvitedFriends: invited,
		Location:       strings.TrimSpace(req.Location),
		RecipeID:       req.RecipeID,
		SessionDate:    req.SessionDate,
		StoryTheme:     story.ToneOrDefault(req.StoryTheme),
	}
	invites := make([]domain.Invite, len(invited))
	for i, f := range invited {
		invites[i] = domain.Invite{SessionID: gs.ID, UserID: f, Status: domain.InvitePending}
	}

	if err := s.groups.CreateSession(ctx, gs, invites); err != nil {
		return nil, fmt.Errorf("creating group session: %w", err)
	}
	s.log.Info("group session %s created by %s (%d invited)", gs.ID, creatorID, len(invited))
	return gs, nil
}

// Invites returns every invite addressed to the user.
func (s *Service) Invites(ctx context.Context, userID string) ([]domain.Invite, error) {
	inv, err := s.groups.InvitesFor(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading invites: %w", err)
	}
	return inv, nil
}

// Respond accepts or declines an invite. Only invited users may respond.
func (s *Service) Respond(ctx context.Context, sessionID, userID string, accept bool) (*domain.Invite, error) {
	gs, err := s.groups.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("loading group session: %w", err)
	}
	if !slices.Contains(gs.InvitedFriends, userID) {
		return nil, domain.ErrUnauthorized
	}

	inv := domain.Invite{
		SessionID:   sessionID,
		UserID:      userID,
		Status:      domain.InviteDeclined,
		RespondedAt: s.now(),
	}
	if accept {
		inv.Status = domain.InviteAccepted
	}
	if err := s.groups.UpdateInvite(ctx, inv); err != nil {
		return nil, fmt.Errorf("updating invite: %w", err)
	}
	s.log.Debug("invite %s/%s -> %s", sessionID, userID, inv.Status)
	return &inv, nil
}

// SessionsFor returns sessions the user created or was invited to.
func (s *Service) SessionsFor(ctx context.Context, userID string) ([]domain.GroupSession, error) {
	out, err := s.groups.SessionsFor(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading group sessions: %w", err)
	}
	return out, nil
}
