// Package storylog records finished dishes with their photo and story and
// lists them back by tab.
package storylog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hammamikhairi/simmr/internal/domain"
	"github.com/hammamikhairi/simmr/internal/logger"
)

// ImageContentType is the content type dish photos are stored with.
const ImageContentType = "image/jpg"

// Tab selects which story logs to show.
type Tab string

const (
	TabAll     Tab = "All"
	TabKids    Tab = "Kids"
	TabFriends Tab = "Friends"
)

// ParseTab accepts a tab name case-insensitively. Empty means TabAll.
func ParseTab(s string) (Tab, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return TabAll, nil
	case "kids":
		return TabKids, nil
	case "friends":
		return TabFriends, nil
	}
	return "", fmt.Errorf("unknown tab %q: %w", s, domain.ErrInvalidInput)
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// Service stores story logs and their dish photos.
type Service struct {
	logs    domain.StoryLogStore
	images  domain.ImageStore
	recipes domain.RecipeSource
	log     *logger.Logger
	now     func() time.Time
}

// NewService creates a story log service.
func NewService(logs domain.StoryLogStore, images domain.ImageStore, recipes domain.RecipeSource, log *logger.Logger, opts ...Option) *Service {
	s := &Service{
		logs:    logs,
		images:  images,
		recipes: recipes,
		log:     log,
		now:     time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// ImageKey names the object a dish photo is stored under.
func ImageKey(userID, recipeID string, at time.Time) string {
	return fmt.Sprintf("%s-%s-%d.jpg", userID, recipeID, at.UnixMilli())
}

// Submit uploads the photo and records the log.
func (s *Service) Submit(ctx context.Context, userID, recipeID, summary string, image io.Reader) (*domain.StoryLog, error) {
	userID = strings.TrimSpace(userID)
	recipeID = strings.TrimSpace(recipeID)
	if userID == "" || recipeID == "" {
		return nil, fmt.Errorf("user and recipe are required: %w", domain.ErrInvalidInput)
	}
	if image == nil {
		return nil, fmt.Errorf("dish image is required: %w", domain.ErrInvalidInput)
	}

	now := s.now()
	key := ImageKey(userID, recipeID, now)
	url, err := s.images.Put(ctx, key, ImageContentType, image)
	if err != nil {
		return nil, fmt.Errorf("uploading dish image: %w", err)
	}

	entry := &domain.StoryLog{
		ID:           uuid.NewString(),
		RecipeID:     recipeID,
		UserID:       userID,
		StorySummary: strings.TrimSpace(summary),
		DishImageURL: url,
		Date:         now,
	}
	if err := s.logs.Insert(ctx, entry); err != nil {
		// Nothing references the photo yet; drop it.
		if derr := s.images.Delete(ctx, key); derr != nil {
			s.log.Warn("story log: removing orphaned image %s: %v", key, derr)
		}
		return nil, fmt.Errorf("saving story log: %w", err)
	}

	s.log.Info("story log %s saved for %s (%s)", entry.ID, userID, recipeID)
	return entry, nil
}

// List returns the user's logs newest first, filtered by tab. Filtered
// tabs drop logs whose recipe no longer exists.
func (s *Service) List(ctx context.Context, userID string, tab Tab) ([]domain.StoryLog, error) {
	logs, err := s.logs.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading story logs: %w", err)
	}
	if tab == TabAll || tab == "" {
		return logs, nil
	}

	cache := make(map[string]*domain.Recipe)
	out := make([]domain.StoryLog, 0, len(logs))
	for _, entry := range logs {
		r, ok := cache[entry.RecipeID]
		if !ok {
			r, err = s.recipes.Get(ctx, entry.RecipeID)
			switch {
			case err == nil:
			case errors.Is(err, domain.ErrNotFound):
				r = nil
			default:
				return nil, fmt.Errorf("loading recipe %s: %w", entry.RecipeID, err)
			}
			cache[entry.RecipeID] = r
		}
		if r != nil && keep(tab, r) {
			out = append(out, entry)
		}
	}
	return out, nil
}

func keep(tab Tab, r *domain.Recipe) bool {
	switch tab {
	case TabKids:
		return r.KidFriendly
	case TabFriends:
		return r.Category == domain.CategoryFriends
	}
	return true
}
