// Package pantry manages the ingredients a user owns and answers how ready
// they are to cook a recipe.
package pantry

import (
	"context"
	"fmt"
	"strings"

	"github.com/hammamikhairi/simmr/internal/domain"
	"github.com/hammamikhairi/simmr/internal/ledger"
	"github.com/hammamikhairi/simmr/internal/logger"
)

// DefaultPantry seeds a new user's pantry.
var DefaultPantry = []string{
	"Chicken", "Pasta", "Eggs", "Butter", "Garlic", "Onions", "Tomatoes", "Cheese",
}

// CommonIngredients is the quick-add list offered to users, in display order.
var CommonIngredients = []string{
	"Chicken", "Beef", "Pork", "Fish", "Shrimp", "Tofu", "Bacon",
	"Milk", "Yogurt", "Cream", "Sour Cream",
	"Potatoes", "Carrots", "Broccoli", "Spinach", "Bell Peppers", "Lettuce", "Cucumber",
	"Rice", "Bread", "Flour", "Sugar", "Salt", "Pepper", "Olive Oil", "Vegetable Oil",
	"Basil", "Oregano", "Thyme", "Rosemary", "Paprika", "Cumin", "Cinnamon",
	"Canned Tomatoes", "Beans",
}

// Report is a recipe's readiness plus the per-ingredient detail.
type Report struct {
	RecipeID  string              `json:"recipe_id"`
	Readiness ledger.Readiness    `json:"readiness"`
	Lines     []ledger.Line       `json:"lines"`
	Missing   []ledger.Ingredient `json:"missing"`
}

// Service wraps a PantryStore with input rules and ledger queries.
type Service struct {
	store  domain.PantryStore
	ledger *ledger.Ledger
	log    *logger.Logger
}

// NewService creates a pantry service. A nil ledger uses exact matching.
func NewService(store domain.PantryStore, l *ledger.Ledger, log *logger.Logger) *Service {
	if l == nil {
		l = ledger.New()
	}
	return &Service{store: store, ledger: l, log: log}
}

// Ledger returns the ledger used for matching.
func (s *Service) Ledger() *ledger.Ledger { return s.ledger }

// Items returns the user's pantry in insertion order.
func (s *Service) Items(ctx context.Context, userID string) ([]string, error) {
	items, err := s.store.Items(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading pantry: %w", err)
	}
	return items, nil
}

// Init seeds DefaultPantry when the user's pantry is empty. It reports
// whether it seeded anything.
func (s *Service) Init(ctx context.Context, userID string) (bool, error) {
	items, err := s.Items(ctx, userID)
	if err != nil {
		return false, err
	}
	if len(items) > 0 {
		return false, nil
	}
	for _, name := range DefaultPantry {
		if _, err := s.store.Add(ctx, userID, name); err != nil {
			return false, fmt.Errorf("seeding pantry: %w", err)
		}
	}
	s.log.Info("seeded default pantry for %s", userID)
	return true, nil
}

// Add trims name and stores it. Adding an item already present is a
// no-op; the return value reports whether the pantry changed.
func (s *Service) Add(ctx context.Context, userID, name string) (bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return false, fmt.Errorf("empty ingredient name: %w", domain.ErrInvalidInput)
	}
	added, err := s.store.Add(ctx, userID, name)
	if err != nil {
		return false, fmt.Errorf("adding %q: %w", name, err)
	}
	if added {
		s.log.Debug("pantry %s: added %q", userID, name)
	}
	return added, nil
}

// Remove deletes name. Removing an absent item returns domain.ErrNotFound.
func (s *Service) Remove(ctx context.Context, userID, name string) error {
	name = strings.TrimSpace(name)
	if err := s.store.Remove(ctx, userID, name); err != nil {
		return fmt.Errorf("removing %q: %w", name, err)
	}
	s.log.Debug("pantry %s: removed %q", userID, name)
	return nil
}

// Available returns the common ingredients the user does not own yet.
func (s *Service) Available(ctx context.Context, userID string) ([]string, error) {
	items, err := s.Items(ctx, userID)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, name := range CommonIngredients {
		if !s.ledger.Owns(ledger.Ingredient{Name: name}, items) {
			out = append(out, name)
		}
	}
	return out, nil
}

// Readiness reports how much of the recipe the user's pantry covers.
func (s *Service) Readiness(ctx context.Context, userID string, recipe *domain.Recipe) (*Report, error) {
	items, err := s.Items(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.ReportFor(recipe, items), nil
}

// ReportFor computes a report against an already loaded pantry.
func (s *Service) ReportFor(recipe *domain.Recipe, items []string) *Report {
	ings := ledger.Normalize(recipe.Ingredients)
	return &Report{
		RecipeID:  recipe.ID,
		Readiness: s.ledger.Readiness(ings, items),
		Lines:     s.ledger.Breakdown(ings, items),
		Missing:   s.ledger.Missing(ings, items),
	}
}
