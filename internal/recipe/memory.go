// Package recipe provides recipe source implementations.
package recipe

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/hammamikhairi/simmr/internal/domain"
	"github.com/hammamikhairi/simmr/internal/logger"
)

// Compile-time interface checks.
var (
	_ domain.RecipeSource = (*MemorySource)(nil)
	_ domain.RecipeWriter = (*MemorySource)(nil)
)

// MemorySource holds recipes in memory. Safe for concurrent use.
type MemorySource struct {
	mu      sync.RWMutex
	recipes map[string]*domain.Recipe
	log     *logger.Logger
}

// NewMemorySource creates a recipe source preloaded with the built-in
// catalogue.
func NewMemorySource(log *logger.Logger) *MemorySource {
	src := NewEmptySource(log)
	for _, r := range Catalogue() {
		r := r
		src.recipes[r.ID] = &r
	}
	return src
}

// NewEmptySource creates a recipe source with no recipes.
func NewEmptySource(log *logger.Logger) *MemorySource {
	return &MemorySource{
		recipes: make(map[string]*domain.Recipe),
		log:     log,
	}
}

// List returns all recipes sorted by title.
func (s *MemorySource) List(ctx context.Context) ([]domain.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	s.log.Debug("listing all recipes, count=%d", len(s.recipes))

	out := make([]domain.Recipe, 0, len(s.recipes))
	for _, r := range s.recipes {
		out = append(out, *r)
	}
	sortByTitle(out)
	return out, nil
}

// Get returns a recipe by ID.
func (s *MemorySource) Get(ctx context.Context, id string) (*domain.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.recipes[id]
	if !ok {
		s.log.Debug("recipe not found: %s", id)
		return nil, domain.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

// Upsert inserts a recipe or replaces the one with the same ID, bumping
// its version.
func (s *MemorySource) Upsert(ctx context.Context, recipe *domain.Recipe) error {
	if recipe.ID == "" {
		return domain.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *recipe
	if old, ok := s.recipes[recipe.ID]; ok {
		cp.Version = old.Version + 1
	} else if cp.Version == 0 {
		cp.Version = 1
	}
	recipe.Version = cp.Version
	s.recipes[cp.ID] = &cp
	s.log.Info("recipe stored: %s (v%d)", cp.Title, cp.Version)
	return nil
}

// Search finds recipes whose title, category or any ingredient contains
// the query, case-insensitively.
func (s *MemorySource) Search(ctx context.Context, query string) ([]domain.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q := strings.ToLower(strings.TrimSpace(query))
	s.log.Debug("searching recipes: %q", q)

	var out []domain.Recipe
	for _, r := range s.recipes {
		if Matches(r, q) {
			out = append(out, *r)
		}
	}
	sortByTitle(out)
	return out, nil
}

// Matches reports whether a lowercase query hits the recipe's title,
// category, dietary restriction or ingredient lines. An empty query
// matches everything.
func Matches(r *domain.Recipe, q string) bool {
	if q == "" {
		return true
	}
	if strings.Contains(strings.ToLower(r.Title), q) ||
		strings.Contains(strings.ToLower(string(r.Category)), q) ||
		strings.Contains(strings.ToLower(string(r.Restriction)), q) {
		return true
	}
	for _, line := range r.IngredientLines() {
		if strings.Contains(strings.ToLower(line), q) {
			return true
		}
	}
	return false
}

func sortByTitle(rs []domain.Recipe) {
	sort.SliceStable(rs, func(i, j int) bool { return rs[i].Title < rs[j].Title })
}
