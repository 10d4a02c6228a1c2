package recipe

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hammamikhairi/simmr/internal/domain"
)

// LoadFile reads a JSON array of recipes. Ingredients may be given as
// "name:amount" strings or as {name, amount, have} objects.
func LoadFile(path string) ([]domain.Recipe, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening recipe file: %w", err)
	}
	defer f.Close()

	recipes, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return recipes, nil
}

// Decode reads a JSON array of recipes and validates each entry.
func Decode(r io.Reader) ([]domain.Recipe, error) {
	var recipes []domain.Recipe
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&recipes); err != nil {
		return nil, fmt.Errorf("decoding recipes: %w", err)
	}

	seen := make(map[string]bool, len(recipes))
	for i := range recipes {
		rec := &recipes[i]
		if err := validate(rec); err != nil {
			return nil, fmt.Errorf("recipe %d: %w", i, err)
		}
		if seen[rec.ID] {
			return nil, fmt.Errorf("recipe %d: duplicate id %q: %w", i, rec.ID, domain.ErrAlreadyExists)
		}
		seen[rec.ID] = true
		for j := range rec.Steps {
			if rec.Steps[j].Order == 0 {
				rec.Steps[j].Order = j + 1
			}
		}
	}
	return recipes, nil
}

func validate(r *domain.Recipe) error {
	r.ID = strings.TrimSpace(r.ID)
	r.Title = strings.TrimSpace(r.Title)

	switch {
	case r.ID == "":
		return fmt.Errorf("missing id: %w", domain.ErrInvalidInput)
	case r.Title == "":
		return fmt.Errorf("%s: missing title: %w", r.ID, domain.ErrInvalidInput)
	case !r.Category.Valid():
		return fmt.Errorf("%s: unknown category %q: %w", r.ID, r.Category, domain.ErrInvalidInput)
	case r.StoryTone != "" && !r.StoryTone.Valid():
		return fmt.Errorf("%s: unknown story tone %q: %w", r.ID, r.StoryTone, domain.ErrInvalidInput)
	}
	return nil
}
