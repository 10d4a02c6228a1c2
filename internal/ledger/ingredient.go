// Package ledger compares recipe ingredients against a user's pantry.
//
// Everything here is pure: no I/O, no shared state, no errors. Malformed
// input (missing colon, empty lists, non-numeric servings) maps to a
// well-defined default. The functions are safe for concurrent use.
package ledger

import (
	"strings"

	"github.com/hammamikhairi/simmr/internal/domain"
)

// Ingredient is a parsed ingredient line.
type Ingredient struct {
	Name   string `json:"name"`
	Amount string `json:"amount"`

	// have carries an explicit ownership flag from a structured entry.
	have *bool
}

// ParseIngredient splits a "name:amount" line on the first colon. Both
// halves are trimmed. A line without a colon has an empty amount.
func ParseIngredient(raw string) Ingredient {
	name, amount, _ := strings.Cut(raw, ":")
	return Ingredient{
		Name:   strings.TrimSpace(name),
		Amount: strings.TrimSpace(amount),
	}
}

// FromEntry normalizes either entry shape into an Ingredient.
func FromEntry(e domain.IngredientEntry) Ingredient {
	if e.Kind == domain.EntryRaw {
		return ParseIngredient(e.Raw)
	}
	return Ingredient{
		Name:   strings.TrimSpace(e.Name),
		Amount: strings.TrimSpace(e.Amount),
		have:   e.Have,
	}
}

// Normalize converts recipe entries to ingredients, preserving order.
func Normalize(entries []domain.IngredientEntry) []Ingredient {
	out := make([]Ingredient, len(entries))
	for i, e := range entries {
		out[i] = FromEntry(e)
	}
	return out
}

// ParseAll parses raw lines, preserving order.
func ParseAll(lines []string) []Ingredient {
	out := make([]Ingredient, len(lines))
	for i, l := range lines {
		out[i] = ParseIngredient(l)
	}
	return out
}

// String renders the ingredient back to "name:amount".
func (i Ingredient) String() string {
	if i.Amount == "" {
		return i.Name
	}
	return i.Name + ":" + i.Amount
}
