package ledger

// Readiness summarises how much of a recipe the pantry already covers.
type Readiness struct {
	Total   int `json:"total"`
	Have    int `json:"have"`
	Percent int `json:"percent"`
}

// Missing returns the number of ingredients not owned.
func (r Readiness) Missing() int { return r.Total - r.Have }

// Line is one ingredient with its ownership flag, in recipe order.
type Line struct {
	Name   string `json:"name"`
	Amount string `json:"amount"`
	Have   bool   `json:"have"`
}

// ComputeReadiness parses every raw ingredient line and counts the ones
// whose name is in the pantry, using PolicyExact. Percent is floored and
// is 0 for an empty list.
func ComputeReadiness(ingredients, pantry []string) Readiness {
	var exact Ledger
	return exact.Readiness(ParseAll(ingredients), pantry)
}

// Readiness counts owned ingredients under the ledger's policy. Duplicate
// lines are counted separately.
func (l *Ledger) Readiness(ingredients []Ingredient, pantry []string) Readiness {
	r := Readiness{Total: len(ingredients)}
	for _, ing := range ingredients {
		if l.Owns(ing, pantry) {
			r.Have++
		}
	}
	r.Percent = percent(r.Have, r.Total)
	return r
}

// Breakdown returns each ingredient with its ownership flag.
func (l *Ledger) Breakdown(ingredients []Ingredient, pantry []string) []Line {
	out := make([]Line, len(ingredients))
	for i, ing := range ingredients {
		out[i] = Line{Name: ing.Name, Amount: ing.Amount, Have: l.Owns(ing, pantry)}
	}
	return out
}

// Missing returns the ingredients not owned, in recipe order.
func (l *Ledger) Missing(ingredients []Ingredient, pantry []string) []Ingredient {
	var out []Ingredient
	for _, ing := range ingredients {
		if !l.Owns(ing, pantry) {
			out = append(out, ing)
		}
	}
	return out
}

func percent(have, total int) int {
	if total <= 0 {
		return 0
	}
	// Integer division floors for non-negative operands.
	return have * 100 / total
}
