package ledger

import (
	"strconv"
	"strings"

	"github.com/hammamikhairi/simmr/internal/domain"
)

// Predicate selects recipes.
type Predicate func(r *domain.Recipe) bool

// Filter returns the recipes matching pred in their original order. The
// input slice is not modified.
func Filter(recipes []domain.Recipe, pred Predicate) []domain.Recipe {
	out := make([]domain.Recipe, 0, len(recipes))
	for i := range recipes {
		if pred(&recipes[i]) {
			out = append(out, recipes[i])
		}
	}
	return out
}

// FilterByCategory keeps recipes whose category equals c exactly.
func FilterByCategory(recipes []domain.Recipe, c domain.Category) []domain.Recipe {
	return Filter(recipes, InCategory(c))
}

// InCategory matches recipes of category c.
func InCategory(c domain.Category) Predicate {
	return func(r *domain.Recipe) bool { return r.Category == c }
}

// KidFriendly matches recipes flagged kid friendly.
func KidFriendly(r *domain.Recipe) bool { return r.KidFriendly }

// ServesAtLeast matches recipes whose num_servings parses as an integer
// of at least n. Non-numeric servings never match.
func ServesAtLeast(n int) Predicate {
	return func(r *domain.Recipe) bool {
		s, ok := Servings(r.NumServings)
		return ok && s >= n
	}
}

// ServesFour is the "serves 4+" view.
var ServesFour = ServesAtLeast(4)

// Servings reads the leading integer of a num_servings value, so "4-6"
// yields 4 and "6 people" yields 6. ok is false when the value does not
// start with a number after leading whitespace.
func Servings(v string) (int, bool) {
	v = strings.TrimLeft(v, " \t\r\n")
	end := 0
	if end < len(v) && (v[end] == '+' || v[end] == '-') {
		end++
	}
	digits := end
	for end < len(v) && v[end] >= '0' && v[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	n, err := strconv.Atoi(v[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

// BrowseSections splits a recipe list the way the browse screen shows it.
type BrowseSections struct {
	Kids        []domain.Recipe `json:"kids"`
	Friends     []domain.Recipe `json:"friends"`
	Recommended []domain.Recipe `json:"recommended"`
}

// Sections places every recipe in exactly one section: kid friendly
// recipes go to Kids, other recipes serving four or more go to Friends,
// and the rest are Recommended. Order is preserved within each section.
func Sections(recipes []domain.Recipe) BrowseSections {
	var s BrowseSections
	for i := range recipes {
		r := &recipes[i]
		switch {
		case KidFriendly(r):
			s.Kids = append(s.Kids, *r)
		case ServesFour(r):
			s.Friends = append(s.Friends, *r)
		default:
			s.Recommended = append(s.Recommended, *r)
		}
	}
	return s
}
