package ledger

import (
	"fmt"
	"strings"
)

// Policy selects how an ingredient name is compared to pantry entries.
type Policy int

const (
	// PolicyExact is trimmed, case-sensitive equality. This is the default:
	// "chicken" does not match a pantry entry "Chicken".
	PolicyExact Policy = iota
	// PolicyFold ignores case and collapses runs of whitespace.
	PolicyFold
	// PolicyContains matches when a pantry entry appears anywhere in the
	// full ingredient line, amount included.
	PolicyContains
)

var policyNames = map[Policy]string{
	PolicyExact:    "exact",
	PolicyFold:     "fold",
	PolicyContains: "contains",
}

// String returns the config name of the policy.
func (p Policy) String() string {
	if n, ok := policyNames[p]; ok {
		return n
	}
	return fmt.Sprintf("policy(%d)", int(p))
}

// ParsePolicy maps a config name to a Policy. The empty string selects
// PolicyExact.
func ParsePolicy(s string) (Policy, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return PolicyExact, nil
	}
	for p, n := range policyNames {
		if n == s {
			return p, nil
		}
	}
	return PolicyExact, fmt.Errorf("unknown match policy %q", s)
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithPolicy sets the matching policy.
func WithPolicy(p Policy) Option {
	return func(l *Ledger) {
		l.policy = p
	}
}

// Ledger applies a matching policy to readiness computations. The zero
// value uses PolicyExact. A Ledger is immutable after New and safe for
// concurrent use.
type Ledger struct {
	policy Policy
}

// New creates a ledger with the given options.
func New(opts ...Option) *Ledger {
	l := &Ledger{policy: PolicyExact}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Policy returns the configured matching policy.
func (l *Ledger) Policy() Policy { return l.policy }

// IsOwned reports whether name is in the pantry using PolicyExact.
func IsOwned(name string, pantry []string) bool {
	return matchName(PolicyExact, name, "", pantry)
}

// Owns reports whether the ingredient is owned under the ledger's policy.
// A structured entry that was explicitly marked as had is always owned.
func (l *Ledger) Owns(ing Ingredient, pantry []string) bool {
	if ing.have != nil && *ing.have {
		return true
	}
	return matchName(l.policy, ing.Name, ing.String(), pantry)
}

func matchName(p Policy, name, line string, pantry []string) bool {
	name = strings.TrimSpace(name)
	if name == "" || len(pantry) == 0 {
		return false
	}

	switch p {
	case PolicyFold:
		want := foldKey(name)
		for _, item := range pantry {
			if k := foldKey(item); k != "" && k == want {
				return true
			}
		}
	case PolicyContains:
		for _, item := range pantry {
			if item = strings.TrimSpace(item); item != "" && strings.Contains(line, item) {
				return true
			}
		}
	default:
		for _, item := range pantry {
			if strings.TrimSpace(item) == name {
				return true
			}
		}
	}
	return false
}

func foldKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
