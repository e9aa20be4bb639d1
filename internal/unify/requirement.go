package unify

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Requirement is a version constraint broken into its comparator terms,
// kept in declaration order.
type Requirement struct {
	terms []string
}

// ParseRequirement validates a raw constraint string and splits it into
// comparator terms. The whole string is validated up front so every term
// kept afterwards is known to be a valid comparator.
func ParseRequirement(raw string) (Requirement, error) {
	if strings.TrimSpace(raw) == "" {
		return Requirement{}, fmt.Errorf("empty version requirement")
	}
	if _, err := semver.NewConstraint(raw); err != nil {
		return Requirement{}, fmt.Errorf("invalid version requirement %q: %w", raw, err)
	}
	var terms []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		terms = append(terms, part)
	}
	return Requirement{terms: terms}, nil
}

// Dedup removes duplicate comparator terms, keeping the first occurrence
// of each so output is deterministic across runs. Terms are compared with
// interior whitespace removed, so ">= 1.0" and ">=1.0" collapse.
func (r Requirement) Dedup() Requirement {
	seen := make(map[string]bool, len(r.terms))
	out := make([]string, 0, len(r.terms))
	for _, term := range r.terms {
		key := strings.ReplaceAll(term, " ", "")
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, term)
	}
	return Requirement{terms: out}
}

// Terms returns the comparator terms in order.
func (r Requirement) Terms() []string {
	return append([]string(nil), r.terms...)
}

// String re-renders the requirement with the canonical ", " separator.
func (r Requirement) String() string {
	return strings.Join(r.terms, ", ")
}
