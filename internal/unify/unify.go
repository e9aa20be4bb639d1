package unify

import (
	"fmt"
	"sort"

	"github.com/fbkclanna/unidep/internal/manifest"
)

// Groups accumulates the specs declared for each package name across all
// members, in discovery order. Specs are cloned on insertion so the fold
// owns its inputs.
type Groups struct {
	names []string
	specs map[string][]manifest.Dependency
}

// NewGroups returns an empty accumulator.
func NewGroups() *Groups {
	return &Groups{specs: make(map[string][]manifest.Dependency)}
}

// Add records one declaration of name.
func (g *Groups) Add(name string, dep manifest.Dependency) {
	if _, ok := g.specs[name]; !ok {
		g.names = append(g.names, name)
	}
	g.specs[name] = append(g.specs[name], dep.Clone())
}

// Len returns the number of distinct package names.
func (g *Groups) Len() int { return len(g.names) }

// Names returns the package names in discovery order.
func (g *Groups) Names() []string { return g.names }

// Specs returns the recorded declarations for name in discovery order,
// or nil when the name was never added.
func (g *Groups) Specs(name string) []manifest.Dependency { return g.specs[name] }

// Table is the unified result: one merged spec per package name.
type Table struct {
	deps map[string]manifest.Dependency
}

// Len returns the number of unified entries.
func (t *Table) Len() int { return len(t.deps) }

// Get returns the merged spec for name.
func (t *Table) Get(name string) (manifest.Dependency, bool) {
	d, ok := t.deps[name]
	return d, ok
}

// Names returns the unified package names in sorted order.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.deps))
	for name := range t.deps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Unify merges every group into a single spec per name. The first
// discovered spec seeds the fold and the rest are merged in discovery
// order; the result is then simplified. Any inherited spec in the input
// aborts the run.
func Unify(groups *Groups) (*Table, error) {
	out := make(map[string]manifest.Dependency, groups.Len())
	for _, name := range groups.names {
		specs := groups.specs[name]
		acc := specs[0]
		if _, ok := acc.(manifest.Inherited); ok {
			return nil, fmt.Errorf("dependency %q: %w", name, ErrInherited)
		}
		for _, next := range specs[1:] {
			var err error
			acc, err = Merge(acc, next)
			if err != nil {
				return nil, fmt.Errorf("dependency %q: %w", name, err)
			}
		}
		simplified, err := Simplify(acc)
		if err != nil {
			return nil, fmt.Errorf("dependency %q: %w", name, err)
		}
		out[name] = simplified
	}
	return &Table{deps: out}, nil
}
