package unify

import (
	"errors"
	"strings"
	"testing"

	"github.com/fbkclanna/unidep/internal/manifest"
)

func TestUnify_twoSimple(t *testing.T) {
	g := NewGroups()
	g.Add("pkg", manifest.Simple("1.0"))
	g.Add("pkg", manifest.Simple("2.0"))

	table, err := Unify(g)
	if err != nil {
		t.Fatal(err)
	}
	dep, ok := table.Get("pkg")
	if !ok {
		t.Fatal("pkg missing from unified table")
	}
	s, ok := dep.(manifest.Simple)
	if !ok {
		t.Fatalf("pkg = %#v, want Simple", dep)
	}
	if !strings.Contains(string(s), "1.0") || !strings.Contains(string(s), "2.0") {
		t.Errorf("merged constraint %q should contain both terms", s)
	}
	if !strings.Contains(string(s), ", ") {
		t.Errorf("merged constraint %q should be comma-joined", s)
	}
}

func TestUnify_seedIsFirstDiscovered(t *testing.T) {
	g := NewGroups()
	g.Add("pkg", manifest.Simple("1.0"))
	g.Add("pkg", manifest.Simple("2.0"))
	g.Add("pkg", manifest.Simple("3.0"))

	table, err := Unify(g)
	if err != nil {
		t.Fatal(err)
	}
	dep, _ := table.Get("pkg")
	if got := string(dep.(manifest.Simple)); got != "1.0, 2.0, 3.0" {
		t.Errorf("merged = %q, want discovery order %q", got, "1.0, 2.0, 3.0")
	}
}

func TestUnify_simpleThenDetailed(t *testing.T) {
	g := NewGroups()
	g.Add("pkg", manifest.Simple("1.0.0"))
	g.Add("pkg", &manifest.Detailed{Version: "1.9.0", Attrs: map[string]any{"features": []any{"x"}}})

	table, err := Unify(g)
	if err != nil {
		t.Fatal(err)
	}
	dep, _ := table.Get("pkg")
	d, ok := dep.(*manifest.Detailed)
	if !ok {
		t.Fatalf("pkg = %#v, want *Detailed", dep)
	}
	if d.Version != "1.0.0, 1.9.0" {
		t.Errorf("version = %q, want %q", d.Version, "1.0.0, 1.9.0")
	}
}

func TestUnify_simplifiesResult(t *testing.T) {
	g := NewGroups()
	g.Add("pkg", manifest.Simple("1.0"))
	g.Add("pkg", manifest.Simple("1.0"))

	table, err := Unify(g)
	if err != nil {
		t.Fatal(err)
	}
	dep, _ := table.Get("pkg")
	if got := string(dep.(manifest.Simple)); got != "1.0" {
		t.Errorf("merged = %q, want duplicate terms collapsed", got)
	}
}

func TestUnify_inheritedIsFatal(t *testing.T) {
	g := NewGroups()
	g.Add("pkg", manifest.Simple("1.0"))
	g.Add("pkg", manifest.Inherited{})

	if _, err := Unify(g); !errors.Is(err, ErrInherited) {
		t.Fatalf("err = %v, want ErrInherited", err)
	}

	g2 := NewGroups()
	g2.Add("pkg", manifest.Inherited{})
	if _, err := Unify(g2); !errors.Is(err, ErrInherited) {
		t.Fatalf("seed err = %v, want ErrInherited", err)
	}
}

func TestUnify_invalidConstraintIsFatal(t *testing.T) {
	g := NewGroups()
	g.Add("pkg", manifest.Simple("garbage"))
	if _, err := Unify(g); err == nil {
		t.Fatal("expected error for invalid constraint")
	}
}

func TestUnify_doesNotMutateInputs(t *testing.T) {
	original := &manifest.Detailed{Version: "1.0", Attrs: map[string]any{"optional": true}}
	g := NewGroups()
	g.Add("pkg", original)
	g.Add("pkg", manifest.Simple("2.0"))

	if _, err := Unify(g); err != nil {
		t.Fatal(err)
	}
	if original.Version != "1.0" {
		t.Errorf("input spec mutated: version = %q", original.Version)
	}
}

func TestTable_namesSorted(t *testing.T) {
	g := NewGroups()
	g.Add("zeta", manifest.Simple("1.0"))
	g.Add("alpha", manifest.Simple("1.0"))

	table, err := Unify(g)
	if err != nil {
		t.Fatal(err)
	}
	names := table.Names()
	if len(names) != 2 || names[0] != "alpha" || names[1] != "zeta" {
		t.Errorf("names = %v, want sorted", names)
	}
}
