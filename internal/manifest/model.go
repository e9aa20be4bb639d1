package manifest

// File represents a parsed project.toml. A root manifest carries a
// Workspace section; member manifests usually carry Package and
// Dependencies only. All sections are optional at this level; callers
// enforce what they need.
type File struct {
	Package      *Package
	Workspace    *Workspace
	Dependencies Dependencies
}

// Package holds member metadata. Unknown keys are ignored.
type Package struct {
	Name    string `toml:"name"`
	Version string `toml:"version,omitempty"`
}

// Workspace is the root manifest's [workspace] section: the member
// directories and the shared dependency table.
type Workspace struct {
	Members      []string
	Dependencies Dependencies
}

// Dependencies maps package name to its declared spec.
type Dependencies map[string]Dependency

// Dependency is a single package reference. It is a closed sum of three
// variants: Simple (a bare constraint string), *Detailed (structured
// attributes with an optional version constraint), and Inherited (a marker
// meaning "use the workspace's shared declaration").
//
// Inherited is never a valid merge input: a member marking a dependency as
// inherited while the root does not declare it means the tree is already
// inconsistent.
type Dependency interface {
	dependency()
	// Clone returns an independent copy. Specs are cloned into
	// accumulation lists before merging so folds never mutate the
	// loaded manifests.
	Clone() Dependency
}

// Simple is a bare version constraint, e.g. "1.0" or ">=1.2, <2".
type Simple string

func (Simple) dependency() {}

// Clone implements Dependency.
func (s Simple) Clone() Dependency { return s }

// Detailed is a structured dependency value. Version is the raw constraint
// string, empty when the value declares no version (e.g. a path-only
// dependency). Attrs carries every non-version attribute as opaque
// passthrough data; merging never inspects them.
type Detailed struct {
	Version string
	Attrs   map[string]any
}

func (*Detailed) dependency() {}

// Clone implements Dependency.
func (d *Detailed) Clone() Dependency {
	out := &Detailed{Version: d.Version, Attrs: make(map[string]any, len(d.Attrs))}
	for k, v := range d.Attrs {
		out.Attrs[k] = cloneValue(v)
	}
	return out
}

// Inherited marks a dependency declared as { workspace = true }.
type Inherited struct{}

func (Inherited) dependency() {}

// Clone implements Dependency.
func (i Inherited) Clone() Dependency { return i }

// Version returns the constraint string declared by a spec, and whether
// one is present. Inherited specs never carry a constraint.
func Version(d Dependency) (string, bool) {
	switch v := d.(type) {
	case Simple:
		return string(v), true
	case *Detailed:
		return v.Version, v.Version != ""
	default:
		return "", false
	}
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = cloneValue(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, e := range val {
			out[k] = cloneValue(e)
		}
		return out
	default:
		return val
	}
}
