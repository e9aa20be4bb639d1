package manifest

import (
	"fmt"
	"os"

	toml "github.com/pelletier/go-toml/v2"
)

// Load reads and parses a project.toml file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the workspace manifest
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse parses project.toml content.
func Parse(data []byte) (*File, error) {
	var raw struct {
		Package   *Package `toml:"package"`
		Workspace *struct {
			Members      []string       `toml:"members"`
			Dependencies map[string]any `toml:"dependencies"`
		} `toml:"workspace"`
		Dependencies map[string]any `toml:"dependencies"`
	}
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing manifest TOML: %w", err)
	}

	f := &File{Package: raw.Package}

	deps, err := decodeDependencies(raw.Dependencies)
	if err != nil {
		return nil, err
	}
	f.Dependencies = deps

	if raw.Workspace != nil {
		shared, err := decodeDependencies(raw.Workspace.Dependencies)
		if err != nil {
			return nil, err
		}
		f.Workspace = &Workspace{
			Members:      raw.Workspace.Members,
			Dependencies: shared,
		}
	}

	return f, nil
}

func decodeDependencies(raw map[string]any) (Dependencies, error) {
	deps := make(Dependencies, len(raw))
	for name, value := range raw {
		dep, err := decodeDependency(name, value)
		if err != nil {
			return nil, err
		}
		deps[name] = dep
	}
	return deps, nil
}

// decodeDependency converts a raw TOML value into its Dependency variant.
// Strings become Simple, tables become Detailed (or Inherited when they
// carry workspace = true), anything else is rejected.
func decodeDependency(name string, value any) (Dependency, error) {
	switch v := value.(type) {
	case string:
		return Simple(v), nil
	case map[string]any:
		if w, ok := v["workspace"]; ok {
			if b, ok := w.(bool); ok && b {
				return Inherited{}, nil
			}
		}
		d := &Detailed{Attrs: make(map[string]any, len(v))}
		for key, attr := range v {
			if key == "version" {
				s, ok := attr.(string)
				if !ok {
					return nil, fmt.Errorf("dependency %q: version must be a string, got %T", name, attr)
				}
				d.Version = s
				continue
			}
			d.Attrs[key] = attr
		}
		return d, nil
	default:
		return nil, fmt.Errorf("dependency %q: unsupported value of type %T", name, value)
	}
}
