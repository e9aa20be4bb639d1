package patch

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/fbkclanna/unidep/internal/manifest"
	"github.com/fbkclanna/unidep/internal/tomldoc"
)

// renderDependency serializes a merged spec as a TOML value for the root's
// shared table: a plain string for Simple specs, an inline table with the
// version first for Detailed ones.
func renderDependency(name string, dep manifest.Dependency) (string, error) {
	switch d := dep.(type) {
	case manifest.Simple:
		return tomldoc.Quote(string(d)), nil
	case *manifest.Detailed:
		var parts []string
		if d.Version != "" {
			parts = append(parts, "version = "+tomldoc.Quote(d.Version))
		}
		keys := make([]string, 0, len(d.Attrs))
		for k := range d.Attrs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			v, err := renderValue(d.Attrs[k])
			if err != nil {
				return "", fmt.Errorf("dependency %q, attribute %q: %w", name, k, err)
			}
			parts = append(parts, tomldoc.EncodeKey(k)+" = "+v)
		}
		if len(parts) == 0 {
			return "{ }", nil
		}
		return "{ " + strings.Join(parts, ", ") + " }", nil
	default:
		return "", fmt.Errorf("dependency %q: cannot serialize %T", name, dep)
	}
}

// renderValue serializes an opaque passthrough attribute.
func renderValue(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return tomldoc.Quote(val), nil
	case bool:
		return strconv.FormatBool(val), nil
	case int64:
		return strconv.FormatInt(val, 10), nil
	case int:
		return strconv.Itoa(val), nil
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64), nil
	case []any:
		parts := make([]string, len(val))
		for i, e := range val {
			s, err := renderValue(e)
			if err != nil {
				return "", err
			}
			parts[i] = s
		}
		return "[" + strings.Join(parts, ", ") + "]", nil
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(val))
		for _, k := range keys {
			s, err := renderValue(val[k])
			if err != nil {
				return "", err
			}
			parts = append(parts, tomldoc.EncodeKey(k)+" = "+s)
		}
		if len(parts) == 0 {
			return "{ }", nil
		}
		return "{ " + strings.Join(parts, ", ") + " }", nil
	default:
		return "", fmt.Errorf("unsupported attribute type %T", v)
	}
}
