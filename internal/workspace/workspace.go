package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/fbkclanna/unidep/internal/manifest"
	"github.com/fbkclanna/unidep/internal/unify"
)

// ManifestName is the file name shared by root and member manifests.
const ManifestName = "project.toml"

// ErrNoWorkspace reports a root manifest without a [workspace] section.
var ErrNoWorkspace = errors.New("no workspace section found in root manifest")

// Context holds the loaded root manifest and member manifests.
type Context struct {
	// Root is the directory containing the root manifest.
	Root         string
	ManifestPath string
	Data         []byte
	Manifest     *manifest.File
	Members      []Member
}

// Member is one workspace member, in root manifest order.
type Member struct {
	// Path is the member directory relative to the workspace root.
	Path         string
	ManifestPath string
	Data         []byte
	Manifest     *manifest.File
}

// ResolveTarget normalizes a target path to an absolute manifest path.
// Directory targets resolve to the manifest file inside them. The target
// must exist; a missing one is a plain I/O failure.
func ResolveTarget(target string) (string, error) {
	abs, err := filepath.Abs(target)
	if err != nil {
		return "", fmt.Errorf("resolving target path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("target: %w", err)
	}
	if info.IsDir() {
		abs = filepath.Join(abs, ManifestName)
		if _, err := os.Stat(abs); err != nil {
			return "", fmt.Errorf("target: %w", err)
		}
	}
	return abs, nil
}

// Load reads the root manifest at the given path and every member
// manifest it lists, in declaration order. The root must declare a
// [workspace] section.
func Load(manifestPath string) (*Context, error) {
	data, err := os.ReadFile(manifestPath) //nolint:gosec // target path comes from the CLI
	if err != nil {
		return nil, fmt.Errorf("reading root manifest: %w", err)
	}
	root, err := manifest.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", manifestPath, err)
	}
	if root.Workspace == nil {
		return nil, fmt.Errorf("%s: %w", manifestPath, ErrNoWorkspace)
	}

	ctx := &Context{
		Root:         filepath.Dir(manifestPath),
		ManifestPath: manifestPath,
		Data:         data,
		Manifest:     root,
	}

	for _, rel := range root.Workspace.Members {
		memberPath := filepath.Join(ctx.Root, rel, ManifestName)
		memberData, err := os.ReadFile(memberPath) //nolint:gosec // member paths come from the root manifest
		if err != nil {
			return nil, fmt.Errorf("reading member %s: %w", rel, err)
		}
		m, err := manifest.Parse(memberData)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", memberPath, err)
		}
		ctx.Members = append(ctx.Members, Member{
			Path:         rel,
			ManifestPath: memberPath,
			Data:         memberData,
			Manifest:     m,
		})
	}

	return ctx, nil
}

// NewDependencies groups every dependency declared by at least one member
// and absent from the root's shared table. Members contribute in manifest
// order; names within a member are visited in sorted order so grouping is
// deterministic.
func (c *Context) NewDependencies() *unify.Groups {
	groups := unify.NewGroups()
	for _, m := range c.Members {
		names := make([]string, 0, len(m.Manifest.Dependencies))
		for name := range m.Manifest.Dependencies {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if _, shared := c.Manifest.Workspace.Dependencies[name]; shared {
				continue
			}
			groups.Add(name, m.Manifest.Dependencies[name])
		}
	}
	return groups
}
