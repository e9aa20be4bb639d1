package patch

import (
	"bytes"
	"fmt"
	"os"

	"github.com/fbkclanna/unidep/internal/manifest"
	"github.com/fbkclanna/unidep/internal/tomldoc"
	"github.com/fbkclanna/unidep/internal/unify"
	"github.com/fbkclanna/unidep/internal/workspace"
)

// sharedTable is the root manifest table holding workspace-wide
// dependency declarations.
const sharedTable = "workspace.dependencies"

// dependenciesTable is the member manifest table being consolidated.
const dependenciesTable = "dependencies"

// UnsupportedEntryError reports a dependency entry whose document shape
// the patcher cannot rewrite.
type UnsupportedEntryError struct {
	Path string
	Name string
	Kind string
}

func (e *UnsupportedEntryError) Error() string {
	return fmt.Sprintf("%s: dependency %q has unsupported %s value", e.Path, e.Name, e.Kind)
}

// FileChange is one buffered manifest rewrite.
type FileChange struct {
	Path   string
	Before []byte
	After  []byte
}

// Changed reports whether the rewrite alters the file.
func (c FileChange) Changed() bool {
	return !bytes.Equal(c.Before, c.After)
}

// Plan holds every buffered rewrite for a consolidation run.
type Plan struct {
	Changes []FileChange
}

// Changed returns the number of files the plan actually modifies.
func (p *Plan) Changed() int {
	n := 0
	for _, c := range p.Changes {
		if c.Changed() {
			n++
		}
	}
	return n
}

// Commit writes every modified file. Unchanged files are left alone.
func (p *Plan) Commit() error {
	for _, c := range p.Changes {
		if !c.Changed() {
			continue
		}
		if err := os.WriteFile(c.Path, c.After, 0644); err != nil { //nolint:gosec // manifests need to be readable
			return fmt.Errorf("writing %s: %w", c.Path, err)
		}
	}
	return nil
}

// Build patches the root and every member document with the unified table
// and returns the buffered results. No file is touched.
func Build(ctx *workspace.Context, table *unify.Table) (*Plan, error) {
	plan := &Plan{}

	rootDoc, err := tomldoc.Parse(ctx.Data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ctx.ManifestPath, err)
	}
	if err := patchRoot(rootDoc, table); err != nil {
		return nil, fmt.Errorf("%s: %w", ctx.ManifestPath, err)
	}
	after, err := rootDoc.Render()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ctx.ManifestPath, err)
	}
	plan.Changes = append(plan.Changes, FileChange{Path: ctx.ManifestPath, Before: ctx.Data, After: after})

	for _, m := range ctx.Members {
		doc, err := tomldoc.Parse(m.Data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", m.ManifestPath, err)
		}
		if err := patchMember(m.ManifestPath, doc, table); err != nil {
			return nil, err
		}
		after, err := doc.Render()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", m.ManifestPath, err)
		}
		plan.Changes = append(plan.Changes, FileChange{Path: m.ManifestPath, Before: m.Data, After: after})
	}

	return plan, nil
}

// patchRoot inserts (or overwrites) every unified entry in the root's
// shared dependency table. The section is created when the root document
// does not declare it yet.
func patchRoot(doc *tomldoc.Document, table *unify.Table) error {
	for _, name := range table.Names() {
		dep, _ := table.Get(name)
		raw, err := renderDependency(name, dep)
		if err != nil {
			return err
		}
		doc.SetEntry(sharedTable, name, raw)
	}
	return nil
}

// patchMember rewrites each consolidated dependency in one member
// document: bare string values are replaced whole, table-like values get
// only their version field replaced. A table-like entry without a version
// field is left alone.
func patchMember(path string, doc *tomldoc.Document, table *unify.Table) error {
	for _, name := range doc.Keys(dependenciesTable) {
		dep, ok := table.Get(name)
		if !ok {
			continue
		}
		entry, ok := doc.Entry(dependenciesTable, name)
		if !ok {
			continue
		}
		switch entry.Kind() {
		case tomldoc.KindString:
			version, err := mergedVersion(name, dep)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			if err := entry.SetString(version); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
		case tomldoc.KindTableLike:
			field, ok := entry.Field("version")
			if !ok {
				continue
			}
			if field.Kind() != tomldoc.KindString {
				return &UnsupportedEntryError{Path: path, Name: name, Kind: field.Kind().String()}
			}
			version, err := mergedVersion(name, dep)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			if err := field.SetString(version); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
		default:
			return &UnsupportedEntryError{Path: path, Name: name, Kind: entry.Kind().String()}
		}
	}
	return nil
}

// mergedVersion extracts the constraint a member entry is rewritten to.
func mergedVersion(name string, dep manifest.Dependency) (string, error) {
	version, ok := manifest.Version(dep)
	if !ok {
		return "", fmt.Errorf("unified dependency %q has no version constraint", name)
	}
	return version, nil
}
