package unify

import (
	"errors"
	"fmt"

	"github.com/fbkclanna/unidep/internal/manifest"
)

// ErrInherited reports that an inherited spec reached a merge. A member
// marks a dependency as inherited while the root's shared table does not
// declare it, so the tree is inconsistent and the run must stop.
var ErrInherited = errors.New("inherited dependency is not a valid merge input")

// MergeSimple folds a bare constraint string into acc.
//
// A Detailed acc with no version is left untouched: there is no version
// field to append to. This mirrors the declared behavior of the merge and
// means a version-less structured spec cannot acquire a constraint from a
// Simple one.
func MergeSimple(acc manifest.Dependency, version string) (manifest.Dependency, error) {
	switch a := acc.(type) {
	case manifest.Simple:
		return manifest.Simple(string(a) + ", " + version), nil
	case *manifest.Detailed:
		if a.Version != "" {
			a.Version += ", " + version
		}
		return a, nil
	case manifest.Inherited:
		return nil, ErrInherited
	default:
		return nil, fmt.Errorf("unsupported dependency variant %T", acc)
	}
}

// MergeDetailed folds a structured spec into acc. The accumulator's
// constraint always comes first in the concatenation so the result reads
// in declaration order. When acc is Simple the result becomes Detailed and
// every non-version attribute is taken from the incoming spec; when acc is
// already Detailed its own attributes are kept and the incoming ones are
// dropped. There is no attribute-level merge.
func MergeDetailed(acc manifest.Dependency, detail *manifest.Detailed) (manifest.Dependency, error) {
	switch a := acc.(type) {
	case manifest.Simple:
		merged := detail.Clone().(*manifest.Detailed)
		if merged.Version != "" {
			merged.Version = string(a) + ", " + merged.Version
		} else {
			merged.Version = string(a)
		}
		return merged, nil
	case *manifest.Detailed:
		switch {
		case a.Version == "":
			a.Version = detail.Version
		case detail.Version != "":
			a.Version += ", " + detail.Version
		}
		return a, nil
	case manifest.Inherited:
		return nil, ErrInherited
	default:
		return nil, fmt.Errorf("unsupported dependency variant %T", acc)
	}
}

// Merge folds next into acc, dispatching on the incoming variant.
func Merge(acc, next manifest.Dependency) (manifest.Dependency, error) {
	switch n := next.(type) {
	case manifest.Simple:
		return MergeSimple(acc, string(n))
	case *manifest.Detailed:
		return MergeDetailed(acc, n)
	case manifest.Inherited:
		return nil, ErrInherited
	default:
		return nil, fmt.Errorf("unsupported dependency variant %T", next)
	}
}

// Simplify deduplicates the comparator terms of a spec's constraint and
// re-renders it canonically. An invalid constraint is a propagated error,
// fatal for the whole run. A Detailed spec without a version has nothing
// to simplify.
func Simplify(dep manifest.Dependency) (manifest.Dependency, error) {
	switch d := dep.(type) {
	case manifest.Simple:
		req, err := ParseRequirement(string(d))
		if err != nil {
			return nil, err
		}
		return manifest.Simple(req.Dedup().String()), nil
	case *manifest.Detailed:
		if d.Version == "" {
			return d, nil
		}
		req, err := ParseRequirement(d.Version)
		if err != nil {
			return nil, err
		}
		d.Version = req.Dedup().String()
		return d, nil
	case manifest.Inherited:
		return nil, ErrInherited
	default:
		return nil, fmt.Errorf("unsupported dependency variant %T", dep)
	}
}
