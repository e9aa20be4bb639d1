// Package workspace integrates manifest loading with path resolution. It
// provides the Context type that holds the root manifest and every member
// manifest, both parsed and as raw bytes for format-preserving patching.
package workspace
