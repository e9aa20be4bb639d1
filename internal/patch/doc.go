// Package patch propagates a unified dependency table back into the root
// and member manifests. All documents are patched, rendered, and validated
// in memory first; files are written only after every transformation has
// succeeded, so a failing manifest never leaves the tree half-migrated.
package patch
