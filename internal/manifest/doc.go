// Package manifest handles parsing of project.toml files and defines the
// dependency specification model shared by the root workspace manifest and
// member manifests.
package manifest
