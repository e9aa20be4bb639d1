// Package git provides the Git CLI checks unidep performs before
// rewriting manifests: repository detection and working-tree cleanliness.
package git
