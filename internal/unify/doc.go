// Package unify merges same-named dependency specs collected across
// workspace members into a single spec per package. Version constraints
// are unified by concatenation rather than true range intersection, then
// simplified by deduplicating comparator terms.
package unify
