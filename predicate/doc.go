// Package predicate builds composable Bun WHERE conditions and assembles them
// from optional filter values, skipping the ones that are absent.
package predicate
