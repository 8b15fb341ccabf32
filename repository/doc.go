// Package repository provides a generic Bun repository keyed by entity id:
// CRUD with fetch hints, predicate queries, pagination, batch upsert and
// optimistic locking for versioned entities.
package repository
