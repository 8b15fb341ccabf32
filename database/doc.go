// Package database provides the Bun connection manager for MySQL, Postgres
// and SQLite, versioned migrations over registered models, SQL file seeding,
// driver error classification and query logging hooks.
package database
