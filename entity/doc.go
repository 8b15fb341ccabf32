// Package entity holds the Bun models of the payment book: companies, their
// users with profiles, and payments received by users. Importing the
// package registers the models for migration.
package entity
