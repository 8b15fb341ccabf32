// Package dao holds the entity repositories and the reporting queries over
// users, companies and payments.
package dao
