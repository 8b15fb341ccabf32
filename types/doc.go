// Package types holds small value types shared by repositories and entities:
// page requests, enum contracts and JSON columns.
package types
