// Package storage defines persistence contracts for the control server's
// command audit trail and render history.
//
// These interfaces keep command dispatch separate from storage technology;
// the server runs against SQLite when a path is configured and an in-memory
// store otherwise.
package storage
