package migrations

import "embed"

// FS contains embedded SQLite migrations for control storage.
//
//go:embed *.sql
var FS embed.FS
