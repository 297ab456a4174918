package migrations

import "embed"

// FS contains embedded SQLite migrations for coordination storage.
//
//go:embed *.sql
var FS embed.FS
