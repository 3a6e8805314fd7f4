// Package migrations holds the numbered SQLite schema files, applied in
// version order and recorded in schema_migrations.
package migrations

import "embed"

// FS holds the *.up.sql and *.down.sql files.
//
//go:embed *.sql
var FS embed.FS
