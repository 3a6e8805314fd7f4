// Package sqlite provides the default SQLite-based implementation of driven.Store.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. One database holds both checkpoints of a
// crawl:
//
//   - cursors: the resume cursor per source key
//   - results: one row per repository in the target language
//
// The two tables are written independently; no transaction spans a cursor write
// and a result write.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.reposcan/data/reposcan.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
