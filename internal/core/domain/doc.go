// Package domain defines the core entities of the repository scanner.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - RepoSummary: one row of the forge's numeric-id enumeration
//   - Repository: a hydrated repository with its language list
//   - Result: the persisted manifest/lock probe outcome for a repository
//   - CrawlReport: counters and terminal state of a single crawl run
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
