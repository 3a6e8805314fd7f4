// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - RepoLister: enumerates repository summaries after a numeric cursor
//   - RepoHydrator: loads full metadata for a batch of opaque ids
//   - ContentProber: checks whether a path exists in a repository
//   - CursorStore: persists the enumeration cursor per source key
//   - ResultStore: persists manifest/lock results per source key
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or connector package
package driven
