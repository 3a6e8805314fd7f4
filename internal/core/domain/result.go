package domain

import "time"

// Result is the persisted outcome for a repository written in the target language.
// Results are keyed by (SourceKey, NodeID); writing the same key again replaces it.
type Result struct {
	// SourceKey identifies the forge the result came from (e.g. "github").
	SourceKey string `json:"source_key"`
	// NodeID is the repository's opaque identifier.
	NodeID string `json:"node_id"`
	// Name is the display name (owner/name).
	Name string `json:"name"`
	// HasManifest reports whether the manifest file exists at the repository root.
	HasManifest bool `json:"has_manifest"`
	// HasLock reports whether the lock file exists at the repository root.
	HasLock bool `json:"has_lock"`
	// UpdatedAt is when the result was last written.
	UpdatedAt time.Time `json:"updated_at"`
}
