package driven

import (
	"context"

	"github.com/custodia-labs/reposcan/internal/core/domain"
)

// ResultStore persists scan results.
type ResultStore interface {
	// PutResult upserts result under (key, result.NodeID).
	PutResult(ctx context.Context, key string, result domain.Result) error

	// ListResults returns results for key ordered by name.
	// A limit of zero or less returns all results.
	ListResults(ctx context.Context, key string, limit int) ([]domain.Result, error)

	// CountResults returns how many results exist for key.
	CountResults(ctx context.Context, key string) (int, error)
}

// Store bundles the persistence ports a crawl needs.
type Store interface {
	CursorStore
	ResultStore

	// Close releases the underlying connection.
	Close() error
}
