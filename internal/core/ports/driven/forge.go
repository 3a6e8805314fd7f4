package driven

import (
	"context"

	"github.com/custodia-labs/reposcan/internal/core/domain"
)

// RepoLister enumerates repositories by numeric id.
type RepoLister interface {
	// ListRepos returns up to domain.MaxPageSize summaries whose id is strictly
	// greater than after, in ascending id order. A page shorter than the full
	// page size means enumeration is exhausted.
	ListRepos(ctx context.Context, after int64) ([]domain.RepoSummary, error)
}

// RepoHydrator loads full repository metadata for a batch of opaque ids.
type RepoHydrator interface {
	// HydrateRepos returns one slot per requested id, in request order.
	// A nil slot means the id no longer resolves (deleted or inaccessible).
	// Callers never pass more than domain.MaxHydrationBatch ids.
	HydrateRepos(ctx context.Context, ids []string) ([]*domain.Repository, error)
}

// ContentProber checks for files in a repository's default branch.
type ContentProber interface {
	// PathExists reports whether path exists in the repository identified by nodeID.
	PathExists(ctx context.Context, nodeID, path string) (bool, error)
}

// Forge is a code forge that can be crawled.
// Each forge (github, ...) implements this interface.
type Forge interface {
	RepoLister
	RepoHydrator
	ContentProber

	// Name returns the forge identifier, used as default source key.
	Name() string

	// Validate checks the forge is reachable and the credentials are accepted.
	Validate(ctx context.Context) error

	// Close releases resources.
	Close() error
}
