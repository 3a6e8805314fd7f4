package driving

import (
	"context"

	"github.com/custodia-labs/reposcan/internal/core/domain"
)

// ResultQuery exposes the persisted state of a source.
type ResultQuery interface {
	// Results lists stored results; limit <= 0 returns all.
	Results(ctx context.Context, limit int) ([]domain.Result, error)

	// Status returns the resume cursor and the number of stored results.
	Status(ctx context.Context) (*SourceStatus, error)
}

// SourceStatus describes where a source's crawl will resume.
type SourceStatus struct {
	// SourceKey identifies the source.
	SourceKey string

	// Cursor is the persisted cursor; zero when HasCursor is false.
	Cursor int64

	// HasCursor is false before the first page was ever persisted.
	HasCursor bool

	// Results is the number of stored results.
	Results int
}

// QuotaReporter reports the forge's remaining API budget, keyed by resource.
type QuotaReporter interface {
	Quotas(ctx context.Context) (map[string]domain.Quota, error)
}
