package driving

import (
	"context"

	"github.com/custodia-labs/reposcan/internal/core/domain"
)

// Crawler runs the enumerate-hydrate-filter-persist loop for one source.
type Crawler interface {
	// Crawl resumes from the persisted cursor and runs until enumeration is
	// exhausted or an error aborts the run. The report is returned in both cases.
	Crawl(ctx context.Context) (*domain.CrawlReport, error)
}
