package services

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/custodia-labs/reposcan/internal/core/domain"
	"github.com/custodia-labs/reposcan/internal/core/ports/driven"
	"github.com/custodia-labs/reposcan/internal/metrics"
)

// persister turns language matches into stored results.
type persister struct {
	prober  driven.ContentProber
	results driven.ResultStore

	sourceKey    string
	language     string
	manifestPath string
	lockPath     string

	// written tracks node ids already stored this run. Nil unless the
	// policy is domain.PersistOnce.
	written *lru.Cache[string, struct{}]

	now func() time.Time
	log *zap.Logger
}

func newPersister(
	prober driven.ContentProber,
	results driven.ResultStore,
	opts CrawlOptions,
	log *zap.Logger,
) (*persister, error) {
	p := &persister{
		prober:       prober,
		results:      results,
		sourceKey:    opts.SourceKey,
		language:     opts.Language,
		manifestPath: opts.ManifestPath,
		lockPath:     opts.LockPath,
		now:          opts.Clock,
		log:          log,
	}
	if opts.PersistPolicy == domain.PersistOnce {
		cache, err := lru.New[string, struct{}](opts.DedupeCacheSize)
		if err != nil {
			return nil, fmt.Errorf("create dedupe cache: %w", err)
		}
		p.written = cache
	}
	return p, nil
}

// persist handles one hydrated record. Every exact match of the target
// language costs two probes and one write, unless the record was already
// written this run under the once policy.
func (p *persister) persist(ctx context.Context, repo *domain.Repository, report *domain.CrawlReport) error {
	matches := repo.CountLanguage(p.language)
	for range matches {
		report.Matches++
		if p.written != nil && p.written.Contains(repo.NodeID) {
			report.Skipped++
			continue
		}
		if err := p.write(ctx, repo); err != nil {
			return err
		}
		report.Written++
		if p.written != nil {
			p.written.Add(repo.NodeID, struct{}{})
		}
	}
	return nil
}

func (p *persister) write(ctx context.Context, repo *domain.Repository) error {
	hasManifest, err := p.prober.PathExists(ctx, repo.NodeID, p.manifestPath)
	if err != nil {
		return fmt.Errorf("probe %s in %s: %w", p.manifestPath, repo.NameWithOwner, err)
	}
	hasLock, err := p.prober.PathExists(ctx, repo.NodeID, p.lockPath)
	if err != nil {
		return fmt.Errorf("probe %s in %s: %w", p.lockPath, repo.NameWithOwner, err)
	}

	result := domain.Result{
		SourceKey:   p.sourceKey,
		NodeID:      repo.NodeID,
		Name:        repo.NameWithOwner,
		HasManifest: hasManifest,
		HasLock:     hasLock,
		UpdatedAt:   p.now(),
	}
	if err := p.results.PutResult(ctx, p.sourceKey, result); err != nil {
		return fmt.Errorf("store result %s: %w", repo.NameWithOwner, err)
	}
	metrics.ObserveResultWritten(p.sourceKey)

	p.log.Info("found repository",
		zap.String("name", repo.NameWithOwner),
		zap.Bool(p.manifestPath, hasManifest),
		zap.Bool(p.lockPath, hasLock),
	)
	return nil
}
