package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/custodia-labs/reposcan/internal/core/domain"
	"github.com/custodia-labs/reposcan/internal/core/ports/driven"
	"github.com/custodia-labs/reposcan/internal/core/ports/driving"
	"github.com/custodia-labs/reposcan/internal/metrics"
)

// Ensure CrawlService implements the interface.
var _ driving.Crawler = (*CrawlService)(nil)

// Crawl defaults reproduce a Rust crate scan on GitHub.
const (
	DefaultSourceKey       = "github"
	DefaultLanguage        = "Rust"
	DefaultManifestPath    = "Cargo.toml"
	DefaultLockPath        = "Cargo.lock"
	DefaultDedupeCacheSize = 100_000
)

// CrawlOptions configures a CrawlService. Zero values take the defaults.
type CrawlOptions struct {
	// SourceKey namespaces the cursor and the results.
	SourceKey string
	// Language is matched exactly, case-sensitive, against hydrated language names.
	Language     string
	ManifestPath string
	LockPath     string

	// PageSize is the full page length of the lister; a shorter page ends the run.
	PageSize int
	// BatchSize bounds every hydration call. Must not exceed domain.MaxHydrationBatch.
	BatchSize int

	FlushOrder      domain.FlushOrder
	PersistPolicy   domain.PersistPolicy
	DedupeCacheSize int

	Logger *zap.Logger
	Clock  func() time.Time
}

func (o *CrawlOptions) applyDefaults() {
	if o.SourceKey == "" {
		o.SourceKey = DefaultSourceKey
	}
	if o.Language == "" {
		o.Language = DefaultLanguage
	}
	if o.ManifestPath == "" {
		o.ManifestPath = DefaultManifestPath
	}
	if o.LockPath == "" {
		o.LockPath = DefaultLockPath
	}
	if o.PageSize == 0 {
		o.PageSize = domain.MaxPageSize
	}
	if o.BatchSize == 0 {
		o.BatchSize = domain.MaxHydrationBatch
	}
	if o.FlushOrder == "" {
		o.FlushOrder = domain.FlushNewestFirst
	}
	if o.PersistPolicy == "" {
		o.PersistPolicy = domain.PersistPerMatch
	}
	if o.DedupeCacheSize == 0 {
		o.DedupeCacheSize = DefaultDedupeCacheSize
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.Clock == nil {
		o.Clock = time.Now
	}
}

func (o *CrawlOptions) validate() error {
	switch {
	case o.PageSize < 1:
		return fmt.Errorf("%w: page size %d", domain.ErrInvalidInput, o.PageSize)
	case o.BatchSize < 1:
		return fmt.Errorf("%w: batch size %d", domain.ErrInvalidInput, o.BatchSize)
	case o.BatchSize > domain.MaxHydrationBatch:
		return fmt.Errorf("%w: %d > %d", domain.ErrBatchTooLarge, o.BatchSize, domain.MaxHydrationBatch)
	case !o.FlushOrder.Valid():
		return fmt.Errorf("%w: flush order %q", domain.ErrInvalidInput, o.FlushOrder)
	case !o.PersistPolicy.Valid():
		return fmt.Errorf("%w: persist policy %q", domain.ErrInvalidInput, o.PersistPolicy)
	case o.DedupeCacheSize < 1:
		return fmt.Errorf("%w: dedupe cache size %d", domain.ErrInvalidInput, o.DedupeCacheSize)
	}
	return nil
}

// CrawlService walks a forge's repository ids, hydrates non-fork candidates in
// bounded batches and stores a result for every repository in the target language.
//
// The cursor is checkpointed after every page while results are written per
// flush, so candidates still buffered when a run dies are not revisited.
type CrawlService struct {
	lister   driven.RepoLister
	hydrator driven.RepoHydrator
	prober   driven.ContentProber
	cursors  driven.CursorStore
	results  driven.ResultStore
	opts     CrawlOptions
}

// NewCrawlService creates a crawl service.
func NewCrawlService(
	lister driven.RepoLister,
	hydrator driven.RepoHydrator,
	prober driven.ContentProber,
	cursors driven.CursorStore,
	results driven.ResultStore,
	opts CrawlOptions,
) (*CrawlService, error) {
	if lister == nil || hydrator == nil || prober == nil {
		return nil, fmt.Errorf("%w: forge ports are required", domain.ErrInvalidInput)
	}
	if cursors == nil || results == nil {
		return nil, fmt.Errorf("%w: store ports are required", domain.ErrInvalidInput)
	}
	opts.applyDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}
	metrics.Init()

	return &CrawlService{
		lister:   lister,
		hydrator: hydrator,
		prober:   prober,
		cursors:  cursors,
		results:  results,
		opts:     opts,
	}, nil
}

// Crawl resumes from the persisted cursor and runs until a short page is seen.
func (s *CrawlService) Crawl(ctx context.Context) (*domain.CrawlReport, error) {
	key := s.opts.SourceKey
	report := &domain.CrawlReport{
		RunID:     uuid.NewString(),
		SourceKey: key,
		State:     domain.CrawlEnumerating,
		StartedAt: s.opts.Clock(),
	}
	log := s.opts.Logger.With(zap.String("run_id", report.RunID), zap.String("source", key))

	// 1. Resume point
	cursor, _, err := s.cursors.GetCursor(ctx, key)
	if err != nil {
		return s.abort(report, log, fmt.Errorf("get cursor: %w", err))
	}
	report.StartCursor = cursor
	report.EndCursor = cursor

	p, err := newPersister(s.prober, s.results, s.opts, log)
	if err != nil {
		return s.abort(report, log, err)
	}
	buf := newBatchBuffer(s.opts.BatchSize, s.opts.FlushOrder)

	log.Info("started crawl",
		zap.Int64("cursor", cursor),
		zap.String("language", s.opts.Language),
		zap.String("flush_order", string(s.opts.FlushOrder)),
		zap.String("persist_policy", string(s.opts.PersistPolicy)),
	)

	for {
		if err := ctx.Err(); err != nil {
			return s.abort(report, log, err)
		}

		// 2. Walk one page
		exhausted, err := s.walkPage(ctx, &cursor, buf, report)
		if err != nil {
			return s.abort(report, log, err)
		}

		// 3. Flush decision
		for ids := buf.next(exhausted); ids != nil; ids = buf.next(exhausted) {
			if err := s.flush(ctx, ids, p, report, log); err != nil {
				return s.abort(report, log, err)
			}
		}
		metrics.SetBuffered(key, buf.len())

		// 4. Checkpoint the cursor, whether or not anything was flushed
		if err := s.cursors.SetCursor(ctx, key, cursor); err != nil {
			return s.abort(report, log, fmt.Errorf("set cursor: %w", err))
		}
		report.EndCursor = cursor
		metrics.SetCursor(key, cursor)
		log.Debug("persisted cursor", zap.Int64("cursor", cursor), zap.Int("buffered", buf.len()))

		if exhausted {
			break
		}
	}

	report.State = domain.CrawlDone
	report.FinishedAt = s.opts.Clock()
	metrics.ObserveRun(key, string(report.State))

	log.Info("finished crawl",
		zap.Int64("cursor", report.EndCursor),
		zap.Int("pages", report.Pages),
		zap.Int("hydrated", report.Hydrated),
		zap.Int("written", report.Written),
		zap.Duration("duration", report.Duration()),
	)
	return report, nil
}

// walkPage fetches the page after cursor, buffers its non-fork candidates and
// advances cursor to the last id seen. It reports whether the page was short.
func (s *CrawlService) walkPage(
	ctx context.Context,
	cursor *int64,
	buf *batchBuffer,
	report *domain.CrawlReport,
) (bool, error) {
	page, err := s.lister.ListRepos(ctx, *cursor)
	if err != nil {
		return false, fmt.Errorf("list repositories after %d: %w", *cursor, err)
	}
	report.Pages++

	forks := 0
	for _, summary := range page {
		if summary.ID <= *cursor {
			return false, fmt.Errorf("%w: id %d after cursor %d", domain.ErrCursorRegression, summary.ID, *cursor)
		}
		*cursor = summary.ID
		if summary.Fork {
			forks++
			continue
		}
		buf.push(summary.NodeID)
	}

	report.Summaries += len(page)
	report.Forks += forks
	report.Candidates += len(page) - forks
	metrics.ObservePage(s.opts.SourceKey, forks, len(page)-forks)

	return len(page) < s.opts.PageSize, nil
}

// flush hydrates one batch and persists its matches. A failure drops the
// whole batch; its ids are not re-queued.
func (s *CrawlService) flush(
	ctx context.Context,
	ids []string,
	p *persister,
	report *domain.CrawlReport,
	log *zap.Logger,
) error {
	if len(ids) > domain.MaxHydrationBatch {
		return fmt.Errorf("%w: %d ids", domain.ErrBatchTooLarge, len(ids))
	}
	report.Flushes++

	repos, err := s.hydrator.HydrateRepos(ctx, ids)
	if err != nil {
		return fmt.Errorf("hydrate %d repositories: %w", len(ids), err)
	}
	if len(repos) != len(ids) {
		return fmt.Errorf("%w: requested %d, got %d", domain.ErrHydrationMismatch, len(ids), len(repos))
	}

	absent := 0
	for _, repo := range repos {
		if repo == nil {
			absent++
			continue
		}
		report.Hydrated++
		if err := p.persist(ctx, repo, report); err != nil {
			return err
		}
	}
	report.Absent += absent
	metrics.ObserveHydration(s.opts.SourceKey, len(ids), len(ids)-absent, absent)

	log.Debug("flushed batch", zap.Int("batch", len(ids)), zap.Int("absent", absent))
	return nil
}

func (s *CrawlService) abort(report *domain.CrawlReport, log *zap.Logger, err error) (*domain.CrawlReport, error) {
	report.State = domain.CrawlAborted
	report.FinishedAt = s.opts.Clock()
	metrics.ObserveRun(s.opts.SourceKey, string(report.State))

	if errors.Is(err, context.Canceled) {
		log.Warn("crawl cancelled", zap.Int64("cursor", report.EndCursor))
	} else {
		log.Error("crawl aborted", zap.Int64("cursor", report.EndCursor), zap.Error(err))
	}
	return report, err
}
