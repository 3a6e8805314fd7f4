package domain

import "time"

// CrawlState is the lifecycle state of a crawl run.
type CrawlState string

const (
	// CrawlEnumerating means pages are still being fetched.
	CrawlEnumerating CrawlState = "enumerating"
	// CrawlDone means a short page was seen and its final flush and cursor write completed.
	CrawlDone CrawlState = "done"
	// CrawlAborted means the run stopped on an error. It is reported, never resumed from.
	CrawlAborted CrawlState = "aborted"
)

// FlushOrder selects which part of the buffer a non-final flush sends to hydration.
type FlushOrder string

const (
	// FlushNewestFirst hydrates the most recently buffered entries and keeps the
	// older head for later. This is the legacy ordering.
	FlushNewestFirst FlushOrder = "newest-first"
	// FlushFIFO hydrates the oldest entries first and keeps the newest remainder.
	FlushFIFO FlushOrder = "fifo"
)

// Valid reports whether o is a known flush order.
func (o FlushOrder) Valid() bool {
	return o == FlushNewestFirst || o == FlushFIFO
}

// PersistPolicy controls how repeated language matches in one record are handled.
type PersistPolicy string

const (
	// PersistPerMatch probes and writes once per matching language entry.
	PersistPerMatch PersistPolicy = "per-match"
	// PersistOnce probes and writes a repository at most once per run.
	PersistOnce PersistPolicy = "once"
)

// Valid reports whether p is a known persist policy.
func (p PersistPolicy) Valid() bool {
	return p == PersistPerMatch || p == PersistOnce
}

// CrawlReport summarises a single crawl run.
type CrawlReport struct {
	RunID     string
	SourceKey string
	State     CrawlState

	// StartCursor is the cursor the run resumed from; EndCursor the last one persisted.
	StartCursor int64
	EndCursor   int64

	Pages      int
	Summaries  int
	Forks      int
	Candidates int
	Flushes    int

	Hydrated int
	Absent   int
	Matches  int
	Written  int
	Skipped  int

	StartedAt  time.Time
	FinishedAt time.Time
}

// Duration returns how long the run took.
func (r *CrawlReport) Duration() time.Duration {
	if r == nil || r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
