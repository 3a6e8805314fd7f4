package github

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/reposcan/internal/core/domain"
)

const (
	// GitHubRateLimit is the authenticated hourly quota of each resource.
	GitHubRateLimit = 5000

	// ProactiveRate is the default throttle (~1.2 req/sec = 4320/hr).
	ProactiveRate = 1.2

	// MinBuffer is the minimum remaining requests before waiting for reset.
	MinBuffer = 100

	HeaderRateLimit     = "X-RateLimit-Limit"
	HeaderRateRemaining = "X-RateLimit-Remaining"
	HeaderRateReset     = "X-RateLimit-Reset"
	HeaderRateResource  = "X-RateLimit-Resource"
	HeaderRetryAfter    = "Retry-After"
)

// Rate limit resources. REST and GraphQL calls draw on separate windows.
const (
	ResourceCore    = "core"
	ResourceGraphQL = "graphql"
)

// RateLimiter throttles calls proactively with a token bucket and reactively
// from the X-RateLimit headers of previous responses, keeping one quota per
// rate limit resource.
// It never retries; callers see a RateLimitError when the API refuses a call.
type RateLimiter struct {
	mu        sync.Mutex
	quotas    map[string]domain.Quota
	bucket    *rate.Limiter
	minBuffer int
}

// NewRateLimiter creates a new rate limiter with proactive throttling.
// A non-positive perSecond uses ProactiveRate.
func NewRateLimiter(perSecond float64) *RateLimiter {
	if perSecond <= 0 {
		perSecond = ProactiveRate
	}
	return &RateLimiter{
		quotas:    make(map[string]domain.Quota),
		bucket:    rate.NewLimiter(rate.Limit(perSecond), 1),
		minBuffer: MinBuffer,
	}
}

// Wait blocks until it's safe to make a request against resource.
func (r *RateLimiter) Wait(ctx context.Context, resource string) error {
	// 1. Token bucket
	if err := r.bucket.Wait(ctx); err != nil {
		return err
	}

	// 2. Reported quota
	q := r.Snapshot(resource)
	if q.Remaining < r.minBuffer && time.Now().Before(q.ResetAt) {
		timer := time.NewTimer(time.Until(q.ResetAt))
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	return nil
}

// UpdateFromResponse updates rate limit state from response headers.
// The resource named by X-RateLimit-Resource wins over fallback.
func (r *RateLimiter) UpdateFromResponse(resp *http.Response, fallback string) {
	if resp == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	resource := resourceOf(resp, fallback)
	q := r.quotaLocked(resource)
	if v, err := strconv.Atoi(resp.Header.Get(HeaderRateRemaining)); err == nil {
		q.Remaining = v
	}
	if v, err := strconv.Atoi(resp.Header.Get(HeaderRateLimit)); err == nil {
		q.Limit = v
	}
	if v, err := strconv.ParseInt(resp.Header.Get(HeaderRateReset), 10, 64); err == nil {
		q.ResetAt = time.Unix(v, 0)
	}
	r.quotas[resource] = q
}

// CheckRateLimit updates state from resp and returns a RateLimitError if
// the response is a rate limit refusal (429, or 403 with no quota left).
func (r *RateLimiter) CheckRateLimit(resp *http.Response, fallback string) error {
	if resp == nil {
		return nil
	}
	r.UpdateFromResponse(resp, fallback)

	q := r.Snapshot(resourceOf(resp, fallback))
	if resp.StatusCode != http.StatusTooManyRequests &&
		(resp.StatusCode != http.StatusForbidden || q.Remaining != 0) {
		return nil
	}

	if seconds, err := strconv.Atoi(resp.Header.Get(HeaderRetryAfter)); err == nil {
		q.ResetAt = time.Now().Add(time.Duration(seconds) * time.Second)
	}
	return &RateLimitError{
		ResetAt:   q.ResetAt,
		Remaining: q.Remaining,
		Limit:     q.Limit,
	}
}

// Snapshot returns the last reported quota of resource.
func (r *RateLimiter) Snapshot(resource string) domain.Quota {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.quotaLocked(resource)
}

// set records a quota read from the rate limit endpoint.
func (r *RateLimiter) set(resource string, q domain.Quota) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.quotas[resource] = q
}

func (r *RateLimiter) quotaLocked(resource string) domain.Quota {
	if q, ok := r.quotas[resource]; ok {
		return q
	}
	return domain.Quota{Limit: GitHubRateLimit, Remaining: GitHubRateLimit}
}

func resourceOf(resp *http.Response, fallback string) string {
	if v := resp.Header.Get(HeaderRateResource); v != "" {
		return v
	}
	if fallback == "" {
		return ResourceCore
	}
	return fallback
}
