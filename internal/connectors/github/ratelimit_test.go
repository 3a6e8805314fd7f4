package github

import (
	"context"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func response(status int, headers map[string]string) *http.Response {
	resp := &http.Response{StatusCode: status, Header: http.Header{}}
	for k, v := range headers {
		resp.Header.Set(k, v)
	}
	return resp
}

func TestNewRateLimiter(t *testing.T) {
	r := NewRateLimiter(0)

	q := r.Snapshot(ResourceCore)
	assert.Equal(t, GitHubRateLimit, q.Limit)
	assert.Equal(t, GitHubRateLimit, q.Remaining)
	assert.InDelta(t, ProactiveRate, float64(r.bucket.Limit()), 0.0001)
}

func TestRateLimiter_UpdateFromResponse(t *testing.T) {
	r := NewRateLimiter(100)
	reset := time.Now().Add(time.Hour).Unix()

	r.UpdateFromResponse(response(http.StatusOK, map[string]string{
		HeaderRateLimit:     "60",
		HeaderRateRemaining: "42",
		HeaderRateReset:     strconv.FormatInt(reset, 10),
	}), ResourceCore)

	q := r.Snapshot(ResourceCore)
	assert.Equal(t, 60, q.Limit)
	assert.Equal(t, 42, q.Remaining)
	assert.Equal(t, reset, q.ResetAt.Unix())

	t.Run("missing headers keep the previous state", func(t *testing.T) {
		r.UpdateFromResponse(response(http.StatusOK, nil), ResourceCore)
		assert.Equal(t, 42, r.Snapshot(ResourceCore).Remaining)
	})

	t.Run("nil response is ignored", func(t *testing.T) {
		r.UpdateFromResponse(nil, ResourceCore)
		assert.Equal(t, 60, r.Snapshot(ResourceCore).Limit)
	})

	t.Run("other resources are untouched", func(t *testing.T) {
		assert.Equal(t, GitHubRateLimit, r.Snapshot(ResourceGraphQL).Remaining)
	})
}

func TestRateLimiter_PerResource(t *testing.T) {
	t.Run("resource header wins over the fallback", func(t *testing.T) {
		r := NewRateLimiter(100)
		r.UpdateFromResponse(response(http.StatusOK, map[string]string{
			HeaderRateResource:  ResourceGraphQL,
			HeaderRateRemaining: "7",
		}), ResourceCore)

		assert.Equal(t, 7, r.Snapshot(ResourceGraphQL).Remaining)
		assert.Equal(t, GitHubRateLimit, r.Snapshot(ResourceCore).Remaining)
	})

	t.Run("rest traffic does not hide an exhausted graphql window", func(t *testing.T) {
		r := NewRateLimiter(1000)
		reset := strconv.FormatInt(time.Now().Add(time.Hour).Unix(), 10)
		r.UpdateFromResponse(response(http.StatusOK, map[string]string{
			HeaderRateRemaining: "0",
			HeaderRateReset:     reset,
		}), ResourceGraphQL)
		r.UpdateFromResponse(response(http.StatusOK, map[string]string{
			HeaderRateRemaining: "4999",
			HeaderRateReset:     reset,
		}), ResourceCore)

		require.NoError(t, r.Wait(context.Background(), ResourceCore))

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		assert.ErrorIs(t, r.Wait(ctx, ResourceGraphQL), context.DeadlineExceeded)
	})
}

func TestRateLimiter_CheckRateLimit(t *testing.T) {
	t.Run("ok response", func(t *testing.T) {
		r := NewRateLimiter(100)
		assert.NoError(t, r.CheckRateLimit(response(http.StatusOK, nil), ResourceCore))
		assert.NoError(t, r.CheckRateLimit(nil, ResourceCore))
	})

	t.Run("forbidden with quota left is not a rate limit", func(t *testing.T) {
		r := NewRateLimiter(100)
		assert.NoError(t, r.CheckRateLimit(response(http.StatusForbidden, map[string]string{
			HeaderRateRemaining: "10",
		}), ResourceCore))
	})

	t.Run("forbidden with no quota", func(t *testing.T) {
		r := NewRateLimiter(100)
		err := r.CheckRateLimit(response(http.StatusForbidden, map[string]string{
			HeaderRateRemaining: "0",
		}), ResourceCore)
		assert.True(t, IsRateLimited(err))
	})

	t.Run("too many requests honours Retry-After", func(t *testing.T) {
		r := NewRateLimiter(100)
		err := r.CheckRateLimit(response(http.StatusTooManyRequests, map[string]string{
			HeaderRetryAfter: "30",
		}), ResourceGraphQL)

		var rlErr *RateLimitError
		require.ErrorAs(t, err, &rlErr)
		assert.WithinDuration(t, time.Now().Add(30*time.Second), rlErr.ResetAt, 5*time.Second)
	})
}

func TestRateLimiter_Wait(t *testing.T) {
	t.Run("returns immediately with quota", func(t *testing.T) {
		r := NewRateLimiter(1000)
		require.NoError(t, r.Wait(context.Background(), ResourceCore))
	})

	t.Run("low quota waits for reset until cancelled", func(t *testing.T) {
		r := NewRateLimiter(1000)
		r.UpdateFromResponse(response(http.StatusOK, map[string]string{
			HeaderRateRemaining: "1",
			HeaderRateReset:     strconv.FormatInt(time.Now().Add(time.Hour).Unix(), 10),
		}), ResourceCore)

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		assert.ErrorIs(t, r.Wait(ctx, ResourceCore), context.DeadlineExceeded)
	})

	t.Run("low quota past reset does not wait", func(t *testing.T) {
		r := NewRateLimiter(1000)
		r.UpdateFromResponse(response(http.StatusOK, map[string]string{
			HeaderRateRemaining: "1",
			HeaderRateReset:     strconv.FormatInt(time.Now().Add(-time.Minute).Unix(), 10),
		}), ResourceCore)

		require.NoError(t, r.Wait(context.Background(), ResourceCore))
	})
}
