package github

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/reposcan/internal/core/domain"
)

func TestIsRateLimited(t *testing.T) {
	assert.True(t, IsRateLimited(&RateLimitError{}))
	assert.True(t, IsRateLimited(fmt.Errorf("hydrate repositories: %w", &RateLimitError{})))
	assert.True(t, IsRateLimited(&APIError{StatusCode: http.StatusTooManyRequests}))
	assert.False(t, IsRateLimited(&APIError{StatusCode: 500}))
	assert.False(t, IsRateLimited(&GraphQLError{Errors: []GraphQLErrorEntry{{Type: "FORBIDDEN"}}}))
}

func TestStatusHelpers(t *testing.T) {
	assert.True(t, IsUnauthorized(&APIError{StatusCode: http.StatusUnauthorized}))
	assert.False(t, IsUnauthorized(errors.New("x")))
	assert.False(t, IsUnauthorized(&APIError{StatusCode: http.StatusForbidden}))
}

func TestErrorUnwrap(t *testing.T) {
	assert.ErrorIs(t, &APIError{StatusCode: 401}, domain.ErrAuthInvalid)
	assert.ErrorIs(t, &APIError{StatusCode: 404}, domain.ErrNotFound)
	assert.ErrorIs(t, &APIError{StatusCode: 429}, domain.ErrRateLimited)
	assert.NotErrorIs(t, &APIError{StatusCode: 500}, domain.ErrNotFound)
	assert.ErrorIs(t, &RateLimitError{}, domain.ErrRateLimited)
}

func TestErrorMessages(t *testing.T) {
	reset := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	assert.Contains(t, (&RateLimitError{ResetAt: reset}).Error(), "2024-01-02T03:04:05Z")
	assert.Equal(t, "github: API error 500: boom (URL: https://x)",
		(&APIError{StatusCode: 500, Message: "boom", URL: "https://x"}).Error())
	assert.Equal(t, "github: graphql: FORBIDDEN: no; plain",
		(&GraphQLError{Errors: []GraphQLErrorEntry{{Type: "FORBIDDEN", Message: "no"}, {Message: "plain"}}}).Error())
}
