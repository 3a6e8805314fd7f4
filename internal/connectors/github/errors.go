package github

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/reposcan/internal/core/domain"
)

// GraphQL error types returned by GitHub.
const (
	GraphQLTypeNotFound    = "NOT_FOUND"
	GraphQLTypeRateLimited = "RATE_LIMITED"
)

// RateLimitError represents a rate limit exceeded error with reset time.
type RateLimitError struct {
	ResetAt   time.Time
	Remaining int
	Limit     int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("github: rate limit exceeded, resets at %s", e.ResetAt.Format(time.RFC3339))
}

// Unwrap lets callers match domain.ErrRateLimited.
func (e *RateLimitError) Unwrap() error {
	return domain.ErrRateLimited
}

// APIError represents a GitHub API error response.
type APIError struct {
	StatusCode int
	Message    string
	URL        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("github: API error %d: %s (URL: %s)", e.StatusCode, e.Message, e.URL)
}

// Unwrap maps well-known status codes to domain errors.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case 401:
		return domain.ErrAuthInvalid
	case 404:
		return domain.ErrNotFound
	case 429:
		return domain.ErrRateLimited
	}
	return nil
}

// GraphQLErrorEntry is one entry of a GraphQL response's errors array.
type GraphQLErrorEntry struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Path    []any  `json:"path"`
}

// GraphQLError is returned when a GraphQL response carries errors that
// are not plain missing-node reports.
type GraphQLError struct {
	Errors []GraphQLErrorEntry
}

func (e *GraphQLError) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, entry := range e.Errors {
		if entry.Type != "" {
			msgs = append(msgs, entry.Type+": "+entry.Message)
			continue
		}
		msgs = append(msgs, entry.Message)
	}
	return "github: graphql: " + strings.Join(msgs, "; ")
}

// IsRateLimited checks if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	return errors.Is(err, domain.ErrRateLimited)
}

// IsUnauthorized checks if the error indicates an authentication failure.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 401
	}
	return false
}
