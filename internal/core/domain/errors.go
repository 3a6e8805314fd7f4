package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrAuthRequired indicates the forge requires authentication but none is configured.
	ErrAuthRequired = errors.New("authentication required")

	// ErrAuthInvalid indicates the authentication credentials are invalid.
	ErrAuthInvalid = errors.New("authentication invalid")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// ErrForgeClosed indicates the forge client has been closed.
	ErrForgeClosed = errors.New("forge closed")

	// Crawl contract violations. These abort a run like any transport failure.

	// ErrCursorRegression indicates the forge returned an id at or below the cursor.
	ErrCursorRegression = errors.New("cursor regression")

	// ErrHydrationMismatch indicates the hydrator did not return one slot per requested id.
	ErrHydrationMismatch = errors.New("hydration result does not match request")

	// ErrBatchTooLarge indicates a hydration batch above MaxHydrationBatch.
	ErrBatchTooLarge = errors.New("hydration batch too large")
)
