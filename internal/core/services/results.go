package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/reposcan/internal/core/domain"
	"github.com/custodia-labs/reposcan/internal/core/ports/driven"
	"github.com/custodia-labs/reposcan/internal/core/ports/driving"
)

// Ensure ResultService implements the interface.
var _ driving.ResultQuery = (*ResultService)(nil)

// ResultService reads back the persisted state of one source.
type ResultService struct {
	sourceKey string
	cursors   driven.CursorStore
	results   driven.ResultStore
}

// NewResultService creates a result query service for sourceKey.
func NewResultService(sourceKey string, cursors driven.CursorStore, results driven.ResultStore) *ResultService {
	if sourceKey == "" {
		sourceKey = DefaultSourceKey
	}
	return &ResultService{
		sourceKey: sourceKey,
		cursors:   cursors,
		results:   results,
	}
}

// Results lists stored results ordered by name.
func (s *ResultService) Results(ctx context.Context, limit int) ([]domain.Result, error) {
	results, err := s.results.ListResults(ctx, s.sourceKey, limit)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	return results, nil
}

// Status returns the resume cursor and result count.
func (s *ResultService) Status(ctx context.Context) (*driving.SourceStatus, error) {
	cursor, ok, err := s.cursors.GetCursor(ctx, s.sourceKey)
	if err != nil {
		return nil, fmt.Errorf("get cursor: %w", err)
	}
	count, err := s.results.CountResults(ctx, s.sourceKey)
	if err != nil {
		return nil, fmt.Errorf("count results: %w", err)
	}
	return &driving.SourceStatus{
		SourceKey: s.sourceKey,
		Cursor:    cursor,
		HasCursor: ok,
		Results:   count,
	}, nil
}
