// Package memory provides in-memory store implementations for tests and dry runs.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/reposcan/internal/core/domain"
	"github.com/custodia-labs/reposcan/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.Store = (*Store)(nil)

// Store is an in-memory implementation of driven.Store.
type Store struct {
	mu      sync.RWMutex
	cursors map[string]int64
	results map[string]map[string]domain.Result
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		cursors: make(map[string]int64),
		results: make(map[string]map[string]domain.Result),
	}
}

// GetCursor returns the cursor for key.
func (s *Store) GetCursor(_ context.Context, key string) (int64, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.cursors[key]
	return value, ok, nil
}

// SetCursor stores the cursor for key.
func (s *Store) SetCursor(_ context.Context, key string, value int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursors[key] = value
	return nil
}

// PutResult upserts a result.
func (s *Store) PutResult(_ context.Context, key string, result domain.Result) error {
	if result.NodeID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	byID, ok := s.results[key]
	if !ok {
		byID = make(map[string]domain.Result)
		s.results[key] = byID
	}
	result.SourceKey = key
	byID[result.NodeID] = result
	return nil
}

// ListResults returns results for key ordered by name, then node id.
func (s *Store) ListResults(_ context.Context, key string, limit int) ([]domain.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Result, 0, len(s.results[key]))
	for _, r := range s.results[key] {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].NodeID < out[j].NodeID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// CountResults returns the number of results for key.
func (s *Store) CountResults(_ context.Context, key string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.results[key]), nil
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}
