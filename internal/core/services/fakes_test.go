package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/reposcan/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/reposcan/internal/core/domain"
)

// --- Fakes shared by the crawl and result tests ---

// fakeForge serves summaries in ascending id order and records every call.
type fakeForge struct {
	mu sync.Mutex

	// summaries is the full id space, ascending. ListRepos returns up to
	// pageSize entries with an id greater than after.
	summaries []domain.RepoSummary
	pageSize  int
	// script, when set, replaces summaries: call i returns script[i].
	script [][]domain.RepoSummary

	// records maps node id to hydrated record; missing ids hydrate to nil.
	records map[string]*domain.Repository
	// files maps node id and path to existence.
	files map[string]bool

	listErr      error
	listErrAfter int // fail on this call index (1-based); 0 means never
	hydrateErr   error
	hydrateShort bool
	probeErr     error

	listCalls    []int64
	hydrateCalls [][]string
	probeCalls   []string
}

func newFakeForge(pageSize int, summaries ...domain.RepoSummary) *fakeForge {
	return &fakeForge{
		summaries: summaries,
		pageSize:  pageSize,
		records:   make(map[string]*domain.Repository),
		files:     make(map[string]bool),
	}
}

func (f *fakeForge) ListRepos(_ context.Context, after int64) ([]domain.RepoSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls = append(f.listCalls, after)
	call := len(f.listCalls)
	if f.listErr != nil && (f.listErrAfter == 0 || call == f.listErrAfter) {
		return nil, f.listErr
	}
	if f.script != nil {
		if call > len(f.script) {
			return nil, nil
		}
		return f.script[call-1], nil
	}
	var page []domain.RepoSummary
	for _, s := range f.summaries {
		if s.ID > after {
			page = append(page, s)
		}
		if len(page) == f.pageSize {
			break
		}
	}
	return page, nil
}

func (f *fakeForge) HydrateRepos(_ context.Context, ids []string) ([]*domain.Repository, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hydrateCalls = append(f.hydrateCalls, append([]string(nil), ids...))
	if f.hydrateErr != nil {
		return nil, f.hydrateErr
	}
	out := make([]*domain.Repository, len(ids))
	for i, id := range ids {
		out[i] = f.records[id]
	}
	if f.hydrateShort && len(out) > 0 {
		out = out[:len(out)-1]
	}
	return out, nil
}

func (f *fakeForge) PathExists(_ context.Context, nodeID, path string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.probeCalls = append(f.probeCalls, nodeID+":"+path)
	if f.probeErr != nil {
		return false, f.probeErr
	}
	return f.files[nodeID+":"+path], nil
}

func (f *fakeForge) hydratedIDs() []string {
	var ids []string
	for _, call := range f.hydrateCalls {
		ids = append(ids, call...)
	}
	return ids
}

// recordingStore wraps the memory store and logs every write in order.
type recordingStore struct {
	*memory.Store

	mu      sync.Mutex
	events  []string
	cursors []int64

	getErr error
	setErr error
	putErr error
	puts   int
}

func newRecordingStore() *recordingStore {
	return &recordingStore{Store: memory.NewStore()}
}

func (s *recordingStore) GetCursor(ctx context.Context, key string) (int64, bool, error) {
	if s.getErr != nil {
		return 0, false, s.getErr
	}
	return s.Store.GetCursor(ctx, key)
}

func (s *recordingStore) SetCursor(ctx context.Context, key string, value int64) error {
	if s.setErr != nil {
		return s.setErr
	}
	s.mu.Lock()
	s.events = append(s.events, fmt.Sprintf("cursor:%d", value))
	s.cursors = append(s.cursors, value)
	s.mu.Unlock()
	return s.Store.SetCursor(ctx, key, value)
}

func (s *recordingStore) PutResult(ctx context.Context, key string, result domain.Result) error {
	if s.putErr != nil {
		return s.putErr
	}
	s.mu.Lock()
	s.events = append(s.events, "put:"+result.NodeID)
	s.puts++
	s.mu.Unlock()
	return s.Store.PutResult(ctx, key, result)
}

// summary builds a summary whose node id is derived from its numeric id.
func summary(id int64, fork bool) domain.RepoSummary {
	return domain.RepoSummary{ID: id, NodeID: nodeID(id), Fork: fork}
}

func nodeID(id int64) string {
	return fmt.Sprintf("R_%d", id)
}

func repoWith(id int64, langs ...string) *domain.Repository {
	repo := &domain.Repository{
		NodeID:        nodeID(id),
		NameWithOwner: fmt.Sprintf("owner/repo-%d", id),
	}
	for _, l := range langs {
		if l == "" {
			repo.Languages = append(repo.Languages, nil)
			continue
		}
		repo.Languages = append(repo.Languages, &domain.Language{Name: l})
	}
	return repo
}
