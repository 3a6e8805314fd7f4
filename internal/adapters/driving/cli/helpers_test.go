package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/custodia-labs/reposcan/internal/config"
	"github.com/custodia-labs/reposcan/internal/core/domain"
	"github.com/custodia-labs/reposcan/internal/core/ports/driving"
	"github.com/custodia-labs/reposcan/internal/logger"
)

// mockCrawler implements driving.Crawler for testing.
type mockCrawler struct {
	report *domain.CrawlReport
	err    error
	calls  int
}

func (m *mockCrawler) Crawl(_ context.Context) (*domain.CrawlReport, error) {
	m.calls++
	return m.report, m.err
}

// mockResultQuery implements driving.ResultQuery for testing.
type mockResultQuery struct {
	results   []domain.Result
	status    *driving.SourceStatus
	err       error
	lastLimit int
}

func (m *mockResultQuery) Results(_ context.Context, limit int) ([]domain.Result, error) {
	m.lastLimit = limit
	if m.err != nil {
		return nil, m.err
	}
	if limit > 0 && limit < len(m.results) {
		return m.results[:limit], nil
	}
	return m.results, nil
}

func (m *mockResultQuery) Status(_ context.Context) (*driving.SourceStatus, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.status != nil {
		return m.status, nil
	}
	return &driving.SourceStatus{SourceKey: "github", Results: len(m.results)}, nil
}

// mockQuotas implements driving.QuotaReporter for testing.
type mockQuotas struct {
	quotas map[string]domain.Quota
	err    error
}

func (m *mockQuotas) Quotas(_ context.Context) (map[string]domain.Quota, error) {
	return m.quotas, m.err
}

// mockForge implements driven.Forge for testing.
type mockForge struct {
	validateErr error
	validated   int
}

func (m *mockForge) ListRepos(_ context.Context, _ int64) ([]domain.RepoSummary, error) {
	return nil, nil
}

func (m *mockForge) HydrateRepos(_ context.Context, ids []string) ([]*domain.Repository, error) {
	return make([]*domain.Repository, len(ids)), nil
}

func (m *mockForge) PathExists(_ context.Context, _, _ string) (bool, error) {
	return false, nil
}

func (m *mockForge) Name() string { return "github" }

func (m *mockForge) Validate(_ context.Context) error {
	m.validated++
	return m.validateErr
}

func (m *mockForge) Close() error { return nil }

// testEnv installs rt behind the runtime factory, isolates HOME and the
// token variables, and resets flag state between tests.
type testEnv struct {
	rt      *Runtime
	cfg     config.Config
	opened  int
	closed  int
	openErr error
	// onClose runs when a command closes its runtime.
	onClose func()
}

func setupCLITest(t *testing.T, rt *Runtime) *testEnv {
	t.Helper()
	env := &testEnv{rt: rt}

	t.Setenv("HOME", t.TempDir())
	t.Setenv("GITHUB_TOKEN", "")
	t.Setenv("REPOSCAN_FORGE_TOKEN", "")
	t.Setenv("REPOSCAN_STORAGE_DRIVER", "memory")

	oldFactory := runtimeFactory
	runtimeFactory = func(_ context.Context, cfg config.Config) (*Runtime, error) {
		env.cfg = cfg
		env.opened++
		if env.openErr != nil {
			return nil, env.openErr
		}
		if env.rt == nil {
			return nil, errors.New("no runtime")
		}
		out := *env.rt
		out.Close = func() error {
			env.closed++
			if env.onClose != nil {
				env.onClose()
			}
			return nil
		}
		return &out, nil
	}

	resetFlags()
	t.Cleanup(func() {
		runtimeFactory = oldFactory
		resetFlags()
		logger.SetVerbose(false)
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})
	return env
}

func resetFlags() {
	configPath = ""
	verbose = false
	crawlLanguage = ""
	crawlMetricsAddr = ""
	resultsLimit = 20
	resultsJSON = false
	configForce = false
}

func execute(args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func sampleResults() []domain.Result {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return []domain.Result{
		{SourceKey: "github", NodeID: "R_1", Name: "octo/alpha", HasManifest: true, HasLock: true, UpdatedAt: at},
		{SourceKey: "github", NodeID: "R_2", Name: "octo/beta", HasManifest: true, HasLock: false, UpdatedAt: at},
		{SourceKey: "github", NodeID: "R_3", Name: "octo/gamma", HasManifest: false, HasLock: false, UpdatedAt: at},
	}
}
