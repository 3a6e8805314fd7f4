package cli

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/reposcan/internal/core/domain"
	"github.com/custodia-labs/reposcan/internal/core/ports/driving"
)

func TestStatusCmd_FreshSource(t *testing.T) {
	setupCLITest(t, &Runtime{Results: &mockResultQuery{}})

	out, err := execute("status")

	require.NoError(t, err)
	assert.Contains(t, out, "Source:   github")
	assert.Contains(t, out, "Cursor:   none")
	assert.Contains(t, out, "Results:  0")
	assert.NotContains(t, out, "Quota")
}

func TestStatusCmd_WithCursorAndQuota(t *testing.T) {
	reset := time.Now().Add(time.Hour)
	setupCLITest(t, &Runtime{
		Results: &mockResultQuery{status: &driving.SourceStatus{
			SourceKey: "github", Cursor: 4321, HasCursor: true, Results: 12,
		}},
		Quotas: &mockQuotas{quotas: map[string]domain.Quota{
			"graphql": {Limit: 5000, Remaining: 4000, ResetAt: reset},
			"core":    {Limit: 5000, Remaining: 4990, ResetAt: reset},
		}},
	})
	t.Setenv("GITHUB_TOKEN", "ghp_test")

	out, err := execute("status")

	require.NoError(t, err)
	assert.Contains(t, out, "Cursor:   4321")
	assert.Contains(t, out, "Results:  12")
	assert.Contains(t, out, "4990/5000")
	assert.Contains(t, out, "4000/5000")
	assert.Less(t, strings.Index(out, "core"), strings.Index(out, "graphql"))
}

func TestStatusCmd_QuotaFailureIsNotFatal(t *testing.T) {
	setupCLITest(t, &Runtime{
		Results: &mockResultQuery{},
		Quotas:  &mockQuotas{err: errors.New("dial tcp: no route")},
	})
	t.Setenv("GITHUB_TOKEN", "ghp_test")

	out, err := execute("status")

	require.NoError(t, err)
	assert.Contains(t, out, "Quota:    unavailable")
}

func TestStatusCmd_StoreError(t *testing.T) {
	setupCLITest(t, &Runtime{Results: &mockResultQuery{err: errors.New("database is locked")}})

	_, err := execute("status")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "database is locked")
}

func TestStatusCmd_SchemaVersion(t *testing.T) {
	t.Run("reported", func(t *testing.T) {
		setupCLITest(t, &Runtime{
			Results:       &mockResultQuery{},
			SchemaVersion: func(context.Context) (int, error) { return 2, nil },
		})

		out, err := execute("status")

		require.NoError(t, err)
		assert.Contains(t, out, "Schema:   v2")
	})

	t.Run("failure is not fatal", func(t *testing.T) {
		setupCLITest(t, &Runtime{
			Results:       &mockResultQuery{},
			SchemaVersion: func(context.Context) (int, error) { return 0, errors.New("database is locked") },
		})

		out, err := execute("status")

		require.NoError(t, err)
		assert.Contains(t, out, "Schema:   unavailable (database is locked)")
	})

	t.Run("absent for stores without migrations", func(t *testing.T) {
		setupCLITest(t, &Runtime{Results: &mockResultQuery{}})

		out, err := execute("status")

		require.NoError(t, err)
		assert.NotContains(t, out, "Schema")
	})
}
