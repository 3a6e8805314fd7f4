package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/reposcan/internal/core/domain"
)

func newMockStore(t *testing.T) (*Store, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	store, err := NewStoreWithPool(mock, "")
	require.NoError(t, err)
	return store, mock
}

func TestNewStoreWithPool(t *testing.T) {
	t.Parallel()

	t.Run("nil pool", func(t *testing.T) {
		_, err := NewStoreWithPool(nil, "")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("invalid prefix", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		_, err = NewStoreWithPool(mock, "drop table;")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("default prefix", func(t *testing.T) {
		store, _ := newMockStore(t)
		assert.Equal(t, "reposcan_cursors", store.cursorsTable)
		assert.Equal(t, "reposcan_results", store.resultsTable)
	})
}

func TestNewStore_RequiresDSN(t *testing.T) {
	_, err := NewStore(context.Background(), Config{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestMigrate(t *testing.T) {
	t.Parallel()
	store, mock := newMockStore(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS reposcan_cursors").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS reposcan_results").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectExec("CREATE INDEX IF NOT EXISTS reposcan_results_name_idx").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, store.Migrate(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrate_Failure(t *testing.T) {
	t.Parallel()
	store, mock := newMockStore(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS reposcan_cursors").
		WillReturnError(errors.New("permission denied"))

	err := store.Migrate(context.Background())
	assert.ErrorContains(t, err, "permission denied")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetCursor(t *testing.T) {
	t.Parallel()

	t.Run("existing cursor", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectQuery("SELECT value FROM reposcan_cursors").
			WithArgs("github").
			WillReturnRows(mock.NewRows([]string{"value"}).AddRow(int64(4200)))

		value, ok, err := store.GetCursor(context.Background(), "github")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, int64(4200), value)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no cursor yet", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectQuery("SELECT value FROM reposcan_cursors").
			WithArgs("github").
			WillReturnRows(mock.NewRows([]string{"value"}))

		value, ok, err := store.GetCursor(context.Background(), "github")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Zero(t, value)
	})

	t.Run("query failure", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectQuery("SELECT value FROM reposcan_cursors").
			WithArgs("github").
			WillReturnError(errors.New("connection refused"))

		_, _, err := store.GetCursor(context.Background(), "github")
		assert.ErrorContains(t, err, "connection refused")
	})
}

func TestSetCursor(t *testing.T) {
	t.Parallel()
	store, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO reposcan_cursors").
		WithArgs("github", int64(300)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, store.SetCursor(context.Background(), "github", 300))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPutResult(t *testing.T) {
	t.Parallel()
	store, mock := newMockStore(t)
	now := time.Unix(1700000000, 0).UTC()

	result := domain.Result{
		NodeID:      "R_kgDOA",
		Name:        "rust-lang/cargo",
		HasManifest: true,
		HasLock:     false,
		UpdatedAt:   now,
	}
	mock.ExpectExec("INSERT INTO reposcan_results").
		WithArgs("github", result.NodeID, result.Name, true, false, now).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, store.PutResult(context.Background(), "github", result))
	require.NoError(t, mock.ExpectationsWereMet())

	t.Run("requires node id", func(t *testing.T) {
		err := store.PutResult(context.Background(), "github", domain.Result{Name: "x/y"})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestListResults(t *testing.T) {
	t.Parallel()
	now := time.Unix(1700000000, 0).UTC()
	columns := []string{"source_key", "node_id", "name", "has_manifest", "has_lock", "updated_at"}

	t.Run("all results", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectQuery("SELECT source_key, node_id, name").
			WithArgs("github").
			WillReturnRows(mock.NewRows(columns).
				AddRow("github", "R_1", "a/one", true, true, now).
				AddRow("github", "R_2", "b/two", true, false, now))

		results, err := store.ListResults(context.Background(), "github", 0)
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "a/one", results[0].Name)
		assert.False(t, results[1].HasLock)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("with limit", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectQuery("SELECT source_key, node_id, name").
			WithArgs("github", 1).
			WillReturnRows(mock.NewRows(columns).AddRow("github", "R_1", "a/one", true, true, now))

		results, err := store.ListResults(context.Background(), "github", 1)
		require.NoError(t, err)
		assert.Len(t, results, 1)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCountResults(t *testing.T) {
	t.Parallel()
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT COUNT").
		WithArgs("github").
		WillReturnRows(mock.NewRows([]string{"count"}).AddRow(3))

	count, err := store.CountResults(context.Background(), "github")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClose(t *testing.T) {
	var nilStore *Store
	assert.NoError(t, nilStore.Close())

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	store, err := NewStoreWithPool(mock, "scan_")
	require.NoError(t, err)

	mock.ExpectClose()
	assert.NoError(t, store.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}
