// Package postgres provides a Postgres-backed implementation of driven.Store
// for crawls that share their results with other services.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/custodia-labs/reposcan/internal/core/domain"
	"github.com/custodia-labs/reposcan/internal/core/ports/driven"
)

// DefaultTablePrefix is prepended to the cursors and results table names.
const DefaultTablePrefix = "reposcan_"

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Ensure Store implements the interface.
var _ driven.Store = (*Store)(nil)

// Config controls the Postgres connection pool.
type Config struct {
	DSN             string
	TablePrefix     string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

type pool interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
	Close()
}

// Store persists cursors and results in Postgres.
type Store struct {
	pool         pool
	cursorsTable string
	resultsTable string
}

// NewStore connects to Postgres and creates the tables if needed.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("%w: storage.postgres.dsn is required", domain.ErrInvalidInput)
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	p, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	s, err := NewStoreWithPool(p, cfg.TablePrefix)
	if err != nil {
		p.Close()
		return nil, err
	}
	if err := s.Migrate(ctx); err != nil {
		p.Close()
		return nil, err
	}
	return s, nil
}

// NewStoreWithPool constructs a store from an existing pool (primarily for testing).
// It does not create tables.
func NewStoreWithPool(p pool, tablePrefix string) (*Store, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: pool is required", domain.ErrInvalidInput)
	}
	if tablePrefix == "" {
		tablePrefix = DefaultTablePrefix
	}
	if !validTableName.MatchString(tablePrefix) {
		return nil, fmt.Errorf("%w: invalid table prefix %q", domain.ErrInvalidInput, tablePrefix)
	}
	return &Store{
		pool:         p,
		cursorsTable: tablePrefix + "cursors",
		resultsTable: tablePrefix + "results",
	}, nil
}

// Migrate creates the cursors and results tables if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	statements := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	source_key TEXT PRIMARY KEY,
	value BIGINT NOT NULL CHECK (value >= 0),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`, s.cursorsTable),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	source_key TEXT NOT NULL,
	node_id TEXT NOT NULL,
	name TEXT NOT NULL,
	has_manifest BOOLEAN NOT NULL DEFAULT FALSE,
	has_lock BOOLEAN NOT NULL DEFAULT FALSE,
	updated_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (source_key, node_id)
)`, s.resultsTable),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_name_idx ON %s (source_key, name)`,
			s.resultsTable, s.resultsTable),
	}
	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate postgres: %w", err)
		}
	}
	return nil
}

// Close releases the underlying pool resources.
func (s *Store) Close() error {
	if s == nil || s.pool == nil {
		return nil
	}
	s.pool.Close()
	return nil
}

// GetCursor retrieves the cursor for a source key.
func (s *Store) GetCursor(ctx context.Context, key string) (int64, bool, error) {
	query := fmt.Sprintf(`SELECT value FROM %s WHERE source_key = $1`, s.cursorsTable)
	var value int64
	if err := s.pool.QueryRow(ctx, query, key).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("get cursor: %w", err)
	}
	return value, true, nil
}

// SetCursor stores or updates the cursor for a source key.
func (s *Store) SetCursor(ctx context.Context, key string, value int64) error {
	query := fmt.Sprintf(`
INSERT INTO %s (source_key, value, updated_at) VALUES ($1, $2, now())
ON CONFLICT (source_key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
		s.cursorsTable)
	if _, err := s.pool.Exec(ctx, query, key, value); err != nil {
		return fmt.Errorf("set cursor: %w", err)
	}
	return nil
}

// PutResult stores or updates a result.
func (s *Store) PutResult(ctx context.Context, key string, result domain.Result) error {
	if result.NodeID == "" {
		return fmt.Errorf("%w: result without node id", domain.ErrInvalidInput)
	}
	query := fmt.Sprintf(`
INSERT INTO %s (source_key, node_id, name, has_manifest, has_lock, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (source_key, node_id) DO UPDATE SET
	name = EXCLUDED.name,
	has_manifest = EXCLUDED.has_manifest,
	has_lock = EXCLUDED.has_lock,
	updated_at = EXCLUDED.updated_at`, s.resultsTable)

	args := []any{
		key,
		result.NodeID,
		result.Name,
		result.HasManifest,
		result.HasLock,
		result.UpdatedAt.UTC(),
	}
	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("put result: %w", err)
	}
	return nil
}

// ListResults returns results for a source key ordered by name.
func (s *Store) ListResults(ctx context.Context, key string, limit int) ([]domain.Result, error) {
	query := fmt.Sprintf(`
SELECT source_key, node_id, name, has_manifest, has_lock, updated_at
FROM %s WHERE source_key = $1
ORDER BY name, node_id`, s.resultsTable)
	args := []any{key}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	defer rows.Close()

	var results []domain.Result
	for rows.Next() {
		var r domain.Result
		if err := rows.Scan(&r.SourceKey, &r.NodeID, &r.Name, &r.HasManifest, &r.HasLock, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate results: %w", err)
	}
	return results, nil
}

// CountResults returns the number of results for a source key.
func (s *Store) CountResults(ctx context.Context, key string) (int, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE source_key = $1`, s.resultsTable)
	var count int
	if err := s.pool.QueryRow(ctx, query, key).Scan(&count); err != nil {
		return 0, fmt.Errorf("count results: %w", err)
	}
	return count, nil
}
