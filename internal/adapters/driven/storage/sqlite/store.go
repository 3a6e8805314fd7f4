package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/reposcan/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/reposcan/internal/core/domain"
	"github.com/custodia-labs/reposcan/internal/core/ports/driven"
)

// DatabaseFile is the file name of the database inside the data directory.
const DatabaseFile = "reposcan.db"

// Ensure Store implements the interface.
var _ driven.Store = (*Store)(nil)

// Store is a SQLite-backed cursor and result store.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.reposcan/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".reposcan", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, DatabaseFile)

	// WAL lets `reposcan status` read while a crawl writes.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations and records each applied version.
func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_initial.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// SchemaVersion returns the highest applied migration version.
func (s *Store) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	row := s.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&version); err != nil {
		return 0, fmt.Errorf("getting schema version: %w", err)
	}
	return version, nil
}

// ==================== Cursor Store ====================

// GetCursor retrieves the cursor for a source key.
func (s *Store) GetCursor(ctx context.Context, key string) (int64, bool, error) {
	var value int64
	row := s.db.QueryRowContext(ctx, `SELECT value FROM cursors WHERE source_key = ?`, key)
	if err := row.Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("getting cursor: %w", err)
	}
	return value, true, nil
}

// SetCursor stores or updates the cursor for a source key.
func (s *Store) SetCursor(ctx context.Context, key string, value int64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cursors (source_key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(source_key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, key, value)
	if err != nil {
		return fmt.Errorf("saving cursor: %w", err)
	}
	return nil
}

// ==================== Result Store ====================

// PutResult stores or updates a result.
func (s *Store) PutResult(ctx context.Context, key string, result domain.Result) error {
	if result.NodeID == "" {
		return fmt.Errorf("%w: result without node id", domain.ErrInvalidInput)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO results (source_key, node_id, name, has_manifest, has_lock, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(source_key, node_id) DO UPDATE SET
			name = excluded.name,
			has_manifest = excluded.has_manifest,
			has_lock = excluded.has_lock,
			updated_at = excluded.updated_at
	`, key, result.NodeID, result.Name, result.HasManifest, result.HasLock, result.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("saving result: %w", err)
	}
	return nil
}

// ListResults returns results for a source key ordered by name.
func (s *Store) ListResults(ctx context.Context, key string, limit int) ([]domain.Result, error) {
	query := `
		SELECT source_key, node_id, name, has_manifest, has_lock, updated_at
		FROM results WHERE source_key = ?
		ORDER BY name, node_id
	`
	args := []any{key}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing results: %w", err)
	}
	defer rows.Close()

	var results []domain.Result
	for rows.Next() {
		var r domain.Result
		if err := rows.Scan(&r.SourceKey, &r.NodeID, &r.Name, &r.HasManifest, &r.HasLock, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning result: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating results: %w", err)
	}
	return results, nil
}

// CountResults returns the number of results for a source key.
func (s *Store) CountResults(ctx context.Context, key string) (int, error) {
	var count int
	row := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM results WHERE source_key = ?`, key)
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("counting results: %w", err)
	}
	return count, nil
}
