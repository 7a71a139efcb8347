// Package store is the SQLite-backed bookkeeping of installed extensions:
// the extension registry, per-extension schema versions, administrator menu
// entries, and the executor that runs extension SQL scripts.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/indaco/kiln/internal/core"
	"github.com/indaco/kiln/internal/registry"
)

// Store wraps a SQLite database.
type Store struct {
	db *sql.DB

	mu      sync.Mutex
	lastErr string
}

var (
	_ registry.Registry  = (*Store)(nil)
	_ registry.MenuStore = (*Store)(nil)
)

// Open opens (creating if needed) the database at path and brings its
// bookkeeping tables up to date. ":memory:" opens a private in-memory database.
func Open(path string) (*Store, error) {
	dsn := ":memory:"
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), core.PermDir); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
		dsn = fmt.Sprintf("%s?_busy_timeout=5000&_foreign_keys=on", path)
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite3: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{db: db}
	if err := s.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// DB exposes the underlying handle.
func (s *Store) DB() *sql.DB { return s.db }

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS extensions (
		extension_id   INTEGER PRIMARY KEY AUTOINCREMENT,
		name           TEXT NOT NULL,
		type           TEXT NOT NULL,
		element        TEXT NOT NULL,
		folder         TEXT NOT NULL DEFAULT '',
		client         TEXT NOT NULL DEFAULT '',
		enabled        INTEGER NOT NULL DEFAULT 1,
		protected      INTEGER NOT NULL DEFAULT 0,
		params         TEXT NOT NULL DEFAULT '{}',
		manifest_cache TEXT NOT NULL DEFAULT '{}'
	);
	CREATE INDEX IF NOT EXISTS idx_extensions_identity ON extensions(element, type, client, folder);`,
	`CREATE TABLE IF NOT EXISTS schemas (
		extension_id INTEGER PRIMARY KEY,
		version_id   TEXT NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS menu (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		component_id INTEGER NOT NULL,
		parent_id    INTEGER NOT NULL DEFAULT 0,
		client       TEXT NOT NULL DEFAULT 'administrator',
		title        TEXT NOT NULL,
		alias        TEXT NOT NULL,
		link         TEXT NOT NULL DEFAULT '',
		img          TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_menu_component ON menu(component_id, client);`,
}

func (s *Store) migrate(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	var current int
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations;`).Scan(&current); err != nil {
		return fmt.Errorf("read migration version: %w", err)
	}
	if current > len(migrations) {
		return fmt.Errorf("db schema version %d is newer than supported %d", current, len(migrations))
	}

	for i := current; i < len(migrations); i++ {
		if _, err := tx.ExecContext(ctx, migrations[i]); err != nil {
			return fmt.Errorf("apply migration %d: %w", i+1, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES (?);`, i+1); err != nil {
			return fmt.Errorf("record migration %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration tx: %w", err)
	}
	return nil
}

/* ------------------------------------------------------------------------- */
/* SQL EXECUTOR                                                              */
/* ------------------------------------------------------------------------- */

// RunScript executes a script of one or more statements.
func (s *Store) RunScript(ctx context.Context, script string) error {
	_, err := s.db.ExecContext(ctx, script)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.lastErr = err.Error()
		return err
	}
	s.lastErr = ""
	return nil
}

// LastError returns the driver message of the most recent failed script.
func (s *Store) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

/* ------------------------------------------------------------------------- */
/* SCHEMA VERSIONS                                                           */
/* ------------------------------------------------------------------------- */

// SchemaVersion returns the stored schema version of an extension.
func (s *Store) SchemaVersion(ctx context.Context, extensionID int64) (string, bool, error) {
	var v string
	err := s.db.QueryRowContext(ctx, `SELECT version_id FROM schemas WHERE extension_id = ?;`, extensionID).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read schema version: %w", err)
	}
	return v, true, nil
}

// SetSchemaVersion inserts or replaces the schema version of an extension.
func (s *Store) SetSchemaVersion(ctx context.Context, extensionID int64, version string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO schemas (extension_id, version_id) VALUES (?, ?)
		ON CONFLICT(extension_id) DO UPDATE SET version_id = excluded.version_id;`,
		extensionID, version)
	if err != nil {
		return fmt.Errorf("write schema version: %w", err)
	}
	return nil
}

// DeleteSchemaVersion removes the schema row of an extension. Deleting a
// missing row is not an error.
func (s *Store) DeleteSchemaVersion(ctx context.Context, extensionID int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM schemas WHERE extension_id = ?;`, extensionID); err != nil {
		return fmt.Errorf("delete schema version: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
