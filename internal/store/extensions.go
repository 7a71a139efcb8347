package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/indaco/kiln/internal/registry"
)

const extensionColumns = `extension_id, name, type, element, folder, client, enabled, protected, params, manifest_cache`

// Find returns the ID of the extension with the given identity. More than
// one matching row is reported as registry.ErrInconsistent.
func (s *Store) Find(ctx context.Context, c registry.Criteria) (int64, bool, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT extension_id FROM extensions
		WHERE element = ? AND type = ? AND client = ? AND folder = ?
		LIMIT 2;`, c.Element, c.Type, c.Client, c.Folder)
	if err != nil {
		return 0, false, fmt.Errorf("find extension: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return 0, false, fmt.Errorf("scan extension id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return 0, false, fmt.Errorf("find extension: %w", err)
	}

	switch len(ids) {
	case 0:
		return 0, false, nil
	case 1:
		return ids[0], true, nil
	default:
		return 0, false, fmt.Errorf("%s/%s: %w", c.Type, c.Element, registry.ErrInconsistent)
	}
}

// Load returns the record with the given ID.
func (s *Store) Load(ctx context.Context, id int64) (*registry.Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+extensionColumns+` FROM extensions WHERE extension_id = ?;`, id)
	rec, err := scanRecord(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("extension %d: %w", id, registry.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load extension %d: %w", id, err)
	}
	return rec, nil
}

// Store inserts r when r.ID is zero, assigning the new ID, and otherwise
// rewrites the existing row.
func (s *Store) Store(ctx context.Context, r *registry.Record) (bool, error) {
	params := r.Params
	if params == "" {
		params = "{}"
	}
	cache := r.ManifestCache
	if cache == "" {
		cache = "{}"
	}

	if r.ID == 0 {
		res, err := s.db.ExecContext(ctx, `
			INSERT INTO extensions (name, type, element, folder, client, enabled, protected, params, manifest_cache)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?);`,
			r.Name, r.Type, r.Element, r.Folder, r.Client,
			boolToInt(r.Enabled), boolToInt(r.Protected), params, cache)
		if err != nil {
			return false, fmt.Errorf("insert extension: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return false, fmt.Errorf("read extension id: %w", err)
		}
		r.ID = id
		return true, nil
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE extensions SET name = ?, type = ?, element = ?, folder = ?, client = ?,
			enabled = ?, protected = ?, params = ?, manifest_cache = ?
		WHERE extension_id = ?;`,
		r.Name, r.Type, r.Element, r.Folder, r.Client,
		boolToInt(r.Enabled), boolToInt(r.Protected), params, cache, r.ID)
	if err != nil {
		return false, fmt.Errorf("update extension %d: %w", r.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return false, fmt.Errorf("extension %d: %w", r.ID, registry.ErrNotFound)
	}
	return false, nil
}

// Delete removes the record with the given ID.
func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM extensions WHERE extension_id = ?;`, id)
	if err != nil {
		return fmt.Errorf("delete extension %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("extension %d: %w", id, registry.ErrNotFound)
	}
	return nil
}

// List returns every record ordered by type then element.
func (s *Store) List(ctx context.Context) ([]registry.Record, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+extensionColumns+` FROM extensions ORDER BY type, element;`)
	if err != nil {
		return nil, fmt.Errorf("list extensions: %w", err)
	}
	defer rows.Close()

	var out []registry.Record
	for rows.Next() {
		rec, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan extension: %w", err)
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

func scanRecord(scan func(dest ...any) error) (*registry.Record, error) {
	var r registry.Record
	var enabled, protected int
	if err := scan(&r.ID, &r.Name, &r.Type, &r.Element, &r.Folder, &r.Client,
		&enabled, &protected, &r.Params, &r.ManifestCache); err != nil {
		return nil, err
	}
	r.Enabled = enabled != 0
	r.Protected = protected != 0
	return &r, nil
}
