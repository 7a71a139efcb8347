package store

import (
	"context"
	"fmt"

	"github.com/indaco/kiln/internal/registry"
)

// AdminMenus returns a component's administrator menu entries, root first.
func (s *Store) AdminMenus(ctx context.Context, componentID int64) ([]registry.MenuEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, component_id, parent_id, title, alias, link, img FROM menu
		WHERE component_id = ? AND client = 'administrator'
		ORDER BY parent_id, id;`, componentID)
	if err != nil {
		return nil, fmt.Errorf("list admin menus: %w", err)
	}
	defer rows.Close()

	var out []registry.MenuEntry
	for rows.Next() {
		var e registry.MenuEntry
		if err := rows.Scan(&e.ID, &e.ComponentID, &e.ParentID, &e.Title, &e.Alias, &e.Link, &e.Img); err != nil {
			return nil, fmt.Errorf("scan menu entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// AddMenuEntry inserts e and assigns its ID.
func (s *Store) AddMenuEntry(ctx context.Context, e *registry.MenuEntry) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO menu (component_id, parent_id, client, title, alias, link, img)
		VALUES (?, ?, 'administrator', ?, ?, ?, ?);`,
		e.ComponentID, e.ParentID, e.Title, e.Alias, e.Link, e.Img)
	if err != nil {
		return fmt.Errorf("insert menu entry %q: %w", e.Title, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("read menu entry id: %w", err)
	}
	e.ID = id
	return nil
}

// DeleteAdminMenus removes every administrator menu entry of a component.
func (s *Store) DeleteAdminMenus(ctx context.Context, componentID int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM menu WHERE component_id = ? AND client = 'administrator';`, componentID); err != nil {
		return fmt.Errorf("delete admin menus: %w", err)
	}
	return nil
}
