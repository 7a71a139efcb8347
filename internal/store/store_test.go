package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/indaco/kiln/internal/registry"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "kiln.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

/* ------------------------------------------------------------------------- */
/* REGISTRY                                                                  */
/* ------------------------------------------------------------------------- */

func TestStore_RecordLifecycle(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	rec := &registry.Record{
		Name:          "Demo",
		Type:          "component",
		Element:       "com_demo",
		Enabled:       true,
		ManifestCache: `{"name":"Demo"}`,
	}
	inserted, err := s.Store(ctx, rec)
	if err != nil {
		t.Fatalf("Store insert: %v", err)
	}
	if !inserted || rec.ID == 0 {
		t.Fatalf("expected insert with assigned ID, got inserted=%v id=%d", inserted, rec.ID)
	}

	id, found, err := s.Find(ctx, rec.Criteria())
	if err != nil || !found || id != rec.ID {
		t.Fatalf("Find = %d, %v, %v; want %d", id, found, err, rec.ID)
	}

	rec.Name = "Demo Renamed"
	rec.Protected = true
	inserted, err = s.Store(ctx, rec)
	if err != nil || inserted {
		t.Fatalf("Store update = %v, %v", inserted, err)
	}

	loaded, err := s.Load(ctx, rec.ID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Name != "Demo Renamed" || !loaded.Protected || !loaded.Enabled {
		t.Errorf("loaded = %+v", loaded)
	}
	if loaded.Params != "{}" {
		t.Errorf("empty params should default to {}, got %q", loaded.Params)
	}

	if err := s.Delete(ctx, rec.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Load(ctx, rec.ID); !errors.Is(err, registry.ErrNotFound) {
		t.Errorf("Load after delete: expected ErrNotFound, got %v", err)
	}
	if err := s.Delete(ctx, rec.ID); !errors.Is(err, registry.ErrNotFound) {
		t.Errorf("second Delete: expected ErrNotFound, got %v", err)
	}
}

func TestStore_FindIdentity(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	plugin := &registry.Record{Name: "Search", Type: "plugin", Element: "search", Folder: "content"}
	if _, err := s.Store(ctx, plugin); err != nil {
		t.Fatalf("Store: %v", err)
	}

	tests := []struct {
		name  string
		c     registry.Criteria
		found bool
	}{
		{"exact", registry.Criteria{Element: "search", Type: "plugin", Folder: "content"}, true},
		{"other folder", registry.Criteria{Element: "search", Type: "plugin", Folder: "system"}, false},
		{"other type", registry.Criteria{Element: "search", Type: "component", Folder: "content"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, found, err := s.Find(ctx, tt.c)
			if err != nil {
				t.Fatalf("Find: %v", err)
			}
			if found != tt.found {
				t.Errorf("found = %v, want %v", found, tt.found)
			}
		})
	}
}

func TestStore_FindInconsistent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for range 2 {
		if _, err := s.Store(ctx, &registry.Record{Name: "Dup", Type: "plugin", Element: "dup"}); err != nil {
			t.Fatalf("Store: %v", err)
		}
	}

	_, _, err := s.Find(ctx, registry.Criteria{Element: "dup", Type: "plugin"})
	if !errors.Is(err, registry.ErrInconsistent) {
		t.Fatalf("expected ErrInconsistent, got %v", err)
	}
}

func TestStore_List(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, r := range []*registry.Record{
		{Name: "B", Type: "plugin", Element: "b"},
		{Name: "A", Type: "component", Element: "com_a"},
	} {
		if _, err := s.Store(ctx, r); err != nil {
			t.Fatalf("Store: %v", err)
		}
	}

	list, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0].Element != "com_a" {
		t.Errorf("List = %+v", list)
	}
}

func TestStore_UpdateMissing(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Store(context.Background(), &registry.Record{ID: 99, Name: "x", Type: "plugin", Element: "x"})
	if !errors.Is(err, registry.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

/* ------------------------------------------------------------------------- */
/* SCHEMA VERSIONS AND SCRIPTS                                               */
/* ------------------------------------------------------------------------- */

func TestStore_SchemaVersions(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, found, err := s.SchemaVersion(ctx, 1); err != nil || found {
		t.Fatalf("fresh SchemaVersion = found %v, err %v", found, err)
	}
	if err := s.SetSchemaVersion(ctx, 1, "1.0.0"); err != nil {
		t.Fatalf("SetSchemaVersion: %v", err)
	}
	if err := s.SetSchemaVersion(ctx, 1, "1.0.2"); err != nil {
		t.Fatalf("SetSchemaVersion overwrite: %v", err)
	}
	v, found, err := s.SchemaVersion(ctx, 1)
	if err != nil || !found || v != "1.0.2" {
		t.Errorf("SchemaVersion = %q, %v, %v", v, found, err)
	}
	if err := s.DeleteSchemaVersion(ctx, 1); err != nil {
		t.Fatalf("DeleteSchemaVersion: %v", err)
	}
	if err := s.DeleteSchemaVersion(ctx, 1); err != nil {
		t.Errorf("deleting a missing row should succeed, got %v", err)
	}
}

func TestStore_RunScript(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	script := `CREATE TABLE demo_items (id INTEGER PRIMARY KEY, title TEXT);
INSERT INTO demo_items (title) VALUES ('one');
INSERT INTO demo_items (title) VALUES ('two');`
	if err := s.RunScript(ctx, script); err != nil {
		t.Fatalf("RunScript: %v", err)
	}

	var n int
	if err := s.DB().QueryRowContext(ctx, `SELECT COUNT(*) FROM demo_items;`).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 rows, got %d", n)
	}

	if err := s.RunScript(ctx, "CREATE TABEL broken;"); err == nil {
		t.Fatal("expected syntax error")
	}
	if s.LastError() == "" {
		t.Error("LastError should carry the driver message")
	}

	if err := s.RunScript(ctx, "SELECT 1;"); err != nil {
		t.Fatalf("RunScript: %v", err)
	}
	if s.LastError() != "" {
		t.Errorf("LastError should reset after success, got %q", s.LastError())
	}
}

/* ------------------------------------------------------------------------- */
/* MENUS                                                                     */
/* ------------------------------------------------------------------------- */

func TestStore_AdminMenus(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	root := &registry.MenuEntry{ComponentID: 7, Title: "Demo", Alias: "demo", Link: "option=com_demo"}
	if err := s.AddMenuEntry(ctx, root); err != nil {
		t.Fatalf("AddMenuEntry: %v", err)
	}
	child := &registry.MenuEntry{ComponentID: 7, ParentID: root.ID, Title: "Items", Alias: "items", Link: "option=com_demo&view=items"}
	if err := s.AddMenuEntry(ctx, child); err != nil {
		t.Fatalf("AddMenuEntry: %v", err)
	}
	if err := s.AddMenuEntry(ctx, &registry.MenuEntry{ComponentID: 8, Title: "Other", Alias: "other"}); err != nil {
		t.Fatalf("AddMenuEntry: %v", err)
	}

	menus, err := s.AdminMenus(ctx, 7)
	if err != nil {
		t.Fatalf("AdminMenus: %v", err)
	}
	if len(menus) != 2 || menus[0].ID != root.ID || menus[1].ParentID != root.ID {
		t.Errorf("AdminMenus = %+v", menus)
	}

	if err := s.DeleteAdminMenus(ctx, 7); err != nil {
		t.Fatalf("DeleteAdminMenus: %v", err)
	}
	if menus, _ := s.AdminMenus(ctx, 7); len(menus) != 0 {
		t.Errorf("menus should be gone, got %+v", menus)
	}
	if menus, _ := s.AdminMenus(ctx, 8); len(menus) != 1 {
		t.Error("other components' menus must be untouched")
	}
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kiln.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := s.Store(context.Background(), &registry.Record{Name: "x", Type: "plugin", Element: "x"}); err != nil {
		t.Fatalf("Store: %v", err)
	}
	_ = s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	list, err := s.List(context.Background())
	if err != nil || len(list) != 1 {
		t.Errorf("List after reopen = %v, %v", list, err)
	}
}
