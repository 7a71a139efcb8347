package exttypes

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	kerrors "github.com/indaco/kiln/internal/errors"
	"github.com/indaco/kiln/internal/installer"
	"github.com/indaco/kiln/internal/manifest"
	"github.com/indaco/kiln/internal/registry"
	"github.com/indaco/kiln/internal/steps"
)

const (
	componentPrefix = "com_"
	defaultMenuImg  = "class:component"
	clientAdmin     = "administrator"
)

// Component installs into a site root and an administrator root and owns
// an administrator menu.
type Component struct {
	menus registry.MenuStore
}

var (
	_ installer.Strategy   = (*Component)(nil)
	_ installer.StepUndoer = (*Component)(nil)
)

// NewComponent creates the component strategy. A nil menus skips menu
// handling.
func NewComponent(menus registry.MenuStore) *Component {
	return &Component{menus: menus}
}

// ComponentElement returns element with the component prefix.
func ComponentElement(element string) string {
	if strings.HasPrefix(strings.ToLower(element), componentPrefix) {
		return componentPrefix + element[len(componentPrefix):]
	}
	return componentPrefix + element
}

// Setup resolves the site and administrator roots.
func (c *Component) Setup(a *installer.Adapter) (installer.Target, error) {
	m := a.Manifest()
	if !m.HasAdministration() {
		return installer.Target{}, kerrors.ManifestInvalid("component manifest has no administration section")
	}

	roots := a.Options().Roots
	if roots.Site == "" || roots.Admin == "" {
		return installer.Target{}, kerrors.ManifestInvalid("components need both a site root and an admin root")
	}

	element := ComponentElement(m.Element())
	t := installer.Target{
		Element: element,
		Client:  clientAdmin,
		Roots: []string{
			filepath.Join(roots.Site, "components", element),
			filepath.Join(roots.Admin, "components", element),
		},
	}
	if media := mediaRoot(a); media != "" {
		t.Roots = append(t.Roots, media)
	}
	return t, nil
}

// Stage copies the site files, the administrator files and the media, then
// the hook script and manifest into the administrator root.
func (c *Component) Stage(_ context.Context, a *installer.Adapter) error {
	site, admin := c.siteRoot(a), c.adminRoot(a)
	m := a.Manifest()
	previous := installedManifest(a, admin)

	places := []placement{
		{root: site, section: m.Files()},
		{root: admin, section: m.Administration().Files},
	}
	if previous != nil {
		places[0].previous = previous.Files()
		if prevAdmin := previous.Administration(); prevAdmin != nil {
			places[1].previous = prevAdmin.Files
		}
	}
	if p, ok := mediaPlacement(a, previous); ok {
		places = append(places, p)
	}

	if err := stage(a, places); err != nil {
		return err
	}
	return copyInstallFiles(a, admin)
}

// Finalize builds the administrator menu. Existing entries are kept unless
// the run overwrites.
func (c *Component) Finalize(ctx context.Context, a *installer.Adapter) error {
	if c.menus == nil {
		return nil
	}
	id := a.ExtensionID()

	existing, err := c.menus.AdminMenus(ctx, id)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		if !a.Options().Overwrite {
			a.Logger().Debug("keeping existing admin menu", "entries", len(existing))
			return nil
		}
		if err := c.menus.DeleteAdminMenus(ctx, id); err != nil {
			return err
		}
		a.PushStep(steps.Step{Kind: steps.KindMenuReplaced, ID: id, Data: existing})
	}

	option := a.Element()
	admin := a.Manifest().Administration()

	root := registry.MenuEntry{
		ComponentID: id,
		Title:       option,
		Alias:       option,
		Link:        "index.php?option=" + option,
		Img:         defaultMenuImg,
	}
	if admin.Menu != nil && strings.TrimSpace(admin.Menu.Title) != "" {
		root.Title = strings.TrimSpace(admin.Menu.Title)
		root.Alias = admin.Menu.Title
		if admin.Menu.Img != "" {
			root.Img = admin.Menu.Img
		}
	}
	if err := c.menus.AddMenuEntry(ctx, &root); err != nil {
		return err
	}
	a.PushStep(steps.Step{Kind: steps.KindMenu, ID: id})

	for _, item := range admin.Submenu {
		entry := registry.MenuEntry{
			ComponentID: id,
			ParentID:    root.ID,
			Title:       strings.TrimSpace(item.Title),
			Alias:       item.Title,
			Link:        MenuLink(option, item),
			Img:         defaultMenuImg,
		}
		if item.Img != "" {
			entry.Img = item.Img
		}
		if err := c.menus.AddMenuEntry(ctx, &entry); err != nil {
			return fmt.Errorf("submenu %q: %w", item.Title, err)
		}
	}
	return nil
}

// MenuLink builds the link of a submenu entry. An explicit link wins over
// the request parts.
func MenuLink(option string, item manifest.MenuItem) string {
	if item.Link != "" {
		return "index.php?" + item.Link
	}

	var b strings.Builder
	b.WriteString("index.php?option=")
	b.WriteString(option)
	for _, part := range []struct{ key, value string }{
		{"act", item.Act},
		{"task", item.Task},
		{"controller", item.Controller},
		{"view", item.View},
		{"layout", item.Layout},
		{"sub", item.Sub},
	} {
		if part.value != "" {
			b.WriteString("&" + part.key + "=" + part.value)
		}
	}
	return b.String()
}

// Uninstall removes the administrator menu.
func (c *Component) Uninstall(ctx context.Context, a *installer.Adapter) error {
	if c.menus == nil {
		return nil
	}
	return c.menus.DeleteAdminMenus(ctx, a.ExtensionID())
}

// UndoStep removes the menu entries recorded by Finalize and restores the
// entries it replaced.
func (c *Component) UndoStep(ctx context.Context, _ *installer.Adapter, step steps.Step) error {
	switch step.Kind {
	case steps.KindMenu, steps.KindMenuReplaced:
	default:
		return fmt.Errorf("component cannot undo step %s", step)
	}
	if c.menus == nil {
		return nil
	}
	if step.Kind == steps.KindMenu {
		return c.menus.DeleteAdminMenus(ctx, step.ID)
	}

	entries, ok := step.Data.([]registry.MenuEntry)
	if !ok {
		return fmt.Errorf("step %s carries no menu entries", step)
	}
	return c.restoreMenus(ctx, entries)
}

// restoreMenus inserts entries again, parents before children, pointing
// each child at the new ID of its parent.
func (c *Component) restoreMenus(ctx context.Context, entries []registry.MenuEntry) error {
	ids := make(map[int64]int64, len(entries))
	pending := entries
	for len(pending) > 0 {
		var waiting []registry.MenuEntry
		for _, e := range pending {
			if e.ParentID != 0 {
				parent, ok := ids[e.ParentID]
				if !ok {
					waiting = append(waiting, e)
					continue
				}
				e.ParentID = parent
			}
			oldID := e.ID
			e.ID = 0
			if err := c.menus.AddMenuEntry(ctx, &e); err != nil {
				return fmt.Errorf("restore menu entry %q: %w", e.Title, err)
			}
			ids[oldID] = e.ID
		}
		if len(waiting) == len(pending) {
			return fmt.Errorf("cannot restore %d menu entries whose parent is missing", len(waiting))
		}
		pending = waiting
	}
	return nil
}

func (c *Component) siteRoot(a *installer.Adapter) string  { return a.Target().Roots[0] }
func (c *Component) adminRoot(a *installer.Adapter) string { return a.Target().Roots[1] }
