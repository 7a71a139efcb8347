package exttypes

import (
	"context"
	"path/filepath"

	kerrors "github.com/indaco/kiln/internal/errors"
	"github.com/indaco/kiln/internal/hooks"
	"github.com/indaco/kiln/internal/installer"
)

const clientSite = "site"

// Plugin installs into a single root below its group folder.
type Plugin struct{}

var (
	_ installer.Strategy         = (*Plugin)(nil)
	_ installer.ScriptClassNamer = (*Plugin)(nil)
)

// NewPlugin creates the plugin strategy.
func NewPlugin() *Plugin { return &Plugin{} }

// ScriptClassName is "plg" + group + element + "InstallerScript".
func (p *Plugin) ScriptClassName(a *installer.Adapter) string {
	group := a.Target().Folder
	if group == "" {
		group = a.Manifest().Group()
	}
	return hooks.ClassName("plg" + group + a.Element())
}

// Setup resolves <site>/plugins/<group>/<element>.
func (p *Plugin) Setup(a *installer.Adapter) (installer.Target, error) {
	m := a.Manifest()
	group := m.Group()
	if group == "" {
		return installer.Target{}, kerrors.ManifestInvalid("plugin manifest has no group")
	}
	site := a.Options().Roots.Site
	if site == "" {
		return installer.Target{}, kerrors.ManifestInvalid("plugins need a site root")
	}

	t := installer.Target{
		Element: m.Element(),
		Folder:  group,
		Client:  clientSite,
		Roots:   []string{filepath.Join(site, "plugins", group, m.Element())},
	}
	if media := mediaRoot(a); media != "" {
		t.Roots = append(t.Roots, media)
	}
	return t, nil
}

// Stage copies the plugin files and media, then the hook script and
// manifest into the plugin root.
func (p *Plugin) Stage(_ context.Context, a *installer.Adapter) error {
	root := a.Target().Roots[0]
	previous := installedManifest(a, root)

	places := []placement{{root: root, section: a.Manifest().Files()}}
	if previous != nil {
		places[0].previous = previous.Files()
	}
	if mp, ok := mediaPlacement(a, previous); ok {
		places = append(places, mp)
	}

	if err := stage(a, places); err != nil {
		return err
	}
	return copyInstallFiles(a, root)
}

// Finalize has nothing to register for plugins.
func (p *Plugin) Finalize(context.Context, *installer.Adapter) error { return nil }

// Uninstall has nothing to remove beyond the roots.
func (p *Plugin) Uninstall(context.Context, *installer.Adapter) error { return nil }
