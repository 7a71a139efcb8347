// Package exttypes implements the installer strategies for each extension
// type: where an extension's files go, what else it registers and how that
// is removed again.
package exttypes

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	kerrors "github.com/indaco/kiln/internal/errors"
	"github.com/indaco/kiln/internal/installer"
	"github.com/indaco/kiln/internal/manifest"
	"github.com/indaco/kiln/internal/registry"
)

// Supported extension types.
const (
	TypeComponent = "component"
	TypePlugin    = "plugin"
)

// Types lists the supported extension types.
var Types = []string{TypeComponent, TypePlugin}

// loadInstalledFn reads the manifest copied into an installed extension.
var loadInstalledFn = manifest.Load

// For returns the strategy for typ. menus may be nil, in which case
// components are installed without administrator menus.
func For(typ string, menus registry.MenuStore) (installer.Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(typ)) {
	case TypeComponent:
		return NewComponent(menus), nil
	case TypePlugin:
		return NewPlugin(), nil
	default:
		return nil, kerrors.ManifestInvalid(fmt.Sprintf("unsupported extension type %q (supported: %s)",
			typ, strings.Join(Types, ", ")))
	}
}

// InstalledDir returns the directory holding the manifest copied in by the
// installation of rec, or "" for an unsupported type.
func InstalledDir(rec registry.Record, roots installer.Roots) string {
	switch rec.Type {
	case TypeComponent:
		return filepath.Join(roots.Admin, "components", ComponentElement(rec.Element))
	case TypePlugin:
		return filepath.Join(roots.Site, "plugins", rec.Folder, rec.Element)
	default:
		return ""
	}
}

// staleRemover is implemented by filesystems that can drop files a
// previous version installed but the current one no longer ships.
type staleRemover interface {
	RemoveStale(dst string, previous, current []string) error
}

// placement is one root directory and the files section staged into it.
type placement struct {
	root    string
	section *manifest.FilesSection
	// previous is the same section from the installed manifest, if any.
	previous *manifest.FilesSection
}

// stage creates every root and copies its section. On the update route the
// entries dropped since the installed version are removed first; failing to
// remove them is only a warning.
func stage(a *installer.Adapter, places []placement) error {
	fs := a.Filesystem()
	for _, p := range places {
		if err := a.CreateRoot(p.root); err != nil {
			return fsFailure("failed to create extension directory", p.root, err)
		}

		if p.previous != nil && a.CurrentRoute() == installer.RouteUpdate {
			if r, ok := fs.(staleRemover); ok {
				if err := r.RemoveStale(p.root, p.previous.Entries(), p.section.Entries()); err != nil {
					a.Warn(installer.PhaseStaging, fsFailure("failed to remove stale files", p.root, err))
				}
			}
		}

		if err := fs.CopyFiles(a.Source(), p.root, p.section); err != nil {
			return fsFailure("failed to copy files", p.root, err)
		}
	}
	return nil
}

// copyInstallFiles copies the hook script and the manifest itself into dst,
// so uninstall and later updates can find them.
func copyInstallFiles(a *installer.Adapter, dst string) error {
	m := a.Manifest()
	fs := a.Filesystem()

	if script := m.ScriptFile(); script != "" && !filepath.IsAbs(script) {
		section := &manifest.FilesSection{Files: []string{script}}
		if err := fs.CopyFiles(a.Source(), dst, section); err != nil {
			return fsFailure("failed to copy hook script", dst, err)
		}
	}

	if m.Path() != "" {
		section := &manifest.FilesSection{Files: []string{filepath.Base(m.Path())}}
		if err := fs.CopyFiles(m.Dir(), dst, section); err != nil {
			return fsFailure("failed to copy manifest", dst, err)
		}
	}
	return nil
}

// installedManifest returns the manifest of the version being replaced, or
// nil when this is not an update or none can be read from dir.
func installedManifest(a *installer.Adapter, dir string) *manifest.Manifest {
	if a.CurrentRoute() != installer.RouteUpdate {
		return nil
	}
	m, err := loadInstalledFn(dir)
	if err != nil {
		var nf *manifest.NotFoundError
		if !errors.As(err, &nf) {
			a.Logger().Warn("cannot read installed manifest", "dir", dir, "error", err)
		}
		return nil
	}
	return m
}

// mediaRoot returns the media directory of the extension, or "" when the
// manifest has no media section or no media root is configured.
func mediaRoot(a *installer.Adapter) string {
	media := a.Manifest().Media()
	base := a.Options().Roots.Media
	if media == nil || base == "" {
		return ""
	}
	dest := manifest.FilterElement(media.Destination)
	if dest == "" {
		dest = a.Manifest().Element()
	}
	return filepath.Join(base, dest)
}

func mediaPlacement(a *installer.Adapter, previous *manifest.Manifest) (placement, bool) {
	root := mediaRoot(a)
	if root == "" {
		return placement{}, false
	}
	p := placement{root: root, section: a.Manifest().Media()}
	if previous != nil {
		p.previous = previous.Media()
	}
	return p, true
}

func fsFailure(msg, path string, err error) error {
	if kerrors.KindOf(err) != kerrors.KindUnknown {
		return err
	}
	return kerrors.FilesystemFailure(msg, path, err)
}
