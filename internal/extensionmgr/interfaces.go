package extensionmgr

import (
	"github.com/indaco/kiln/internal/installer"
	"github.com/indaco/kiln/internal/manifest"
	"github.com/indaco/kiln/internal/registry"
	"github.com/indaco/kiln/internal/schema"
)

// ManifestLoader loads the manifest found in a directory.
type ManifestLoader interface {
	Load(dir string) (*manifest.Manifest, error)
}

// DefaultManifestLoader implements ManifestLoader using manifest.LoadFn.
type DefaultManifestLoader struct{}

// Load loads the manifest in dir.
func (l *DefaultManifestLoader) Load(dir string) (*manifest.Manifest, error) {
	return manifest.LoadFn(dir)
}

// Store is the persistence a Manager runs against.
type Store interface {
	registry.Registry
	registry.MenuStore
	schema.Executor
	schema.VersionStore
}

// StrategyFactory returns the installer strategy for an extension type.
type StrategyFactory func(typ string, menus registry.MenuStore) (installer.Strategy, error)
