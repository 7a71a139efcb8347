package extensionmgr

import (
	"errors"

	"github.com/indaco/kiln/internal/manifest"
)

// MockManifestLoader is a mock implementation of ManifestLoader for testing
type MockManifestLoader struct {
	LoadFunc func(dir string) (*manifest.Manifest, error)
	Calls    []string
}

func (m *MockManifestLoader) Load(dir string) (*manifest.Manifest, error) {
	m.Calls = append(m.Calls, dir)
	if m.LoadFunc != nil {
		return m.LoadFunc(dir)
	}
	return nil, errors.New("load not implemented")
}
