package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
)

// FileNames are the manifest names looked up in a source directory, in order.
var FileNames = []string{"extension.yaml", "extension.yml", "extension.toml"}

// LoadFn is the loader used by the extension manager; tests may replace it.
var LoadFn = Load

// Load finds the manifest in dir and returns it.
// Returns context-aware errors for common failure scenarios.
func Load(dir string) (*Manifest, error) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return nil, &NotFoundError{Dir: dir, Tried: FileNames}
}

// LoadFile reads and validates a single manifest file. The decoder is picked
// from the file extension; unknown fields are rejected.
func LoadFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &NotFoundError{Dir: filepath.Dir(path), Tried: []string{filepath.Base(path)}}
		}
		return nil, fmt.Errorf("failed to read manifest at %q: %w", path, err)
	}

	doc, err := decode(path, data)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	m, err := New(doc, path)
	if err != nil {
		var valErr *ValidationError
		if errors.As(err, &valErr) {
			valErr.Path = path
			return nil, valErr
		}
		return nil, fmt.Errorf("invalid manifest at %q: %w", path, err)
	}
	return m, nil
}

func decode(path string, data []byte) (Document, error) {
	var doc Document
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return Document{}, err
		}
	default:
		dec := yaml.NewDecoder(bytes.NewReader(data), yaml.Strict())
		if err := dec.Decode(&doc); err != nil {
			return Document{}, err
		}
	}
	return doc, nil
}
