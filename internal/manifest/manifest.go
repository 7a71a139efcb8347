package manifest

import (
	"maps"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"unicode"

	"github.com/tidwall/sjson"
)

// Manifest is the immutable, filtered view of a Document. Construct it with New.
type Manifest struct {
	doc     Document
	element string
	name    string
	path    string
}

// New validates doc and returns its Manifest. path is the manifest file the
// document was read from; it may be empty for manifests built in memory.
//
// The element is taken from the document or, when absent, derived from the
// name. Either way it is filtered to the token alphabet [A-Za-z0-9._-].
func New(doc Document, path string) (*Manifest, error) {
	var missing []string
	if strings.TrimSpace(doc.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(doc.Type) == "" {
		missing = append(missing, "type")
	}
	if len(missing) > 0 {
		return nil, &ValidationError{Path: path, MissingFields: missing}
	}

	name := FilterName(doc.Name)
	element := FilterElement(doc.Element)
	if element == "" {
		element = FilterElement(strings.ToLower(name))
	}
	if element == "" {
		return nil, &ValidationError{Path: path, MissingFields: []string{"element"}}
	}

	m := &Manifest{
		doc:     doc,
		element: element,
		name:    name,
		path:    path,
	}
	m.doc.Type = strings.ToLower(strings.TrimSpace(doc.Type))
	return m, nil
}

var (
	elementDisallowed = regexp.MustCompile(`[^A-Za-z0-9._-]`)
	markupTag         = regexp.MustCompile(`<[^>]*>`)
)

// FilterElement strips every character outside [A-Za-z0-9._-] and any
// leading dots.
func FilterElement(s string) string {
	s = elementDisallowed.ReplaceAllString(s, "")
	return strings.TrimLeft(s, ".")
}

// FilterName removes markup tags and control characters from a display name.
func FilterName(s string) string {
	s = markupTag.ReplaceAllString(s, "")
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}

// Name returns the filtered display name.
func (m *Manifest) Name() string { return m.name }

// Element returns the filtered, non-empty element identifier.
func (m *Manifest) Element() string { return m.element }

// Type returns the lower-cased extension type.
func (m *Manifest) Type() string { return m.doc.Type }

// Description returns the description text.
func (m *Manifest) Description() string { return m.doc.Description }

// Version returns the declared extension version.
func (m *Manifest) Version() string { return m.doc.Version }

// Author returns the declared author.
func (m *Manifest) Author() string { return m.doc.Author }

// Group returns the plugin group folder.
func (m *Manifest) Group() string { return FilterElement(m.doc.Group) }

// Client returns the declared client scope ("site" or "administrator"), or "".
func (m *Manifest) Client() string { return strings.ToLower(m.doc.Client) }

// Path returns the manifest file path, if known.
func (m *Manifest) Path() string { return m.path }

// Dir returns the directory containing the manifest file, if known.
func (m *Manifest) Dir() string {
	if m.path == "" {
		return ""
	}
	return filepath.Dir(m.path)
}

// Files returns a copy of the site files section.
func (m *Manifest) Files() *FilesSection { return m.doc.Files.clone() }

// Media returns a copy of the media section.
func (m *Manifest) Media() *FilesSection { return m.doc.Media.clone() }

// Languages returns a copy of the site languages section.
func (m *Manifest) Languages() *FilesSection { return m.doc.Languages.clone() }

// Administration returns a copy of the administration section.
func (m *Manifest) Administration() *Administration { return m.doc.Administration.clone() }

// HasAdministration reports whether an administration section is declared.
func (m *Manifest) HasAdministration() bool { return m.doc.Administration != nil }

// InstallSQL returns the install-route SQL files.
func (m *Manifest) InstallSQL() []string {
	if m.doc.Install == nil {
		return nil
	}
	return cloneStrings(m.doc.Install.SQL)
}

// UninstallSQL returns the uninstall-route SQL files.
func (m *Manifest) UninstallSQL() []string {
	if m.doc.Uninstall == nil {
		return nil
	}
	return cloneStrings(m.doc.Uninstall.SQL)
}

// HasUpdate reports whether an update section is declared.
func (m *Manifest) HasUpdate() bool { return m.doc.Update != nil }

// UpdateSQL returns the update-route SQL files.
func (m *Manifest) UpdateSQL() []string {
	if m.doc.Update == nil {
		return nil
	}
	return cloneStrings(m.doc.Update.SQL)
}

// UpdateScripts returns the declared version-tagged scripts in manifest order.
func (m *Manifest) UpdateScripts() []SchemaScript {
	if m.doc.Update == nil || m.doc.Update.Schemas == nil {
		return nil
	}
	return append([]SchemaScript(nil), m.doc.Update.Schemas...)
}

// SchemaPath returns the update schema directory, relative to the source.
func (m *Manifest) SchemaPath() string {
	if m.doc.Update == nil {
		return ""
	}
	return m.doc.Update.SchemaPath
}

// ScriptFile returns the hook script path, relative to the source.
func (m *Manifest) ScriptFile() string { return m.doc.ScriptFile }

// Hooks returns the hook points a script hook declares.
func (m *Manifest) Hooks() []string { return cloneStrings(m.doc.Hooks) }

// Params returns a shallow copy of the default parameters.
func (m *Manifest) Params() map[string]any {
	if m.doc.Params == nil {
		return nil
	}
	return maps.Clone(m.doc.Params)
}

// CacheJSON returns the manifest-cache snapshot stored with the registry
// record, used to list extensions without re-reading their manifests.
func (m *Manifest) CacheJSON() (string, error) {
	doc := "{}"
	fields := []struct {
		key   string
		value string
	}{
		{"name", m.name},
		{"type", m.doc.Type},
		{"element", m.element},
		{"version", m.doc.Version},
		{"description", m.doc.Description},
		{"author", m.doc.Author},
		{"group", m.Group()},
	}

	var err error
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		if doc, err = sjson.Set(doc, f.key, f.value); err != nil {
			return "", err
		}
	}
	if len(m.doc.Hooks) > 0 {
		if doc, err = sjson.Set(doc, "hooks", m.doc.Hooks); err != nil {
			return "", err
		}
	}
	return doc, nil
}

// ParamsJSON encodes the default parameters as a JSON object, keys sorted.
func (m *Manifest) ParamsJSON() (string, error) {
	doc := "{}"
	keys := slices.Sorted(maps.Keys(m.doc.Params))

	var err error
	for _, k := range keys {
		if doc, err = sjson.Set(doc, escapePathKey(k), m.doc.Params[k]); err != nil {
			return "", err
		}
	}
	return doc, nil
}

var pathKeyReplacer = strings.NewReplacer(
	`\`, `\\`, `.`, `\.`, `*`, `\*`, `?`, `\?`, `|`, `\|`, `#`, `\#`, `@`, `\@`,
)

// escapePathKey makes a map key usable as a single sjson path component.
func escapePathKey(k string) string { return pathKeyReplacer.Replace(k) }
