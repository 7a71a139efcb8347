package manifest

import (
	"fmt"
	"strings"

	kerrors "github.com/indaco/kiln/internal/errors"
)

// NotFoundError indicates that no manifest file exists in the source directory.
type NotFoundError struct {
	Dir   string
	Tried []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("extension manifest not found in %s", e.Dir)
}

// Is makes a missing manifest match kerrors.ErrManifestInvalid.
func (e *NotFoundError) Is(target error) bool {
	return target == kerrors.ErrManifestInvalid
}

// Suggestion returns a helpful message with a manifest template.
func (e *NotFoundError) Suggestion() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Extension manifest not found in: %s\n\n", e.Dir)
	sb.WriteString("Looked for:\n")
	for _, name := range e.Tried {
		fmt.Fprintf(&sb, "  - %s\n", name)
	}
	sb.WriteString("\nA minimal extension.yaml:\n\n")
	sb.WriteString("  name: My Extension\n")
	sb.WriteString("  type: component        # or plugin\n")
	sb.WriteString("  version: 1.0.0\n")
	sb.WriteString("  administration:\n")
	sb.WriteString("    files:\n")
	sb.WriteString("      folder: admin\n")
	sb.WriteString("      files: [index.php]\n")

	return sb.String()
}

// ParseError indicates that a manifest file has invalid YAML/TOML or structure.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse manifest at %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is makes a malformed manifest match kerrors.ErrManifestInvalid.
func (e *ParseError) Is(target error) bool {
	return target == kerrors.ErrManifestInvalid
}

// ValidationError indicates that required fields are missing.
type ValidationError struct {
	Path          string
	MissingFields []string
}

func (e *ValidationError) Error() string {
	where := e.Path
	if where == "" {
		where = "<memory>"
	}
	return fmt.Sprintf("invalid manifest at %s: missing required fields: %s",
		where, strings.Join(e.MissingFields, ", "))
}

// Is makes a validation failure match kerrors.ErrManifestInvalid.
func (e *ValidationError) Is(target error) bool {
	return target == kerrors.ErrManifestInvalid
}

// Suggestion returns guidance on fixing validation errors.
func (e *ValidationError) Suggestion() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Manifest validation failed: %s\n\n", e.Path)
	sb.WriteString("Missing required fields:\n")
	for _, field := range e.MissingFields {
		fmt.Fprintf(&sb, "  - %s\n", field)
	}
	sb.WriteString("\nEvery manifest must include:\n")
	sb.WriteString("  - name: Display name (the element is derived from it when omitted)\n")
	sb.WriteString("  - type: Extension type (component, plugin)\n")

	return sb.String()
}
