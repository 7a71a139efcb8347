// Package errors defines the error kinds produced by the kiln lifecycle engine
// and helpers to classify them.
//
// Every fatal failure surfaced by an install, update or uninstall run is an
// *InstallError carrying one Kind. Callers match kinds with the standard
// helpers:
//
//	if errors.Is(err, errors.ErrFilesystemConflict) { ... }
//
//	var ie *errors.InstallError
//	if errors.As(err, &ie) { fmt.Println(ie.Phase) }
//
// The package re-exports the standard library helpers so callers only need
// to import this package for error handling.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Re-export standard library functions for convenience.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Kind classifies an engine failure.
type Kind int

const (
	// KindUnknown is the zero value; errors not produced by the engine report it.
	KindUnknown Kind = iota
	// KindManifestInvalid means a required manifest section is missing or malformed.
	KindManifestInvalid
	// KindFilesystemConflict means the target exists and overwriting is not permitted.
	KindFilesystemConflict
	// KindFilesystemFailure means a create, copy or delete operation failed.
	KindFilesystemFailure
	// KindSQLFailure means an SQL script failed to execute.
	KindSQLFailure
	// KindHookFailure means an extension hook reported failure.
	KindHookFailure
	// KindRegistryFailure means a registry lookup, store or delete failed.
	KindRegistryFailure
	// KindPolicyViolation means the operation is forbidden, e.g. removing a protected extension.
	KindPolicyViolation
	// KindNotFound means the extension is not registered.
	KindNotFound
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindManifestInvalid:
		return "manifest invalid"
	case KindFilesystemConflict:
		return "filesystem conflict"
	case KindFilesystemFailure:
		return "filesystem failure"
	case KindSQLFailure:
		return "sql failure"
	case KindHookFailure:
		return "hook failure"
	case KindRegistryFailure:
		return "registry failure"
	case KindPolicyViolation:
		return "policy violation"
	case KindNotFound:
		return "not found"
	default:
		return "unknown"
	}
}

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

// kindError is the sentinel type; an *InstallError matches the sentinel of its kind.
type kindError struct{ kind Kind }

func (e *kindError) Error() string { return e.kind.String() }

var (
	// ErrManifestInvalid matches errors of KindManifestInvalid.
	ErrManifestInvalid error = &kindError{KindManifestInvalid}
	// ErrFilesystemConflict matches errors of KindFilesystemConflict.
	ErrFilesystemConflict error = &kindError{KindFilesystemConflict}
	// ErrFilesystemFailure matches errors of KindFilesystemFailure.
	ErrFilesystemFailure error = &kindError{KindFilesystemFailure}
	// ErrSQLFailure matches errors of KindSQLFailure.
	ErrSQLFailure error = &kindError{KindSQLFailure}
	// ErrHookFailure matches errors of KindHookFailure.
	ErrHookFailure error = &kindError{KindHookFailure}
	// ErrRegistryFailure matches errors of KindRegistryFailure.
	ErrRegistryFailure error = &kindError{KindRegistryFailure}
	// ErrPolicyViolation matches errors of KindPolicyViolation.
	ErrPolicyViolation error = &kindError{KindPolicyViolation}
	// ErrNotFound matches errors of KindNotFound.
	ErrNotFound error = &kindError{KindNotFound}
)

// -----------------------------------------------------------------------------
// InstallError
// -----------------------------------------------------------------------------

// InstallError is a classified engine failure.
//
// Example:
//
//	err := errors.NewInstallError(errors.KindFilesystemConflict, "target directory exists", nil).
//		WithPhase("filesystem").WithPath("/srv/site/components/com_demo")
//	fmt.Println(err) // "filesystem conflict [phase=filesystem, path=/srv/...]: target directory exists"
type InstallError struct {
	Kind    Kind
	Message string
	Phase   string
	Path    string
	Err     error
}

// NewInstallError creates an InstallError of the given kind.
func NewInstallError(kind Kind, message string, cause error) *InstallError {
	return &InstallError{Kind: kind, Message: message, Err: cause}
}

// WithPhase records the lifecycle phase that failed.
func (e *InstallError) WithPhase(phase string) *InstallError {
	e.Phase = phase
	return e
}

// WithPath records the filesystem path involved.
func (e *InstallError) WithPath(path string) *InstallError {
	e.Path = path
	return e
}

// Error returns the formatted error message.
func (e *InstallError) Error() string {
	var parts []string
	if e.Phase != "" {
		parts = append(parts, "phase="+e.Phase)
	}
	if e.Path != "" {
		parts = append(parts, "path="+e.Path)
	}

	prefix := e.Kind.String()
	if len(parts) > 0 {
		prefix = fmt.Sprintf("%s [%s]", prefix, strings.Join(parts, ", "))
	}

	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

// Unwrap returns the underlying cause.
func (e *InstallError) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel of this error's kind.
func (e *InstallError) Is(target error) bool {
	if k, ok := target.(*kindError); ok {
		return k.kind == e.Kind
	}
	return false
}

// Constructors for the common kinds.

// ManifestInvalid creates a KindManifestInvalid error.
func ManifestInvalid(message string) *InstallError {
	return NewInstallError(KindManifestInvalid, message, nil)
}

// FilesystemConflict creates a KindFilesystemConflict error for path.
func FilesystemConflict(message, path string) *InstallError {
	return NewInstallError(KindFilesystemConflict, message, nil).WithPath(path)
}

// FilesystemFailure creates a KindFilesystemFailure error for path.
func FilesystemFailure(message, path string, cause error) *InstallError {
	return NewInstallError(KindFilesystemFailure, message, cause).WithPath(path)
}

// SQLFailure creates a KindSQLFailure error.
func SQLFailure(message string, cause error) *InstallError {
	return NewInstallError(KindSQLFailure, message, cause)
}

// HookFailure creates a KindHookFailure error.
func HookFailure(message string, cause error) *InstallError {
	return NewInstallError(KindHookFailure, message, cause)
}

// RegistryFailure creates a KindRegistryFailure error.
func RegistryFailure(message string, cause error) *InstallError {
	return NewInstallError(KindRegistryFailure, message, cause)
}

// PolicyViolation creates a KindPolicyViolation error.
func PolicyViolation(message string) *InstallError {
	return NewInstallError(KindPolicyViolation, message, nil)
}

// NotFound creates a KindNotFound error.
func NotFound(message string) *InstallError {
	return NewInstallError(KindNotFound, message, nil)
}

// -----------------------------------------------------------------------------
// Classification
// -----------------------------------------------------------------------------

// KindOf returns the Kind of the first InstallError in err's chain,
// or KindUnknown.
func KindOf(err error) Kind {
	var ie *InstallError
	if errors.As(err, &ie) {
		return ie.Kind
	}
	return KindUnknown
}

// PhaseOf returns the phase recorded on the first InstallError in err's chain.
func PhaseOf(err error) string {
	var ie *InstallError
	if errors.As(err, &ie) {
		return ie.Phase
	}
	return ""
}

// IsUserFacing reports whether err is safe to print without internal detail.
// Policy and conflict errors describe user decisions; everything else may
// carry driver or OS output.
func IsUserFacing(err error) bool {
	switch KindOf(err) {
	case KindFilesystemConflict, KindPolicyViolation, KindNotFound, KindManifestInvalid:
		return true
	default:
		return false
	}
}
