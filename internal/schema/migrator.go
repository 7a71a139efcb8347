// Package schema applies an extension's SQL scripts and tracks the schema
// version reached by each installed extension.
package schema

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/Masterminds/semver/v3"

	kerrors "github.com/indaco/kiln/internal/errors"
	"github.com/indaco/kiln/internal/manifest"
)

// Executor runs raw SQL against the host database.
type Executor interface {
	RunScript(ctx context.Context, sql string) error
	// LastError reports the driver message of the most recent failure.
	LastError() string
}

// VersionStore persists the schema version per extension ID.
type VersionStore interface {
	SchemaVersion(ctx context.Context, extensionID int64) (version string, found bool, err error)
	SetSchemaVersion(ctx context.Context, extensionID int64, version string) error
	DeleteSchemaVersion(ctx context.Context, extensionID int64) error
}

// ReadFileFn reads script files; tests may replace it.
var ReadFileFn = os.ReadFile

// Migrator runs install and update scripts relative to a source root.
type Migrator struct {
	exec     Executor
	versions VersionStore
	source   string
	logger   *slog.Logger
}

// NewMigrator creates a Migrator reading scripts below source.
func NewMigrator(exec Executor, versions VersionStore, source string, logger *slog.Logger) *Migrator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Migrator{exec: exec, versions: versions, source: source, logger: logger}
}

// Source returns the directory scripts are resolved against.
func (m *Migrator) Source() string { return m.source }

// RunInstallScripts executes each file in order. The first failure stops
// the run and is reported as an SQL failure.
func (m *Migrator) RunInstallScripts(ctx context.Context, paths []string) error {
	for _, p := range paths {
		if err := m.runFile(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// RunUpdateScripts applies every script newer than the stored version in
// ascending version order, recording the version after each success. On
// failure the stored version stays at the last script that succeeded.
func (m *Migrator) RunUpdateScripts(ctx context.Context, scripts []manifest.SchemaScript, extensionID int64) error {
	ordered, err := sortScripts(scripts)
	if err != nil {
		return err
	}

	current, found, err := m.versions.SchemaVersion(ctx, extensionID)
	if err != nil {
		return kerrors.SQLFailure("failed to read schema version", err)
	}

	var floor *semver.Version
	if found && current != "" {
		floor, err = semver.NewVersion(current)
		if err != nil {
			return kerrors.SQLFailure(fmt.Sprintf("stored schema version %q is not a valid version", current), err)
		}
	}

	for _, s := range ordered {
		if floor != nil && !s.version.GreaterThan(floor) {
			continue
		}
		if err := m.runFile(ctx, s.Path); err != nil {
			return err
		}
		if err := m.versions.SetSchemaVersion(ctx, extensionID, s.Version); err != nil {
			return kerrors.SQLFailure(fmt.Sprintf("failed to record schema version %s", s.Version), err)
		}
		m.logger.Debug("applied update script", "version", s.Version, "path", s.Path)
	}
	return nil
}

// InitVersion records the latest declared version without running any
// script. It returns the version written, or "" when there are no scripts.
func (m *Migrator) InitVersion(ctx context.Context, scripts []manifest.SchemaScript, extensionID int64) (string, error) {
	ordered, err := sortScripts(scripts)
	if err != nil {
		return "", err
	}
	if len(ordered) == 0 {
		return "", nil
	}

	latest := ordered[len(ordered)-1].Version
	if err := m.versions.SetSchemaVersion(ctx, extensionID, latest); err != nil {
		return "", kerrors.SQLFailure("failed to initialise schema version", err)
	}
	return latest, nil
}

// Remove deletes the schema-version row of an extension.
func (m *Migrator) Remove(ctx context.Context, extensionID int64) error {
	if err := m.versions.DeleteSchemaVersion(ctx, extensionID); err != nil {
		return kerrors.SQLFailure("failed to remove schema version", err)
	}
	return nil
}

// Scripts merges the explicitly declared update scripts of mf with the
// <version>.sql files found in its schemapath directory. Explicit entries
// win when both declare the same version.
func (m *Migrator) Scripts(mf *manifest.Manifest) ([]manifest.SchemaScript, error) {
	scripts := mf.UpdateScripts()
	if mf.SchemaPath() == "" {
		return scripts, nil
	}

	found, err := Discover(m.source, mf.SchemaPath())
	if err != nil {
		return nil, err
	}

	declared := make(map[string]bool, len(scripts))
	for _, s := range scripts {
		declared[s.Version] = true
	}
	for _, s := range found {
		if !declared[s.Version] {
			scripts = append(scripts, s)
		}
	}
	return scripts, nil
}

// Discover lists the <version>.sql files in dir (relative to source).
// A missing directory yields no scripts.
func Discover(source, dir string) ([]manifest.SchemaScript, error) {
	entries, err := os.ReadDir(filepath.Join(source, dir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, kerrors.FilesystemFailure("failed to read schema directory", dir, err)
	}

	var scripts []manifest.SchemaScript
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".sql") {
			continue
		}
		version := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		if _, err := semver.NewVersion(version); err != nil {
			continue
		}
		scripts = append(scripts, manifest.SchemaScript{
			Version: version,
			Path:    filepath.Join(dir, e.Name()),
		})
	}
	return scripts, nil
}

func (m *Migrator) runFile(ctx context.Context, path string) error {
	full := path
	if !filepath.IsAbs(full) {
		full = filepath.Join(m.source, path)
	}

	data, err := ReadFileFn(full)
	if err != nil {
		return kerrors.SQLFailure(fmt.Sprintf("failed to read SQL file %s", path), err).WithPath(full)
	}

	sql := strings.TrimSpace(string(data))
	if sql == "" {
		return nil
	}

	if err := m.exec.RunScript(ctx, sql); err != nil {
		msg := fmt.Sprintf("SQL error in %s", path)
		if last := m.exec.LastError(); last != "" {
			msg = fmt.Sprintf("%s: %s", msg, last)
		}
		return kerrors.SQLFailure(msg, err).WithPath(full)
	}
	return nil
}

type versionedScript struct {
	manifest.SchemaScript
	version *semver.Version
}

func sortScripts(scripts []manifest.SchemaScript) ([]versionedScript, error) {
	out := make([]versionedScript, 0, len(scripts))
	for _, s := range scripts {
		v, err := semver.NewVersion(s.Version)
		if err != nil {
			return nil, kerrors.ManifestInvalid(fmt.Sprintf("update script version %q is not a valid version", s.Version))
		}
		out = append(out, versionedScript{SchemaScript: s, version: v})
	}
	slices.SortStableFunc(out, func(a, b versionedScript) int {
		return a.version.Compare(b.version)
	})
	return out, nil
}
