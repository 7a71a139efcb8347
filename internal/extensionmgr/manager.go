// Package extensionmgr is the caller of the lifecycle engine: it locates
// and loads the manifest, picks the strategy for the extension type, wires
// the collaborators, runs the adapter and rolls back after a fatal failure.
package extensionmgr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	kerrors "github.com/indaco/kiln/internal/errors"
	"github.com/indaco/kiln/internal/exttypes"
	"github.com/indaco/kiln/internal/fsops"
	"github.com/indaco/kiln/internal/hooks"
	"github.com/indaco/kiln/internal/installer"
	"github.com/indaco/kiln/internal/logging"
	"github.com/indaco/kiln/internal/manifest"
	"github.com/indaco/kiln/internal/registry"
	"github.com/indaco/kiln/internal/schema"
)

var (
	cloneFn        = CloneRepository
	gitAvailableFn = ValidateGitAvailable
)

// Options configure a Manager.
type Options struct {
	Roots installer.Roots
	// HookTimeout bounds each script hook call; zero means no limit.
	HookTimeout time.Duration
	// Hooks resolves in-process hook objects. It is tried before script hooks.
	Hooks  hooks.Resolver
	Logger *slog.Logger
}

// InstallFlags are the per-run switches of an install.
type InstallFlags struct {
	Overwrite bool
	Upgrade   bool
}

// Result summarises one run.
type Result struct {
	RunID       string
	ExtensionID int64
	Element     string
	Type        string
	Route       installer.Route
	Forwarded   bool
	// Success is the uninstall success flag; installs that return no error succeeded.
	Success  bool
	Message  string
	Warnings []installer.Diagnostic
	// RolledBack is set when a fatal failure was unwound.
	RolledBack  bool
	RollbackErr error
}

// Entry is a registry record with fields read from its manifest cache.
type Entry struct {
	registry.Record
	Version     string
	Description string
	Author      string
}

// Manager runs installs, updates and uninstalls against one store.
type Manager struct {
	store      Store
	fs         installer.Filesystem
	loader     ManifestLoader
	strategies StrategyFactory
	opts       Options
	logger     *slog.Logger
}

// NewManager creates a Manager with the given collaborators.
func NewManager(store Store, fs installer.Filesystem, loader ManifestLoader, strategies StrategyFactory, opts Options) *Manager {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	return &Manager{
		store:      store,
		fs:         fs,
		loader:     loader,
		strategies: strategies,
		opts:       opts,
		logger:     logger,
	}
}

// NewDefaultManager creates a Manager on the OS filesystem with the
// built-in extension types.
func NewDefaultManager(store Store, opts Options) *Manager {
	return NewManager(store, fsops.New(), &DefaultManifestLoader{}, exttypes.For, opts)
}

// Install installs the extension whose manifest is in source. An extension
// already on disk is updated instead when flags or the extension allow it.
func (mgr *Manager) Install(ctx context.Context, source string, flags InstallFlags) (*Result, error) {
	return mgr.run(ctx, source, flags, false)
}

// Update updates the extension whose manifest is in source.
func (mgr *Manager) Update(ctx context.Context, source string) (*Result, error) {
	return mgr.run(ctx, source, InstallFlags{Overwrite: true, Upgrade: true}, true)
}

// InstallURL clones a git source and installs from it.
func (mgr *Manager) InstallURL(ctx context.Context, rawURL string, flags InstallFlags) (*Result, error) {
	if err := gitAvailableFn(ctx); err != nil {
		return nil, err
	}
	repo, err := ParseRepoURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}

	mgr.logger.Info("cloning source", "repo", repo.String())
	cloneDir, err := cloneFn(ctx, repo)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := os.RemoveAll(cloneDir); err != nil {
			mgr.logger.Warn("failed to clean up clone", "dir", cloneDir, "error", err)
		}
	}()

	source, err := sourceDir(cloneDir, repo)
	if err != nil {
		return nil, err
	}
	return mgr.Install(ctx, source, flags)
}

func (mgr *Manager) run(ctx context.Context, source string, flags InstallFlags, update bool) (*Result, error) {
	info, err := os.Stat(source)
	if err != nil {
		return nil, fmt.Errorf("extension path %q error: %w", source, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("extension path %q must be a directory", source)
	}

	m, err := mgr.loader.Load(source)
	if err != nil {
		return nil, fmt.Errorf("failed to load extension manifest from %q: %w", source, err)
	}
	strategy, err := mgr.strategies(m.Type(), mgr.store)
	if err != nil {
		return nil, err
	}

	a := installer.New(strategy, m, mgr.deps(source), installer.Options{
		Overwrite: flags.Overwrite,
		Upgrade:   flags.Upgrade,
		Source:    source,
		Roots:     mgr.opts.Roots,
	})

	var id int64
	if update {
		id, err = a.Update(ctx)
	} else {
		id, err = a.Install(ctx)
	}

	res := resultOf(a)
	res.ExtensionID = id
	if err != nil {
		res.RolledBack = true
		// Undo even when the run was cancelled.
		if rbErr := a.Rollback(context.WithoutCancel(ctx)); rbErr != nil {
			res.RollbackErr = rbErr
			mgr.logger.Error("rollback incomplete", "run_id", a.RunID(), "error", rbErr)
		}
		return res, err
	}
	res.Success = true
	return res, nil
}

// Uninstall removes the extension with the given ID. The manifest is read
// from the installed copy; when that is gone, one is rebuilt from the record.
func (mgr *Manager) Uninstall(ctx context.Context, id int64) (*Result, error) {
	rec, err := mgr.store.Load(ctx, id)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			return nil, kerrors.NotFound(fmt.Sprintf("extension %d is not installed", id))
		}
		return nil, kerrors.RegistryFailure(fmt.Sprintf("failed to load extension %d", id), err)
	}

	dir := exttypes.InstalledDir(*rec, mgr.opts.Roots)
	m, err := mgr.loader.Load(dir)
	if err != nil {
		mgr.logger.Warn("installed manifest unavailable, using registry record", "dir", dir, "error", err)
		if m, err = manifestFromRecord(rec); err != nil {
			return nil, err
		}
	}

	strategy, err := mgr.strategies(rec.Type, mgr.store)
	if err != nil {
		return nil, err
	}

	a := installer.New(strategy, m, mgr.deps(dir), installer.Options{Source: dir, Roots: mgr.opts.Roots})
	ok, err := a.Uninstall(ctx, id)
	res := resultOf(a)
	res.ExtensionID = id
	res.Success = ok
	return res, err
}

// Resolve turns a numeric ID or an element name into an extension ID.
func (mgr *Manager) Resolve(ctx context.Context, ref string) (int64, error) {
	ref = strings.TrimSpace(ref)
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		return id, nil
	}

	records, err := mgr.store.List(ctx)
	if err != nil {
		return 0, kerrors.RegistryFailure("failed to list extensions", err)
	}
	var matches []registry.Record
	for _, r := range records {
		if r.Element == ref || (r.Type == exttypes.TypeComponent && r.Element == exttypes.ComponentElement(ref)) {
			matches = append(matches, r)
		}
	}

	switch len(matches) {
	case 0:
		return 0, kerrors.NotFound(fmt.Sprintf("no installed extension named %q", ref))
	case 1:
		return matches[0].ID, nil
	default:
		ids := make([]string, len(matches))
		for i, r := range matches {
			ids[i] = fmt.Sprintf("%d (%s)", r.ID, r.Type)
		}
		return 0, fmt.Errorf("%q matches several extensions: %s; use the numeric ID", ref, strings.Join(ids, ", "))
	}
}

// List returns every installed extension.
func (mgr *Manager) List(ctx context.Context) ([]Entry, error) {
	records, err := mgr.store.List(ctx)
	if err != nil {
		return nil, kerrors.RegistryFailure("failed to list extensions", err)
	}
	out := make([]Entry, 0, len(records))
	for _, r := range records {
		cache := gjson.Parse(r.ManifestCache)
		out = append(out, Entry{
			Record:      r,
			Version:     cache.Get("version").String(),
			Description: cache.Get("description").String(),
			Author:      cache.Get("author").String(),
		})
	}
	return out, nil
}

// Refresh re-reads the installed manifest of id and rewrites the cached
// snapshot in its record.
func (mgr *Manager) Refresh(ctx context.Context, id int64) error {
	rec, err := mgr.store.Load(ctx, id)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			return kerrors.NotFound(fmt.Sprintf("extension %d is not installed", id))
		}
		return kerrors.RegistryFailure(fmt.Sprintf("failed to load extension %d", id), err)
	}

	dir := exttypes.InstalledDir(*rec, mgr.opts.Roots)
	m, err := mgr.loader.Load(dir)
	if err != nil {
		return fmt.Errorf("failed to load installed manifest from %q: %w", dir, err)
	}
	cache, err := m.CacheJSON()
	if err != nil {
		return err
	}

	rec.Name = m.Name()
	rec.ManifestCache = cache
	if _, err := mgr.store.Store(ctx, rec); err != nil {
		return kerrors.RegistryFailure(fmt.Sprintf("failed to update extension %d", id), err)
	}
	return nil
}

func (mgr *Manager) deps(source string) installer.Deps {
	resolvers := hooks.Chain{}
	if mgr.opts.Hooks != nil {
		resolvers = append(resolvers, mgr.opts.Hooks)
	}
	resolvers = append(resolvers, hooks.NewScriptResolver(mgr.opts.HookTimeout))

	return installer.Deps{
		Registry:   mgr.store,
		Filesystem: mgr.fs,
		Migrator:   schema.NewMigrator(mgr.store, mgr.store, source, mgr.logger),
		Hooks:      resolvers,
		Logger:     mgr.logger,
	}
}

func resultOf(a *installer.Adapter) *Result {
	return &Result{
		RunID:     a.RunID(),
		Element:   a.Element(),
		Type:      a.Manifest().Type(),
		Route:     a.CurrentRoute(),
		Forwarded: a.Forwarded(),
		Message:   a.Message(),
		Warnings:  a.Diagnostics(),
	}
}

// manifestFromRecord rebuilds the minimal manifest needed to uninstall rec.
func manifestFromRecord(rec *registry.Record) (*manifest.Manifest, error) {
	doc := manifest.Document{
		Name:    rec.Name,
		Type:    rec.Type,
		Element: rec.Element,
		Group:   rec.Folder,
		Version: gjson.Get(rec.ManifestCache, "version").String(),
	}
	if rec.Type == exttypes.TypeComponent {
		doc.Administration = &manifest.Administration{}
	}
	return manifest.New(doc, "")
}
