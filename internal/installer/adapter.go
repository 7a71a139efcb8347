// Package installer drives one extension through install, update or
// uninstall.
//
// An Adapter runs the lifecycle phases in a fixed order and records every
// compensable action on its step stack. Type-specific work (where files go,
// what else gets registered) is delegated to an injected Strategy. The
// Adapter never unwinds on its own: after a fatal error the caller decides
// whether to call Rollback.
package installer

import (
	"context"
	"log/slog"

	"github.com/indaco/kiln/internal/hooks"
	"github.com/indaco/kiln/internal/logging"
	"github.com/indaco/kiln/internal/manifest"
	"github.com/indaco/kiln/internal/registry"
	"github.com/indaco/kiln/internal/steps"
)

// Route is the path a run follows.
type Route string

const (
	RouteInstall   Route = "install"
	RouteUpdate    Route = "update"
	RouteUninstall Route = "uninstall"
)

// Phase names, used as the "phase" log attribute and on errors.
const (
	PhasePrecheck   = "precheck"
	PhaseExisting   = "existing"
	PhaseFilesystem = "filesystem"
	PhaseHooks      = "hooks"
	PhaseStaging    = "staging"
	PhaseDatabase   = "database"
	PhaseRegistry   = "registry"
	PhaseFinalize   = "finalize"
	PhaseRouteHook  = "route-hook"
	PhasePostflight = "postflight"
	PhaseUninstall  = "uninstall"
	PhaseRollback   = "rollback"
)

// Filesystem is what the adapter needs from the disk.
type Filesystem interface {
	Exists(path string) bool
	CreateDirectory(path string) error
	DeleteDirectory(path string) error
	CopyFiles(src, dst string, section *manifest.FilesSection) error
}

// Migrator applies extension SQL and tracks schema versions.
type Migrator interface {
	RunInstallScripts(ctx context.Context, paths []string) error
	RunUpdateScripts(ctx context.Context, scripts []manifest.SchemaScript, extensionID int64) error
	InitVersion(ctx context.Context, scripts []manifest.SchemaScript, extensionID int64) (string, error)
	Remove(ctx context.Context, extensionID int64) error
	Scripts(m *manifest.Manifest) ([]manifest.SchemaScript, error)
}

// Target is where an extension lives, as resolved by a Strategy.
type Target struct {
	// Element is the registry element, which may differ from the manifest's
	// (components are prefixed).
	Element string
	// Folder groups extensions of the same type, e.g. the plugin group.
	Folder string
	Client string
	// Roots are the directories the extension owns. They are created while
	// staging and deleted on uninstall.
	Roots []string
}

// Strategy implements the type-specific extension points.
type Strategy interface {
	// Setup resolves the target. A missing required manifest section is
	// reported as a ManifestInvalid error.
	Setup(a *Adapter) (Target, error)
	// Stage creates the roots (through Adapter.CreateRoot) and copies files.
	Stage(ctx context.Context, a *Adapter) error
	// Finalize performs bespoke registration after the registry write.
	// Errors are reported as warnings.
	Finalize(ctx context.Context, a *Adapter) error
	// Uninstall removes type-specific registrations before the roots are deleted.
	Uninstall(ctx context.Context, a *Adapter) error
}

// StepUndoer is implemented by strategies that push their own step kinds.
type StepUndoer interface {
	UndoStep(ctx context.Context, a *Adapter, step steps.Step) error
}

// Roots are the installation roots of the host.
type Roots struct {
	Site  string
	Admin string
	Media string
}

// Options control a single run.
type Options struct {
	Overwrite bool
	Upgrade   bool
	// Source is the directory the manifest was read from.
	Source string
	Roots  Roots
}

// Deps are the collaborators of a run.
type Deps struct {
	Registry   registry.Registry
	Filesystem Filesystem
	Migrator   Migrator
	// Hooks resolves the hook object; nil means no hooks.
	Hooks  hooks.Resolver
	Logger *slog.Logger
}

// Diagnostic is a non-fatal problem met during a run.
type Diagnostic struct {
	Phase string
	Err   error
}

// Adapter runs one lifecycle operation for one extension. It is not safe
// for concurrent use and should not be reused across runs.
type Adapter struct {
	strategy Strategy
	manifest *manifest.Manifest
	deps     Deps
	opts     Options
	logger   *slog.Logger
	runID    string

	route       Route
	forwarded   bool
	target      Target
	targetReady bool
	existing    *registry.Record
	extensionID int64

	stack   steps.Stack
	runner  *hooks.Runner
	diags   []Diagnostic
	message string
}

var (
	_ hooks.Context    = (*Adapter)(nil)
	_ hooks.ClassNamer = (*Adapter)(nil)
)

// New creates an Adapter for m.
func New(strategy Strategy, m *manifest.Manifest, deps Deps, opts Options) *Adapter {
	logger, runID := logging.WithRun(deps.Logger)
	logger = logger.With("element", m.Element(), "type", m.Type())
	return &Adapter{
		strategy: strategy,
		manifest: m,
		deps:     deps,
		opts:     opts,
		logger:   logger,
		runID:    runID,
		route:    RouteInstall,
		runner:   hooks.NewRunner(deps.Hooks, logger),
	}
}

// ScriptClassNamer is implemented by strategies whose hook objects are
// registered under a type-specific name.
type ScriptClassNamer interface {
	ScriptClassName(a *Adapter) string
}

// HookClassName returns the name the hook object is resolved under.
func (a *Adapter) HookClassName() string {
	if n, ok := a.strategy.(ScriptClassNamer); ok {
		return n.ScriptClassName(a)
	}
	return hooks.ClassName(a.Element())
}

// Manifest returns the manifest being processed.
func (a *Adapter) Manifest() *manifest.Manifest { return a.manifest }

// Element returns the registry element: the strategy's once the target is
// resolved, the manifest's before.
func (a *Adapter) Element() string {
	if a.targetReady && a.target.Element != "" {
		return a.target.Element
	}
	return a.manifest.Element()
}

// Route returns the current route.
func (a *Adapter) Route() string { return string(a.route) }

// CurrentRoute returns the current route as a Route.
func (a *Adapter) CurrentRoute() Route { return a.route }

// Forwarded reports whether an install was switched to the update path.
func (a *Adapter) Forwarded() bool { return a.forwarded }

// ExtensionID returns the registry ID, zero until known.
func (a *Adapter) ExtensionID() int64 { return a.extensionID }

// Source returns the install source directory.
func (a *Adapter) Source() string { return a.opts.Source }

// Options returns the effective options of the run.
func (a *Adapter) Options() Options { return a.opts }

// Target returns the resolved target.
func (a *Adapter) Target() Target { return a.target }

// Existing returns a copy of the record found before the run, or nil.
func (a *Adapter) Existing() *registry.Record {
	if a.existing == nil {
		return nil
	}
	rec := *a.existing
	return &rec
}

// Filesystem returns the filesystem collaborator.
func (a *Adapter) Filesystem() Filesystem { return a.deps.Filesystem }

// Logger returns the run logger.
func (a *Adapter) Logger() *slog.Logger { return a.logger }

// RunID identifies the run in logs.
func (a *Adapter) RunID() string { return a.runID }

// Steps returns the recorded steps in push order.
func (a *Adapter) Steps() []steps.Step { return a.stack.Steps() }

// Diagnostics returns the warnings recorded so far.
func (a *Adapter) Diagnostics() []Diagnostic {
	return append([]Diagnostic(nil), a.diags...)
}

// Message returns the hook messages, published after postflight or uninstall.
func (a *Adapter) Message() string { return a.message }

// PushStep records a compensable action that already succeeded.
func (a *Adapter) PushStep(step steps.Step) {
	a.logger.Debug("step recorded", "step", step.String())
	a.stack.Push(step)
}

// Warn records a non-fatal problem.
func (a *Adapter) Warn(phase string, err error) {
	if err == nil {
		return
	}
	logging.WithPhase(a.logger, phase).Warn("non-fatal failure", "error", err)
	a.diags = append(a.diags, Diagnostic{Phase: phase, Err: err})
}

// CreateRoot creates dir when it is missing and records a folder step for
// it. An existing directory is left alone and not recorded.
func (a *Adapter) CreateRoot(dir string) error {
	if a.deps.Filesystem.Exists(dir) {
		return nil
	}
	if err := a.deps.Filesystem.CreateDirectory(dir); err != nil {
		return err
	}
	a.PushStep(steps.Step{Kind: steps.KindFolder, Path: dir})
	return nil
}
