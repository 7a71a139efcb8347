package installer

import (
	"context"
	"errors"
	"fmt"

	kerrors "github.com/indaco/kiln/internal/errors"
	"github.com/indaco/kiln/internal/hooks"
	"github.com/indaco/kiln/internal/logging"
	"github.com/indaco/kiln/internal/registry"
	"github.com/indaco/kiln/internal/steps"
)

// Install runs the install path and returns the extension ID. If the
// extension is already on disk, registered and an update is signalled, the
// run switches to the update path once.
func (a *Adapter) Install(ctx context.Context) (int64, error) {
	return a.run(ctx)
}

// Update runs the install path with overwrite and upgrade forced on. The
// route becomes update only for a registered extension found on disk; an
// unknown extension is installed.
func (a *Adapter) Update(ctx context.Context) (int64, error) {
	a.opts.Overwrite = true
	a.opts.Upgrade = true
	return a.run(ctx)
}

func (a *Adapter) run(ctx context.Context) (int64, error) {
	a.logger.Info("starting run", "route", a.Route())

	for _, phase := range []struct {
		name string
		fn   func(context.Context) error
	}{
		{PhasePrecheck, a.precheck},
		{PhaseExisting, a.checkExisting},
		{PhaseFilesystem, a.checkFilesystem},
		{PhaseHooks, a.preflight},
		{PhaseStaging, a.stage},
		{PhaseDatabase, a.runDatabase},
		{PhaseRegistry, a.writeRegistry},
		{PhaseFinalize, a.finalize},
		{PhaseRouteHook, a.routeHook},
		{PhasePostflight, a.postflight},
	} {
		logging.WithPhase(a.logger, phase.name).Debug("phase started", "route", a.Route())
		if err := phase.fn(ctx); err != nil {
			err = withPhase(err, phase.name)
			logging.WithPhase(a.logger, phase.name).Error("run aborted", "error", err, "steps", a.stack.Len())
			return 0, err
		}
	}

	a.logger.Info("run finished", "route", a.Route(), "extension_id", a.extensionID)
	return a.extensionID, nil
}

// Phase 1.
func (a *Adapter) precheck(context.Context) error {
	target, err := a.strategy.Setup(a)
	if err != nil {
		return classify(err, kerrors.KindManifestInvalid, "invalid manifest")
	}
	if target.Element == "" {
		target.Element = a.manifest.Element()
	}
	a.target = target
	a.targetReady = true
	return nil
}

// Phase 2.
func (a *Adapter) checkExisting(ctx context.Context) error {
	id, found, err := a.deps.Registry.Find(ctx, a.criteria())
	if err != nil {
		if errors.Is(err, registry.ErrInconsistent) {
			return kerrors.RegistryFailure("registry is inconsistent for this extension", err)
		}
		return kerrors.RegistryFailure("registry lookup failed", err)
	}
	if !found {
		return nil
	}

	rec, err := a.deps.Registry.Load(ctx, id)
	if err != nil {
		return kerrors.RegistryFailure(fmt.Sprintf("failed to load extension %d", id), err)
	}
	a.existing = rec
	a.extensionID = id
	return nil
}

// Phase 3.
func (a *Adapter) checkFilesystem(ctx context.Context) error {
	existing := a.existingRoot()
	if existing == "" {
		return nil
	}

	// The hook object takes part in update detection.
	if err := a.runner.Load(ctx, a); err != nil {
		return err
	}

	if !a.opts.Overwrite && !a.updateSignal() {
		return kerrors.FilesystemConflict(
			"extension already exists; use overwrite or upgrade to replace it", existing)
	}
	a.forward()
	return nil
}

// forward forces overwrite and upgrade and, when the extension has a
// registry record, switches the run to the update path. Files left on disk
// without a record are reinstalled on the install path so install SQL runs.
// The switch only ever happens once.
func (a *Adapter) forward() {
	if a.forwarded {
		return
	}
	a.opts.Overwrite = true
	a.opts.Upgrade = true

	log := logging.WithPhase(a.logger, PhaseFilesystem)
	if a.existing == nil {
		log.Info("files present without a registry record, reinstalling")
		return
	}
	a.forwarded = true
	a.route = RouteUpdate
	log.Info("extension present, switching to update")
}

func (a *Adapter) updateSignal() bool {
	return a.opts.Upgrade || a.runner.Has(hooks.Update) || a.manifest.HasUpdate()
}

func (a *Adapter) existingRoot() string {
	for _, root := range a.target.Roots {
		if a.deps.Filesystem.Exists(root) {
			return root
		}
	}
	return ""
}

// Phase 4.
func (a *Adapter) preflight(ctx context.Context) error {
	if err := a.runner.Load(ctx, a); err != nil {
		return err
	}
	_, err := a.runner.Invoke(ctx, hooks.Preflight, a)
	return err
}

// Phase 5.
func (a *Adapter) stage(ctx context.Context) error {
	if err := a.strategy.Stage(ctx, a); err != nil {
		return classify(err, kerrors.KindFilesystemFailure, "failed to stage files")
	}
	return nil
}

// Phase 6.
func (a *Adapter) runDatabase(ctx context.Context) error {
	if a.route == RouteInstall {
		if err := a.deps.Migrator.RunInstallScripts(ctx, a.manifest.InstallSQL()); err != nil {
			return classify(err, kerrors.KindSQLFailure, "install SQL failed")
		}
		return nil
	}

	if sql := a.manifest.UpdateSQL(); len(sql) > 0 {
		if err := a.deps.Migrator.RunInstallScripts(ctx, sql); err != nil {
			a.Warn(PhaseDatabase, err)
		}
	}

	// Without a record there is no stored version to migrate from; the
	// version is initialised after the registry write instead.
	if a.existing == nil || !a.manifest.HasUpdate() {
		return nil
	}
	scripts, err := a.deps.Migrator.Scripts(a.manifest)
	if err != nil {
		a.Warn(PhaseDatabase, err)
		return nil
	}
	if err := a.deps.Migrator.RunUpdateScripts(ctx, scripts, a.extensionID); err != nil {
		a.Warn(PhaseDatabase, err)
	}
	return nil
}

// Phase 7.
func (a *Adapter) writeRegistry(ctx context.Context) error {
	cache, err := a.manifest.CacheJSON()
	if err != nil {
		return kerrors.RegistryFailure("failed to build manifest cache", err)
	}

	var rec registry.Record
	if a.existing != nil {
		rec = *a.existing
	} else {
		params, err := a.manifest.ParamsJSON()
		if err != nil {
			return kerrors.ManifestInvalid(fmt.Sprintf("params cannot be encoded: %v", err))
		}
		rec = registry.Record{Enabled: true, Params: params}
	}
	rec.Name = a.manifest.Name()
	rec.Type = a.manifest.Type()
	rec.Element = a.target.Element
	rec.Folder = a.target.Folder
	rec.Client = a.target.Client
	rec.ManifestCache = cache

	inserted, err := a.deps.Registry.Store(ctx, &rec)
	if err != nil {
		return kerrors.RegistryFailure("failed to write registry record", err)
	}
	a.extensionID = rec.ID
	if !inserted {
		return nil
	}
	a.PushStep(steps.Step{Kind: steps.KindExtension, ID: rec.ID})

	if !a.manifest.HasUpdate() {
		return nil
	}
	scripts, err := a.deps.Migrator.Scripts(a.manifest)
	if err != nil {
		return classify(err, kerrors.KindSQLFailure, "failed to collect update scripts")
	}
	version, err := a.deps.Migrator.InitVersion(ctx, scripts, rec.ID)
	if err != nil {
		return classify(err, kerrors.KindSQLFailure, "failed to initialise schema version")
	}
	if version != "" {
		a.PushStep(steps.Step{Kind: steps.KindSchema, ID: rec.ID})
	}
	return nil
}

// Phase 8.
func (a *Adapter) finalize(ctx context.Context) error {
	if err := a.strategy.Finalize(ctx, a); err != nil {
		a.Warn(PhaseFinalize, err)
	}
	return nil
}

// Phase 9.
func (a *Adapter) routeHook(ctx context.Context) error {
	name := hooks.Install
	if a.route == RouteUpdate {
		name = hooks.Update
	}
	_, err := a.runner.Invoke(ctx, name, a)
	return err
}

// Phase 10.
func (a *Adapter) postflight(ctx context.Context) error {
	out, _ := a.runner.Invoke(ctx, hooks.Postflight, a)
	if out.Failed {
		a.Warn(PhasePostflight, fmt.Errorf("postflight hook reported failure: %s", out.Message))
	}
	a.message = a.runner.Message()
	return nil
}

func (a *Adapter) criteria() registry.Criteria {
	return registry.Criteria{
		Element: a.target.Element,
		Type:    a.manifest.Type(),
		Client:  a.target.Client,
		Folder:  a.target.Folder,
	}
}

// classify returns err unchanged when it already carries a kind, and wraps
// it in kind otherwise.
func classify(err error, kind kerrors.Kind, msg string) error {
	if kerrors.KindOf(err) != kerrors.KindUnknown {
		return err
	}
	return kerrors.NewInstallError(kind, msg, err)
}

func withPhase(err error, phase string) error {
	var ie *kerrors.InstallError
	if errors.As(err, &ie) && ie.Phase == "" {
		ie.WithPhase(phase)
	}
	return err
}
