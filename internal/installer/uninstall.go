package installer

import (
	"context"
	"errors"
	"fmt"

	kerrors "github.com/indaco/kiln/internal/errors"
	"github.com/indaco/kiln/internal/hooks"
	"github.com/indaco/kiln/internal/registry"
)

// Uninstall removes the extension with the given ID.
//
// An unknown ID or a protected extension aborts before anything is
// removed. After that every sub-step runs even when an earlier one failed;
// failures are recorded as diagnostics and reported through the returned
// flag.
func (a *Adapter) Uninstall(ctx context.Context, id int64) (bool, error) {
	a.route = RouteUninstall
	a.logger.Info("starting run", "route", a.Route(), "extension_id", id)

	rec, err := a.deps.Registry.Load(ctx, id)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			return false, kerrors.NotFound(fmt.Sprintf("extension %d is not installed", id)).WithPhase(PhaseUninstall)
		}
		return false, kerrors.RegistryFailure(fmt.Sprintf("failed to load extension %d", id), err).WithPhase(PhaseUninstall)
	}
	if rec.Protected {
		return false, kerrors.PolicyViolation(fmt.Sprintf("extension %s is protected and cannot be removed", rec.Element)).WithPhase(PhaseUninstall)
	}
	a.existing = rec
	a.extensionID = id

	ok := true
	fail := func(err error) {
		ok = false
		a.Warn(PhaseUninstall, err)
	}

	target, err := a.strategy.Setup(a)
	if err != nil {
		fail(classify(err, kerrors.KindManifestInvalid, "cannot resolve extension paths"))
	} else {
		if target.Element == "" {
			target.Element = rec.Element
		}
		a.target = target
		a.targetReady = true
	}

	if err := a.runner.Load(ctx, a); err != nil {
		a.Warn(PhaseUninstall, err)
	}
	if out, _ := a.runner.Invoke(ctx, hooks.Uninstall, a); out.Failed {
		a.Warn(PhaseUninstall, fmt.Errorf("uninstall hook reported failure: %s", out.Message))
	}

	if err := a.deps.Migrator.RunInstallScripts(ctx, a.manifest.UninstallSQL()); err != nil {
		fail(err)
	}

	if err := a.strategy.Uninstall(ctx, a); err != nil {
		fail(classify(err, kerrors.KindFilesystemFailure, "type-specific cleanup failed"))
	}

	for _, root := range a.target.Roots {
		if err := a.deps.Filesystem.DeleteDirectory(root); err != nil {
			fail(kerrors.FilesystemFailure("failed to delete extension directory", root, err))
		}
	}

	if err := a.deps.Migrator.Remove(ctx, id); err != nil {
		fail(err)
	}

	if err := a.deps.Registry.Delete(ctx, id); err != nil {
		fail(kerrors.RegistryFailure(fmt.Sprintf("failed to delete extension %d", id), err))
	}

	a.message = a.runner.Message()
	a.logger.Info("run finished", "route", a.Route(), "success", ok, "warnings", len(a.diags))
	return ok, nil
}
