package installer

import (
	"context"
	"fmt"

	"github.com/indaco/kiln/internal/logging"
	"github.com/indaco/kiln/internal/steps"
)

// Rollback undoes every recorded step in reverse order. It keeps going
// past failed undos and returns them joined. Only the caller invokes it,
// after a fatal error from Install or Update.
func (a *Adapter) Rollback(ctx context.Context) error {
	logger := logging.WithPhase(a.logger, PhaseRollback)
	logger.Info("rolling back", "steps", a.stack.Len())
	return a.stack.Rollback(ctx, steps.UndoFunc(a.undo), logger)
}

func (a *Adapter) undo(ctx context.Context, step steps.Step) error {
	switch step.Kind {
	case steps.KindFolder:
		return a.deps.Filesystem.DeleteDirectory(step.Path)
	case steps.KindExtension:
		return a.deps.Registry.Delete(ctx, step.ID)
	case steps.KindSchema:
		return a.deps.Migrator.Remove(ctx, step.ID)
	}
	if u, ok := a.strategy.(StepUndoer); ok {
		return u.UndoStep(ctx, a, step)
	}
	return fmt.Errorf("no undo for step kind %q", step.Kind)
}
