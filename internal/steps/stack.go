// Package steps records the compensable actions of a lifecycle run and
// replays them in reverse when the caller decides to unwind.
package steps

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Kind identifies what a step did and therefore how to undo it.
type Kind string

const (
	// KindFolder: a directory was created; undo deletes it.
	KindFolder Kind = "folder"
	// KindExtension: a registry row was inserted; undo deletes it by ID.
	KindExtension Kind = "extension"
	// KindSchema: a schema-version row was inserted; undo deletes it by extension ID.
	KindSchema Kind = "schema"
	// KindMenu: menu entries were created for a component ID; undo removes them.
	KindMenu Kind = "menu"
	// KindMenuReplaced: a component's menu entries were deleted to be rebuilt;
	// Data holds the deleted entries and undo restores them.
	KindMenuReplaced Kind = "menu-replaced"
)

// Step carries exactly what is needed to undo one action.
type Step struct {
	Kind Kind
	Path string
	ID   int64
	// Data is state the undo needs beyond Path and ID, such as deleted rows.
	Data any
}

func (s Step) String() string {
	if s.Path != "" {
		return fmt.Sprintf("%s(%s)", s.Kind, s.Path)
	}
	return fmt.Sprintf("%s(%d)", s.Kind, s.ID)
}

// Undoer reverses a single step.
type Undoer interface {
	Undo(ctx context.Context, step Step) error
}

// UndoFunc adapts a function to Undoer.
type UndoFunc func(ctx context.Context, step Step) error

// Undo calls f.
func (f UndoFunc) Undo(ctx context.Context, step Step) error { return f(ctx, step) }

// Stack is an append-only log of actions that already succeeded.
// The zero value is ready to use. A Stack belongs to a single run.
type Stack struct {
	steps []Step
}

// Push records a step. Call it only after the action has durably succeeded.
func (s *Stack) Push(step Step) {
	s.steps = append(s.steps, step)
}

// Len returns the number of recorded steps.
func (s *Stack) Len() int { return len(s.steps) }

// Steps returns a copy of the recorded steps in push order.
func (s *Stack) Steps() []Step {
	return append([]Step(nil), s.steps...)
}

// Rollback pops every step in reverse order and asks u to undo it.
// A failed undo is logged and replay continues; the joined failures are
// returned. The stack is empty afterwards. Rolling back an empty stack is a
// no-op.
func (s *Stack) Rollback(ctx context.Context, u Undoer, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	var errs []error
	for len(s.steps) > 0 {
		last := len(s.steps) - 1
		step := s.steps[last]
		s.steps = s.steps[:last]

		if err := u.Undo(ctx, step); err != nil {
			logger.Warn("rollback step failed", "step", step.String(), "error", err)
			errs = append(errs, fmt.Errorf("undo %s: %w", step, err))
			continue
		}
		logger.Debug("rolled back step", "step", step.String())
	}
	return errors.Join(errs...)
}
