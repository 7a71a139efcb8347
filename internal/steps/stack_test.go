package steps

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"
)

func TestStack_RollbackIsLIFO(t *testing.T) {
	var s Stack
	s.Push(Step{Kind: KindFolder, Path: "/site/a"})
	s.Push(Step{Kind: KindExtension, ID: 7})
	s.Push(Step{Kind: KindMenu, ID: 7})

	var undone []string
	err := s.Rollback(context.Background(), UndoFunc(func(_ context.Context, step Step) error {
		undone = append(undone, step.String())
		return nil
	}), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"menu(7)", "extension(7)", "folder(/site/a)"}
	if !slices.Equal(undone, want) {
		t.Errorf("undo order = %v, want %v", undone, want)
	}
	if s.Len() != 0 {
		t.Errorf("stack should be empty after rollback, has %d", s.Len())
	}
}

func TestStack_RollbackContinuesAfterFailure(t *testing.T) {
	var s Stack
	s.Push(Step{Kind: KindFolder, Path: "/one"})
	s.Push(Step{Kind: KindFolder, Path: "/two"})
	s.Push(Step{Kind: KindFolder, Path: "/three"})

	var undone []string
	err := s.Rollback(context.Background(), UndoFunc(func(_ context.Context, step Step) error {
		undone = append(undone, step.Path)
		if step.Path == "/two" {
			return errors.New("permission denied")
		}
		return nil
	}), nil)

	if err == nil {
		t.Fatal("expected joined error, got nil")
	}
	if !strings.Contains(err.Error(), "folder(/two)") {
		t.Errorf("error should name the failed step: %v", err)
	}
	want := []string{"/three", "/two", "/one"}
	if !slices.Equal(undone, want) {
		t.Errorf("undo attempts = %v, want %v", undone, want)
	}
}

func TestStack_RollbackEmptyIsNoop(t *testing.T) {
	var s Stack
	called := false
	err := s.Rollback(context.Background(), UndoFunc(func(context.Context, Step) error {
		called = true
		return nil
	}), nil)
	if err != nil || called {
		t.Errorf("empty rollback: err=%v called=%v", err, called)
	}
}

func TestStack_StepsReturnsCopy(t *testing.T) {
	var s Stack
	s.Push(Step{Kind: KindSchema, ID: 1})

	got := s.Steps()
	got[0].ID = 99

	if s.Steps()[0].ID != 1 {
		t.Error("Steps() should not expose internal storage")
	}
}
