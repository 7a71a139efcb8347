package tui

import (
	"context"
	"errors"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"
)

// ErrNotInteractive is returned by prompts when no terminal is attached.
var ErrNotInteractive = errors.New("not an interactive terminal")

// Confirm asks a yes/no question. It fails with ErrNotInteractive when
// IsInteractive reports false.
func Confirm(title, description string) (bool, error) {
	if !IsInteractive() {
		return false, ErrNotInteractive
	}

	var confirmed bool
	field := huh.NewConfirm().
		Title(title).
		Affirmative("Yes").
		Negative("No").
		Value(&confirmed)
	if description != "" {
		field = field.Description(description)
	}

	if err := huh.NewForm(huh.NewGroup(field)).WithTheme(currentThemeOrDefault()).Run(); err != nil {
		return false, err
	}
	return confirmed, nil
}

// RunWithSpinner runs fn while a spinner titled title is shown. Outside an
// interactive terminal fn runs without the spinner.
func RunWithSpinner(ctx context.Context, title string, fn func(ctx context.Context) error) error {
	if !IsInteractive() {
		return fn(ctx)
	}

	var fnErr error
	err := spinner.New().
		Context(ctx).
		Title(title).
		ActionWithErr(func(ctx context.Context) error {
			fnErr = fn(ctx)
			return fnErr
		}).
		Run()
	if fnErr != nil {
		return fnErr
	}
	return err
}
