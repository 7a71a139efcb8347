// Package extension implements the "kiln extension" commands that install,
// update, uninstall and list extensions.
package extension

import (
	"errors"
	"fmt"
	"os"
	"strings"

	kerrors "github.com/indaco/kiln/internal/errors"
	"github.com/indaco/kiln/internal/config"
	"github.com/indaco/kiln/internal/extensionmgr"
	"github.com/indaco/kiln/internal/installer"
	"github.com/indaco/kiln/internal/logging"
	"github.com/indaco/kiln/internal/printer"
	"github.com/indaco/kiln/internal/store"
	"github.com/urfave/cli/v3"
)

// Run returns the "extension" command.
func Run(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:    "extension",
		Aliases: []string{"ext"},
		Usage:   "Install, update, uninstall and list extensions",
		Commands: []*cli.Command{
			installCmd(cfg),
			updateCmd(cfg),
			uninstallCmd(cfg),
			listCmd(cfg),
			refreshCmd(cfg),
		},
	}
}

// openManagerFn opens the store named by cfg and returns a Manager on it
// with a function that closes the store. Tests may replace it.
var openManagerFn = openManager

func openManager(cfg *config.Config) (*extensionmgr.Manager, func() error, error) {
	timeout, err := cfg.HookTimeoutDuration()
	if err != nil {
		return nil, nil, err
	}

	db, err := store.Open(cfg.DatabasePath())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database %q: %w", cfg.DatabasePath(), err)
	}

	mgr := extensionmgr.NewDefaultManager(db, extensionmgr.Options{
		Roots: installer.Roots{
			Site:  cfg.SiteRoot,
			Admin: cfg.AdminPath(),
			Media: cfg.MediaRoot,
		},
		HookTimeout: timeout,
		Logger:      logging.New(os.Stderr, cfg.LogLevel(), cfg.LogFormat()),
	})
	return mgr, db.Close, nil
}

// withManager runs fn against a freshly opened Manager.
func withManager(cfg *config.Config, fn func(mgr *extensionmgr.Manager) error) error {
	mgr, closeFn, err := openManagerFn(cfg)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
	}
	defer func() {
		if err := closeFn(); err != nil {
			printer.PrintWarning(fmt.Sprintf("failed to close database: %v", err))
		}
	}()
	return fn(mgr)
}

// suggester is implemented by errors that know how the user can fix them.
type suggester interface {
	Suggestion() string
}

// failure prints err, with its suggestion when it has one, and returns the
// exit error for the command.
func failure(action string, err error) error {
	msg := fmt.Sprintf("%s failed: %v", action, err)
	if kind := kerrors.KindOf(err); kind != kerrors.KindUnknown {
		msg = fmt.Sprintf("%s failed (%s): %v", action, kind, err)
	}
	printer.PrintError(msg)

	var s suggester
	if errors.As(err, &s) {
		if text := strings.TrimSpace(s.Suggestion()); text != "" {
			printer.PrintFaint(text)
		}
	}
	return cli.Exit("", 1)
}

// printWarnings lists the non-fatal problems of a run.
func printWarnings(res *extensionmgr.Result) {
	for _, d := range res.Warnings {
		printer.PrintWarning(fmt.Sprintf("warning [%s]: %v", d.Phase, d.Err))
	}
	if res.Message != "" {
		printer.PrintFaint(res.Message)
	}
}

// printRollback reports what happened to the partial work of a failed run.
func printRollback(res *extensionmgr.Result) {
	if res == nil || !res.RolledBack {
		return
	}
	if res.RollbackErr != nil {
		printer.PrintWarning(fmt.Sprintf("Rollback incomplete: %v", res.RollbackErr))
		return
	}
	printer.PrintInfo("Partial changes were rolled back.")
}
