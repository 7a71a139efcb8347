package extension

import (
	"context"
	"errors"
	"fmt"

	"github.com/indaco/kiln/internal/config"
	"github.com/indaco/kiln/internal/extensionmgr"
	"github.com/indaco/kiln/internal/printer"
	"github.com/indaco/kiln/internal/tui"
	"github.com/urfave/cli/v3"
)

// confirmFn asks for consent before removing an extension; tests may replace it.
var confirmFn = tui.Confirm

// uninstallCmd returns the "uninstall" subcommand.
func uninstallCmd(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "uninstall",
		Aliases:   []string{"remove"},
		Usage:     "Uninstall an extension by ID or element",
		ArgsUsage: "<id|element>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "yes",
				Aliases: []string{"y"},
				Usage:   "Do not ask for confirmation",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runExtensionUninstall(ctx, cmd, cfg)
		},
	}
}

// runExtensionUninstall removes an installed extension. Failures of single
// removal steps are reported as warnings; the remaining steps still run.
func runExtensionUninstall(ctx context.Context, cmd *cli.Command, cfg *config.Config) error {
	ref := cmd.Args().First()
	if ref == "" {
		return fmt.Errorf("please provide the ID or element of the extension to uninstall")
	}

	return withManager(cfg, func(mgr *extensionmgr.Manager) error {
		id, err := mgr.Resolve(ctx, ref)
		if err != nil {
			return failure("Uninstall", err)
		}

		if !cmd.Bool("yes") {
			ok, err := confirmFn(fmt.Sprintf("Uninstall extension %q?", ref),
				"Its files, database tables and registry entry are removed.")
			switch {
			case errors.Is(err, tui.ErrNotInteractive):
				// Nobody to ask; scripted callers pass --yes or accept the default.
			case err != nil:
				return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
			case !ok:
				printer.PrintInfo("Uninstall cancelled.")
				return nil
			}
		}

		res, err := mgr.Uninstall(ctx, id)
		if err != nil {
			return failure("Uninstall", err)
		}

		printWarnings(res)
		if !res.Success {
			printer.PrintWarning(fmt.Sprintf("Extension %q uninstalled with errors; see warnings above.", res.Element))
			return cli.Exit("", 1)
		}
		printer.PrintSuccess(fmt.Sprintf("Extension %q uninstalled.", res.Element))
		return nil
	})
}
