package extension

import (
	"context"
	"fmt"

	"github.com/indaco/kiln/internal/config"
	"github.com/indaco/kiln/internal/extensionmgr"
	"github.com/indaco/kiln/internal/installer"
	"github.com/indaco/kiln/internal/printer"
	"github.com/indaco/kiln/internal/tui"
	"github.com/urfave/cli/v3"
)

// installCmd returns the "install" subcommand.
func installCmd(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "install",
		Usage: "Install an extension from a local directory or a git repository",
		Description: `Install the extension whose manifest (extension.yaml, extension.yml or
extension.toml) is in the given directory or repository.

An extension already present on disk is updated instead when --overwrite
or --upgrade is given, or when its manifest has an update section.

Supported URL formats (any git-accessible host):
  - https://github.com/user/repo
  - github.com/user/repo@v1.0.0 (tag or branch)
  - github.com/user/repo/path/to/extension@v2.0.0 (subdirectory)

Examples:
  kiln extension install --path ./com_demo
  kiln extension install --url github.com/acme/kiln-extensions/greeter@v1.2.0
  kiln extension install --path ./com_demo --overwrite`,
		MutuallyExclusiveFlags: []cli.MutuallyExclusiveFlags{
			{
				Flags: [][]cli.Flag{
					{
						&cli.StringFlag{Name: "url", Usage: "Git URL to clone"},
						&cli.StringFlag{Name: "path", Usage: "Local directory holding the manifest"},
					},
				},
			},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "overwrite", Usage: "Replace an extension already on disk"},
			&cli.BoolFlag{Name: "upgrade", Usage: "Treat an extension already on disk as an update"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runExtensionInstall(ctx, cmd, cfg)
		},
	}
}

func runExtensionInstall(ctx context.Context, cmd *cli.Command, cfg *config.Config) error {
	localPath := cmd.String("path")
	urlStr := cmd.String("url")
	if localPath == "" && urlStr == "" {
		return cli.Exit("missing --path or --url for extension installation", 1)
	}
	if localPath != "" && extensionmgr.IsURL(localPath) {
		return cli.Exit("URL detected in --path flag. Please use --url flag for remote installations.", 1)
	}

	flags := extensionmgr.InstallFlags{
		Overwrite: cmd.Bool("overwrite"),
		Upgrade:   cmd.Bool("upgrade"),
	}

	return withManager(cfg, func(mgr *extensionmgr.Manager) error {
		var res *extensionmgr.Result
		err := tui.RunWithSpinner(ctx, "Installing extension...", func(ctx context.Context) error {
			var err error
			if urlStr != "" {
				res, err = mgr.InstallURL(ctx, urlStr, flags)
			} else {
				res, err = mgr.Install(ctx, localPath, flags)
			}
			return err
		})
		if err != nil {
			printRollback(res)
			return failure("Install", err)
		}

		printWarnings(res)
		verb := "installed"
		if res.Route == installer.RouteUpdate {
			verb = "updated"
		}
		printer.PrintSuccess(fmt.Sprintf("Extension %q %s (id %d).", res.Element, verb, res.ExtensionID))
		return nil
	})
}

// updateCmd returns the "update" subcommand.
func updateCmd(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "update",
		Usage:     "Update an installed extension from a local directory",
		ArgsUsage: "<path>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Usage: "Local directory holding the new manifest"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runExtensionUpdate(ctx, cmd, cfg)
		},
	}
}

func runExtensionUpdate(ctx context.Context, cmd *cli.Command, cfg *config.Config) error {
	path := cmd.String("path")
	if path == "" {
		path = cmd.Args().First()
	}
	if path == "" {
		return cli.Exit("missing extension directory for update", 1)
	}

	return withManager(cfg, func(mgr *extensionmgr.Manager) error {
		var res *extensionmgr.Result
		err := tui.RunWithSpinner(ctx, "Updating extension...", func(ctx context.Context) error {
			var err error
			res, err = mgr.Update(ctx, path)
			return err
		})
		if err != nil {
			printRollback(res)
			return failure("Update", err)
		}

		printWarnings(res)
		printer.PrintSuccess(fmt.Sprintf("Extension %q updated (id %d).", res.Element, res.ExtensionID))
		return nil
	})
}
