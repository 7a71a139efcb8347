package cli

import (
	"context"
	"fmt"

	"github.com/indaco/kiln/internal/commands/doctor"
	"github.com/indaco/kiln/internal/commands/extension"
	"github.com/indaco/kiln/internal/commands/initialize"
	"github.com/indaco/kiln/internal/config"
	"github.com/indaco/kiln/internal/printer"
	"github.com/indaco/kiln/internal/tui"
	"github.com/indaco/kiln/internal/version"
	urfavecli "github.com/urfave/cli/v3"
)

var noColorFlag bool

// New builds and returns the root CLI command,
// configuring all subcommands and flags for the kiln cli.
func New(cfg *config.Config) *urfavecli.Command {
	return &urfavecli.Command{
		Name:                  "kiln",
		Version:               fmt.Sprintf("v%s", version.GetVersion()),
		Usage:                 "Install, update and uninstall extensions from their manifests",
		EnableShellCompletion: true,
		Flags: []urfavecli.Flag{
			&urfavecli.StringFlag{
				Name:        "site-root",
				Aliases:     []string{"s"},
				Usage:       "Site root directory",
				Value:       cfg.SiteRoot,
				Destination: &cfg.SiteRoot,
				Sources:     urfavecli.EnvVars("KILN_SITE_ROOT"),
				Local:       true,
			},
			&urfavecli.BoolFlag{
				Name:        "no-color",
				Usage:       "Disable colored output",
				Destination: &noColorFlag,
			},
		},
		Before: func(ctx context.Context, cmd *urfavecli.Command) (context.Context, error) {
			printer.SetNoColor(noColorFlag)
			tui.SetTheme(cfg.Theme)
			return ctx, nil
		},
		Commands: []*urfavecli.Command{
			initialize.Run(),
			extension.Run(cfg),
			doctor.Run(cfg),
		},
	}
}
