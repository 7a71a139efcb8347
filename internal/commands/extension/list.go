package extension

import (
	"context"
	"fmt"
	"strconv"

	"github.com/indaco/kiln/internal/config"
	"github.com/indaco/kiln/internal/extensionmgr"
	"github.com/indaco/kiln/internal/printer"
	"github.com/urfave/cli/v3"
)

// listCmd returns the "list" subcommand.
func listCmd(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "List installed extensions",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runExtensionList(ctx, cfg)
		},
	}
}

func runExtensionList(ctx context.Context, cfg *config.Config) error {
	return withManager(cfg, func(mgr *extensionmgr.Manager) error {
		entries, err := mgr.List(ctx)
		if err != nil {
			return failure("List", err)
		}
		if len(entries) == 0 {
			fmt.Println("No extensions installed.")
			return nil
		}

		rows := make([][]string, 0, len(entries))
		for _, e := range entries {
			enabled := "yes"
			if !e.Enabled {
				enabled = "no"
			}
			rows = append(rows, []string{
				strconv.FormatInt(e.ID, 10),
				e.Name,
				e.Type,
				e.Element,
				e.Folder,
				e.Version,
				enabled,
			})
		}
		fmt.Println(printer.Table([]string{"ID", "Name", "Type", "Element", "Group", "Version", "Enabled"}, rows))
		return nil
	})
}

// refreshCmd returns the "refresh" subcommand.
func refreshCmd(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "refresh",
		Usage:     "Re-read an installed extension's manifest into the registry",
		ArgsUsage: "<id|element>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			ref := cmd.Args().First()
			if ref == "" {
				return fmt.Errorf("please provide the ID or element of the extension to refresh")
			}
			return withManager(cfg, func(mgr *extensionmgr.Manager) error {
				id, err := mgr.Resolve(ctx, ref)
				if err != nil {
					return failure("Refresh", err)
				}
				if err := mgr.Refresh(ctx, id); err != nil {
					return failure("Refresh", err)
				}
				printer.PrintSuccess(fmt.Sprintf("Manifest cache of extension %d refreshed.", id))
				return nil
			})
		},
	}
}
