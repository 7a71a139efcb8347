// Package initialize implements "kiln init", which writes a starter
// .kiln.yaml and creates the registry database.
package initialize

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/indaco/kiln/internal/config"
	"github.com/indaco/kiln/internal/core"
	"github.com/indaco/kiln/internal/printer"
	"github.com/indaco/kiln/internal/store"
	"github.com/urfave/cli/v3"
)

// Run returns the "init" command.
func Run() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Create .kiln.yaml and the extension registry",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "site-root", Usage: "Site root directory", Value: "."},
			&cli.StringFlag{Name: "admin-root", Usage: "Administrator root directory (default: <site-root>/administrator)"},
			&cli.StringFlag{Name: "media-root", Usage: "Media root directory"},
			&cli.StringFlag{Name: "database", Usage: "Registry database (default: <site-root>/.kiln/kiln.db)"},
			&cli.StringFlag{Name: "config", Usage: "Config file to write", Value: config.DefaultConfigFile},
			&cli.BoolFlag{Name: "force", Usage: "Overwrite an existing config file"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runInit(cmd)
		},
	}
}

func runInit(cmd *cli.Command) error {
	path := cmd.String("config")
	if _, err := os.Stat(path); err == nil && !cmd.Bool("force") {
		return cli.Exit(fmt.Sprintf("%s already exists (use --force to overwrite)", path), 1)
	}

	cfg := &config.Config{
		SiteRoot:  cmd.String("site-root"),
		AdminRoot: cmd.String("admin-root"),
		MediaRoot: cmd.String("media-root"),
		Database:  cmd.String("database"),
	}

	data, err := GenerateConfigWithComments(cfg)
	if err != nil {
		return err
	}
	if err := config.NewConfigSaver(nil, nil, nil).WriteTo(data, path); err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
	}
	printer.PrintSuccess(fmt.Sprintf("Wrote %s", path))

	for _, dir := range []string{cfg.SiteRoot, cfg.AdminPath()} {
		if err := os.MkdirAll(dir, core.PermDir); err != nil {
			return cli.Exit(fmt.Sprintf("failed to create %s: %v", dir, err), 1)
		}
	}

	db, err := store.Open(cfg.DatabasePath())
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
	}
	if err := db.Close(); err != nil {
		return err
	}
	printer.PrintSuccess(fmt.Sprintf("Registry ready at %s", filepath.Clean(cfg.DatabasePath())))
	return nil
}
