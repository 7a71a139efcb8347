// Package doctor implements "kiln doctor", which checks the configuration
// and the environment installs run in.
package doctor

import (
	"context"
	"fmt"
	"os"

	"github.com/indaco/kiln/internal/config"
	"github.com/indaco/kiln/internal/extensionmgr"
	"github.com/indaco/kiln/internal/printer"
	"github.com/indaco/kiln/internal/store"
	"github.com/indaco/kiln/internal/tui"
	"github.com/urfave/cli/v3"
)

// gitCheckFn reports whether git is usable; tests may replace it.
var gitCheckFn = extensionmgr.ValidateGitAvailable

// Run returns the "doctor" command.
func Run(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "doctor",
		Usage: "Check the configuration, roots and registry database",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runDoctor(ctx, cfg)
		},
	}
}

func runDoctor(ctx context.Context, cfg *config.Config) error {
	configPath := os.Getenv("KILN_CONFIG")
	if configPath == "" {
		configPath = config.DefaultConfigFile
	}

	results, err := config.NewValidator(nil, cfg, configPath, "").Validate(ctx)
	if err != nil {
		return err
	}
	results = append(results, environmentChecks(ctx, cfg)...)

	for _, r := range results {
		printResult(r)
	}

	errs, warns := config.ErrorCount(results), config.WarningCount(results)
	fmt.Println()
	if config.HasErrors(results) {
		printer.PrintError(fmt.Sprintf("%d error(s), %d warning(s)", errs, warns))
		return cli.Exit("", 1)
	}
	printer.PrintSuccess(fmt.Sprintf("No errors, %d warning(s)", warns))
	return nil
}

// environmentChecks covers what the config validator cannot see: the
// theme name, git for URL installs and whether the registry opens.
func environmentChecks(ctx context.Context, cfg *config.Config) []config.ValidationResult {
	var out []config.ValidationResult

	if tui.IsValidTheme(cfg.GetTheme()) {
		out = append(out, config.ValidationResult{Category: "Theme", Passed: true, Message: cfg.GetTheme()})
	} else {
		out = append(out, config.ValidationResult{Category: "Theme", Passed: true, Warning: true,
			Message: fmt.Sprintf("unknown theme %q, the default is used", cfg.Theme)})
	}

	if err := gitCheckFn(ctx); err != nil {
		out = append(out, config.ValidationResult{Category: "Git", Passed: true, Warning: true,
			Message: "git not found; installing from URLs is unavailable"})
	} else {
		out = append(out, config.ValidationResult{Category: "Git", Passed: true, Message: "git is available"})
	}

	if _, err := os.Stat(cfg.DatabasePath()); err == nil {
		db, err := store.Open(cfg.DatabasePath())
		if err != nil {
			out = append(out, config.ValidationResult{Category: "Registry", Message: err.Error()})
			return out
		}
		defer db.Close()

		records, err := db.List(ctx)
		if err != nil {
			out = append(out, config.ValidationResult{Category: "Registry", Message: err.Error()})
			return out
		}
		out = append(out, config.ValidationResult{Category: "Registry", Passed: true,
			Message: fmt.Sprintf("%d extension(s) installed", len(records))})
	}
	return out
}

func printResult(r config.ValidationResult) {
	status := printer.StatusOK
	switch {
	case !r.Passed:
		status = printer.StatusFail
	case r.Warning:
		status = printer.StatusWarn
	}
	printer.PrintStatus(status, r.Category, r.Message)
}
