package main

import (
	"context"
	"fmt"
	"os"

	"github.com/indaco/kiln/internal/cli"
	"github.com/indaco/kiln/internal/config"
)

func main() {
	if err := runCLI(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// runCLI loads the configuration and runs the CLI with args.
func runCLI(args []string) error {
	cfg, err := config.LoadConfigFn()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg == nil {
		cfg = config.Default()
	}
	return cli.New(cfg).Run(context.Background(), args)
}
