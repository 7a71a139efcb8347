// Package testutils holds helpers shared by command and config tests.
package testutils

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/urfave/cli/v3"
)

// WriteTempConfig writes content as .kiln.yaml in a new temporary directory
// and returns the file path.
func WriteTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".kiln.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}
	return path
}

// CaptureStdout runs fn and returns what it wrote to os.Stdout.
func CaptureStdout(fn func()) (string, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return "", err
	}

	orig := os.Stdout
	os.Stdout = w

	done := make(chan struct{})
	var buf bytes.Buffer
	var copyErr error
	go func() {
		_, copyErr = io.Copy(&buf, r)
		close(done)
	}()

	func() {
		defer func() { os.Stdout = orig }()
		fn()
	}()

	_ = w.Close()
	<-done
	_ = r.Close()
	return buf.String(), copyErr
}

// BuildCLIForTests wraps commands in a root "kiln" command. Exit errors are
// returned to the caller instead of terminating the test binary.
func BuildCLIForTests(commands []*cli.Command) *cli.Command {
	return &cli.Command{
		Name:           "kiln",
		Commands:       commands,
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
	}
}

// RunCLITest runs app with args from workDir and fails the test on error.
func RunCLITest(t *testing.T, app *cli.Command, args []string, workDir string) {
	t.Helper()
	if err := RunCLITestAllowError(t, app, args, workDir); err != nil {
		t.Fatalf("CLI run failed: %v", err)
	}
}

// RunCLITestAllowError runs app with args from workDir and returns its error.
func RunCLITestAllowError(t *testing.T, app *cli.Command, args []string, workDir string) error {
	t.Helper()
	if workDir != "" {
		t.Chdir(workDir)
	}
	return app.Run(context.Background(), args)
}
