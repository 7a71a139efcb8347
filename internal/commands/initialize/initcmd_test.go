package initialize

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/indaco/kiln/internal/config"
	"github.com/indaco/kiln/internal/testutils"
	"github.com/urfave/cli/v3"
)

func TestGenerateConfigWithComments(t *testing.T) {
	cfg := &config.Config{SiteRoot: "/srv/site", MediaRoot: "/srv/site/media"}
	data, err := GenerateConfigWithComments(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(string(data), "# kiln configuration file") {
		t.Error("expected header comment")
	}

	path := filepath.Join(t.TempDir(), config.DefaultConfigFile)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
	got, err := config.ReadFile(path)
	if err != nil {
		t.Fatalf("generated config does not load: %v", err)
	}
	if got.SiteRoot != cfg.SiteRoot || got.MediaRoot != cfg.MediaRoot || got.Database != "" {
		t.Errorf("round trip = %+v", got)
	}
}

/* ------------------------------------------------------------------------- */
/* INIT COMMAND                                                              */
/* ------------------------------------------------------------------------- */

func TestCLI_InitCommand(t *testing.T) {
	tmp := t.TempDir()
	appCli := testutils.BuildCLIForTests([]*cli.Command{Run()})

	output, err := testutils.CaptureStdout(func() {
		testutils.RunCLITest(t, appCli, []string{"kiln", "init", "--site-root", "www"}, tmp)
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(output, "Wrote .kiln.yaml") || !strings.Contains(output, "Registry ready") {
		t.Errorf("unexpected output:\n%s", output)
	}

	for _, p := range []string{
		".kiln.yaml",
		filepath.Join("www", "administrator"),
		filepath.Join("www", ".kiln", "kiln.db"),
	} {
		if _, err := os.Stat(filepath.Join(tmp, p)); err != nil {
			t.Errorf("expected %s to exist: %v", p, err)
		}
	}
}

func TestCLI_InitCommand_ExistingConfig(t *testing.T) {
	tmp := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmp, ".kiln.yaml"), []byte("site_root: old\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	appCli := testutils.BuildCLIForTests([]*cli.Command{Run()})

	err := testutils.RunCLITestAllowError(t, appCli, []string{"kiln", "init"}, tmp)
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("expected an already-exists error, got %v", err)
	}

	if _, err := testutils.CaptureStdout(func() {
		testutils.RunCLITest(t, appCli, []string{"kiln", "init", "--force", "--site-root", "new"}, tmp)
	}); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.ReadFile(filepath.Join(tmp, ".kiln.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.SiteRoot != "new" {
		t.Errorf("site_root = %q, want new", cfg.SiteRoot)
	}
}
