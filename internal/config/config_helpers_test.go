package config

import (
	"os"
	"path/filepath"
	"testing"
)

/* ------------------------------------------------------------------------- */
/* HELPERS                                                                   */
/* ------------------------------------------------------------------------- */

// runInTempDir runs fn with the working directory set to the directory
// holding tmpPath.
func runInTempDir(t *testing.T, tmpPath string, fn func()) {
	t.Helper()
	dir := filepath.Dir(tmpPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("failed to create %s: %v", dir, err)
	}
	t.Chdir(dir)
	fn()
}

func checkError(t *testing.T, err error, wantErr bool) {
	t.Helper()
	if (err != nil) != wantErr {
		t.Fatalf("expected err=%v, got err=%v", wantErr, err)
	}
}

func checkConfigNil(t *testing.T, cfg *Config, wantNil bool) {
	t.Helper()
	if wantNil && cfg != nil {
		t.Errorf("expected nil config, got %+v", cfg)
	}
	if !wantNil && cfg == nil {
		t.Fatal("expected non-nil config, got nil")
	}
}

func checkSiteRoot(t *testing.T, cfg *Config, want string) {
	t.Helper()
	if cfg.SiteRoot != want {
		t.Errorf("expected site_root %q, got %q", want, cfg.SiteRoot)
	}
}
