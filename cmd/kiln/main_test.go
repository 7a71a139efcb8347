package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunCLI_InvalidConfig(t *testing.T) {
	tmp := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmp, ".kiln.yaml"), []byte("site_root: .\nunknown: 1\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Chdir(tmp)

	err := runCLI([]string{"kiln", "--help"})
	if err == nil || !strings.Contains(err.Error(), "failed to load configuration") {
		t.Fatalf("expected a configuration error, got %v", err)
	}
}

func TestRunCLI_InitThenList(t *testing.T) {
	tmp := t.TempDir()
	t.Chdir(tmp)

	if err := runCLI([]string{"kiln", "--no-color", "init", "--site-root", "site"}); err != nil {
		t.Fatalf("init: %v", err)
	}
	if _, err := os.Stat(filepath.Join(tmp, "site", ".kiln", "kiln.db")); err != nil {
		t.Fatalf("database not created: %v", err)
	}
	if err := runCLI([]string{"kiln", "extension", "list"}); err != nil {
		t.Fatalf("list: %v", err)
	}
}
