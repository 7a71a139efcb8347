package cli

import (
	"context"
	"testing"

	"github.com/indaco/kiln/internal/config"
)

func TestNew_Commands(t *testing.T) {
	app := New(config.Default())

	want := map[string]bool{"init": false, "extension": false, "doctor": false}
	for _, c := range app.Commands {
		if _, ok := want[c.Name]; ok {
			want[c.Name] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("missing %q command", name)
		}
	}
}

func TestNew_SiteRootFlag(t *testing.T) {
	cfg := config.Default()
	app := New(cfg)

	if err := app.Run(context.Background(), []string{"kiln", "--site-root", "/srv/site"}); err != nil {
		t.Fatal(err)
	}
	if cfg.SiteRoot != "/srv/site" {
		t.Errorf("SiteRoot = %q, want /srv/site", cfg.SiteRoot)
	}
}
