package hooks

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/indaco/kiln/internal/manifest"
)

func writeScript(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0755); err != nil {
		t.Fatalf("failed to write script: %v", err)
	}
	return path
}

func TestScriptResolver_Resolve(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, "hooks.sh", "#!/bin/sh\necho '{\"success\": true}'\n")
	m := testManifest(t, manifest.Document{ScriptFile: "hooks.sh", Hooks: []string{"update", "postflight"}})

	r := NewScriptResolver(0)

	t.Run("found", func(t *testing.T) {
		hook, err := r.Resolve(context.Background(), Request{ScriptPath: script, Manifest: m})
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if !supports(hook, Update) || !supports(hook, Postflight) {
			t.Error("declared hooks should be supported")
		}
		if supports(hook, Install) {
			t.Error("undeclared hooks should not be supported")
		}
	})

	t.Run("no script", func(t *testing.T) {
		if _, err := r.Resolve(context.Background(), Request{}); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := r.Resolve(context.Background(), Request{ScriptPath: filepath.Join(dir, "missing.sh")})
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestRunner_LoadsScriptRelativeToSource(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "hooks.sh", "#!/bin/sh\necho '{\"success\": true, \"message\": \"hello\"}'\n")
	m := testManifest(t, manifest.Document{ScriptFile: "hooks.sh", Hooks: []string{"postflight"}})

	r := NewRunner(NewScriptResolver(10*time.Second), nil)
	if err := r.Load(context.Background(), stubContext{route: "install", m: m, source: dir}); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !r.Has(Postflight) {
		t.Fatal("script should offer postflight")
	}

	out, err := r.Invoke(context.Background(), Postflight, stubContext{route: "install", m: m})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if out.Message != "hello" || r.Message() != "hello" {
		t.Errorf("message = %q / %q, want hello", out.Message, r.Message())
	}
}

func TestScript_Execute(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name        string
		content     string
		wantErr     bool
		wantSuccess bool
	}{
		{
			name:        "success",
			content:     "#!/bin/sh\necho '{\"success\": true, \"message\": \"ok\"}'\n",
			wantSuccess: true,
		},
		{
			name:    "reported failure",
			content: "#!/bin/sh\necho '{\"success\": false, \"message\": \"unsupported database\"}'\n",
		},
		{
			name:        "echoes input hook",
			content:     "#!/bin/sh\nread input\ncase \"$input\" in *'\"hook\":\"install\"'*) echo '{\"success\": true}' ;; *) echo '{\"success\": false}' ;; esac\n",
			wantSuccess: true,
		},
		{
			name:    "empty output",
			content: "#!/bin/sh\necho \"\"\n",
			wantErr: true,
		},
		{
			name:    "invalid JSON",
			content: "#!/bin/sh\necho \"not valid json\"\n",
			wantErr: true,
		},
		{
			name:    "null JSON",
			content: "#!/bin/sh\necho 'null'\n",
			wantErr: true,
		},
		{
			name:    "non-zero exit",
			content: "#!/bin/sh\necho \"boom\" >&2\nexit 3\n",
			wantErr: true,
		},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeScript(t, dir, "script"+string(rune('a'+i))+".sh", tt.content)
			s := &Script{Path: path, Hooks: []string{"install"}}

			res, err := s.Execute(context.Background(), &ScriptInput{Hook: "install", Route: "install", Element: "demo"})
			if (err != nil) != tt.wantErr {
				t.Fatalf("Execute() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && res.Success != tt.wantSuccess {
				t.Errorf("Success = %v, want %v", res.Success, tt.wantSuccess)
			}
		})
	}
}

func TestScript_Timeout(t *testing.T) {
	dir := t.TempDir()
	path := writeScript(t, dir, "slow.sh", `#!/bin/sh
trap 'exit 124' TERM INT
i=0
while [ $i -lt 100 ]; do
    sleep 0.1
    i=$((i+1))
done
echo '{"success": true}'
`)

	s := &Script{Path: path, Hooks: []string{"install"}, Timeout: 500 * time.Millisecond}

	start := time.Now()
	_, err := s.Execute(context.Background(), &ScriptInput{Hook: "install"})
	if err == nil {
		t.Fatal("expected timeout error, got nil")
	}
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Errorf("execution took too long (%v), timeout may not be working", elapsed)
	}
}
