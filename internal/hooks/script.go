package hooks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// ScriptInput is written as JSON to a hook script's stdin.
type ScriptInput struct {
	Hook        string `json:"hook"`
	Route       string `json:"route"`
	Element     string `json:"element"`
	Name        string `json:"name"`
	Version     string `json:"version,omitempty"`
	ExtensionID int64  `json:"extension_id,omitempty"`
	Source      string `json:"source"`
}

// ScriptResolver resolves the manifest's scriptfile to an external
// executable hook. The script must answer on stdout with a JSON object
// {"success": bool, "message": string}.
type ScriptResolver struct {
	// Timeout bounds a single invocation; zero means no limit.
	Timeout time.Duration
}

// NewScriptResolver creates a ScriptResolver with the given per-call timeout.
func NewScriptResolver(timeout time.Duration) *ScriptResolver {
	return &ScriptResolver{Timeout: timeout}
}

// Resolve implements Resolver. A missing or unset script is ErrNotFound.
func (r *ScriptResolver) Resolve(_ context.Context, req Request) (any, error) {
	if req.ScriptPath == "" {
		return nil, ErrNotFound
	}
	info, err := os.Stat(req.ScriptPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to stat hook script %q: %w", req.ScriptPath, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("hook script %q is a directory", req.ScriptPath)
	}

	var declared []string
	if req.Manifest != nil {
		declared = req.Manifest.Hooks()
	}
	return &Script{Path: req.ScriptPath, Hooks: declared, Timeout: r.Timeout}, nil
}

// Script is a hook object backed by an executable. Only the hook points
// listed in Hooks are offered.
type Script struct {
	Path    string
	Hooks   []string
	Timeout time.Duration
}

// Supports implements CapabilityReporter.
func (s *Script) Supports(name Name) bool {
	return slices.Contains(s.Hooks, string(name))
}

func (s *Script) Preflight(ctx context.Context, _ string, rc Context) (Result, error) {
	return s.Execute(ctx, s.input(Preflight, rc))
}

func (s *Script) Install(ctx context.Context, rc Context) (Result, error) {
	return s.Execute(ctx, s.input(Install, rc))
}

func (s *Script) Update(ctx context.Context, rc Context) (Result, error) {
	return s.Execute(ctx, s.input(Update, rc))
}

func (s *Script) Uninstall(ctx context.Context, rc Context) (Result, error) {
	return s.Execute(ctx, s.input(Uninstall, rc))
}

func (s *Script) Postflight(ctx context.Context, _ string, rc Context) (Result, error) {
	return s.Execute(ctx, s.input(Postflight, rc))
}

func (s *Script) input(name Name, rc Context) *ScriptInput {
	in := &ScriptInput{
		Hook:        string(name),
		Route:       rc.Route(),
		Element:     rc.Element(),
		ExtensionID: rc.ExtensionID(),
		Source:      rc.Source(),
	}
	if m := rc.Manifest(); m != nil {
		in.Name = m.Name()
		in.Version = m.Version()
	}
	return in
}

// Execute runs the script once with input on stdin.
func (s *Script) Execute(ctx context.Context, input *ScriptInput) (Result, error) {
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	payload, err := json.Marshal(input)
	if err != nil {
		return Result{}, fmt.Errorf("failed to encode hook input: %w", err)
	}

	cmd := exec.CommandContext(ctx, s.Path)
	cmd.Dir = filepath.Dir(s.Path)
	if input.Source != "" {
		cmd.Dir = input.Source
	}
	cmd.Stdin = bytes.NewReader(payload)
	cmd.WaitDelay = time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return Result{}, fmt.Errorf("hook script %s %s: %w", filepath.Base(s.Path), input.Hook, ctx.Err())
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return Result{}, fmt.Errorf("hook script %s %s failed: %w: %s", filepath.Base(s.Path), input.Hook, err, msg)
		}
		return Result{}, fmt.Errorf("hook script %s %s failed: %w", filepath.Base(s.Path), input.Hook, err)
	}

	return parseScriptOutput(stdout.Bytes())
}

func parseScriptOutput(out []byte) (Result, error) {
	out = bytes.TrimSpace(out)
	if len(out) == 0 {
		return Result{}, fmt.Errorf("hook script produced no output")
	}

	var res *Result
	if err := json.Unmarshal(out, &res); err != nil {
		return Result{}, fmt.Errorf("invalid hook script output: %w", err)
	}
	if res == nil {
		return Result{}, fmt.Errorf("invalid hook script output: null")
	}
	return *res, nil
}
