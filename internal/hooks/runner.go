package hooks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	kerrors "github.com/indaco/kiln/internal/errors"
)

// Outcome describes one invocation.
type Outcome struct {
	// Invoked is false when no hook object is attached or it lacks the capability.
	Invoked bool
	// Failed is set whenever the hook reported failure, fatal or not.
	Failed  bool
	Message string
}

// Runner owns the hook object of one run and the messages it produced.
type Runner struct {
	resolver Resolver
	logger   *slog.Logger

	loaded   bool
	hook     any
	messages []string
}

// NewRunner creates a Runner. A nil resolver attaches nothing.
func NewRunner(resolver Resolver, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Runner{resolver: resolver, logger: logger}
}

// Load resolves the hook object for the run described by rc. Only the
// first call does any work, and nothing is resolved unless the manifest
// declares a scriptfile. The script path is resolved relative to
// rc.Source().
func (r *Runner) Load(ctx context.Context, rc Context) error {
	if r.loaded {
		return nil
	}
	r.loaded = true

	m := rc.Manifest()
	if r.resolver == nil || m == nil || m.ScriptFile() == "" {
		return nil
	}

	script := m.ScriptFile()
	req := Request{ClassName: classNameFor(rc), Manifest: m, ScriptPath: script}
	if !filepath.IsAbs(script) {
		req.ScriptPath = filepath.Join(rc.Source(), script)
	}

	hook, err := r.resolver.Resolve(ctx, req)
	if errors.Is(err, ErrNotFound) {
		r.logger.Debug("no hook object", "class", req.ClassName)
		return nil
	}
	if err != nil {
		return kerrors.HookFailure(fmt.Sprintf("failed to load hook object %s", req.ClassName), err)
	}
	r.hook = hook
	r.logger.Debug("hook object attached", "class", req.ClassName)
	return nil
}

// Attach sets the hook object directly, bypassing the resolver.
func (r *Runner) Attach(hook any) {
	r.loaded = true
	r.hook = hook
}

// Loaded reports whether a hook object is attached.
func (r *Runner) Loaded() bool { return r.hook != nil }

// Has reports whether the attached hook offers name.
func (r *Runner) Has(name Name) bool { return supports(r.hook, name) }

// Invoke calls the hook point name. A missing object or capability is a
// no-op. A failing preflight, install or update is returned as a hook
// failure; postflight and uninstall failures only mark the Outcome.
func (r *Runner) Invoke(ctx context.Context, name Name, rc Context) (Outcome, error) {
	if !r.Has(name) {
		return Outcome{}, nil
	}

	res, err := call(ctx, r.hook, name, rc)
	out := Outcome{Invoked: true, Message: res.Message}
	if res.Message != "" {
		r.messages = append(r.messages, res.Message)
	}

	if err == nil && res.Success {
		return out, nil
	}

	out.Failed = true
	if err == nil {
		err = fmt.Errorf("%s hook reported failure", name)
		if res.Message != "" {
			err = fmt.Errorf("%s hook reported failure: %s", name, res.Message)
		}
	}

	if !fatal(name) {
		r.logger.Warn("hook failed", "hook", string(name), "error", err)
		return out, nil
	}
	return out, kerrors.HookFailure(fmt.Sprintf("%s hook aborted the %s", name, rc.Route()), err)
}

// Message returns everything the hook reported, one line per invocation.
func (r *Runner) Message() string {
	return strings.Join(r.messages, "\n")
}

func fatal(name Name) bool {
	switch name {
	case Postflight, Uninstall:
		return false
	default:
		return true
	}
}
