package hooks

import (
	"context"
	"errors"
	"sync"

	"github.com/indaco/kiln/internal/manifest"
)

// ErrNotFound is returned by a Resolver that has nothing for a request.
// The runner treats it as "no hook object".
var ErrNotFound = errors.New("hook object not found")

// Request describes the hook object to resolve.
type Request struct {
	// ClassName is derived from the element, see ClassName.
	ClassName string
	// ScriptPath is the absolute path of the manifest's scriptfile, or "".
	ScriptPath string
	Manifest   *manifest.Manifest
}

// Resolver turns a Request into a hook object.
type Resolver interface {
	Resolve(ctx context.Context, req Request) (any, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(ctx context.Context, req Request) (any, error)

// Resolve calls f.
func (f ResolverFunc) Resolve(ctx context.Context, req Request) (any, error) { return f(ctx, req) }

// Factory builds a fresh hook object for one run.
type Factory func() any

// Registry resolves in-process hook objects by class name.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register binds className to f, replacing any earlier binding.
func (r *Registry) Register(className string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[className] = f
}

// Resolve implements Resolver.
func (r *Registry) Resolve(_ context.Context, req Request) (any, error) {
	r.mu.RLock()
	f, ok := r.factories[req.ClassName]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return f(), nil
}

// Chain tries each resolver in order and returns the first hit.
type Chain []Resolver

// Resolve implements Resolver.
func (c Chain) Resolve(ctx context.Context, req Request) (any, error) {
	for _, r := range c {
		hook, err := r.Resolve(ctx, req)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return hook, nil
	}
	return nil, ErrNotFound
}
