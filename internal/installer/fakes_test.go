package installer

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/indaco/kiln/internal/hooks"
	"github.com/indaco/kiln/internal/manifest"
	"github.com/indaco/kiln/internal/registry"
	"github.com/indaco/kiln/internal/steps"
)

/* ------------------------------------------------------------------------- */
/* REGISTRY                                                                  */
/* ------------------------------------------------------------------------- */

type fakeRegistry struct {
	records map[int64]registry.Record
	nextID  int64
	deleted []int64

	FindFunc   func(ctx context.Context, c registry.Criteria) (int64, bool, error)
	StoreFunc  func(ctx context.Context, r *registry.Record) (bool, error)
	DeleteFunc func(ctx context.Context, id int64) error
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{records: map[int64]registry.Record{}, nextID: 100}
}

func (f *fakeRegistry) Find(ctx context.Context, c registry.Criteria) (int64, bool, error) {
	if f.FindFunc != nil {
		return f.FindFunc(ctx, c)
	}
	for id, r := range f.records {
		if r.Criteria() == c {
			return id, true, nil
		}
	}
	return 0, false, nil
}

func (f *fakeRegistry) Load(_ context.Context, id int64) (*registry.Record, error) {
	r, ok := f.records[id]
	if !ok {
		return nil, registry.ErrNotFound
	}
	return &r, nil
}

func (f *fakeRegistry) Store(ctx context.Context, r *registry.Record) (bool, error) {
	if f.StoreFunc != nil {
		return f.StoreFunc(ctx, r)
	}
	if r.ID == 0 {
		f.nextID++
		r.ID = f.nextID
		f.records[r.ID] = *r
		return true, nil
	}
	f.records[r.ID] = *r
	return false, nil
}

func (f *fakeRegistry) Delete(ctx context.Context, id int64) error {
	if f.DeleteFunc != nil {
		if err := f.DeleteFunc(ctx, id); err != nil {
			return err
		}
	}
	if _, ok := f.records[id]; !ok {
		return registry.ErrNotFound
	}
	delete(f.records, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeRegistry) List(context.Context) ([]registry.Record, error) {
	var out []registry.Record
	for _, r := range f.records {
		out = append(out, r)
	}
	return out, nil
}

/* ------------------------------------------------------------------------- */
/* FILESYSTEM                                                                */
/* ------------------------------------------------------------------------- */

type fakeFS struct {
	dirs    map[string]bool
	created []string
	deleted []string
	copies  []string

	CreateFunc func(path string) error
	DeleteFunc func(path string) error
	CopyFunc   func(src, dst string, section *manifest.FilesSection) error
}

func newFakeFS(existing ...string) *fakeFS {
	f := &fakeFS{dirs: map[string]bool{}}
	for _, d := range existing {
		f.dirs[d] = true
	}
	return f
}

func (f *fakeFS) Exists(path string) bool { return f.dirs[path] }

func (f *fakeFS) CreateDirectory(path string) error {
	if f.CreateFunc != nil {
		if err := f.CreateFunc(path); err != nil {
			return err
		}
	}
	f.dirs[path] = true
	f.created = append(f.created, path)
	return nil
}

func (f *fakeFS) DeleteDirectory(path string) error {
	if f.DeleteFunc != nil {
		if err := f.DeleteFunc(path); err != nil {
			return err
		}
	}
	delete(f.dirs, path)
	f.deleted = append(f.deleted, path)
	return nil
}

func (f *fakeFS) CopyFiles(src, dst string, section *manifest.FilesSection) error {
	if f.CopyFunc != nil {
		return f.CopyFunc(src, dst, section)
	}
	f.copies = append(f.copies, dst)
	return nil
}

/* ------------------------------------------------------------------------- */
/* MIGRATOR                                                                  */
/* ------------------------------------------------------------------------- */

type fakeMigrator struct {
	installRuns [][]string
	updateRuns  int
	versions    map[int64]string
	removed     []int64

	InstallFunc func(paths []string) error
	UpdateFunc  func(scripts []manifest.SchemaScript, id int64) error
	RemoveFunc  func(id int64) error
}

func newFakeMigrator() *fakeMigrator {
	return &fakeMigrator{versions: map[int64]string{}}
}

func (f *fakeMigrator) RunInstallScripts(_ context.Context, paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	f.installRuns = append(f.installRuns, paths)
	if f.InstallFunc != nil {
		return f.InstallFunc(paths)
	}
	return nil
}

func (f *fakeMigrator) RunUpdateScripts(_ context.Context, scripts []manifest.SchemaScript, id int64) error {
	f.updateRuns++
	if f.UpdateFunc != nil {
		return f.UpdateFunc(scripts, id)
	}
	if len(scripts) > 0 {
		f.versions[id] = scripts[len(scripts)-1].Version
	}
	return nil
}

func (f *fakeMigrator) InitVersion(_ context.Context, scripts []manifest.SchemaScript, id int64) (string, error) {
	if len(scripts) == 0 {
		return "", nil
	}
	v := scripts[len(scripts)-1].Version
	f.versions[id] = v
	return v, nil
}

func (f *fakeMigrator) Remove(_ context.Context, id int64) error {
	if f.RemoveFunc != nil {
		if err := f.RemoveFunc(id); err != nil {
			return err
		}
	}
	delete(f.versions, id)
	f.removed = append(f.removed, id)
	return nil
}

func (f *fakeMigrator) Scripts(m *manifest.Manifest) ([]manifest.SchemaScript, error) {
	return m.UpdateScripts(), nil
}

/* ------------------------------------------------------------------------- */
/* STRATEGY                                                                  */
/* ------------------------------------------------------------------------- */

// fakeStrategy installs into a single root below the site root.
type fakeStrategy struct {
	finalized   int
	uninstalled int
	undone      []steps.Step

	SetupFunc     func(a *Adapter) (Target, error)
	StageFunc     func(ctx context.Context, a *Adapter) error
	FinalizeFunc  func(ctx context.Context, a *Adapter) error
	UninstallFunc func(ctx context.Context, a *Adapter) error
}

func (s *fakeStrategy) Setup(a *Adapter) (Target, error) {
	if s.SetupFunc != nil {
		return s.SetupFunc(a)
	}
	return Target{
		Element: a.Manifest().Element(),
		Roots:   []string{filepath.Join(a.Options().Roots.Site, "ext", a.Manifest().Element())},
	}, nil
}

func (s *fakeStrategy) Stage(ctx context.Context, a *Adapter) error {
	if s.StageFunc != nil {
		return s.StageFunc(ctx, a)
	}
	for _, root := range a.Target().Roots {
		if err := a.CreateRoot(root); err != nil {
			return err
		}
		if err := a.Filesystem().CopyFiles(a.Source(), root, a.Manifest().Files()); err != nil {
			return err
		}
	}
	return nil
}

func (s *fakeStrategy) Finalize(ctx context.Context, a *Adapter) error {
	s.finalized++
	if s.FinalizeFunc != nil {
		return s.FinalizeFunc(ctx, a)
	}
	return nil
}

func (s *fakeStrategy) Uninstall(ctx context.Context, a *Adapter) error {
	s.uninstalled++
	if s.UninstallFunc != nil {
		return s.UninstallFunc(ctx, a)
	}
	return nil
}

func (s *fakeStrategy) UndoStep(_ context.Context, _ *Adapter, step steps.Step) error {
	s.undone = append(s.undone, step)
	return nil
}

/* ------------------------------------------------------------------------- */
/* HOOKS                                                                     */
/* ------------------------------------------------------------------------- */

// scriptedHook implements every capability; results default to success.
type scriptedHook struct {
	calls   []string
	results map[hooks.Name]hooks.Result
}

func newScriptedHook() *scriptedHook {
	return &scriptedHook{results: map[hooks.Name]hooks.Result{}}
}

func (h *scriptedHook) answer(name hooks.Name) (hooks.Result, error) {
	h.calls = append(h.calls, string(name))
	if r, ok := h.results[name]; ok {
		return r, nil
	}
	return hooks.OK, nil
}

func (h *scriptedHook) Preflight(context.Context, string, hooks.Context) (hooks.Result, error) {
	return h.answer(hooks.Preflight)
}
func (h *scriptedHook) Install(context.Context, hooks.Context) (hooks.Result, error) {
	return h.answer(hooks.Install)
}
func (h *scriptedHook) Update(context.Context, hooks.Context) (hooks.Result, error) {
	return h.answer(hooks.Update)
}
func (h *scriptedHook) Uninstall(context.Context, hooks.Context) (hooks.Result, error) {
	return h.answer(hooks.Uninstall)
}
func (h *scriptedHook) Postflight(context.Context, string, hooks.Context) (hooks.Result, error) {
	return h.answer(hooks.Postflight)
}

// installOnly offers install and nothing else, so it carries no update signal.
type installOnly struct{ called bool }

func (h *installOnly) Install(context.Context, hooks.Context) (hooks.Result, error) {
	h.called = true
	return hooks.OK, nil
}

func staticHook(hook any) hooks.Resolver {
	return hooks.ResolverFunc(func(context.Context, hooks.Request) (any, error) {
		return hook, nil
	})
}

/* ------------------------------------------------------------------------- */
/* HARNESS                                                                   */
/* ------------------------------------------------------------------------- */

type harness struct {
	reg      *fakeRegistry
	fs       *fakeFS
	mig      *fakeMigrator
	strategy *fakeStrategy
	opts     Options
	resolver hooks.Resolver
}

func newHarness() *harness {
	return &harness{
		reg:      newFakeRegistry(),
		fs:       newFakeFS(),
		mig:      newFakeMigrator(),
		strategy: &fakeStrategy{},
		opts:     Options{Source: "/src", Roots: Roots{Site: "/site", Admin: "/admin"}},
	}
}

func (h *harness) adapter(m *manifest.Manifest) *Adapter {
	return New(h.strategy, m, Deps{
		Registry:   h.reg,
		Filesystem: h.fs,
		Migrator:   h.mig,
		Hooks:      h.resolver,
	}, h.opts)
}

func (h *harness) root(element string) string {
	return filepath.Join("/site", "ext", element)
}

func testManifest(t *testing.T, doc manifest.Document) *manifest.Manifest {
	t.Helper()
	if doc.Name == "" {
		doc.Name = "Demo"
	}
	if doc.Type == "" {
		doc.Type = "plugin"
	}
	// Hooks are only resolved for manifests that declare a script.
	if doc.ScriptFile == "" {
		doc.ScriptFile = "script.sh"
	}
	m, err := manifest.New(doc, "")
	if err != nil {
		t.Fatalf("manifest.New: %v", err)
	}
	return m
}

func errBoom(what string) error { return errors.New(fmt.Sprint(what, ": boom")) }
