// Package fsops implements the filesystem collaborator of the lifecycle
// engine on top of the operating system.
package fsops

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/indaco/kiln/internal/core"
	"github.com/indaco/kiln/internal/manifest"
)

// OS is the filesystem collaborator backed by the os package.
type OS struct {
	statFn      func(name string) (os.FileInfo, error)
	mkdirAllFn  func(path string, perm os.FileMode) error
	removeAllFn func(path string) error
}

// New returns an OS filesystem.
func New() *OS {
	return &OS{
		statFn:      os.Stat,
		mkdirAllFn:  os.MkdirAll,
		removeAllFn: os.RemoveAll,
	}
}

// Exists reports whether path exists.
func (f *OS) Exists(path string) bool {
	_, err := f.statFn(path)
	return err == nil
}

// CreateDirectory creates path and any missing parents.
func (f *OS) CreateDirectory(path string) error {
	if err := f.mkdirAllFn(path, core.PermDir); err != nil {
		return classifyFileCopyError(err, path, path, "create")
	}
	return nil
}

// DeleteDirectory removes path and everything below it. Removing a path
// that does not exist succeeds.
func (f *OS) DeleteDirectory(path string) error {
	if path == "" || path == string(filepath.Separator) {
		return fmt.Errorf("refusing to delete %q", path)
	}
	if err := f.removeAllFn(path); err != nil {
		return classifyFileCopyError(err, path, path, "delete")
	}
	return nil
}

// CopyFiles stages the entries of section from src into dst. Entries are
// resolved below src/section.Folder. A section without entries copies the
// whole folder. A nil section copies nothing.
func (f *OS) CopyFiles(src, dst string, section *manifest.FilesSection) error {
	if section == nil {
		return nil
	}

	copier, err := NewCopier(section.Exclude...)
	if err != nil {
		return err
	}

	root, err := sectionRoot(src, section.Folder)
	if err != nil {
		return err
	}
	if len(section.Files) == 0 && len(section.Folders) == 0 {
		return copier.CopyDir(root, dst)
	}

	for _, name := range section.Files {
		rel, err := cleanEntry(name)
		if err != nil {
			return err
		}
		if copier.Excluded(rel) {
			continue
		}
		from := filepath.Join(root, rel)
		info, err := f.statFn(from)
		if err != nil {
			return classifyFileCopyError(err, from, filepath.Join(dst, rel), "open")
		}
		if err := copier.CopyFile(from, filepath.Join(dst, rel), info.Mode().Perm()); err != nil {
			return err
		}
	}

	for _, name := range section.Folders {
		rel, err := cleanEntry(name)
		if err != nil {
			return err
		}
		if copier.Excluded(rel) {
			continue
		}
		from := filepath.Join(root, rel)
		if _, err := f.statFn(from); err != nil {
			return classifyFileCopyError(err, from, filepath.Join(dst, rel), "open")
		}
		if err := copier.CopyDir(from, filepath.Join(dst, rel)); err != nil {
			return err
		}
	}
	return nil
}

// RemoveStale deletes, below dst, the entries listed in previous that are
// no longer listed in current. Missing entries are ignored.
func (f *OS) RemoveStale(dst string, previous, current []string) error {
	var errs []error
	for _, name := range previous {
		if slices.Contains(current, name) {
			continue
		}
		rel, err := cleanEntry(name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := f.removeAllFn(filepath.Join(dst, rel)); err != nil {
			errs = append(errs, classifyFileCopyError(err, rel, filepath.Join(dst, rel), "delete"))
		}
	}
	return errors.Join(errs...)
}

// sectionRoot resolves a section folder below src. An empty folder or "."
// is src itself; anything escaping src is rejected.
func sectionRoot(src, folder string) (string, error) {
	if folder == "" || filepath.Clean(filepath.FromSlash(folder)) == "." {
		return src, nil
	}
	rel, err := cleanEntry(folder)
	if err != nil {
		return "", err
	}
	return filepath.Join(src, rel), nil
}

// cleanEntry rejects entries that would escape the destination root.
func cleanEntry(name string) (string, error) {
	rel := filepath.Clean(filepath.FromSlash(name))
	if rel == "." || filepath.IsAbs(rel) || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid manifest entry %q: must be a relative path inside the extension", name)
	}
	return rel, nil
}
