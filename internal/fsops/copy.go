package fsops

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"

	"github.com/indaco/kiln/internal/core"
)

// FilePermissionError indicates insufficient permissions for file operations
type FilePermissionError struct {
	Src string
	Dst string
	Op  string // operation: "open", "create", "copy"
	Err error
}

func (e *FilePermissionError) Error() string {
	return fmt.Sprintf("permission denied: cannot %s file from %q to %q: %v", e.Op, e.Src, e.Dst, e.Err)
}

func (e *FilePermissionError) Unwrap() error {
	return e.Err
}

// DiskFullError indicates no space left on device
type DiskFullError struct {
	Path string
	Err  error
}

func (e *DiskFullError) Error() string {
	return fmt.Sprintf("no space left on device at %q: %v", e.Path, e.Err)
}

func (e *DiskFullError) Unwrap() error {
	return e.Err
}

// Copier implements core.FileCopier on the OS, skipping entries that match
// its exclude patterns.
type Copier struct {
	exclude []glob.Glob

	walkFn      func(root string, fn filepath.WalkFunc) error
	relFn       func(basepath, targpath string) (string, error)
	openSrcFile func(name string) (*os.File, error)
	openDstFile func(name string, flag int, perm os.FileMode) (*os.File, error)
	copyFn      func(dst io.Writer, src io.Reader) (int64, error)
}

// NewCopier creates a Copier. Patterns are matched against slash-separated
// paths relative to the copy root and against the bare entry name.
func NewCopier(exclude ...string) (*Copier, error) {
	c := &Copier{
		walkFn:      filepath.Walk,
		relFn:       filepath.Rel,
		openSrcFile: os.Open,
		openDstFile: os.OpenFile,
		copyFn:      io.Copy,
	}
	for _, p := range exclude {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", p, err)
		}
		c.exclude = append(c.exclude, g)
	}
	return c, nil
}

var _ core.FileCopier = (*Copier)(nil)

// CopyDir recursively copies all files and subdirectories from src to dst.
func (c *Copier) CopyDir(src, dst string) error {
	return c.walkFn(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return fmt.Errorf("walk error at %q: %w", path, err)
		}

		rel, err := c.relFn(src, path)
		if err != nil {
			return fmt.Errorf("failed to compute relative path from %q to %q: %w", src, path, err)
		}

		skipFile, skipDir := c.shouldSkip(rel, info)
		if skipDir {
			return filepath.SkipDir
		}
		if skipFile {
			return nil
		}

		target := filepath.Join(dst, rel)

		if info.IsDir() {
			return os.MkdirAll(target, info.Mode().Perm()|0o700)
		}

		return c.CopyFile(path, target, info.Mode().Perm())
	})
}

// CopyFile copies a single file from src to dst with given permissions,
// creating the parent directory of dst.
// Returns context-aware errors for common failure scenarios.
func (c *Copier) CopyFile(src, dst string, perm core.FileMode) error {
	in, err := c.openSrcFile(src)
	if err != nil {
		return classifyFileCopyError(err, src, dst, "open")
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), core.PermDir); err != nil {
		return classifyFileCopyError(err, src, dst, "create")
	}

	out, err := c.openDstFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return classifyFileCopyError(err, src, dst, "create")
	}
	defer out.Close()

	if _, err := c.copyFn(out, in); err != nil {
		return classifyFileCopyError(err, src, dst, "copy")
	}

	return nil
}

// Excluded reports whether the relative path rel matches an exclude pattern.
func (c *Copier) Excluded(rel string) bool {
	rel = filepath.ToSlash(rel)
	base := filepath.Base(rel)
	for _, g := range c.exclude {
		if g.Match(rel) || g.Match(base) {
			return true
		}
	}
	return false
}

// shouldSkip determines whether a file should be skipped or a directory subtree should be skipped.
func (c *Copier) shouldSkip(rel string, info os.FileInfo) (skipFile bool, skipDir bool) {
	_, skip := skipNames[info.Name()]
	if !skip && rel != "." {
		skip = c.Excluded(rel)
	}
	if !skip {
		return false, false
	}
	if info.IsDir() {
		return false, true // skip entire directory
	}
	return true, false // skip just the file
}

// classifyFileCopyError analyzes file system errors and provides context.
// It detects specific error types and returns structured errors with helpful information.
func classifyFileCopyError(err error, src, dst, operation string) error {
	if err == nil {
		return nil
	}

	if os.IsPermission(err) {
		return &FilePermissionError{
			Src: src,
			Dst: dst,
			Op:  operation,
			Err: err,
		}
	}

	if os.IsNotExist(err) {
		return fmt.Errorf("source path not found: %q: %w", src, err)
	}

	// ENOSPC surfaces under different messages depending on the platform.
	errMsg := strings.ToLower(err.Error())
	if strings.Contains(errMsg, "no space left on device") || strings.Contains(errMsg, "disk full") {
		return &DiskFullError{
			Path: dst,
			Err:  err,
		}
	}

	return fmt.Errorf("failed to %s from %q to %q: %w", operation, src, dst, err)
}

// skipNames defines a set of directory or file names excluded during directory copying.
var skipNames = map[string]struct{}{
	".git":         {},
	".DS_Store":    {},
	"node_modules": {},
}
