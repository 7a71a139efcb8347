// Package core holds small shared abstractions used across kiln packages.
package core

import (
	"os"
	"time"
)

// FileMode is an alias so callers need not import os for permissions.
type FileMode = os.FileMode

// Permission bits used when kiln writes to disk.
const (
	PermOwnerRW FileMode = 0o600
	PermFile    FileMode = 0o644
	PermDir     FileMode = 0o755
	PermExec    FileMode = 0o755
)

// Timeouts for external commands kiln starts itself.
const (
	TimeoutShort = 5 * time.Second
	TimeoutGit   = 2 * time.Minute
)

// FileCopier copies files and directory trees.
type FileCopier interface {
	CopyDir(src, dst string) error
	CopyFile(src, dst string, perm FileMode) error
}

// Marshaler serializes a value.
type Marshaler interface {
	Marshal(v any) ([]byte, error)
}
