// Package tmp provides a scratch file that removes itself on Close, and a
// Commit path for the common "write report to a temp file, then publish
// atomically" pattern used by the command line's --output handling.
package tmp

import (
	"os"
	"path/filepath"
)

// File wraps a *os.File. Close removes the underlying file; call Commit
// instead to publish it under a final name.
type File struct {
	*os.File
	committed bool
}

// NewFile creates a temp file in "dir" matching "pattern" (see
// os.CreateTemp). If dir is "", os.CreateTemp's default temporary
// directory is used; [New] creates the file alongside its destination
// instead.
func NewFile(dir, pattern string) (*File, error) {
	f, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return nil, err
	}
	return &File{File: f}, nil
}

// New creates a scratch file in the same directory as "dest", so Commit can
// rename it into place without crossing filesystems.
func New(dest string) (*File, error) {
	dir := filepath.Dir(dest)
	return NewFile(dir, "."+filepath.Base(dest)+".*.tmp")
}

// Commit closes the file and renames it to "dest", publishing its contents.
func (t *File) Commit(dest string) error {
	if err := t.File.Close(); err != nil {
		os.Remove(t.File.Name())
		return err
	}
	t.committed = true
	return os.Rename(t.File.Name(), dest)
}

// Close closes the file handle and removes it from the filesystem. A no-op
// if Commit already ran.
func (t *File) Close() error {
	if t.committed {
		return nil
	}
	if err := t.File.Close(); err != nil {
		return err
	}
	return os.Remove(t.File.Name())
}
