// Package fs provides the filesystem seam for the cache engine.
//
// The main types are:
//   - [FS]: interface for the filesystem operations the cache protocol uses
//   - [File]: interface for open files (satisfied by [os.File])
//   - [Real]: production implementation using the [os] package
//   - [Flaky]: testing implementation that fails selected operations
//
// The cache protocol synchronizes independent processes through the
// filesystem alone, so the interface is deliberately small: symlink
// creation and resolution, atomic rename, and plain reads and writes.
package fs

import (
	"io"
	"os"
)

// File represents an open file descriptor.
//
// Once a File is open its contents stay readable even if the underlying
// directory entry is unlinked (POSIX unlink-while-open semantics). The
// cache reader depends on this to survive concurrent entry retirement.
type File interface {
	io.ReadCloser
}

// FS defines the filesystem operations used by the cache protocol.
//
// All methods mirror their [os] package equivalents with identical error
// semantics.
type FS interface {
	// Open opens a file for reading. See [os.Open].
	Open(path string) (File, error)

	// WriteFile writes data to a new or truncated file. See [os.WriteFile].
	WriteFile(path string, data []byte, perm os.FileMode) error

	// Mkdir creates a single directory. See [os.Mkdir].
	Mkdir(path string, perm os.FileMode) error

	// MkdirAll creates a directory and all missing parents.
	// No error if the directory already exists. See [os.MkdirAll].
	MkdirAll(path string, perm os.FileMode) error

	// Symlink creates newname as a symbolic link to oldname. See [os.Symlink].
	Symlink(oldname, newname string) error

	// Readlink returns the target of a symbolic link. See [os.Readlink].
	// Returns an error satisfying errors.Is(err, os.ErrNotExist) if the
	// link does not exist.
	Readlink(path string) (string, error)

	// Rename moves oldpath to newpath, replacing newpath if present.
	// Atomic on the same filesystem. See [os.Rename].
	Rename(oldpath, newpath string) error

	// RemoveAll deletes a path and any children. See [os.RemoveAll].
	// No error if the path does not exist.
	RemoveAll(path string) error
}

// Compile-time interface check.
var _ File = (*os.File)(nil)
