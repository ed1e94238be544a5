package fs

import (
	iofs "io/fs"
	"os"
	"sync"
)

// Operation names accepted by [Flaky.FailNext].
const (
	OpOpen     = "open"
	OpReadlink = "readlink"
	OpRename   = "rename"
)

// Flaky wraps an [FS] and fails selected operations with queued errors.
//
// It exists to reproduce, deterministically, races that are otherwise
// timing-dependent: most importantly a cache entry being deleted between
// resolving the current link and opening the entry's files.
//
// Queued errors are consumed one per call, in FIFO order. Once a queue is
// empty the operation passes through to the wrapped FS. Safe for
// concurrent use.
type Flaky struct {
	inner FS

	mu     sync.Mutex
	queued map[string][]error
}

// NewFlaky returns a Flaky wrapping inner. Panics if inner is nil.
func NewFlaky(inner FS) *Flaky {
	if inner == nil {
		panic("inner fs is nil")
	}

	return &Flaky{inner: inner, queued: make(map[string][]error)}
}

// FailNext queues errs to be returned by the next len(errs) calls of the
// named operation.
//
// Errors are returned wrapped in [io/fs.PathError] so that callers using
// errors.Is against [os.ErrNotExist] and friends behave as they would
// with real OS errors.
func (f *Flaky) FailNext(op string, errs ...error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.queued[op] = append(f.queued[op], errs...)
}

// next pops the next queued error for op, or nil.
func (f *Flaky) next(op, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	queue := f.queued[op]
	if len(queue) == 0 {
		return nil
	}

	err := queue[0]
	f.queued[op] = queue[1:]

	return &iofs.PathError{Op: op, Path: path, Err: err}
}

func (f *Flaky) Open(path string) (File, error) {
	if err := f.next(OpOpen, path); err != nil {
		return nil, err
	}

	return f.inner.Open(path)
}

func (f *Flaky) Readlink(path string) (string, error) {
	if err := f.next(OpReadlink, path); err != nil {
		return "", err
	}

	return f.inner.Readlink(path)
}

func (f *Flaky) Rename(oldpath, newpath string) error {
	if err := f.next(OpRename, newpath); err != nil {
		return err
	}

	return f.inner.Rename(oldpath, newpath)
}

func (f *Flaky) WriteFile(path string, data []byte, perm os.FileMode) error {
	return f.inner.WriteFile(path, data, perm)
}

func (f *Flaky) Mkdir(path string, perm os.FileMode) error {
	return f.inner.Mkdir(path, perm)
}

func (f *Flaky) MkdirAll(path string, perm os.FileMode) error {
	return f.inner.MkdirAll(path, perm)
}

func (f *Flaky) Symlink(oldname, newname string) error {
	return f.inner.Symlink(oldname, newname)
}

func (f *Flaky) RemoveAll(path string) error {
	return f.inner.RemoveAll(path)
}

// Compile-time interface check.
var _ FS = (*Flaky)(nil)
