package clicache

import (
	"fmt"
	"math"
	"time"

	"clicache/pkg/fs"
)

// DefaultMaxRetries bounds the reader's race-retry loop when Options
// leaves MaxRetries unset.
const DefaultMaxRetries = 10

// NoExpiry is a max age that accepts an entry of any age.
const NoExpiry = time.Duration(math.MaxInt64)

// Command describes one command invocation to run or look up.
//
// Exactly one of Line and Argv should be set. Line is a pre-built shell
// command line executed via "sh -c"; Argv is an argument vector executed
// directly and canonicalized for hashing via [shell.CommandLine].
//
// Input, when non-nil, is fed to the command on stdin. A nil Input means
// no stdin (the command reads from /dev/null); a non-nil empty Input is a
// piped empty stream and hashes differently from no input at all.
type Command struct {
	Line  string
	Argv  []string
	Input []byte
}

// ExecResult is the captured outcome of one real command execution.
//
// ExitCode follows the overloaded convention of the on-disk format:
// N >= 0 is a normal exit status, -N means the process was killed by
// signal N.
type ExecResult struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Executor runs a command and captures its output and exit status.
// The cache calls it synchronously on a miss.
type Executor interface {
	Execute(cmd Command) (ExecResult, error)
}

// Result is a cached command result, sourced from disk.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int

	// CompletedAt is when the original execution finished.
	CompletedAt time.Time

	// EntryID names the on-disk entry the result was read from.
	EntryID string
}

// Options configures a [Cache].
type Options struct {
	// Root is the cache directory. It does not need to exist; shard
	// directories are created lazily on first write.
	Root string

	// MaxRetries bounds the reader's resolve-and-open retry loop.
	// Defaults to [DefaultMaxRetries].
	MaxRetries int

	// Executor runs commands on cache misses.
	// Defaults to [NewSystemExecutor].
	Executor Executor

	// Observer receives hit/miss/write events. Defaults to [NopObserver].
	Observer Observer

	// FS overrides filesystem access, for tests. Defaults to [fs.NewReal].
	FS fs.FS

	// Now overrides the clock, for tests. Defaults to [time.Now].
	Now func() time.Time
}

// Cache memoizes command results under a shared on-disk root.
//
// A Cache holds no locks and no cross-call state; any number of Cache
// values in any number of processes may target the same root.
type Cache struct {
	root       string
	maxRetries int
	exec       Executor
	obs        Observer
	fs         fs.FS
	now        func() time.Time
}

// New validates opts and returns a Cache.
func New(opts Options) (*Cache, error) {
	if opts.Root == "" {
		return nil, errEmptyRoot
	}

	if opts.MaxRetries < 0 {
		return nil, fmt.Errorf("%w, got %d", errNegativeRetry, opts.MaxRetries)
	}

	cache := &Cache{
		root:       opts.Root,
		maxRetries: opts.MaxRetries,
		exec:       opts.Executor,
		obs:        opts.Observer,
		fs:         opts.FS,
		now:        opts.Now,
	}

	if cache.maxRetries == 0 {
		cache.maxRetries = DefaultMaxRetries
	}

	if cache.exec == nil {
		cache.exec = NewSystemExecutor()
	}

	if cache.obs == nil {
		cache.obs = NopObserver{}
	}

	if cache.fs == nil {
		cache.fs = fs.NewReal()
	}

	if cache.now == nil {
		cache.now = time.Now
	}

	return cache, nil
}

// Run returns the result of cmd, executing it only when no cached result
// younger than maxAge exists.
//
// A negative maxAge never matches and so always re-executes, while still
// repopulating the cache for later callers. On a miss the fresh result is
// written to disk and then re-read with [NoExpiry], so the caller always
// receives a value that has round-tripped through the on-disk
// representation, even if it aged past maxAge while being written.
func (c *Cache) Run(cmd Command, maxAge time.Duration) (Result, error) {
	key, canonical, err := DeriveKey(cmd)
	if err != nil {
		return Result{}, err
	}

	res, ok, err := c.lookup(key, maxAge)
	if err != nil {
		return Result{}, err
	}

	if ok {
		return res, nil
	}

	execRes, err := c.exec.Execute(cmd)
	if err != nil {
		return Result{}, err
	}

	completedAt := c.now()

	writeErr := c.write(key, canonical, completedAt, execRes)
	if writeErr != nil {
		return Result{}, writeErr
	}

	res, ok, err = c.lookup(key, NoExpiry)
	if err != nil {
		return Result{}, err
	}

	if !ok {
		// Cannot happen while the protocol holds: current is never
		// deleted once created, and NoExpiry matches any age.
		return Result{}, fmt.Errorf("%w: key %s", errEntryVanished, key)
	}

	return res, nil
}

// Lookup returns the cached result for cmd without ever executing it.
// The second return value reports whether a usable entry was found.
func (c *Cache) Lookup(cmd Command, maxAge time.Duration) (Result, bool, error) {
	key, _, err := DeriveKey(cmd)
	if err != nil {
		return Result{}, false, err
	}

	return c.lookup(key, maxAge)
}
