package clicache

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"clicache/pkg/fs"
)

// Miss reasons reported to the [Observer].
const (
	MissNoEntry = "no entry in cache"
	MissTooOld  = "entry too old"
)

// entryFiles is a consistent set of open handles on one entry's fields.
//
// All five files are opened before any content is inspected, so the
// handles stay readable even if a concurrent writer retires the entry.
type entryFiles struct {
	id          string
	reverseText fs.File
	timestamp   fs.File
	stdout      fs.File
	stderr      fs.File
	exitCode    fs.File
}

func (e *entryFiles) close() {
	for _, f := range []fs.File{e.reverseText, e.timestamp, e.stdout, e.stderr, e.exitCode} {
		if f != nil {
			_ = f.Close()
		}
	}
}

// lookup resolves the current entry for key and returns its result when
// it is no older than maxAge.
//
// Misses are reported as ok == false with a nil error; every returned
// error is fatal ([ErrCorruptEntry], [ErrRetriesExhausted], or an
// unexpected filesystem failure).
func (c *Cache) lookup(key string, maxAge time.Duration) (Result, bool, error) {
	entry, ok, err := c.openCurrent(key)
	if err != nil {
		return Result{}, false, err
	}

	if !ok {
		c.obs.Miss(key, MissNoEntry)

		return Result{}, false, nil
	}

	defer entry.close()

	completedAt, err := entry.readTimestamp()
	if err != nil {
		return Result{}, false, err
	}

	elapsed := c.now().Sub(completedAt)
	if elapsed > maxAge {
		c.obs.Miss(key, MissTooOld)

		return Result{}, false, nil
	}

	res, err := entry.readResult(completedAt)
	if err != nil {
		return Result{}, false, err
	}

	c.obs.Hit(key, elapsed)

	return res, true, nil
}

// openCurrent resolves the current link and opens a consistent set of
// entry files, retrying the whole sequence when it loses the race against
// a writer retiring the entry.
//
// Only a not-exist failure counts as that race; permission or I/O errors
// abort immediately rather than burning retries on a condition that will
// never clear.
func (c *Cache) openCurrent(key string) (*entryFiles, bool, error) {
	shard := shardPath(c.root, key)
	link := filepath.Join(shard, currentLink)

	for attempt := 0; attempt < c.maxRetries; attempt++ {
		id, err := c.fs.Readlink(link)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				// No entry has ever been promoted for this key.
				return nil, false, nil
			}

			return nil, false, fmt.Errorf("resolving current entry: %w", err)
		}

		if id == "" {
			return nil, false, fmt.Errorf("%w: key %s", errEmptyLinkValue, key)
		}

		entry, openErr := c.openEntry(filepath.Join(shard, id), id)
		if openErr == nil {
			return entry, true, nil
		}

		if !errors.Is(openErr, os.ErrNotExist) {
			return nil, false, fmt.Errorf("opening entry %s: %w", id, openErr)
		}

		// The entry was retired between resolving the link and opening
		// its files. Resolve again; whatever current points at now is
		// fully written.
	}

	return nil, false, fmt.Errorf("%w: key %s after %d attempts", ErrRetriesExhausted, key, c.maxRetries)
}

// openEntry opens all five field files of the entry at dir.
// On any failure it closes whatever was already opened.
func (c *Cache) openEntry(dir, id string) (*entryFiles, error) {
	entry := &entryFiles{id: id}

	for _, field := range []struct {
		name string
		dst  *fs.File
	}{
		{fieldTimestamp, &entry.timestamp},
		{fieldReverseText, &entry.reverseText},
		{fieldStdout, &entry.stdout},
		{fieldStderr, &entry.stderr},
		{fieldExitCode, &entry.exitCode},
	} {
		file, err := c.fs.Open(filepath.Join(dir, field.name))
		if err != nil {
			entry.close()

			return nil, err
		}

		*field.dst = file
	}

	return entry, nil
}

// readTimestamp parses the stored completion time.
func (e *entryFiles) readTimestamp() (time.Time, error) {
	data, err := io.ReadAll(e.timestamp)
	if err != nil {
		return time.Time{}, fmt.Errorf("reading timestamp: %w", err)
	}

	seconds, parseErr := strconv.ParseFloat(strings.TrimSpace(string(data)), 64)
	if parseErr != nil {
		return time.Time{}, fmt.Errorf("%w: timestamp %q", ErrCorruptEntry, data)
	}

	return time.UnixMicro(int64(math.Round(seconds * 1e6))), nil
}

// readResult reads the remaining fields and assembles the Result.
func (e *entryFiles) readResult(completedAt time.Time) (Result, error) {
	stdout, err := io.ReadAll(e.stdout)
	if err != nil {
		return Result{}, fmt.Errorf("reading stdout: %w", err)
	}

	stderr, err := io.ReadAll(e.stderr)
	if err != nil {
		return Result{}, fmt.Errorf("reading stderr: %w", err)
	}

	codeData, err := io.ReadAll(e.exitCode)
	if err != nil {
		return Result{}, fmt.Errorf("reading exit code: %w", err)
	}

	exitCode, parseErr := strconv.Atoi(strings.TrimSpace(string(codeData)))
	if parseErr != nil {
		return Result{}, fmt.Errorf("%w: exit code %q", ErrCorruptEntry, codeData)
	}

	return Result{
		Stdout:      stdout,
		Stderr:      stderr,
		ExitCode:    exitCode,
		CompletedAt: completedAt,
		EntryID:     e.id,
	}, nil
}
