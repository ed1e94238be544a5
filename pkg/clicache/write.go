package clicache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Field file names inside an entry directory.
const (
	fieldReverseText = "reverse-text"
	fieldTimestamp   = "timestamp"
	fieldStdout      = "stdout"
	fieldStderr      = "stderr"
	fieldExitCode    = "exit-code"
)

// currentLink is the symlink selecting the authoritative entry of a shard.
const currentLink = "current"

const (
	dirPerms  = 0o755
	filePerms = 0o644
)

// formatTimestamp renders t as decimal ASCII seconds with microsecond
// precision, the stored timestamp format.
func formatTimestamp(t time.Time) string {
	return strconv.FormatFloat(float64(t.UnixMicro())/1e6, 'f', 6, 64)
}

// write persists a new entry for key and atomically promotes it to
// current, retiring any previous entry.
//
// Concurrent writers for the same key may race; the rename in step four
// guarantees current always ends up pointing at some fully written entry.
// Last rename wins, possibly discarding a result that was newer in
// wall-clock terms; acceptable, the value being raced is a cache.
func (c *Cache) write(key, canonical string, completedAt time.Time, res ExecResult) error {
	shard := shardPath(c.root, key)

	// Shard creation must be idempotent under concurrent creators;
	// MkdirAll treats an existing directory as success.
	err := c.fs.MkdirAll(shard, dirPerms)
	if err != nil {
		return fmt.Errorf("creating shard directory: %w", err)
	}

	// A fresh UUID names the entry, so no other writer can collide with
	// it and nothing touches it until it becomes the target of current.
	entryID := uuid.NewString()
	entryDir := filepath.Join(shard, entryID)

	mkdirErr := c.fs.Mkdir(entryDir, dirPerms)
	if mkdirErr != nil {
		return fmt.Errorf("creating entry directory: %w", mkdirErr)
	}

	fields := []struct {
		name string
		data []byte
	}{
		{fieldReverseText, []byte(canonical)},
		{fieldTimestamp, []byte(formatTimestamp(completedAt))},
		{fieldStdout, res.Stdout},
		{fieldStderr, res.Stderr},
		{fieldExitCode, []byte(strconv.Itoa(res.ExitCode))},
	}

	// Field writes need no ordering or atomicity between themselves; the
	// entry is unobservable until the rename below.
	for _, field := range fields {
		writeErr := c.fs.WriteFile(filepath.Join(entryDir, field.name), field.data, filePerms)
		if writeErr != nil {
			return fmt.Errorf("writing %s: %w", field.name, writeErr)
		}
	}

	// Capture the soon-to-be-old entry before the flip. A missing link
	// just means there is nothing to retire.
	oldID, readErr := c.fs.Readlink(filepath.Join(shard, currentLink))
	if readErr != nil && !errors.Is(readErr, os.ErrNotExist) {
		return fmt.Errorf("reading current link: %w", readErr)
	}

	tmpLink := filepath.Join(shard, currentLink+"."+entryID)

	symlinkErr := c.fs.Symlink(entryID, tmpLink)
	if symlinkErr != nil {
		return fmt.Errorf("creating entry link: %w", symlinkErr)
	}

	// The linearization point. Rename atomically replaces current whether
	// or not it already exists; readers observe the old entry or the new
	// one, never an intermediate state.
	renameErr := c.fs.Rename(tmpLink, filepath.Join(shard, currentLink))
	if renameErr != nil {
		return fmt.Errorf("promoting entry: %w", renameErr)
	}

	// Best effort. The old entry may already be gone, or a concurrent
	// reader may still hold its files open; an orphaned directory is a
	// disk-space leak, not a correctness problem.
	if oldID != "" {
		_ = c.fs.RemoveAll(filepath.Join(shard, oldID))
	}

	c.obs.Write(key, entryID)

	return nil
}
