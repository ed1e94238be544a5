package clicache

import (
	"crypto/sha1" //nolint:gosec // keys the cache by content, not a security boundary
	"encoding/hex"
	"fmt"
	"path/filepath"

	"clicache/pkg/shell"
)

// DeriveKey returns the cache key for cmd and the exact canonical text
// that was hashed.
//
// The key is the lowercase hex SHA-1 of the canonical command line. When
// cmd carries input, the canonical text is rewritten as
// "echo <quoted input> | <command>" before hashing, so identical commands
// with different stdin hash differently. The canonical text is returned
// for diagnostics only; it is never parsed back.
//
// Pure function: no I/O, deterministic for identical inputs.
func DeriveKey(cmd Command) (key string, canonical string, err error) {
	canonical = cmd.Line

	if len(cmd.Argv) > 0 {
		canonical, err = shell.CommandLine(cmd.Argv)
		if err != nil {
			return "", "", err
		}
	}

	if canonical == "" {
		return "", "", errEmptyCommand
	}

	if cmd.Input != nil {
		canonical = fmt.Sprintf("echo %s | %s", shell.Quote(string(cmd.Input)), canonical)
	}

	sum := sha1.Sum([]byte(canonical)) //nolint:gosec // see import comment

	return hex.EncodeToString(sum[:]), canonical, nil
}

// shardPath returns the directory holding all entries for key.
//
// The first four hex characters become two path segments to bound
// per-directory fan-out: root/ab/cd/abcd...<full key>. Identical keys
// always map to identical shard paths.
func shardPath(root, key string) string {
	return filepath.Join(root, key[:2], key[2:4], key)
}
