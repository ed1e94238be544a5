// Package shell renders argument vectors as deterministic shell command
// lines and classifies completed command results.
//
// [CommandLine] and [Quote] exist to produce exactly one canonical string
// per command, used both for content hashing and for human inspection.
// The output is valid sh, but it is a representation, not something meant
// to be fed back to a shell.
package shell

import (
	"errors"
	"regexp"
	"strings"
)

// ErrEmptyArgv is returned when a command line is requested for an empty
// argument vector.
var ErrEmptyArgv = errors.New("cannot build a command line from an empty argument vector")

// unquoted matches arguments that are safe to include without quoting.
var unquoted = regexp.MustCompile(`^[a-zA-Z0-9_\-.,/]+$`)

// Quote returns text as a single, safe sh word.
//
// Embedded single quotes are closed, escaped and reopened. Literal
// newlines are left alone; sh is fine with that, but other tools may need
// special handling.
func Quote(text string) string {
	return "'" + strings.ReplaceAll(text, "'", `'\''`) + "'"
}

// CommandLine renders an argument vector as one line of shell code.
//
// For readability it quotes only arguments that need it, though it may
// still quote when not strictly necessary. The result is deterministic
// for a given vector.
func CommandLine(argv []string) (string, error) {
	if len(argv) == 0 {
		return "", ErrEmptyArgv
	}

	parts := make([]string, 0, len(argv))

	for _, arg := range argv {
		if unquoted.MatchString(arg) {
			parts = append(parts, arg)
		} else {
			parts = append(parts, Quote(arg))
		}
	}

	return strings.Join(parts, " "), nil
}
