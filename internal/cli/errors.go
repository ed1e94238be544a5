package cli

import (
	"errors"
	"fmt"
)

var (
	errConfigFileNotFound = errors.New("config file not found")
	errConfigFileRead     = errors.New("cannot read config file")
	errConfigInvalid      = errors.New("invalid config file")
	errConfigFileExists   = errors.New("config file already exists")
	errCacheDirEmpty      = errors.New("cache_dir cannot be empty")
	errMaxRetriesInvalid  = errors.New("max_retries must be a positive integer")
	errFlagRequiresArg    = errors.New("flag requires an argument")
	errUnknownFlag        = errors.New("unknown flag")
	errCommandRequired    = errors.New("command is required")
	errInputConflict      = errors.New("--input and --stdin are mutually exclusive")
	errHomeNotFound       = errors.New("cannot determine home directory")
)

// exitStatusError carries a specific process exit code out of a command
// without printing anything; the output has already been relayed.
type exitStatusError struct {
	code int
}

func (e *exitStatusError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}
