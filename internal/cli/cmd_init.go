package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
	flag "github.com/spf13/pflag"
)

func newInitCommand() *Command {
	flags := flag.NewFlagSet("init", flag.ContinueOnError)

	dir := flags.String("dir", "", "cache directory to record in the config file")

	return &Command{
		Flags: flags,
		Usage: "init [--dir <path>]",
		Short: "write a default .clicache.json in the working directory",
		Long: `Create a ` + ConfigFileName + ` config file in the current directory.

Fails if one already exists.`,
		Exec: func(a *app, args []string) error {
			return cmdInit(a, *dir)
		},
	}
}

func cmdInit(a *app, dir string) error {
	path := filepath.Join(a.workDir, ConfigFileName)

	_, statErr := os.Stat(path)
	if statErr == nil {
		return fmt.Errorf("%w: %s", errConfigFileExists, path)
	}

	cfg := DefaultConfig()
	if dir != "" {
		cfg.CacheDir = dir
	}

	formatted, err := FormatConfig(cfg)
	if err != nil {
		return err
	}

	writeErr := atomic.WriteFile(path, strings.NewReader(formatted+"\n"))
	if writeErr != nil {
		return fmt.Errorf("writing %s: %w", path, writeErr)
	}

	a.io.Println("wrote", path)

	return nil
}
