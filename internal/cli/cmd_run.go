package cli

import (
	"fmt"
	"io"
	"time"

	flag "github.com/spf13/pflag"

	"clicache/pkg/clicache"
	"clicache/pkg/shell"
)

// defaultMaxAgeSeconds is the run command's freshness threshold when
// --max-age is not given: one day.
const defaultMaxAgeSeconds = 86400

func newRunCommand() *Command {
	flags := flag.NewFlagSet("run", flag.ContinueOnError)

	maxAge := flags.Float64("max-age", defaultMaxAgeSeconds,
		"maximum acceptable result age in seconds; negative always re-executes")
	input := flags.String("input", "", "text to feed the command on stdin")
	useStdin := flags.Bool("stdin", false, "feed clicache's own stdin to the command")
	check := flags.Bool("check", false, "fail when the command exits non-zero or writes to stderr")

	return &Command{
		Flags: flags,
		Usage: "run [flags] -- <command> [arg...]",
		Short: "run a command, serving repeats from the cache",
		Long: `Run a command and cache its stdout, stderr and exit status on disk.

A single trailing argument is treated as a shell command line and run via
'sh -c'; multiple arguments are executed directly as an argument vector.
Repeating the same command (and stdin) within --max-age seconds replays
the cached result without executing anything.

The cached stdout and stderr are relayed to clicache's own streams and
the process exits with the cached exit status (128+N when the command
died from signal N).`,
		Exec: func(a *app, args []string) error {
			return cmdRun(a, runOptions{
				maxAge:   *maxAge,
				input:    *input,
				inputSet: flags.Changed("input"),
				useStdin: *useStdin,
				check:    *check,
			}, args)
		},
	}
}

type runOptions struct {
	maxAge   float64
	input    string
	inputSet bool
	useStdin bool
	check    bool
}

func cmdRun(a *app, opts runOptions, args []string) error {
	cmd, err := commandFromArgs(a, opts, args)
	if err != nil {
		return err
	}

	cache, err := a.newCache()
	if err != nil {
		return err
	}

	res, runErr := cache.Run(cmd, secondsToDuration(opts.maxAge))
	if runErr != nil {
		return runErr
	}

	a.io.Write(res.Stdout)
	a.io.ErrWrite(res.Stderr)

	if opts.check {
		_, canonical, deriveErr := clicache.DeriveKey(cmd)
		if deriveErr != nil {
			return deriveErr
		}

		checkErr := shell.Check(canonical, res.Stderr, res.ExitCode)
		if checkErr != nil {
			return checkErr
		}
	}

	if res.ExitCode != 0 {
		return &exitStatusError{code: processExitCode(res.ExitCode)}
	}

	return nil
}

// commandFromArgs assembles the cache Command from positional args and
// input flags.
func commandFromArgs(a *app, opts runOptions, args []string) (clicache.Command, error) {
	if len(args) == 0 {
		return clicache.Command{}, errCommandRequired
	}

	var cmd clicache.Command

	if len(args) == 1 {
		cmd.Line = args[0]
	} else {
		cmd.Argv = args
	}

	if opts.inputSet && opts.useStdin {
		return clicache.Command{}, errInputConflict
	}

	if opts.inputSet {
		cmd.Input = []byte(opts.input)
	}

	if opts.useStdin {
		data, err := io.ReadAll(a.stdin)
		if err != nil {
			return clicache.Command{}, fmt.Errorf("reading stdin: %w", err)
		}

		cmd.Input = data
	}

	return cmd, nil
}

// secondsToDuration converts a float seconds flag to a duration,
// preserving sign.
func secondsToDuration(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}

// processExitCode maps a stored exit code to the status this process
// should exit with: signal deaths (-N) become the conventional 128+N.
func processExitCode(stored int) int {
	if stored < 0 {
		return 128 - stored
	}

	return stored
}
