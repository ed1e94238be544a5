package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"clicache/pkg/clicache"
)

const minArgs = 2

// app carries the resolved configuration and streams to every command.
type app struct {
	io      *IO
	stdin   io.Reader
	workDir string
	cfg     Config
	sources ConfigSources
	obs     clicache.Observer
}

// newCache builds the cache engine from the resolved configuration.
func (a *app) newCache() (*clicache.Cache, error) {
	return clicache.New(clicache.Options{
		Root:       a.cfg.CacheDir,
		MaxRetries: a.cfg.MaxRetries,
		Observer:   a.obs,
	})
}

// Run is the main entry point. Returns exit code.
func Run(stdin io.Reader, out io.Writer, errOut io.Writer, args []string, env map[string]string) int {
	o := NewIO(out, errOut)

	if len(args) < minArgs {
		printUsage(o)

		return 0
	}

	flags, err := parseGlobalFlags(args[1:])
	if err != nil {
		o.ErrPrintln("error:", err)

		return 1
	}

	workDir := flags.workDir
	if workDir == "" {
		workDir, err = os.Getwd()
		if err != nil {
			o.ErrPrintln("error: cannot get working directory:", err)

			return 1
		}
	}

	cliOverrides := Config{CacheDir: flags.cacheDir}

	cfg, sources, err := LoadConfig(workDir, flags.configPath, cliOverrides, flags.cacheDir != "", env)
	if err != nil {
		o.ErrPrintln("error:", err)

		return 1
	}

	if len(flags.remaining) == 0 {
		printUsage(o)

		return 0
	}

	name := flags.remaining[0]
	if name == "-h" || name == "--help" {
		printUsage(o)

		return 0
	}

	obs := clicache.Observer(clicache.NopObserver{})
	if flags.verbose {
		obs = newLogObserver(errOut)
	}

	a := &app{
		io:      o,
		stdin:   stdin,
		workDir: workDir,
		cfg:     cfg,
		sources: sources,
		obs:     obs,
	}

	for _, cmd := range commands() {
		if cmd.Name() == name {
			return cmd.Run(a, flags.remaining[1:])
		}
	}

	o.ErrPrintln("error: unknown command:", name)
	printUsage(o)

	return 1
}

// commands lists every subcommand in help order.
func commands() []*Command {
	return []*Command{
		newRunCommand(),
		newShowCommand(),
		newInitCommand(),
		newPrintConfigCommand(),
	}
}

func printUsage(o *IO) {
	o.Println("Usage: clicache [global flags] <command> [args]")
	o.Println()
	o.Println("Run commands and serve repeated invocations from an on-disk cache.")
	o.Println()
	o.Println("Commands:")

	for _, cmd := range commands() {
		o.Println(cmd.HelpLine())
	}

	o.Println()
	o.Println("Global flags:")
	o.Println("  --dir <path>        cache directory (overrides config)")
	o.Println("  --config <path>     explicit config file")
	o.Println("  -C <path>           run as if started in <path>")
	o.Println("  -v, --verbose       log cache events to stderr")
}

type globalFlags struct {
	workDir    string
	configPath string
	cacheDir   string
	verbose    bool
	remaining  []string
}

func parseGlobalFlags(args []string) (globalFlags, error) {
	var flags globalFlags

	idx := 0
	for idx < len(args) {
		arg := args[idx]

		switch arg {
		case "--dir":
			value, err := flagValue(args, idx, arg)
			if err != nil {
				return globalFlags{}, err
			}

			flags.cacheDir = value
			idx += 2
		case "--config":
			value, err := flagValue(args, idx, arg)
			if err != nil {
				return globalFlags{}, err
			}

			flags.configPath = value
			idx += 2
		case "-C":
			value, err := flagValue(args, idx, arg)
			if err != nil {
				return globalFlags{}, err
			}

			flags.workDir = value
			idx += 2
		case "-v", "--verbose":
			flags.verbose = true
			idx++
		default:
			if strings.HasPrefix(arg, "-") && arg != "-h" && arg != "--help" {
				return globalFlags{}, fmt.Errorf("%w: %s", errUnknownFlag, arg)
			}

			// Not a global flag; everything from here on belongs to the
			// command.
			flags.remaining = args[idx:]

			return flags, nil
		}
	}

	return flags, nil
}

func flagValue(args []string, idx int, name string) (string, error) {
	if idx+1 >= len(args) {
		return "", fmt.Errorf("%w: %s", errFlagRequiresArg, name)
	}

	return args[idx+1], nil
}
