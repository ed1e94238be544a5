package cli

import (
	flag "github.com/spf13/pflag"

	"clicache/pkg/clicache"
)

func newShowCommand() *Command {
	flags := flag.NewFlagSet("show", flag.ContinueOnError)

	return &Command{
		Flags: flags,
		Usage: "show -- <command> [arg...]",
		Short: "inspect the cached entry for a command",
		Long: `Print the cache key and stored result metadata for a command
without executing it. Expiry is ignored; any stored entry is shown.`,
		Exec: cmdShow,
	}
}

func cmdShow(a *app, args []string) error {
	if len(args) == 0 {
		return errCommandRequired
	}

	var cmd clicache.Command

	if len(args) == 1 {
		cmd.Line = args[0]
	} else {
		cmd.Argv = args
	}

	key, canonical, err := clicache.DeriveKey(cmd)
	if err != nil {
		return err
	}

	cache, err := a.newCache()
	if err != nil {
		return err
	}

	res, ok, err := cache.Lookup(cmd, clicache.NoExpiry)
	if err != nil {
		return err
	}

	a.io.Printf("key:       %s\n", key)
	a.io.Printf("command:   %s\n", canonical)

	if !ok {
		a.io.Println("status:    not cached")

		return nil
	}

	a.io.Printf("entry:     %s\n", res.EntryID)
	a.io.Printf("cached at: %s\n", res.CompletedAt.Format("2006-01-02 15:04:05.000000 MST"))
	a.io.Printf("exit code: %d\n", res.ExitCode)
	a.io.Printf("stdout:    %d bytes\n", len(res.Stdout))
	a.io.Printf("stderr:    %d bytes\n", len(res.Stderr))

	return nil
}
