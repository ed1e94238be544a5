package cli

import (
	flag "github.com/spf13/pflag"
)

func newPrintConfigCommand() *Command {
	flags := flag.NewFlagSet("print-config", flag.ContinueOnError)

	return &Command{
		Flags: flags,
		Usage: "print-config",
		Short: "print the resolved configuration and its sources",
		Exec:  cmdPrintConfig,
	}
}

func cmdPrintConfig(a *app, _ []string) error {
	formatted, err := FormatConfig(a.cfg)
	if err != nil {
		return err
	}

	a.io.Println(formatted)
	a.io.Println()

	if a.sources.Global != "" {
		a.io.Println("global config: ", a.sources.Global)
	} else {
		a.io.Println("global config:  (none)")
	}

	if a.sources.Project != "" {
		a.io.Println("project config:", a.sources.Project)
	} else {
		a.io.Println("project config: (none)")
	}

	return nil
}
