// Command clicache runs shell commands and serves repeated invocations
// from an on-disk result cache.
package main

import (
	"os"
	"strings"

	"clicache/internal/cli"
)

func main() {
	env := make(map[string]string)

	for _, kv := range os.Environ() {
		key, value, ok := strings.Cut(kv, "=")
		if ok {
			env[key] = value
		}
	}

	os.Exit(cli.Run(os.Stdin, os.Stdout, os.Stderr, os.Args, env))
}
