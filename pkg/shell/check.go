package shell

import "fmt"

// CommandError reports a command that ran to completion but is considered
// failed: a non-zero exit status, or anything written to stderr even with
// exit status zero.
type CommandError struct {
	Command  string
	ExitCode int
	Stderr   []byte
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("shell code %q", e.Command)

	switch {
	case e.ExitCode > 0:
		msg += fmt.Sprintf(" failed with exit status %d", e.ExitCode)
	case e.ExitCode < 0:
		msg += fmt.Sprintf(" killed by signal %d", -e.ExitCode)
	}

	if len(e.Stderr) > 0 {
		msg += fmt.Sprintf(", stderr is %q", e.Stderr)
	}

	return msg
}

// Check returns a *CommandError if the result of a completed command
// indicates failure.
//
// Treating stderr output as failure regardless of exit status is a policy
// choice for scripting use, where tools report problems on stderr while
// still exiting zero. It is not a cache concern; callers opt in.
func Check(command string, stderr []byte, exitCode int) error {
	if exitCode == 0 && len(stderr) == 0 {
		return nil
	}

	return &CommandError{Command: command, ExitCode: exitCode, Stderr: stderr}
}
