package clicache

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"syscall"
)

// ExecError reports that a command could not be started at all, as
// opposed to a command that ran and failed.
type ExecError struct {
	Command string
	Err     error
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("cannot execute %q: %v", e.Command, e.Err)
}

func (e *ExecError) Unwrap() error {
	return e.Err
}

// SystemExecutor runs commands as real processes via [os/exec].
//
// A Command with a Line runs through "sh -c"; one with an Argv runs the
// program directly. With no Input the child reads from /dev/null.
type SystemExecutor struct{}

// NewSystemExecutor returns a SystemExecutor.
func NewSystemExecutor() *SystemExecutor {
	return &SystemExecutor{}
}

// Execute runs cmd synchronously and captures its streams and status.
//
// A command that runs and exits non-zero is not an error here; the exit
// code is carried in the result. Only a launch failure returns *ExecError.
func (x *SystemExecutor) Execute(cmd Command) (ExecResult, error) {
	var execCmd *exec.Cmd

	switch {
	case len(cmd.Argv) > 0:
		execCmd = exec.Command(cmd.Argv[0], cmd.Argv[1:]...) //nolint:gosec // running caller-supplied commands is the point
	case cmd.Line != "":
		execCmd = exec.Command("sh", "-c", cmd.Line) //nolint:gosec // see above
	default:
		return ExecResult{}, errEmptyCommand
	}

	if cmd.Input != nil {
		execCmd.Stdin = bytes.NewReader(cmd.Input)
	}

	var stdout, stderr bytes.Buffer

	execCmd.Stdout = &stdout
	execCmd.Stderr = &stderr

	runErr := execCmd.Run()
	if runErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(runErr, &exitErr) {
			return ExecResult{}, &ExecError{Command: describeCommand(cmd), Err: runErr}
		}
	}

	return ExecResult{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		ExitCode: exitStatus(execCmd.ProcessState),
	}, nil
}

// exitStatus extracts the exit code, encoding death by signal N as -N.
func exitStatus(state *os.ProcessState) int {
	if status, ok := state.Sys().(syscall.WaitStatus); ok && status.Signaled() {
		return -int(status.Signal())
	}

	return state.ExitCode()
}

// describeCommand returns a best-effort rendering of cmd for error text.
func describeCommand(cmd Command) string {
	if cmd.Line != "" {
		return cmd.Line
	}

	return fmt.Sprintf("%v", cmd.Argv)
}
