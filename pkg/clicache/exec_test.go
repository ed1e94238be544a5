package clicache

import (
	"errors"
	"strings"
	"testing"
)

func TestSystemExecutorLine(t *testing.T) {
	t.Parallel()

	executor := NewSystemExecutor()

	res, err := executor.Execute(Command{Line: "echo foo"})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if string(res.Stdout) != "foo\n" {
		t.Errorf("stdout = %q, want %q", res.Stdout, "foo\n")
	}

	if len(res.Stderr) != 0 {
		t.Errorf("stderr = %q, want empty", res.Stderr)
	}

	if res.ExitCode != 0 {
		t.Errorf("exit code = %d, want 0", res.ExitCode)
	}
}

func TestSystemExecutorArgvWithInput(t *testing.T) {
	t.Parallel()

	executor := NewSystemExecutor()

	res, err := executor.Execute(Command{Argv: []string{"cat"}, Input: []byte("foo bar")})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if string(res.Stdout) != "foo bar" {
		t.Errorf("stdout = %q, want %q", res.Stdout, "foo bar")
	}
}

func TestSystemExecutorNoInputReadsEOF(t *testing.T) {
	t.Parallel()

	executor := NewSystemExecutor()

	// Without input, stdin is /dev/null: cat sees immediate EOF instead
	// of blocking on the test's terminal.
	res, err := executor.Execute(Command{Argv: []string{"cat"}})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if len(res.Stdout) != 0 {
		t.Errorf("stdout = %q, want empty", res.Stdout)
	}
}

func TestSystemExecutorNonZeroExit(t *testing.T) {
	t.Parallel()

	executor := NewSystemExecutor()

	res, err := executor.Execute(Command{Line: "exit 3"})
	if err != nil {
		t.Fatalf("a command that runs and fails is not an execution error: %v", err)
	}

	if res.ExitCode != 3 {
		t.Errorf("exit code = %d, want 3", res.ExitCode)
	}
}

func TestSystemExecutorCapturesStderr(t *testing.T) {
	t.Parallel()

	executor := NewSystemExecutor()

	res, err := executor.Execute(Command{Line: "echo oops >&2"})
	if err != nil {
		t.Fatal(err)
	}

	if string(res.Stderr) != "oops\n" {
		t.Errorf("stderr = %q, want %q", res.Stderr, "oops\n")
	}

	if res.ExitCode != 0 {
		t.Errorf("exit code = %d, want 0", res.ExitCode)
	}
}

func TestSystemExecutorSignalEncodedNegative(t *testing.T) {
	t.Parallel()

	executor := NewSystemExecutor()

	res, err := executor.Execute(Command{Line: "kill -9 $$"})
	if err != nil {
		t.Fatal(err)
	}

	if res.ExitCode != -9 {
		t.Errorf("exit code = %d, want -9 for SIGKILL", res.ExitCode)
	}
}

func TestSystemExecutorLaunchFailure(t *testing.T) {
	t.Parallel()

	executor := NewSystemExecutor()

	_, err := executor.Execute(Command{Argv: []string{"/no/such/binary-clicache-test"}})

	var execErr *ExecError
	if !errors.As(err, &execErr) {
		t.Fatalf("expected ExecError, got %v", err)
	}

	if !strings.Contains(execErr.Error(), "cannot execute") {
		t.Errorf("unexpected message: %v", execErr)
	}
}

func TestSystemExecutorEmptyCommand(t *testing.T) {
	t.Parallel()

	executor := NewSystemExecutor()

	_, err := executor.Execute(Command{})
	if !errors.Is(err, errEmptyCommand) {
		t.Errorf("expected errEmptyCommand, got %v", err)
	}
}
