package testutil

import (
	"sync"

	"clicache/pkg/clicache"
)

// ScriptedExecutor returns a fixed result and records every invocation.
type ScriptedExecutor struct {
	// Result is returned by each Execute call when Err is nil.
	Result clicache.ExecResult

	// Err, when set, is returned instead of Result.
	Err error

	mu    sync.Mutex
	calls []clicache.Command
}

// Execute implements clicache.Executor.
func (s *ScriptedExecutor) Execute(cmd clicache.Command) (clicache.ExecResult, error) {
	s.mu.Lock()
	s.calls = append(s.calls, cmd)
	s.mu.Unlock()

	if s.Err != nil {
		return clicache.ExecResult{}, s.Err
	}

	return s.Result, nil
}

// Calls returns how many times Execute ran.
func (s *ScriptedExecutor) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.calls)
}

// LastCommand returns the most recent command, or the zero Command.
func (s *ScriptedExecutor) LastCommand() clicache.Command {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.calls) == 0 {
		return clicache.Command{}
	}

	return s.calls[len(s.calls)-1]
}
