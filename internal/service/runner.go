package service

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Runner executes a command and returns its combined output. A command that
// exits non-zero must be reported as *CommandError with its output attached.
type Runner func(ctx context.Context, name string, args ...string) (string, error)

// ExecRunner runs commands with os/exec.
func ExecRunner(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.CombinedOutput()
	if err == nil {
		return string(out), nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && ctx.Err() == nil {
		return string(out), &CommandError{
			Command:  strings.Join(append([]string{name}, args...), " "),
			ExitCode: exitErr.ExitCode(),
			Output:   string(out),
		}
	}
	if ctx.Err() != nil {
		return string(out), fmt.Errorf("run %s: %w", name, ctx.Err())
	}
	return string(out), fmt.Errorf("run %s: %w", name, err)
}

// run applies the command timeout around runner.
func run(ctx context.Context, cfg Config, runner Runner, name string, args ...string) (string, error) {
	if cfg.CommandTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.CommandTimeout)
		defer cancel()
	}
	return runner(ctx, name, args...)
}
