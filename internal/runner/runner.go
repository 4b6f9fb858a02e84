// Copyright (c) 2026 Gitident Team
// Gitident - Git identity manager
// This source code is licensed under the MIT license found in the LICENSE file.

// Package runner executes external programs (git, ssh) with a timeout.
// Components depend on the CommandRunner interface so tests can script
// responses with MockRunner instead of spawning processes.
package runner // import "github.com/toeirei/gitident/internal/runner"

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"
)

// DefaultTimeout bounds a single command when the runner has no timeout set.
const DefaultTimeout = 20 * time.Second

// CommandRunner runs a command in dir and returns its trimmed combined output.
type CommandRunner interface {
	Run(ctx context.Context, dir, name string, args ...string) (string, error)
}

// CommandError describes a command that failed to start or exited non-zero.
type CommandError struct {
	Command  string
	Args     []string
	Output   string
	ExitCode int
	TimedOut bool
	Err      error
}

func (e *CommandError) Error() string {
	if e.Output != "" {
		return e.Output
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "command failed"
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct {
	Timeout time.Duration
	Env     []string // appended to the inherited environment
}

// NewExecRunner returns an ExecRunner using DefaultTimeout.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{Timeout: DefaultTimeout}
}

// Run executes name with args in dir. Output is stdout and stderr combined.
func (r *ExecRunner) Run(ctx context.Context, dir, name string, args ...string) (string, error) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	if len(r.Env) > 0 {
		cmd.Env = append(cmd.Environ(), r.Env...)
	}
	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	err := cmd.Run()
	out := strings.TrimSpace(buf.String())
	if err != nil {
		ce := &CommandError{Command: name, Args: args, Output: out, ExitCode: -1, Err: err}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			ce.ExitCode = exitErr.ExitCode()
		}
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			ce.TimedOut = true
		}
		return out, ce
	}
	return out, nil
}

// Output extracts captured output from a *CommandError in err's chain.
func Output(err error) string {
	var ce *CommandError
	if errors.As(err, &ce) {
		return ce.Output
	}
	return ""
}
