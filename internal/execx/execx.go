// Zero2 Controller - Connectivity supervisor for headless Raspberry Pi Zero 2W
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/zero2-controller

// Package execx runs host commands (helper scripts, ip, wpa_cli, wall,
// shutdown) behind an interface so that the reconciler and watchdog can be
// tested without touching the real network stack.
package execx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// Runner abstracts command execution.
type Runner interface {
	// Run executes the command and returns its trimmed combined output.
	// The command is killed when ctx is done.
	Run(ctx context.Context, name string, args ...string) (string, error)
	// RunInput is Run with data fed to stdin.
	RunInput(ctx context.Context, input string, name string, args ...string) (string, error)
}

// OSRunner executes commands on the host via os/exec.
type OSRunner struct{}

// NewOSRunner creates a runner for real host commands.
func NewOSRunner() *OSRunner {
	return &OSRunner{}
}

// Run implements Runner.
func (r *OSRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	return r.run(ctx, nil, name, args...)
}

// RunInput implements Runner.
func (r *OSRunner) RunInput(ctx context.Context, input string, name string, args ...string) (string, error) {
	return r.run(ctx, strings.NewReader(input), name, args...)
}

func (r *OSRunner) run(ctx context.Context, stdin io.Reader, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = stdin
	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	err := cmd.Run()
	out := strings.TrimSpace(buf.String())
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return out, &CommandError{Name: name, Args: args, Output: out, Err: ctxErr}
		}
		return out, &CommandError{Name: name, Args: args, Output: out, Err: err}
	}
	return out, nil
}

// CommandError carries the failed command line and its output.
type CommandError struct {
	Name   string
	Args   []string
	Output string
	Err    error
}

func (e *CommandError) Error() string {
	line := strings.TrimSpace(e.Name + " " + strings.Join(e.Args, " "))
	if e.Output != "" {
		return fmt.Sprintf("%s: %v: %s", line, e.Err, e.Output)
	}
	return fmt.Sprintf("%s: %v", line, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// IsTimeout reports whether err came from a command killed by its deadline.
func IsTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}
