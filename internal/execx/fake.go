// Zero2 Controller - Connectivity supervisor for headless Raspberry Pi Zero 2W
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/zero2-controller

package execx

import (
	"context"
	"strings"
	"sync"
)

// FakeRunner records commands and returns scripted results.
// It is used by tests across packages.
type FakeRunner struct {
	mu      sync.Mutex
	calls   []string
	inputs  []string
	results map[string]FakeResult
}

// FakeResult is the scripted outcome of a command line.
type FakeResult struct {
	Output string
	Err    error
}

// NewFakeRunner creates an empty fake. Unscripted commands succeed with no output.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{results: make(map[string]FakeResult)}
}

// Set scripts the result for an exact command line ("name arg1 arg2").
func (f *FakeRunner) Set(cmdline string, res FakeResult) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results[cmdline] = res
}

// Run implements Runner.
func (f *FakeRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	return f.RunInput(ctx, "", name, args...)
}

// RunInput implements Runner.
func (f *FakeRunner) RunInput(ctx context.Context, input string, name string, args ...string) (string, error) {
	line := strings.TrimSpace(name + " " + strings.Join(args, " "))
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, line)
	f.inputs = append(f.inputs, input)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	res := f.results[line]
	return res.Output, res.Err
}

// Calls returns the command lines run so far.
func (f *FakeRunner) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

// Inputs returns the stdin payloads in call order.
func (f *FakeRunner) Inputs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.inputs))
	copy(out, f.inputs)
	return out
}

// Count returns how many times the exact command line ran.
func (f *FakeRunner) Count(cmdline string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == cmdline {
			n++
		}
	}
	return n
}
