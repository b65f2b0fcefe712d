package testutil

import (
	"context"
	"strings"
	"sync"
	"time"

	"nymedit/internal/proc"
)

// Invocation records one command dispatched to the FakeRunner.
type Invocation struct {
	Cwd     string
	Args    []string
	Timeout time.Duration
}

// FakeRunner is a proc.Runner that records every invocation instead of
// executing anything. Behavior is scripted per command key, which is the
// first two argv words ("git clone", "grep -hoPr", ...).
type FakeRunner struct {
	mu          sync.Mutex
	Invocations []Invocation

	// Outputs maps command keys to the output returned for them.
	Outputs map[string]string

	// Codes maps command keys to a simulated exit code (default 0).
	Codes map[string]int

	// Timeouts marks command keys that should simulate timeout expiry.
	Timeouts map[string]bool
}

// NewFakeRunner creates a FakeRunner where every command succeeds with
// empty output.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{
		Outputs:  make(map[string]string),
		Codes:    make(map[string]int),
		Timeouts: make(map[string]bool),
	}
}

func key(args []string) string {
	if len(args) >= 2 {
		return args[0] + " " + args[1]
	}
	return strings.Join(args, " ")
}

func (r *FakeRunner) record(cwd string, args []string, timeout time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Invocations = append(r.Invocations, Invocation{Cwd: cwd, Args: args, Timeout: timeout})
}

// Run implements proc.Runner.
func (r *FakeRunner) Run(_ context.Context, cwd string, args []string, timeout time.Duration) (string, error) {
	r.record(cwd, args, timeout)

	k := key(args)
	out := r.Outputs[k]
	transcript := "% " + strings.Join(args, " ") + "\n" + out

	if r.Timeouts[k] {
		return transcript, &proc.TimeoutError{Args: args, Timeout: timeout}
	}
	if code := r.Codes[k]; code != 0 {
		return transcript, &proc.ExitError{Code: code, Args: args, Output: out}
	}
	return transcript, nil
}

// RunChecked implements proc.Runner.
func (r *FakeRunner) RunChecked(_ context.Context, cwd string, args []string, timeout time.Duration, ok func(code int) bool) (string, error) {
	r.record(cwd, args, timeout)

	k := key(args)
	if r.Timeouts[k] {
		return "", &proc.TimeoutError{Args: args, Timeout: timeout}
	}
	code := r.Codes[k]
	if !ok(code) {
		return "", &proc.ExitError{Code: code, Args: args, Output: r.Outputs[k]}
	}
	return r.Outputs[k], nil
}

// CommandLines returns the recorded invocations as joined argv strings, in
// order, for easy assertion.
func (r *FakeRunner) CommandLines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	lines := make([]string, 0, len(r.Invocations))
	for _, inv := range r.Invocations {
		lines = append(lines, strings.Join(inv.Args, " "))
	}
	return lines
}
