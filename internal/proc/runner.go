// Package proc executes external commands with captured output and explicit
// timeout bounds. Arguments are always passed as a vector, never
// concatenated into a shell string, so record field values that reach
// command arguments cannot inject commands.
package proc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Runner executes external commands. Implementations block for the duration
// of the command; expiry of the timeout surfaces as a TimeoutError distinct
// from a non-zero exit.
type Runner interface {
	// Run executes args in cwd and returns a transcript of the command line
	// and its combined stdout+stderr. A non-zero exit is an ExitError.
	Run(ctx context.Context, cwd string, args []string, timeout time.Duration) (string, error)

	// RunChecked executes args in cwd and returns stdout only. The exit code
	// is passed to ok; codes the predicate rejects become an ExitError. Used
	// for query commands where some non-zero codes mean "no results", not
	// failure.
	RunChecked(ctx context.Context, cwd string, args []string, timeout time.Duration, ok func(code int) bool) (string, error)
}

// ExitError reports a command that exited outside the accepted set. Output
// carries everything the command printed, for diagnosis by the operator.
type ExitError struct {
	Code   int
	Args   []string
	Output string
}

func (e *ExitError) Error() string {
	const indent = "  "
	out := strings.ReplaceAll(strings.TrimRight(e.Output, "\n"), "\n", "\n"+indent)
	return fmt.Sprintf("command %q exited with code %d\n\nOutput:\n%s%s",
		strings.Join(e.Args, " "), e.Code, indent, out)
}

// TimeoutError reports a command that exceeded its bound. The working
// directory is left in whatever state the command left it.
type TimeoutError struct {
	Args    []string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("command %q timed out after %s", strings.Join(e.Args, " "), e.Timeout)
}

// ExecRunner runs commands on the host via os/exec.
type ExecRunner struct{}

func NewExecRunner() *ExecRunner { return &ExecRunner{} }

func (r *ExecRunner) Run(ctx context.Context, cwd string, args []string, timeout time.Duration) (string, error) {
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(cctx, args[0], args[1:]...)
	cmd.Dir = cwd
	out, err := cmd.CombinedOutput()

	transcript := "% " + strings.Join(args, " ") + "\n" + string(out)
	if err != nil {
		if cctx.Err() == context.DeadlineExceeded {
			return transcript, &TimeoutError{Args: args, Timeout: timeout}
		}
		var ee *exec.ExitError
		if errors.As(err, &ee) {
			return transcript, &ExitError{Code: ee.ExitCode(), Args: args, Output: string(out)}
		}
		return transcript, fmt.Errorf("running %q: %w", args[0], err)
	}
	return transcript, nil
}

func (r *ExecRunner) RunChecked(ctx context.Context, cwd string, args []string, timeout time.Duration, ok func(code int) bool) (string, error) {
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(cctx, args[0], args[1:]...)
	cmd.Dir = cwd
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	code := 0
	if err != nil {
		if cctx.Err() == context.DeadlineExceeded {
			return "", &TimeoutError{Args: args, Timeout: timeout}
		}
		var ee *exec.ExitError
		if !errors.As(err, &ee) {
			return "", fmt.Errorf("running %q: %w", args[0], err)
		}
		code = ee.ExitCode()
	}

	if !ok(code) {
		return "", &ExitError{Code: code, Args: args, Output: stdout.String() + "\n" + stderr.String()}
	}
	return stdout.String(), nil
}
