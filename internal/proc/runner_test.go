package proc_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"nymedit/internal/proc"
)

func TestExecRunner_Run(t *testing.T) {
	runner := proc.NewExecRunner()
	ctx := context.Background()

	t.Run("captures combined output with the command line", func(t *testing.T) {
		out, err := runner.Run(ctx, t.TempDir(), []string{"sh", "-c", "echo out; echo err >&2"}, 5*time.Second)
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if !strings.HasPrefix(out, "% sh -c ") {
			t.Errorf("transcript missing command line prefix: %q", out)
		}
		if !strings.Contains(out, "out\n") || !strings.Contains(out, "err\n") {
			t.Errorf("transcript missing stdout or stderr: %q", out)
		}
	})

	t.Run("non-zero exit is an ExitError", func(t *testing.T) {
		out, err := runner.Run(ctx, t.TempDir(), []string{"sh", "-c", "echo boom; exit 3"}, 5*time.Second)
		var ee *proc.ExitError
		if !errors.As(err, &ee) {
			t.Fatalf("Run() error = %v, want ExitError", err)
		}
		if ee.Code != 3 {
			t.Errorf("Code = %d, want 3", ee.Code)
		}
		if !strings.Contains(ee.Output, "boom") {
			t.Errorf("Output = %q, want the command's output", ee.Output)
		}
		if !strings.Contains(out, "boom") {
			t.Errorf("transcript = %q, want the command's output", out)
		}
	})

	t.Run("expiry is a TimeoutError", func(t *testing.T) {
		_, err := runner.Run(ctx, t.TempDir(), []string{"sleep", "10"}, 50*time.Millisecond)
		var te *proc.TimeoutError
		if !errors.As(err, &te) {
			t.Fatalf("Run() error = %v, want TimeoutError", err)
		}
		if te.Timeout != 50*time.Millisecond {
			t.Errorf("Timeout = %s, want 50ms", te.Timeout)
		}
	})

	t.Run("runs in the given directory", func(t *testing.T) {
		dir := t.TempDir()
		out, err := runner.Run(ctx, dir, []string{"pwd"}, 5*time.Second)
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if !strings.Contains(out, dir) {
			t.Errorf("transcript = %q, want working directory %q", out, dir)
		}
	})
}

func TestExecRunner_RunChecked(t *testing.T) {
	runner := proc.NewExecRunner()
	ctx := context.Background()
	anyCode := func(int) bool { return true }

	t.Run("returns stdout only", func(t *testing.T) {
		out, err := runner.RunChecked(ctx, t.TempDir(), []string{"sh", "-c", "echo out; echo err >&2"}, 5*time.Second, anyCode)
		if err != nil {
			t.Fatalf("RunChecked() error = %v", err)
		}
		if out != "out\n" {
			t.Errorf("RunChecked() = %q, want stdout only", out)
		}
	})

	t.Run("accepted exit codes are not errors", func(t *testing.T) {
		_, err := runner.RunChecked(ctx, t.TempDir(), []string{"sh", "-c", "exit 1"}, 5*time.Second, func(code int) bool { return code < 2 })
		if err != nil {
			t.Fatalf("RunChecked() error = %v, want nil for accepted code", err)
		}
	})

	t.Run("rejected exit codes are ExitErrors", func(t *testing.T) {
		_, err := runner.RunChecked(ctx, t.TempDir(), []string{"sh", "-c", "exit 2"}, 5*time.Second, func(code int) bool { return code < 2 })
		var ee *proc.ExitError
		if !errors.As(err, &ee) {
			t.Fatalf("RunChecked() error = %v, want ExitError", err)
		}
		if ee.Code != 2 {
			t.Errorf("Code = %d, want 2", ee.Code)
		}
	})
}

func TestExitError_Message(t *testing.T) {
	ee := &proc.ExitError{Code: 128, Args: []string{"git", "push"}, Output: "fatal: no remote\n"}
	msg := ee.Error()
	if !strings.Contains(msg, `"git push"`) || !strings.Contains(msg, "128") {
		t.Errorf("Error() = %q, want command line and code", msg)
	}
	if !strings.Contains(msg, "fatal: no remote") {
		t.Errorf("Error() = %q, want captured output", msg)
	}
}
