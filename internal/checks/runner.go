package checks

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// DefaultTimeout bounds every external tool invocation.
const DefaultTimeout = 20 * time.Second

// ErrTimeout is reported when a tool exceeds its wall-clock budget.
var ErrTimeout = errors.New("timed out")

// RunResult is the outcome of one tool invocation. ExitCode is -1 when the
// process could not be started or was abandoned on timeout; Err then holds
// the reason and Output is empty.
type RunResult struct {
	Output   string
	ExitCode int
	Err      error
}

// Runner is the process boundary used by checkers. Tests replace it with a
// fake so no compiler has to be installed.
type Runner interface {
	LookPath(name string) (string, error)
	Run(ctx context.Context, dir string, timeout time.Duration, name string, args ...string) RunResult
}

// ExecRunner runs real processes.
type ExecRunner struct{}

// LookPath reports whether a binary is on PATH.
func (ExecRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

// Run executes name with args inside dir and returns stdout and stderr
// joined, trimmed, in that order.
func (ExecRunner) Run(ctx context.Context, dir string, timeout time.Duration, name string, args ...string) RunResult {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	cmdCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(cmdCtx, name, args...)
	cmd.Dir = dir
	cmd.WaitDelay = time.Second
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	// Partial output of an abandoned process is discarded.
	if errors.Is(cmdCtx.Err(), context.DeadlineExceeded) {
		return RunResult{ExitCode: -1, Err: fmt.Errorf("%s %w after %s", name, ErrTimeout, timeout)}
	}
	if ctx.Err() != nil {
		return RunResult{ExitCode: -1, Err: ctx.Err()}
	}

	combined := combineOutput(stdout.String(), stderr.String())
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return RunResult{Output: combined, ExitCode: exitErr.ExitCode()}
		}
		return RunResult{Output: combined, ExitCode: -1, Err: err}
	}
	return RunResult{Output: combined}
}

func combineOutput(stdout, stderr string) string {
	return strings.TrimSpace(strings.TrimSpace(stdout) + "\n" + strings.TrimSpace(stderr))
}

// Text returns the output, or the failure reason when the tool never
// produced any.
func (r RunResult) Text() string {
	if r.Err == nil {
		return r.Output
	}
	if r.Output == "" {
		return r.Err.Error()
	}
	return r.Output + "\n" + r.Err.Error()
}
