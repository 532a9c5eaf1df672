// Package validate runs the optional validation command the Pipeline
// invokes after a pick, gating acceptance on its exit status.
package validate

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"time"
)

// Command is a configured validation command: an executable plus fixed
// arguments. The set of changed paths is appended as the final arguments
// at run time (spec.md §4.6).
type Command struct {
	Path string
	Args []string
	Dir  string

	// Timeout bounds how long the command may run before it is terminated
	// and treated as a failure of this stage. Zero means no timeout.
	Timeout time.Duration
}

// Result is the outcome of one validation run, attached to the
// pipeline's PickOutcome for reporting.
type Result struct {
	Passed   bool
	ExitCode int
	Stdout   string
	Stderr   string
}

// Run executes cmd with changedPaths appended as final arguments. Exit 0
// passes; any other exit, or a timeout, fails.
func Run(ctx context.Context, cmd Command, changedPaths []string) (Result, error) {
	args := append(append([]string{}, cmd.Args...), changedPaths...)

	runCtx := ctx
	var cancel context.CancelFunc
	if cmd.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, cmd.Timeout)
		defer cancel()
	}

	c := exec.CommandContext(runCtx, cmd.Path, args...)
	c.Dir = cmd.Dir

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	runErr := c.Run()

	result := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if runCtx.Err() == context.DeadlineExceeded {
		return result, fmt.Errorf("validation command timed out after %s: %s", cmd.Timeout, cmd.Path)
	}

	if runErr == nil {
		result.Passed = true
		result.ExitCode = 0
		return result, nil
	}

	var exitErr *exec.ExitError
	if ok := asExitError(runErr, &exitErr); ok {
		result.Passed = false
		result.ExitCode = exitErr.ExitCode()
		return result, nil
	}

	return result, fmt.Errorf("running validation command %s: %w", cmd.Path, runErr)
}

func asExitError(err error, target **exec.ExitError) bool {
	ee, ok := err.(*exec.ExitError)
	if !ok {
		return false
	}
	*target = ee
	return true
}

// Scope is the run_validation_after setting, spec.md §4.1's enum plus the
// PATCH value SPEC_FULL.md §4.1 adds. The Pipeline treats every value
// other than ScopeNone alike: after each commit it makes, it validates the
// paths that commit changed. No scope validates paths per file or
// accumulates paths across commits.
type Scope string

const (
	ScopeNone  Scope = "NONE"
	ScopeEach  Scope = "EACH_FILE"
	ScopeAll   Scope = "ALL"
	ScopePatch Scope = "PATCH"
)
