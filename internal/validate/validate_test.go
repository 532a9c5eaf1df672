package validate

import (
	"context"
	"runtime"
	"testing"
	"time"
)

func shellCommand(script string) Command {
	if runtime.GOOS == "windows" {
		return Command{Path: "cmd", Args: []string{"/C", script}}
	}
	return Command{Path: "/bin/sh", Args: []string{"-c", script}}
}

func TestRunPassesOnExitZero(t *testing.T) {
	cmd := shellCommand("exit 0")
	result, err := Run(context.Background(), cmd, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !result.Passed || result.ExitCode != 0 {
		t.Fatalf("expected a pass with exit 0, got %+v", result)
	}
}

func TestRunFailsOnNonZeroExit(t *testing.T) {
	cmd := shellCommand("exit 7")
	result, err := Run(context.Background(), cmd, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Passed || result.ExitCode != 7 {
		t.Fatalf("expected a failure with exit 7, got %+v", result)
	}
}

func TestRunAppendsChangedPaths(t *testing.T) {
	cmd := shellCommand(`for a in "$@"; do echo "arg:$a"; done`)
	result, err := Run(context.Background(), cmd, []string{"a.go", "b.go"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Stdout == "" {
		t.Fatal("expected non-empty stdout capturing the appended paths")
	}
}

func TestRunTimesOut(t *testing.T) {
	cmd := shellCommand("sleep 5")
	cmd.Timeout = 50 * time.Millisecond
	_, err := Run(context.Background(), cmd, nil)
	if err == nil {
		t.Fatal("expected a timeout error")
	}
}
