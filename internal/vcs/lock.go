package vcs

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// WorkingTreeLock enforces spec.md §5's "working tree is owned exclusively
// by the Pipeline for the duration of a pick" rule: a pick refuses to start
// if another process already holds the lock.
type WorkingTreeLock struct {
	flock *flock.Flock
	path  string
}

// AcquireWorkingTreeLock tries to take an exclusive, non-blocking lock on a
// PID file under repoRoot's .git directory. It returns ErrWorkingTreeLocked
// if another pick is in progress.
func AcquireWorkingTreeLock(repoRoot string) (*WorkingTreeLock, error) {
	path := filepath.Join(repoRoot, ".git", "pickgo.lock")
	fl := flock.New(path)

	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquiring working tree lock: %w", err)
	}
	if !locked {
		return nil, ErrWorkingTreeLocked
	}

	if err := os.WriteFile(path, []byte(fmt.Sprintf("%d\n", os.Getpid())), 0o644); err != nil {
		_ = fl.Unlock()
		return nil, fmt.Errorf("writing working tree lock: %w", err)
	}

	return &WorkingTreeLock{flock: fl, path: path}, nil
}

// Release drops the lock and removes the PID file.
func (l *WorkingTreeLock) Release() error {
	if l == nil {
		return nil
	}
	err := l.flock.Unlock()
	_ = os.Remove(l.path)
	return err
}

// ErrWorkingTreeLocked is returned when a pick refuses to start because the
// working tree is already owned by another pick.
var ErrWorkingTreeLocked = fmt.Errorf("working tree is locked by another pickgo run")
