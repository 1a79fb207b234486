package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/youssefawwad88/RealEstate/pkg/constants"
)

// ErrLockTimeout is returned when a file lock cannot be acquired in time.
var ErrLockTimeout = errors.New("could not acquire file lock")

const lockRetryInterval = 100 * time.Millisecond

// FileLock is an advisory lock held by creating <path>.lock exclusively.
type FileLock struct {
	path    string
	timeout time.Duration
	held    bool
}

// NewFileLock creates a lock guarding path.
func NewFileLock(path string, timeout time.Duration) *FileLock {
	if timeout <= 0 {
		timeout = constants.DefaultLockTimeoutSeconds * time.Second
	}
	return &FileLock{path: path + ".lock", timeout: timeout}
}

// Acquire retries until the lock file is created, the timeout passes or ctx
// is done.
func (l *FileLock) Acquire(ctx context.Context) error {
	deadline := time.Now().Add(l.timeout)
	for {
		f, err := os.OpenFile(l.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			fmt.Fprintf(f, "pid:%d\ntime:%s\n", os.Getpid(), time.Now().Format(time.RFC3339))
			f.Close()
			l.held = true
			return nil
		}
		if !errors.Is(err, os.ErrExist) {
			return fmt.Errorf("creating lock file %s: %w", l.path, err)
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("%w %s within %s", ErrLockTimeout, l.path, l.timeout)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(lockRetryInterval):
		}
	}
}

// Release removes the lock file. It is a no-op when the lock is not held.
func (l *FileLock) Release() error {
	if !l.held {
		return nil
	}
	l.held = false
	if err := os.Remove(l.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing lock file %s: %w", l.path, err)
	}
	return nil
}

// Held reports whether the lock is currently held by l.
func (l *FileLock) Held() bool {
	return l.held
}
