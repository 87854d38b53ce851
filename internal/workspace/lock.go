// Package workspace coordinates cross-process access to a workspace. SQLite
// serializes individual statements, but import and derivation span many
// statements plus container directory writes, so mutating commands hold one
// coarse file lock for their whole duration.
package workspace

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"canticle/internal/config"
)

// Lock guards a workspace against concurrent mutating commands.
type Lock struct {
	fl      *flock.Flock
	timeout time.Duration
}

// NewLock builds the lock for the configured workspace directory.
func NewLock(cfg *config.Config) *Lock {
	return &Lock{
		fl:      flock.New(filepath.Join(cfg.Paths.WorkspaceDir, "canticle.lock")),
		timeout: time.Duration(cfg.Workspace.LockTimeoutSeconds) * time.Second,
	}
}

// Acquire blocks until the lock is held, the timeout elapses, or ctx is
// cancelled.
func (l *Lock) Acquire(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	ok, err := l.fl.TryLockContext(ctx, 100*time.Millisecond)
	if err != nil {
		return fmt.Errorf("acquire workspace lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("workspace %s is locked by another process", l.fl.Path())
	}
	return nil
}

// Release drops the lock; safe to call when not held.
func (l *Lock) Release() error {
	if err := l.fl.Unlock(); err != nil {
		return fmt.Errorf("release workspace lock: %w", err)
	}
	return nil
}
