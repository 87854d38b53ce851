package workspace

import (
	"context"
	"testing"

	"canticle/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.WorkspaceDir = t.TempDir()
	cfg.Workspace.LockTimeoutSeconds = 1
	return &cfg
}

func TestLockAcquireRelease(t *testing.T) {
	lock := NewLock(testConfig(t))
	if err := lock.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire returned error: %v", err)
	}
	if err := lock.Release(); err != nil {
		t.Fatalf("Release returned error: %v", err)
	}
}

func TestLockBlocksSecondHolder(t *testing.T) {
	cfg := testConfig(t)
	first := NewLock(cfg)
	if err := first.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire returned error: %v", err)
	}
	defer first.Release()

	second := NewLock(cfg)
	if err := second.Acquire(context.Background()); err == nil {
		second.Release()
		t.Fatal("expected second acquire to time out")
	}
}
