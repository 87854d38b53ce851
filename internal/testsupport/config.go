package testsupport

import (
	"path/filepath"
	"testing"

	"canticle/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.WorkspaceDir = base
	cfg.Paths.DatabasePath = filepath.Join(base, "content.sqlite")
	cfg.Paths.ContainersDir = filepath.Join(base, "containers")
	cfg.Paths.ExportDir = filepath.Join(base, "export")
	cfg.Paths.LogDir = filepath.Join(base, "logs")

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithLockTimeout overrides the workspace lock timeout.
func WithLockTimeout(seconds int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Workspace.LockTimeoutSeconds = seconds
	}
}
