package rcpkg

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Writer materializes containers on disk for the derivation engine.
type Writer interface {
	// CreateContainer writes a new container directory with the given
	// manifest and returns its path.
	CreateContainer(ctx context.Context, m *Manifest) (string, error)
	// AddProject appends a project entry to a container manifest unless an
	// entry with the same identifier already exists.
	AddProject(ctx context.Context, containerDir string, p ManifestProject) error
}

// DirWriter writes plain container directories under a root.
type DirWriter struct {
	root string
	log  *slog.Logger
}

// NewDirWriter returns a DirWriter rooted at dir.
func NewDirWriter(dir string, logger *slog.Logger) *DirWriter {
	return &DirWriter{root: dir, log: logger}
}

// CreateContainer builds the directory under a temporary name and renames it
// into place so a crash mid-write never leaves a half-formed container at
// the final path. An existing container is returned as-is; directory writes
// cannot ride the store transaction, so callers retrying after a rollback
// find the container already in place.
func (w *DirWriter) CreateContainer(ctx context.Context, m *Manifest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	name := fmt.Sprintf("%s_%s", m.DublinCore.Language.Identifier, m.DublinCore.Identifier)
	final := filepath.Join(w.root, name)
	if _, err := os.Stat(final); err == nil {
		return final, nil
	}

	staging := filepath.Join(w.root, ".tmp-"+uuid.NewString())
	if err := os.MkdirAll(staging, 0o755); err != nil {
		return "", fmt.Errorf("create container staging dir: %w", err)
	}
	defer os.RemoveAll(staging)

	if err := WriteManifest(staging, m); err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Join(staging, "content"), 0o755); err != nil {
		return "", fmt.Errorf("create container content dir: %w", err)
	}

	if err := os.Rename(staging, final); err != nil {
		return "", fmt.Errorf("finalize container %s: %w", name, err)
	}
	if w.log != nil {
		w.log.Debug("container created", "path", final, "identifier", m.DublinCore.Identifier)
	}
	return final, nil
}

// AddProject appends a manifest project entry if missing.
func (w *DirWriter) AddProject(ctx context.Context, containerDir string, p ManifestProject) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m, err := ReadManifest(containerDir)
	if err != nil {
		return err
	}
	if m.Project(p.Identifier) != nil {
		return nil
	}
	m.Projects = append(m.Projects, p)
	if err := WriteManifest(containerDir, m); err != nil {
		return err
	}
	if w.log != nil {
		w.log.Debug("project added to manifest", "container", containerDir, "project", p.Identifier)
	}
	return nil
}
