package rcpkg

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// ManifestFilename is the manifest file inside a container directory.
const ManifestFilename = "manifest.toml"

// Manifest is the on-disk description of a container.
type Manifest struct {
	DublinCore DublinCore        `toml:"dublin_core"`
	Projects   []ManifestProject `toml:"projects"`
}

// DublinCore is the manifest metadata block.
type DublinCore struct {
	ConformsTo  string           `toml:"conformsto"`
	Creator     string           `toml:"creator"`
	Description string           `toml:"description"`
	Format      string           `toml:"format"`
	Identifier  string           `toml:"identifier"`
	Issued      string           `toml:"issued"`
	Language    ManifestLanguage `toml:"language"`
	Modified    string           `toml:"modified"`
	Publisher   string           `toml:"publisher"`
	Relations   []string         `toml:"relation"`
	Subject     string           `toml:"subject"`
	Type        string           `toml:"type"`
	Title       string           `toml:"title"`
	Version     string           `toml:"version"`
}

// ManifestLanguage identifies the container language in the manifest.
type ManifestLanguage struct {
	Identifier string `toml:"identifier"`
	Title      string `toml:"title"`
	Direction  string `toml:"direction"`
}

// ManifestProject is one project entry of a container manifest.
type ManifestProject struct {
	Identifier string `toml:"identifier"`
	Title      string `toml:"title"`
	Path       string `toml:"path"`
	Sort       int64  `toml:"sort"`
}

// Project returns the entry with the given identifier, or nil.
func (m *Manifest) Project(identifier string) *ManifestProject {
	for i := range m.Projects {
		if m.Projects[i].Identifier == identifier {
			return &m.Projects[i]
		}
	}
	return nil
}

// ReadManifest loads the manifest from a container directory.
func ReadManifest(containerDir string) (*Manifest, error) {
	path := filepath.Join(containerDir, ManifestFilename)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	return &m, nil
}

// WriteManifest writes the manifest into a container directory.
func WriteManifest(containerDir string, m *Manifest) error {
	data, err := toml.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	path := filepath.Join(containerDir, ManifestFilename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}
