package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateImport(); err != nil {
		return err
	}
	if err := c.validateWorkspace(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.DatabasePath == "" {
		return errors.New("paths.database_path must be set")
	}
	if c.Paths.ContainersDir == "" {
		return errors.New("paths.containers_dir must be set")
	}
	if c.Paths.DatabasePath == c.Paths.ContainersDir {
		return errors.New("paths.database_path and paths.containers_dir must differ")
	}
	return nil
}

func (c *Config) validateImport() error {
	if c.Import.TimeoutSeconds <= 0 {
		return fmt.Errorf("import.timeout_seconds must be positive, got %d", c.Import.TimeoutSeconds)
	}
	return nil
}

func (c *Config) validateWorkspace() error {
	if c.Workspace.LockTimeoutSeconds <= 0 {
		return fmt.Errorf("workspace.lock_timeout_seconds must be positive, got %d", c.Workspace.LockTimeoutSeconds)
	}
	return nil
}
