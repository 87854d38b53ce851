package config

const (
	defaultWorkspaceDir         = "~/.local/share/canticle"
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
	defaultLogRetentionDays     = 60
	defaultImportTimeoutSeconds = 120
	defaultLockTimeoutSeconds   = 30
)

// Default returns a Config populated with repository defaults. Path fields
// other than the workspace dir stay empty here; normalize derives them from
// the workspace dir so overriding it relocates the whole tree.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkspaceDir: defaultWorkspaceDir,
		},
		Import: Import{
			TimeoutSeconds: defaultImportTimeoutSeconds,
		},
		Workspace: Workspace{
			LockTimeoutSeconds: defaultLockTimeoutSeconds,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
