package main

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"canticle/internal/config"
	"canticle/internal/logging"
	"canticle/internal/store"
	"canticle/internal/workspace"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() *slog.Logger {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		logging.CleanupOldLogs(logger, cfg.Paths.LogDir, "canticle*.log", cfg.Logging.RetentionDays)
		c.logger = logger
	})
	return c.logger
}

// withStore opens the workspace store, runs fn, and closes it.
func (c *commandContext) withStore(fn func(cfg *config.Config, st *store.Store, logger *slog.Logger) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	st, err := store.Open(cfg)
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(cfg, st, c.ensureLogger())
}

// withLockedStore additionally holds the workspace lock, for commands that
// mutate the tree or container directories.
func (c *commandContext) withLockedStore(ctx context.Context, fn func(cfg *config.Config, st *store.Store, logger *slog.Logger) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	lock := workspace.NewLock(cfg)
	if err := lock.Acquire(ctx); err != nil {
		return err
	}
	defer lock.Release()
	return c.withStore(fn)
}
