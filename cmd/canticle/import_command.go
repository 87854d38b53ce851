package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"canticle/internal/config"
	"canticle/internal/importer"
	"canticle/internal/rcpkg"
	"canticle/internal/store"
)

func newImportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "import <container-dir>",
		Short: "Import a resource container into the workspace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			pkg, err := rcpkg.LoadPackage(dir)
			if err != nil {
				return err
			}

			return ctx.withLockedStore(cmd.Context(), func(cfg *config.Config, st *store.Store, logger *slog.Logger) error {
				opCtx, cancel := context.WithTimeout(cmd.Context(), time.Duration(cfg.Import.TimeoutSeconds)*time.Second)
				defer cancel()

				result, err := importer.New(st, logger).Import(opCtx, pkg)
				if err != nil {
					return err
				}
				if result != importer.Success {
					return fmt.Errorf("import %s/%s: %s", pkg.Language.Slug, pkg.Metadata.Identifier, result)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "imported %s/%s (%s)\n", pkg.Language.Slug, pkg.Metadata.Identifier, pkg.Type)
				return nil
			})
		},
	}
}

func newRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <language> <identifier>",
		Short: "Remove an imported container and everything it owns",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLockedStore(cmd.Context(), func(_ *config.Config, st *store.Store, logger *slog.Logger) error {
				if err := importer.New(st, logger).Remove(cmd.Context(), args[0], args[1]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "removed %s/%s\n", args[0], args[1])
				return nil
			})
		},
	}
}
