package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"canticle/internal/config"
	"canticle/internal/derivation"
	"canticle/internal/rcpkg"
	"canticle/internal/store"
)

func newDeriveCommand(ctx *commandContext) *cobra.Command {
	var languageName string
	var direction string

	cmd := &cobra.Command{
		Use:   "derive <project-slug> <language>",
		Short: "Derive a project into a new language",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectSlug, languageSlug := args[0], args[1]

			return ctx.withLockedStore(cmd.Context(), func(cfg *config.Config, st *store.Store, logger *slog.Logger) error {
				sources, err := st.ProjectCollections(cmd.Context(), false)
				if err != nil {
					return err
				}
				var source *store.Collection
				for _, project := range sources {
					if project.Slug == projectSlug {
						source = project
						break
					}
				}
				if source == nil {
					return fmt.Errorf("no source project with slug %q", projectSlug)
				}

				writer := rcpkg.NewDirWriter(cfg.Paths.ContainersDir, logger)
				engine := derivation.New(st, writer, logger)
				derived, err := engine.Derive(cmd.Context(), derivation.Request{
					SourceProjectID:   source.ID,
					LanguageSlug:      languageSlug,
					LanguageName:      languageName,
					LanguageDirection: direction,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "derived %s into %s (container %s)\n", derived.Project.Slug, languageSlug, derived.Metadata.Path)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&languageName, "language-name", "", "Display name for a language new to the workspace")
	cmd.Flags().StringVar(&direction, "direction", "", "Script direction for a new language (ltr or rtl)")

	return cmd
}
