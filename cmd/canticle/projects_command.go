package main

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"canticle/internal/config"
	"canticle/internal/store"
)

func newProjectsCommand(ctx *commandContext) *cobra.Command {
	var derived bool

	cmd := &cobra.Command{
		Use:   "projects",
		Short: "List projects in the workspace",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *config.Config, st *store.Store, _ *slog.Logger) error {
				projects, err := st.ProjectCollections(cmd.Context(), derived)
				if err != nil {
					return err
				}

				rows := make([][]string, 0, len(projects))
				for _, project := range projects {
					meta, err := st.ResourceMetadataByID(cmd.Context(), project.MetadataID)
					if err != nil {
						return err
					}
					lang, err := st.LanguageByID(cmd.Context(), meta.LanguageID)
					if err != nil {
						return err
					}
					resources, err := st.SubtreeResourceIDs(cmd.Context(), project.ID)
					if err != nil {
						return err
					}
					rows = append(rows, []string{
						project.Slug,
						project.Title,
						lang.Slug,
						meta.Identifier,
						strconv.Itoa(len(resources)),
					})
				}

				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"PROJECT", "TITLE", "LANGUAGE", "CONTAINER", "RESOURCES"},
					rows,
				))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&derived, "derived", false, "List derived projects instead of sources")

	return cmd
}
