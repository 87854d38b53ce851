package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"canticle/internal/config"
	"canticle/internal/store"
)

func newLanguagesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List languages known to the workspace",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *config.Config, st *store.Store, _ *slog.Logger) error {
				languages, err := st.Languages(cmd.Context())
				if err != nil {
					return err
				}

				rows := make([][]string, 0, len(languages))
				for _, lang := range languages {
					rows = append(rows, []string{lang.Slug, lang.Name, lang.Direction})
				}

				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"SLUG", "NAME", "DIRECTION"},
					rows,
				))
				return nil
			})
		},
	}
}
