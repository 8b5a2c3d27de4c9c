package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/dedup"
)

func newDedupCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "dedup",
		Short: "Remove documents whose word set repeats an earlier document",
		Args:  cobra.NoArgs,
		RunE: withApp(root, func(cmd *cobra.Command, a *app, _ []string) error {
			removed, err := dedup.RemoveDuplicates(cmd.Context(), a.engine, dedup.WithMetrics(a.metrics))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if root.jsonOut {
				return writeJSON(out, map[string]any{
					"removed":   removed,
					"remaining": a.engine.DocumentIDs(),
				})
			}
			for _, id := range removed {
				fmt.Fprintf(out, "Found duplicate document id %d\n", id)
			}
			fmt.Fprintf(out, "documents remaining: %d\n", a.engine.GetDocumentCount())
			return nil
		}),
	}
}
