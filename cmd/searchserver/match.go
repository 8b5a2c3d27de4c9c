package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

type matchOptions struct {
	id int
}

func newMatchCmd(root *rootOptions) *cobra.Command {
	opts := &matchOptions{}
	cmd := &cobra.Command{
		Use:   "match --id N QUERY",
		Short: "Show which query words occur in one document",
		Args:  cobra.MinimumNArgs(1),
		RunE: withApp(root, func(cmd *cobra.Command, a *app, args []string) error {
			query := strings.Join(args, " ")
			words, status, err := a.engine.MatchDocumentWith(cmd.Context(), a.policy, query, opts.id)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if root.jsonOut {
				return writeJSON(out, map[string]any{
					"id":     opts.id,
					"status": status,
					"words":  words,
				})
			}
			fmt.Fprintf(out, "{ document_id = %d, status = %s, words = %s }\n", opts.id, status, strings.Join(words, " "))
			return nil
		}),
	}
	cmd.Flags().IntVar(&opts.id, "id", 0, "document id")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}
