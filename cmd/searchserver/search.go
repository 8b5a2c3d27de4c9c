package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/cache"
)

type searchOptions struct {
	status string
	policy string
}

func newSearchCmd(root *rootOptions) *cobra.Command {
	opts := &searchOptions{}
	cmd := &cobra.Command{
		Use:   "search QUERY...",
		Short: "Run queries one after another and print the top documents of each",
		Long: `Runs every argument as a separate query through the request queue.
Words prefixed with "-" exclude documents. After the last query the number
of queries in the trailing window that found nothing is printed.`,
		Args: cobra.MinimumNArgs(1),
		RunE: withApp(root, func(cmd *cobra.Command, a *app, args []string) error {
			return runSearch(cmd, root, opts, a, args)
		}),
	}
	cmd.Flags().StringVar(&opts.status, "status", "", "only documents with this status (actual, irrelevant, banned, removed)")
	cmd.Flags().StringVar(&opts.policy, "policy", "", "execution policy, overrides config (sequential, parallel)")
	return cmd
}

func runSearch(cmd *cobra.Command, root *rootOptions, opts *searchOptions, a *app, queries []string) error {
	policy := a.policy
	if opts.policy != "" {
		p, err := indexer.ParsePolicy(opts.policy)
		if err != nil {
			return err
		}
		policy = p
	}
	pred := indexer.DefaultPredicate
	if opts.status != "" {
		status, err := index.ParseStatus(opts.status)
		if err != nil {
			return err
		}
		pred = indexer.ByStatus(status)
	}

	queue := cache.New(a.engine,
		cache.WithWindow(a.cfg.RequestQueue.Window),
		cache.WithPolicy(policy),
		cache.WithMetrics(a.metrics),
	)
	out := cmd.OutOrStdout()
	for _, q := range queries {
		docs, err := queue.AddFindRequestWith(q, pred)
		if err != nil {
			return fmt.Errorf("search %q: %w", q, err)
		}
		if err := printDocuments(out, root.jsonOut, q, docs); err != nil {
			return err
		}
	}
	if !root.jsonOut {
		fmt.Fprintf(out, "no-result requests: %d\n", queue.NoResultRequests())
	}
	return nil
}
