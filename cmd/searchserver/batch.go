package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/merger"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/paginator"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/logger"
)

type batchOptions struct {
	joined   bool
	merge    int
	pageSize int
}

func newBatchCmd(root *rootOptions) *cobra.Command {
	opts := &batchOptions{}
	cmd := &cobra.Command{
		Use:   "batch QUERY...",
		Short: "Run queries concurrently",
		Long: `Runs all queries concurrently and prints their results in argument
order. With --joined the results are printed as one list, optionally split
into pages; with --merge N only the best N distinct documents overall are
printed. Any invalid query fails the whole batch.`,
		Args: cobra.MinimumNArgs(1),
		RunE: withApp(root, func(cmd *cobra.Command, a *app, args []string) error {
			return runBatch(cmd, root, opts, a, args)
		}),
	}
	cmd.Flags().BoolVar(&opts.joined, "joined", false, "print all results as one list")
	cmd.Flags().IntVar(&opts.merge, "merge", 0, "print only the best N documents across all queries")
	cmd.Flags().IntVar(&opts.pageSize, "page-size", 0, "split joined output into pages of this size")
	return cmd
}

func runBatch(cmd *cobra.Command, root *rootOptions, opts *batchOptions, a *app, queries []string) error {
	ctx := logger.WithRequestID(cmd.Context(), fmt.Sprintf("batch-%d", time.Now().UnixNano()))
	done := logger.LogDuration(logger.FromContext(ctx), "batch")
	defer done()

	ex := executor.New(a.engine,
		executor.WithMaxWorkers(a.cfg.Search.MaxWorkers),
		executor.WithMetrics(a.metrics),
	)
	out := cmd.OutOrStdout()

	switch {
	case opts.merge > 0:
		results, err := ex.ProcessQueries(ctx, queries)
		if err != nil {
			return err
		}
		return printDocuments(out, root.jsonOut, "", merger.Merge(results, opts.merge))

	case opts.joined:
		docs, err := ex.ProcessQueriesJoined(ctx, queries)
		if err != nil {
			return err
		}
		if opts.pageSize <= 0 {
			return printDocuments(out, root.jsonOut, "", docs)
		}
		pages, err := paginator.Paginate(docs, opts.pageSize)
		if err != nil {
			return err
		}
		if root.jsonOut {
			items := make([][]index.Document, len(pages))
			for i, p := range pages {
				items[i] = p.Items
			}
			return writeJSON(out, items)
		}
		for _, p := range pages {
			fmt.Fprintf(out, "Page %d: %s\n", p.Number, p)
		}
		return nil

	default:
		results, err := ex.ProcessQueries(ctx, queries)
		if err != nil {
			return err
		}
		for i, docs := range results {
			if err := printDocuments(out, root.jsonOut, queries[i], docs); err != nil {
				return err
			}
		}
		return nil
	}
}
