package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/consumer"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/metrics"
)

// Version is injected at build time.
var Version = "dev"

type rootOptions struct {
	configPath string
	docsPath   string
	strict     bool
	jsonOut    bool
}

// app is what every subcommand works with once config and corpus are loaded.
type app struct {
	cfg      *config.Config
	engine   *indexer.Engine
	policy   indexer.ExecutionPolicy
	metrics  *metrics.Metrics
	registry *prometheus.Registry
	ctx      context.Context
}

// Execute builds the command tree and runs it with args.
func Execute(args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	root := newRootCmd()
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:          "searchserver",
		Short:        "In-memory TF-IDF document search",
		Version:      Version,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to YAML config file")
	root.PersistentFlags().StringVar(&opts.docsPath, "docs", "", "path to YAML corpus file (required)")
	root.PersistentFlags().BoolVar(&opts.strict, "strict", false, "fail on the first rejected document")
	root.PersistentFlags().BoolVar(&opts.jsonOut, "json", false, "print results as JSON")

	root.AddCommand(
		newSearchCmd(opts),
		newBatchCmd(opts),
		newMatchCmd(opts),
		newDedupCmd(opts),
	)
	return root
}

// load reads config and corpus and builds the engine.
func (o *rootOptions) load(ctx context.Context) (*app, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	logger.SetupWriter(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)

	if o.docsPath == "" {
		return nil, fmt.Errorf("--docs is required")
	}
	f, err := os.Open(o.docsPath)
	if err != nil {
		return nil, fmt.Errorf("opening corpus: %w", err)
	}
	defer f.Close()
	corpus, err := ingestion.DecodeCorpus(f)
	if err != nil {
		return nil, err
	}

	policy, err := indexer.ParsePolicy(cfg.Search.Policy)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, policy: policy, ctx: ctx}
	engineOpts := []indexer.Option{
		indexer.WithShardCount(cfg.Search.ShardCount),
		indexer.WithMaxWorkers(cfg.Search.MaxWorkers),
		indexer.WithPolicy(policy),
	}
	if cfg.Metrics.Enabled {
		a.registry = prometheus.NewRegistry()
		a.metrics = metrics.New(a.registry)
		engineOpts = append(engineOpts, indexer.WithMetrics(a.metrics))
	}

	// corpus stop-words extend the configured ones
	stopWords := append(append([]string{}, cfg.Search.StopWords...), corpus.StopWords...)
	a.engine, err = indexer.NewEngine(stopWords, engineOpts...)
	if err != nil {
		return nil, err
	}

	done := logger.LogDuration(slog.Default(), "load corpus")
	stats, err := consumer.New(a.engine, o.strict).Consume(ctx, corpus.Documents)
	done()
	if err != nil {
		return nil, err
	}
	slog.Debug("corpus loaded",
		"path", o.docsPath,
		"indexed", stats.Indexed,
		"rejected", stats.Rejected,
	)
	return a, nil
}

// serveMetrics exposes the command's metrics and an engine health check
// until the process is interrupted. It is a no-op when metrics are off.
func (a *app) serveMetrics() {
	if a.registry == nil {
		return
	}
	checker := health.NewChecker()
	checker.Register("engine", func(context.Context) error {
		return a.engine.Verify()
	})
	shutdown := metrics.StartServer(a.cfg.Metrics.Port, a.registry, checker)
	slog.Info("serving metrics until interrupted", "port", a.cfg.Metrics.Port)
	<-a.ctx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		slog.Error("metrics server shutdown error", "error", err)
	}
}

// withApp loads the engine, runs the subcommand body and then serves
// metrics if enabled.
func withApp(opts *rootOptions, run func(cmd *cobra.Command, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := opts.load(cmd.Context())
		if err != nil {
			return err
		}
		if err := run(cmd, a, args); err != nil {
			return err
		}
		a.serveMetrics()
		return nil
	}
}
