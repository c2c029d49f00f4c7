package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/JakeFAU/event-crawler/internal/config"
	"github.com/JakeFAU/event-crawler/internal/logging"
	"github.com/JakeFAU/event-crawler/internal/telemetry"
)

func newCrawlCmd() *cobra.Command {
	var (
		baseURL  string
		maxPages int
		output   string
		format   string
	)
	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Run one crawl of the event listing",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := resolveConfig(cmd.Context())
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("base-url") {
				cfg.Crawler.BaseURL = baseURL
			}
			if flags.Changed("max-pages") {
				cfg.Crawler.MaxPages = maxPages
			}
			if flags.Changed("output") {
				cfg.Output.Path = output
			}
			if flags.Changed("format") {
				cfg.Output.Format = format
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return crawlWithMetrics(cmd.Context(), cfg, logging.L)
		},
	}
	cmd.Flags().StringVar(&baseURL, "base-url", "", "site root, e.g. https://www.outdoorlads.com")
	cmd.Flags().IntVar(&maxPages, "max-pages", 0, "maximum listing pages to fetch")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output path or gs://bucket/object ({date} is expanded)")
	cmd.Flags().StringVar(&format, "format", "", "csv, jsonl or ics (default: from the output extension)")
	return cmd
}

// crawlWithMetrics runs one crawl next to the optional metrics listener and stops the
// listener once the crawl returns.
func crawlWithMetrics(parent context.Context, cfg config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	serveCtx, stopServe := context.WithCancel(gctx)
	defer stopServe()

	if cfg.Metrics.Addr != "" {
		g.Go(func() error {
			return telemetry.Serve(serveCtx, cfg.Metrics.Addr, logger)
		})
	}
	g.Go(func() error {
		defer stopServe()
		sum, err := runCrawl(gctx, cfg, logger)
		if err != nil {
			return err
		}
		if ferr := sum.Failure(); ferr != nil {
			return fmt.Errorf("crawl %s ended on %s: %w", sum.RunID, sum.Reason, ferr)
		}
		return nil
	})
	return g.Wait()
}
