package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/event-crawler/internal/clock/system"
	"github.com/JakeFAU/event-crawler/internal/config"
	"github.com/JakeFAU/event-crawler/internal/crawler"
	"github.com/JakeFAU/event-crawler/internal/extract"
	collyfetcher "github.com/JakeFAU/event-crawler/internal/fetcher/colly"
	"github.com/JakeFAU/event-crawler/internal/id/uuid"
	"github.com/JakeFAU/event-crawler/internal/normalize"
	"github.com/JakeFAU/event-crawler/internal/paginate"
	"github.com/JakeFAU/event-crawler/internal/politeness"
	"github.com/JakeFAU/event-crawler/internal/rules"
	"github.com/JakeFAU/event-crawler/internal/sink"
	"github.com/JakeFAU/event-crawler/internal/storage/postgres"
	"github.com/JakeFAU/event-crawler/internal/telemetry"
)

// runCrawl wires one Orchestrator from cfg and runs it to termination. Sinks are opened and
// closed outside ctx's cancellation so an interrupted run still finalizes its output.
func runCrawl(ctx context.Context, cfg config.Config, logger *zap.Logger) (crawler.Summary, error) {
	set, err := loadRules(cfg.Rules.File)
	if err != nil {
		return crawler.Summary{}, err
	}

	tp, err := telemetry.InitTracerProvider(ctx, cfg.Tracing.ServiceName)
	if err != nil {
		return crawler.Summary{}, err
	}
	defer func() {
		if err := tp.Shutdown(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("tracer shutdown failed", zap.Error(err))
		}
	}()

	runID, err := uuid.New().NewID()
	if err != nil {
		return crawler.Summary{}, fmt.Errorf("run id: %w", err)
	}
	clk := system.New()

	sinkCtx := context.WithoutCancel(ctx)
	out, err := sink.Open(sinkCtx, sink.Config{
		Path:         sink.ExpandPath(cfg.Output.Path, clk.Now()),
		Format:       cfg.Output.Format,
		CalendarName: cfg.Output.CalendarName,
		TimeZone:     cfg.Output.TimeZone,
		RunID:        runID,
		Postgres: postgres.EventStoreConfig{
			DSN:      cfg.Postgres.DSN,
			Table:    cfg.Postgres.Table,
			MaxConns: cfg.Postgres.MaxConns,
		},
		PubSubProject: cfg.PubSub.ProjectID,
		PubSubTopic:   cfg.PubSub.Topic,
	}, logger)
	if err != nil {
		return crawler.Summary{}, fmt.Errorf("open output: %w", err)
	}

	base := cfg.Base()
	gov := politeness.New(map[politeness.Kind]time.Duration{
		politeness.Listing: cfg.Crawler.ListingDelay,
		politeness.Detail:  cfg.Crawler.DetailDelay,
	}, clk, clk)
	fetcher := collyfetcher.New(collyfetcher.Config{
		UserAgent:      cfg.Crawler.UserAgent,
		Accept:         cfg.Crawler.Accept,
		Timeout:        cfg.HTTP.Timeout,
		MaxRetries:     cfg.HTTP.MaxRetries,
		RetryBaseDelay: cfg.HTTP.RetryBaseDelay,
	}, logger)
	pages := paginate.New(fetcher, extract.NewLinkExtractor(base, set.Listing), gov, paginate.Config{
		ListingURL: paginate.ListingURL(base, cfg.Crawler.ListingPath),
		MaxPages:   cfg.Crawler.MaxPages,
		Referer:    base.String(),
	}, logger)
	extractor := extract.NewDetailExtractor(set, normalize.New(nil), clk)

	orch := crawler.New(crawler.Config{RunID: runID}, pages, fetcher, extractor, gov, out, logger, crawler.WithClock(clk))
	sum, runErr := orch.Run(ctx)
	if cerr := out.Close(sinkCtx); cerr != nil {
		runErr = errors.Join(runErr, fmt.Errorf("close output: %w", cerr))
	}
	return sum, runErr
}

// loadRules returns the built-in rules, overlaid with path when set, after validation.
func loadRules(path string) (rules.Set, error) {
	set := rules.Default()
	if path != "" {
		var err error
		if set, err = rules.Load(path); err != nil {
			return rules.Set{}, err
		}
	}
	if err := set.Validate(); err != nil {
		return rules.Set{}, err
	}
	return set, nil
}
