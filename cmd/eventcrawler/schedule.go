package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/JakeFAU/event-crawler/internal/config"
	"github.com/JakeFAU/event-crawler/internal/logging"
	"github.com/JakeFAU/event-crawler/internal/telemetry"
)

func newScheduleCmd() *cobra.Command {
	var spec string
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run crawls repeatedly on a cron schedule",
		Long: `schedule keeps the process alive and starts a crawl whenever the cron spec
fires. A run that is still going when the next tick arrives causes that tick
to be skipped. Put {date} in output.path to keep one file per run.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := resolveConfig(cmd.Context())
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("spec") {
				cfg.Schedule.Spec = spec
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runSchedule(ctx, cfg, logging.L)
		},
	}
	cmd.Flags().StringVar(&spec, "spec", "", `cron spec, e.g. "0 6 * * *" or "@daily"`)
	return cmd
}

// runSchedule blocks until ctx is done, starting a crawl on every tick of cfg.Schedule.Spec.
// The metrics listener, when configured, stays up between runs.
func runSchedule(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	logger = logger.Named("schedule")
	cronLogger := cron.PrintfLogger(zap.NewStdLog(logger))
	c := cron.New(cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)))

	g, gctx := errgroup.WithContext(ctx)
	_, err := c.AddFunc(cfg.Schedule.Spec, func() {
		sum, err := runCrawl(gctx, cfg, logger)
		switch {
		case err != nil:
			logger.Error("scheduled crawl failed", zap.Error(err))
		case sum.Failure() != nil:
			logger.Warn("scheduled crawl ended early",
				zap.String("run_id", sum.RunID),
				zap.String("reason", string(sum.Reason)),
				zap.Error(sum.Failure()),
			)
		default:
			logger.Info("scheduled crawl finished",
				zap.String("run_id", sum.RunID),
				zap.Int("records", sum.Records),
			)
		}
	})
	if err != nil {
		return fmt.Errorf("parse schedule %q: %w", cfg.Schedule.Spec, err)
	}

	if cfg.Metrics.Addr != "" {
		g.Go(func() error {
			return telemetry.Serve(gctx, cfg.Metrics.Addr, logger)
		})
	}
	g.Go(func() error {
		c.Start()
		logger.Info("schedule started", zap.String("spec", cfg.Schedule.Spec))
		<-gctx.Done()
		<-c.Stop().Done()
		logger.Info("schedule stopped")
		return nil
	})
	return g.Wait()
}
