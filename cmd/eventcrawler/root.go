package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/event-crawler/internal/config"
	"github.com/JakeFAU/event-crawler/internal/logging"
	pkgconfig "github.com/JakeFAU/event-crawler/pkg/config"
)

// cfgKeyType is the key for storing the loaded Config in the command context.
type cfgKeyType string

const cfgKey cfgKeyType = "config"

func newRootCmd() *cobra.Command {
	var cfgFile string
	cmd := &cobra.Command{
		Use:   "eventcrawler",
		Short: "Crawl a paginated event listing into CSV, JSONL, ICS, Postgres or Pub/Sub.",
		Long: `eventcrawler walks an event listing page by page, visits each event's detail
page, and exports one normalized record per event. Requests are sequential
and spaced by configurable politeness delays.`,
		SilenceUsage: true,

		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			path := cfgFile
			if path == "" {
				found, err := pkgconfig.Discover()
				if err != nil {
					return err
				}
				path = found
			}
			cfg, err := config.Load(path)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger, err := logging.New(cfg.Logging.Development)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			logging.Set(logger)
			if path != "" {
				logger.Debug("using config file", zap.String("path", path))
			}
			cmd.SetContext(context.WithValue(cmd.Context(), cfgKey, cfg))
			return nil
		},

		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			_ = logging.L.Sync()
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./config.yaml or $HOME/.eventcrawler/config.yaml)")

	cmd.AddCommand(newCrawlCmd())
	cmd.AddCommand(newScheduleCmd())
	cmd.AddCommand(newRulesCmd())
	return cmd
}

func resolveConfig(ctx context.Context) (config.Config, error) {
	cfg, ok := ctx.Value(cfgKey).(config.Config)
	if !ok {
		return config.Config{}, errors.New("configuration not loaded")
	}
	return cfg, nil
}
