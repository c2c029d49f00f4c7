package sink

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	pspublisher "github.com/JakeFAU/event-crawler/internal/publisher/pubsub"
	"github.com/JakeFAU/event-crawler/internal/storage"
	"github.com/JakeFAU/event-crawler/internal/storage/postgres"
)

const (
	csvContentType   = "text/csv; charset=utf-8"
	jsonlContentType = "application/x-ndjson"
)

// Config selects the sinks for one run.
type Config struct {
	// Path is a local file or gs://bucket/object.
	Path         string
	Format       string
	CalendarName string
	// TimeZone places ICS start times; empty means UTC.
	TimeZone string
	RunID    string

	Postgres      postgres.EventStoreConfig
	PubSubProject string
	PubSubTopic   string

	StorageOptions []option.ClientOption
	PubSubOptions  []option.ClientOption
}

// Open builds the file sink for cfg.Path plus any configured Postgres and Pub/Sub sinks.
// Everything already opened is closed again when a later sink fails.
func Open(ctx context.Context, cfg Config, logger *zap.Logger) (Sink, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	var sinks Multi
	fail := func(err error) (Sink, error) {
		_ = sinks.Close(ctx)
		return nil, err
	}

	file, err := openFile(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	sinks = append(sinks, file)

	if cfg.Postgres.DSN != "" {
		store, err := postgres.NewEventStore(ctx, cfg.Postgres)
		if err != nil {
			return fail(err)
		}
		if err := store.EnsureTable(ctx); err != nil {
			store.Close()
			return fail(err)
		}
		sinks = append(sinks, NewPostgres(store, cfg.RunID))
		logger.Info("postgres sink enabled", zap.String("table", cfg.Postgres.Table))
	}

	if cfg.PubSubTopic != "" {
		if cfg.PubSubProject == "" {
			return fail(fmt.Errorf("pubsub.project_id is required when pubsub.topic is set"))
		}
		client, err := pubsub.NewClient(ctx, cfg.PubSubProject, cfg.PubSubOptions...)
		if err != nil {
			return fail(fmt.Errorf("create pubsub client: %w", err))
		}
		pub := pspublisher.New(client.Topic(cfg.PubSubTopic))
		sinks = append(sinks, &withClosers{Sink: NewPubSub(pub, cfg.RunID), closers: []func() error{client.Close}})
		logger.Info("pubsub sink enabled", zap.String("topic", cfg.PubSubTopic))
	}

	if len(sinks) == 1 {
		return sinks[0], nil
	}
	return sinks, nil
}

func openFile(ctx context.Context, cfg Config, logger *zap.Logger) (Sink, error) {
	format, err := ParseFormat(cfg.Format, cfg.Path)
	if err != nil {
		return nil, err
	}
	dest, err := storage.Resolve(ctx, cfg.Path, cfg.StorageOptions...)
	if err != nil {
		return nil, err
	}

	var s Sink
	switch format {
	case FormatICS:
		loc := time.UTC
		if cfg.TimeZone != "" {
			if loc, err = time.LoadLocation(cfg.TimeZone); err != nil {
				_ = dest.Close()
				return nil, fmt.Errorf("load time zone %q: %w", cfg.TimeZone, err)
			}
		}
		s = NewICS(dest.Store, dest.Key, cfg.CalendarName, loc)
	case FormatJSONL:
		w, _, err := dest.Store.Create(ctx, dest.Key, jsonlContentType)
		if err != nil {
			_ = dest.Close()
			return nil, fmt.Errorf("open %s: %w", dest.URI, err)
		}
		s = NewJSONL(w)
	default:
		w, _, err := dest.Store.Create(ctx, dest.Key, csvContentType)
		if err != nil {
			_ = dest.Close()
			return nil, fmt.Errorf("open %s: %w", dest.URI, err)
		}
		csvSink, err := NewCSV(w)
		if err != nil {
			_ = w.Close()
			_ = dest.Close()
			return nil, err
		}
		s = csvSink
	}
	logger.Info("output opened", zap.String("uri", dest.URI), zap.String("format", string(format)))
	return &withClosers{Sink: s, closers: []func() error{dest.Close}}, nil
}
