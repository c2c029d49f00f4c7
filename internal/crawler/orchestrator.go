package crawler

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/JakeFAU/event-crawler/internal/fetch"
	"github.com/JakeFAU/event-crawler/internal/id/uuid"
	"github.com/JakeFAU/event-crawler/internal/paginate"
	"github.com/JakeFAU/event-crawler/internal/politeness"
	"github.com/JakeFAU/event-crawler/internal/telemetry"
)

// Orchestrator runs one crawl: listing pages in order, each page's detail links in order, one
// fetch at a time.
type Orchestrator struct {
	cfg       Config
	pages     Pager
	fetcher   fetch.Fetcher
	extractor Extractor
	gov       Governor
	sink      OutputSink
	clock     Clock
	logger    *zap.Logger
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithClock overrides the clock used for run timestamps.
func WithClock(c Clock) Option {
	return func(o *Orchestrator) { o.clock = c }
}

// New wires a run. The caller owns the sink and closes it after Run returns.
func New(
	cfg Config,
	pages Pager,
	fetcher fetch.Fetcher,
	extractor Extractor,
	gov Governor,
	sink OutputSink,
	logger *zap.Logger,
	opts ...Option,
) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.RunID == "" {
		if id, err := uuid.New().NewID(); err == nil {
			cfg.RunID = id
		}
	}
	o := &Orchestrator{
		cfg:       cfg,
		pages:     pages,
		fetcher:   fetcher,
		extractor: extractor,
		gov:       gov,
		sink:      sink,
		clock:     wallClock{},
		logger:    logger.Named("crawler").With(zap.String("run_id", cfg.RunID)),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run drives pagination to termination. The returned error is non-nil only when a sink write
// failed; the termination reason is reported in the Summary.
func (o *Orchestrator) Run(ctx context.Context) (Summary, error) {
	sum := Summary{RunID: o.cfg.RunID, Started: o.clock.Now()}
	o.logger.Info("crawl started")

	for {
		page, ok := o.pages.Next(ctx)
		if !ok {
			break
		}
		sum.Pages++
		for _, link := range page.Links {
			if ctx.Err() != nil {
				break
			}
			if err := o.visit(ctx, page.URL, link, &sum); err != nil {
				sum.Finished = o.clock.Now()
				sum.Reason = ReasonSinkFailed
				sum.Err = err
				telemetry.ObserveTermination(string(sum.Reason))
				o.logTermination(sum)
				return sum, err
			}
		}
	}

	cur := o.pages.Cursor()
	sum.Reason = cur.Reason
	sum.Err = cur.Err
	sum.Finished = o.clock.Now()
	telemetry.ObserveTermination(string(sum.Reason))
	o.logTermination(sum)
	return sum, nil
}

// visit fetches and extracts one detail page. Only sink failures are returned.
func (o *Orchestrator) visit(ctx context.Context, referer, link string, sum *Summary) error {
	log := o.logger.With(zap.String("url", link))
	if err := o.gov.AwaitReady(ctx, politeness.Detail); err != nil {
		log.Debug("detail wait interrupted", zap.Error(err))
		return nil
	}

	ctx, span := telemetry.Tracer().Start(ctx, "crawl.detail")
	span.SetAttributes(attribute.String("url", link))
	defer span.End()

	body, err := o.fetcher.Fetch(ctx, fetch.Request{URL: link, Referer: referer})
	o.gov.Done(politeness.Detail)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		sum.Skipped++
		telemetry.ObservePage(string(politeness.Detail), "error")
		telemetry.ObserveDetailFailure()
		log.Warn("detail fetch failed; skipping record", zap.Error(err), zap.Int("status", fetch.Status(err)))
		return nil
	}
	telemetry.ObservePage(string(politeness.Detail), "ok")

	rec, gaps := o.extractor.Extract(body, link)
	for _, g := range gaps {
		sum.Gaps++
		telemetry.ObserveFieldGap(string(g.Field))
		log.Debug("field gap", zap.String("field", string(g.Field)), zap.String("reason", g.Reason))
	}

	// A record that was fetched is written even if the run is being canceled.
	if err := o.sink.Write(context.WithoutCancel(ctx), rec); err != nil {
		span.RecordError(err)
		return fmt.Errorf("write record %s: %w", link, err)
	}
	sum.Records++
	telemetry.ObserveRecord()
	log.Info("record written", zap.String("title", rec.Title), zap.Int("gaps", len(gaps)))
	return nil
}

func (o *Orchestrator) logTermination(sum Summary) {
	fields := []zap.Field{
		zap.String("reason", string(sum.Reason)),
		zap.Int("pages", sum.Pages),
		zap.Int("records", sum.Records),
		zap.Int("skipped", sum.Skipped),
		zap.Int("gaps", sum.Gaps),
		zap.Duration("elapsed", sum.Finished.Sub(sum.Started)),
	}
	if sum.Err != nil {
		fields = append(fields, zap.Error(sum.Err))
	}
	switch {
	case sum.Clean():
		o.logger.Info("crawl finished", fields...)
	case sum.Reason == paginate.Canceled:
		o.logger.Warn("crawl canceled; partial output kept", fields...)
	default:
		o.logger.Error("crawl stopped early", fields...)
	}
}

type wallClock struct{}

func (wallClock) Now() time.Time { return time.Now().UTC() }
