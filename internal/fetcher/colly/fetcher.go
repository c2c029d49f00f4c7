// Package collyfetcher implements fetch.Fetcher using gocolly.
package collyfetcher

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/JakeFAU/event-crawler/internal/fetch"
)

// DefaultUserAgent is a browser-like agent string; the site serves reduced markup to unknown
// agents.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// DefaultAccept mirrors a browser navigation request.
const DefaultAccept = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"

// Config controls collector behavior.
type Config struct {
	UserAgent string
	Accept    string
	Timeout   time.Duration
	// MaxRetries is the number of extra attempts after a transient failure.
	MaxRetries int
	// RetryBaseDelay seeds the exponential backoff.
	RetryBaseDelay time.Duration
}

// Fetcher implements fetch.Fetcher using the Colly collector. It issues one request at a time;
// robots.txt is not consulted.
type Fetcher struct {
	cfg           Config
	transport     http.RoundTripper
	baseCollector *colly.Collector
	retry         *ExponentialRetryPolicy
	logger        *zap.Logger
}

type collectorHooks interface {
	OnRequest(colly.RequestCallback)
	OnResponse(colly.ResponseCallback)
	OnError(colly.ErrorCallback)
}

// New builds a Fetcher.
func New(cfg Config, logger *zap.Logger) *Fetcher {
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Accept == "" {
		cfg.Accept = DefaultAccept
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 25 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	c := colly.NewCollector(colly.Async(false))
	transport := newHTTPTransport()
	c.WithTransport(transport)

	return &Fetcher{
		cfg:           cfg,
		transport:     transport,
		baseCollector: c,
		retry:         NewExponentialRetryPolicy(cfg.MaxRetries+1, cfg.RetryBaseDelay),
		logger:        logger.Named("fetcher"),
	}
}

// Fetch retrieves req.URL, retrying transient failures with backoff.
func (f *Fetcher) Fetch(ctx context.Context, req fetch.Request) ([]byte, error) {
	for attempt := 1; ; attempt++ {
		body, err := f.fetchOnce(ctx, req)
		if err == nil {
			return body, nil
		}
		if !f.retry.ShouldRetry(err, attempt) {
			return nil, err
		}
		backoff := f.retry.Backoff(attempt)
		f.logger.Debug("retrying fetch",
			zap.String("url", req.URL),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", backoff),
			zap.Error(err),
		)
		if !sleep(ctx, backoff) {
			return nil, err
		}
	}
}

func (f *Fetcher) fetchOnce(ctx context.Context, req fetch.Request) ([]byte, error) {
	var (
		body     []byte
		fetchErr error
	)
	collector := f.buildCollector(ctx, req, &body, &fetchErr)
	if err := f.runCollector(ctx, collector, req.URL, &fetchErr); err != nil {
		return nil, err
	}
	return body, nil
}

func (f *Fetcher) buildCollector(
	ctx context.Context,
	req fetch.Request,
	body *[]byte,
	fetchErr *error,
) *colly.Collector {
	collector := f.baseCollector.Clone()
	// Bound to the caller so an abandoned Visit stops with it.
	collector.Context = ctx
	collector.UserAgent = f.cfg.UserAgent
	collector.IgnoreRobotsTxt = true
	collector.AllowURLRevisit = true
	collector.SetRequestTimeout(f.cfg.Timeout)
	collector.WithTransport(f.transport)
	f.configureCollectorHooks(collector, req, body, fetchErr)
	return collector
}

func (f *Fetcher) configureCollectorHooks(
	hooks collectorHooks,
	req fetch.Request,
	body *[]byte,
	fetchErr *error,
) {
	hooks.OnRequest(func(r *colly.Request) {
		f.setHeaders(req, r)
	})

	hooks.OnResponse(func(r *colly.Response) {
		*body = append([]byte(nil), r.Body...)
	})

	hooks.OnError(func(r *colly.Response, err error) {
		*fetchErr = classify(req.URL, r, err)
	})
}

func (f *Fetcher) runCollector(ctx context.Context, collector *colly.Collector, url string, fetchErr *error) error {
	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(url)
	}()

	select {
	case <-ctx.Done():
		return &fetch.NetworkError{URL: url, Err: ctx.Err()}
	case err := <-done:
		if *fetchErr != nil {
			return *fetchErr
		}
		if err != nil {
			return &fetch.NetworkError{URL: url, Err: fmt.Errorf("colly visit failed: %w", err)}
		}
		return nil
	}
}

func (f *Fetcher) setHeaders(req fetch.Request, r *colly.Request) {
	r.Headers.Set("User-Agent", f.cfg.UserAgent)
	r.Headers.Set("Accept", f.cfg.Accept)
	if req.Referer != "" {
		r.Headers.Set("Referer", req.Referer)
	}
}

// classify turns a colly failure into the fetch error taxonomy.
func classify(url string, r *colly.Response, err error) error {
	if r != nil && r.StatusCode >= http.StatusMultipleChoices {
		return &fetch.HTTPError{URL: url, Status: r.StatusCode}
	}
	if err == nil {
		err = errors.New("unknown colly error")
	}
	return &fetch.NetworkError{URL: url, Err: err}
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
	}
}
