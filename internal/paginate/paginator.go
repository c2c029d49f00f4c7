// Package paginate walks the zero-based listing pages and decides when the listing has ended.
// The distinction between an empty listing container and a missing one is what separates a
// normal end of data from selector drift.
package paginate

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/JakeFAU/event-crawler/internal/extract"
	"github.com/JakeFAU/event-crawler/internal/fetch"
	"github.com/JakeFAU/event-crawler/internal/politeness"
	"github.com/JakeFAU/event-crawler/internal/telemetry"
)

// LinkSource turns listing markup into event URLs.
type LinkSource interface {
	Extract(markup []byte) extract.Listing
}

// Governor spaces requests of one kind.
type Governor interface {
	AwaitReady(ctx context.Context, kind politeness.Kind) error
	Done(kind politeness.Kind)
}

// Config bounds pagination.
type Config struct {
	// ListingURL returns the address of listing page i.
	ListingURL func(index int) string
	// MaxPages caps the number of listing pages fetched. Zero means no cap.
	MaxPages int
	// Referer is sent with the first listing request.
	Referer string
}

// Page is one listing page's worth of unseen event links.
type Page struct {
	Index int
	URL   string
	Links []string
}

// Paginator yields listing pages until a termination reason is reached.
type Paginator struct {
	fetcher fetch.Fetcher
	links   LinkSource
	gov     Governor
	cfg     Config
	logger  *zap.Logger

	cursor  Cursor
	referer string
}

// New builds a Paginator positioned at page 0.
func New(fetcher fetch.Fetcher, links LinkSource, gov Governor, cfg Config, logger *zap.Logger) *Paginator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Paginator{
		fetcher: fetcher,
		links:   links,
		gov:     gov,
		cfg:     cfg,
		logger:  logger.Named("paginator"),
		cursor: Cursor{
			Seen:   make(map[string]struct{}),
			Reason: NotTerminated,
		},
		referer: cfg.Referer,
	}
}

// Cursor returns a snapshot of the pagination state.
func (p *Paginator) Cursor() Cursor {
	return p.cursor
}

// Next fetches the next listing page. It returns false once pagination has terminated; the
// reason is then available from Cursor.
func (p *Paginator) Next(ctx context.Context) (Page, bool) {
	if p.cursor.Terminated() {
		return Page{}, false
	}
	if err := ctx.Err(); err != nil {
		return p.stop(Canceled, err)
	}
	if p.cfg.MaxPages > 0 && p.cursor.Index >= p.cfg.MaxPages {
		return p.stop(MaxPagesReached, nil)
	}

	index := p.cursor.Index
	pageURL := p.cfg.ListingURL(index)
	log := p.logger.With(zap.Int("page", index), zap.String("url", pageURL))

	if err := p.gov.AwaitReady(ctx, politeness.Listing); err != nil {
		return p.stop(Canceled, err)
	}
	body, err := p.fetcher.Fetch(ctx, fetch.Request{URL: pageURL, Referer: p.referer})
	p.gov.Done(politeness.Listing)
	if err != nil {
		telemetry.ObservePage(string(politeness.Listing), "error")
		if ctx.Err() != nil {
			return p.stop(Canceled, ctx.Err())
		}
		log.Error("listing fetch failed", zap.Error(err))
		return p.stop(FetchFailed, fmt.Errorf("listing page %d: %w", index, err))
	}
	telemetry.ObservePage(string(politeness.Listing), "ok")

	listing := p.links.Extract(body)
	switch {
	case !listing.ContainerFound:
		log.Error("listing container missing; stopping on selector drift")
		return p.stop(SelectorDrift, nil)
	case listing.Items > 0 && len(listing.URLs) == 0:
		log.Error("listing items carry no usable links; stopping on selector drift", zap.Int("items", listing.Items))
		return p.stop(SelectorDrift, nil)
	case len(listing.URLs) == 0:
		log.Info("listing container is empty")
		return p.stop(EmptyPage, nil)
	}

	fresh := make([]string, 0, len(listing.URLs))
	for _, u := range listing.URLs {
		if _, seen := p.cursor.Seen[u]; !seen {
			fresh = append(fresh, u)
		}
	}
	if len(fresh) == 0 {
		log.Warn("listing page repeats earlier links", zap.Int("links", len(listing.URLs)))
		return p.stop(EmptyPage, nil)
	}
	for _, u := range listing.URLs {
		p.cursor.Seen[u] = struct{}{}
	}

	p.cursor.Index++
	p.referer = pageURL
	log.Info("listing page", zap.Int("links", len(fresh)), zap.Int("repeated", len(listing.URLs)-len(fresh)))
	return Page{Index: index, URL: pageURL, Links: fresh}, true
}

func (p *Paginator) stop(reason Reason, err error) (Page, bool) {
	p.cursor.Reason = reason
	p.cursor.Err = err
	return Page{}, false
}

// ListingURL builds the address of listing page i as <base><path>?page=<i>. Existing query
// parameters on path are kept.
func ListingURL(base *url.URL, path string) func(int) string {
	if strings.TrimSpace(path) == "" {
		path = "/events"
	}
	ref := &url.URL{Path: path}
	if i := strings.IndexByte(path, '?'); i >= 0 {
		ref = &url.URL{Path: path[:i], RawQuery: path[i+1:]}
	}
	listing := base.ResolveReference(ref)
	return func(index int) string {
		u := *listing
		q := u.Query()
		q.Set("page", strconv.Itoa(index))
		u.RawQuery = q.Encode()
		return u.String()
	}
}
