package paginate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/event-crawler/internal/extract"
	"github.com/JakeFAU/event-crawler/internal/fetch"
	"github.com/JakeFAU/event-crawler/internal/politeness"
	"github.com/JakeFAU/event-crawler/internal/rules"
)

const base = "https://example.org"

type scriptedFetcher struct {
	pages    map[string]string
	errs     map[string]error
	requests []fetch.Request
}

func (f *scriptedFetcher) Fetch(_ context.Context, req fetch.Request) ([]byte, error) {
	f.requests = append(f.requests, req)
	if err, ok := f.errs[req.URL]; ok {
		return nil, err
	}
	body, ok := f.pages[req.URL]
	if !ok {
		return nil, &fetch.HTTPError{URL: req.URL, Status: http.StatusNotFound}
	}
	return []byte(body), nil
}

func (f *scriptedFetcher) urls() []string {
	out := make([]string, 0, len(f.requests))
	for _, r := range f.requests {
		out = append(out, r.URL)
	}
	return out
}

type countingGovernor struct {
	ready map[politeness.Kind]int
	done  map[politeness.Kind]int
}

func newCountingGovernor() *countingGovernor {
	return &countingGovernor{ready: map[politeness.Kind]int{}, done: map[politeness.Kind]int{}}
}

func (g *countingGovernor) AwaitReady(ctx context.Context, kind politeness.Kind) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	g.ready[kind]++
	return nil
}

func (g *countingGovernor) Done(kind politeness.Kind) { g.done[kind]++ }

func listing(hrefs ...string) string {
	body := `<html><body><div class="view-events">`
	for _, h := range hrefs {
		body += fmt.Sprintf(`<div class="views-row"><a href="%s">event</a></div>`, h)
	}
	return body + `</div></body></html>`
}

const noContainer = `<html><body><div class="maintenance">Back soon</div></body></html>`

func page(i int) string {
	return fmt.Sprintf("%s/events?page=%d", base, i)
}

func newPaginator(t *testing.T, f fetch.Fetcher, maxPages int) (*Paginator, *countingGovernor) {
	t.Helper()
	u, err := url.Parse(base)
	require.NoError(t, err)
	gov := newCountingGovernor()
	p := New(f, extract.NewLinkExtractor(u, rules.Default().Listing), gov, Config{
		ListingURL: ListingURL(u, "/events"),
		MaxPages:   maxPages,
		Referer:    base + "/",
	}, nil)
	return p, gov
}

func drain(ctx context.Context, p *Paginator) []Page {
	var pages []Page
	for {
		pg, ok := p.Next(ctx)
		if !ok {
			return pages
		}
		pages = append(pages, pg)
	}
}

func TestStopsOnEmptyContainer(t *testing.T) {
	t.Parallel()

	f := &scriptedFetcher{pages: map[string]string{
		page(0): listing("/events/a", "/events/b"),
		page(1): listing(),
		page(2): listing("/events/c"),
	}}
	p, gov := newPaginator(t, f, 100)

	pages := drain(context.Background(), p)
	require.Len(t, pages, 1)
	assert.Equal(t, []string{base + "/events/a", base + "/events/b"}, pages[0].Links)
	assert.Equal(t, EmptyPage, p.Cursor().Reason)
	assert.True(t, p.Cursor().Reason.Clean())
	assert.Equal(t, []string{page(0), page(1)}, f.urls())
	assert.Equal(t, 2, gov.ready[politeness.Listing])
	assert.Equal(t, 2, gov.done[politeness.Listing])

	_, ok := p.Next(context.Background())
	assert.False(t, ok)
	assert.Len(t, f.requests, 2)
}

func TestStopsOnSelectorDrift(t *testing.T) {
	t.Parallel()

	f := &scriptedFetcher{pages: map[string]string{
		page(0): listing("/events/a"),
		page(1): noContainer,
		page(2): listing("/events/c"),
	}}
	p, _ := newPaginator(t, f, 100)

	pages := drain(context.Background(), p)
	require.Len(t, pages, 1)
	assert.Equal(t, SelectorDrift, p.Cursor().Reason)
	assert.False(t, p.Cursor().Reason.Clean())
	assert.Equal(t, []string{page(0), page(1)}, f.urls())
}

func TestItemsWithoutLinksAreDrift(t *testing.T) {
	t.Parallel()

	f := &scriptedFetcher{pages: map[string]string{
		page(0): `<div class="view-events"><div class="views-row"><span>No anchor</span></div></div>`,
	}}
	p, _ := newPaginator(t, f, 100)

	assert.Empty(t, drain(context.Background(), p))
	assert.Equal(t, SelectorDrift, p.Cursor().Reason)
}

func TestLoopGuard(t *testing.T) {
	t.Parallel()

	f := &scriptedFetcher{pages: map[string]string{
		page(0): listing("/events/a", "/events/b"),
		page(1): listing("/events/b", "/events/c"),
		page(2): listing("/events/b", "/events/c"),
		page(3): listing("/events/d"),
	}}
	p, _ := newPaginator(t, f, 100)

	pages := drain(context.Background(), p)
	require.Len(t, pages, 2)
	assert.Equal(t, []string{base + "/events/c"}, pages[1].Links)
	assert.Equal(t, EmptyPage, p.Cursor().Reason)
	assert.Len(t, p.Cursor().Seen, 3)
	assert.Equal(t, 2, p.Cursor().Index)
	assert.NotContains(t, f.urls(), page(3))
}

func TestMaxPagesReached(t *testing.T) {
	t.Parallel()

	f := &scriptedFetcher{pages: map[string]string{
		page(0): listing("/events/a"),
		page(1): listing("/events/b"),
		page(2): listing("/events/c"),
	}}
	p, _ := newPaginator(t, f, 2)

	pages := drain(context.Background(), p)
	require.Len(t, pages, 2)
	assert.Equal(t, MaxPagesReached, p.Cursor().Reason)
	assert.Equal(t, []string{page(0), page(1)}, f.urls())
}

func TestFetchFailedIsReported(t *testing.T) {
	t.Parallel()

	f := &scriptedFetcher{
		pages: map[string]string{page(0): listing("/events/a")},
		errs:  map[string]error{page(1): &fetch.HTTPError{URL: page(1), Status: http.StatusBadGateway}},
	}
	p, gov := newPaginator(t, f, 100)

	pages := drain(context.Background(), p)
	require.Len(t, pages, 1)
	cur := p.Cursor()
	assert.Equal(t, FetchFailed, cur.Reason)
	assert.Equal(t, http.StatusBadGateway, fetch.Status(cur.Err))
	assert.Equal(t, 2, gov.done[politeness.Listing])
}

func TestCanceledBeforeFetch(t *testing.T) {
	t.Parallel()

	f := &scriptedFetcher{pages: map[string]string{page(0): listing("/events/a")}}
	p, _ := newPaginator(t, f, 100)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, ok := p.Next(ctx)
	assert.False(t, ok)
	assert.Equal(t, Canceled, p.Cursor().Reason)
	assert.True(t, errors.Is(p.Cursor().Err, context.Canceled))
	assert.Empty(t, f.requests)
}

func TestRefererChain(t *testing.T) {
	t.Parallel()

	f := &scriptedFetcher{pages: map[string]string{
		page(0): listing("/events/a"),
		page(1): listing("/events/b"),
	}}
	p, _ := newPaginator(t, f, 2)
	drain(context.Background(), p)

	require.Len(t, f.requests, 2)
	assert.Equal(t, base+"/", f.requests[0].Referer)
	assert.Equal(t, page(0), f.requests[1].Referer)
}

func TestListingURL(t *testing.T) {
	t.Parallel()

	u, err := url.Parse("https://example.org/")
	require.NoError(t, err)
	assert.Equal(t, "https://example.org/events?page=0", ListingURL(u, "")(0))
	assert.Equal(t, "https://example.org/events?page=12", ListingURL(u, "/events")(12))
	assert.Equal(t, "https://example.org/whats-on?page=3&type=walk", ListingURL(u, "/whats-on?type=walk")(3))
}
