package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JakeFAU/event-crawler/internal/config"
	"github.com/JakeFAU/event-crawler/internal/event"
	"github.com/JakeFAU/event-crawler/internal/paginate"
)

const detailPage = `<html><body>
<h1 class="page-title">Winter Walk</h1>
<span class="event-date">Sat 12 Apr 2025</span>
<span class="event-time">10:00am</span>
<dl>
  <dt>Region</dt><dd>WALES (North)</dd>
  <dt>Location</dt><dd>Pen-y-Pass car park</dd>
  <dt>Event Type</dt><dd>Walk</dd>
  <dt>Places Remaining</dt><dd>Places left: 4</dd>
</dl>
<div property="content:encoded"><p>A brisk winter walk.</p></div>
</body></html>`

func newSite(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/events", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "0" {
			_, _ = w.Write([]byte(`<div class="view-events"><div class="views-row"><a href="/events/winter-walk">Winter Walk</a></div></div>`))
			return
		}
		_, _ = w.Write([]byte(`<div class="view-events"></div>`))
	})
	mux.HandleFunc("/events/winter-walk", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(detailPage))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(t *testing.T, baseURL string) config.Config {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Crawler.BaseURL = baseURL
	cfg.Crawler.MaxPages = 5
	cfg.Crawler.ListingDelay = 0
	cfg.Crawler.DetailDelay = 0
	cfg.HTTP.Timeout = 5 * time.Second
	cfg.HTTP.MaxRetries = 0
	cfg.Output.Path = filepath.Join(t.TempDir(), "events-{date}.csv")
	cfg.Output.TimeZone = ""
	require.NoError(t, cfg.Validate())
	return cfg
}

func TestRunCrawlWritesCSV(t *testing.T) {
	srv := newSite(t)
	cfg := testConfig(t, srv.URL)

	sum, err := runCrawl(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, paginate.EmptyPage, sum.Reason)
	assert.Equal(t, 1, sum.Records)
	assert.NoError(t, sum.Failure())

	matches, err := filepath.Glob(filepath.Join(filepath.Dir(cfg.Output.Path), "events-*.csv"))
	require.NoError(t, err)
	require.Len(t, matches, 1, "{date} must be expanded")

	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, event.Columns, rows[0])
	assert.Equal(t, "Winter Walk", rows[1][0])
	assert.Equal(t, "North Wales", rows[1][3])
	assert.Equal(t, "4", rows[1][6])
	assert.Equal(t, srv.URL+"/events/winter-walk", rows[1][9])
}

func TestCrawlWithMetricsReportsDrift(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/events", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body><p>redesigned</p></body></html>`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	err := crawlWithMetrics(context.Background(), testConfig(t, srv.URL), zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), string(paginate.SelectorDrift))
}

func TestLoadRules(t *testing.T) {
	t.Parallel()

	set, err := loadRules("")
	require.NoError(t, err)
	assert.Equal(t, "div.view-events", set.Listing.Container)

	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listing:\n  container: section.events\n"), 0o600))
	set, err = loadRules(path)
	require.NoError(t, err)
	assert.Equal(t, "section.events", set.Listing.Container)

	_, err = loadRules(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestRulesCommandPrintsYAML(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("logging:\n  development: false\n"), 0o600))

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"rules", "--config", cfgPath})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "listing:")
	assert.Contains(t, out.String(), "div.view-events")
}

func TestCrawlCommandRejectsInvalidOverride(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("logging:\n  development: false\n"), 0o600))

	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"crawl", "--config", cfgPath, "--max-pages", "0"})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_pages")
}

func TestRunScheduleRejectsBadSpec(t *testing.T) {
	cfg := testConfig(t, "https://example.org")
	cfg.Schedule.Spec = "every now and then"

	err := runSchedule(context.Background(), cfg, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse schedule")
}
