package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadWithFileOverrides(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	configYAML := `
crawler:
  base_url: https://events.example.org
  listing_path: /whats-on
  max_pages: 5
  listing_delay: 2s
  detail_delay: 500ms
  user_agent: test-agent
http:
  timeout: 10s
  max_retries: 4
output:
  path: gs://bucket/events-{date}.ics
  calendar_name: Walks
logging:
  development: false
metrics:
  addr: ":9090"
postgres:
  dsn: postgres://localhost/events
  table: crawl_events
pubsub:
  project_id: proj
  topic: events
schedule:
  spec: "0 6 * * *"
`
	if err := os.WriteFile(path, []byte(configYAML), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Crawler.BaseURL != "https://events.example.org" || cfg.Crawler.ListingPath != "/whats-on" {
		t.Fatalf("unexpected crawler urls: %+v", cfg.Crawler)
	}
	if cfg.Crawler.MaxPages != 5 || cfg.Crawler.ListingDelay != 2*time.Second || cfg.Crawler.DetailDelay != 500*time.Millisecond {
		t.Fatalf("unexpected crawler limits: %+v", cfg.Crawler)
	}
	if cfg.Crawler.UserAgent != "test-agent" {
		t.Fatalf("expected user agent override, got %q", cfg.Crawler.UserAgent)
	}
	if cfg.HTTP.Timeout != 10*time.Second || cfg.HTTP.MaxRetries != 4 {
		t.Fatalf("unexpected http config: %+v", cfg.HTTP)
	}
	if cfg.Output.Path != "gs://bucket/events-{date}.ics" || cfg.Output.CalendarName != "Walks" {
		t.Fatalf("unexpected output config: %+v", cfg.Output)
	}
	if cfg.Logging.Development {
		t.Fatal("expected logging.development=false")
	}
	if cfg.Postgres.Table != "crawl_events" || cfg.PubSub.Topic != "events" || cfg.Schedule.Spec != "0 6 * * *" {
		t.Fatalf("unexpected sink config: %+v %+v %+v", cfg.Postgres, cfg.PubSub, cfg.Schedule)
	}
	if cfg.Base().Host != "events.example.org" {
		t.Fatalf("unexpected base host %q", cfg.Base().Host)
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Crawler.MaxPages != 100 {
		t.Fatalf("expected 100 max pages, got %d", cfg.Crawler.MaxPages)
	}
	if cfg.Crawler.ListingDelay != 7*time.Second || cfg.Crawler.DetailDelay != 4*time.Second {
		t.Fatalf("unexpected default delays: %+v", cfg.Crawler)
	}
	if cfg.HTTP.Timeout != 25*time.Second {
		t.Fatalf("expected 25s timeout, got %s", cfg.HTTP.Timeout)
	}
	if cfg.Output.Path != "outdoor_events.csv" {
		t.Fatalf("unexpected default output %q", cfg.Output.Path)
	}
	if !strings.Contains(cfg.Crawler.UserAgent, "Mozilla") {
		t.Fatalf("expected browser-like user agent, got %q", cfg.Crawler.UserAgent)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("EVENTCRAWLER_CRAWLER_MAX_PAGES", "3")
	t.Setenv("EVENTCRAWLER_OUTPUT_PATH", "out.jsonl")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Crawler.MaxPages != 3 || cfg.Output.Path != "out.jsonl" {
		t.Fatalf("env overrides not applied: %+v %+v", cfg.Crawler, cfg.Output)
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	valid := func() Config {
		return Config{
			Crawler: CrawlerConfig{BaseURL: "https://example.org", MaxPages: 1},
			HTTP:    HTTPConfig{Timeout: time.Second},
			Output:  OutputConfig{Path: "out.csv"},
		}
	}
	if err := valid().Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}

	cases := map[string]func(*Config){
		"relative base":      func(c *Config) { c.Crawler.BaseURL = "/events" },
		"ftp base":           func(c *Config) { c.Crawler.BaseURL = "ftp://example.org" },
		"zero pages":         func(c *Config) { c.Crawler.MaxPages = 0 },
		"negative delay":     func(c *Config) { c.Crawler.DetailDelay = -time.Second },
		"zero timeout":       func(c *Config) { c.HTTP.Timeout = 0 },
		"negative retries":   func(c *Config) { c.HTTP.MaxRetries = -1 },
		"blank output":       func(c *Config) { c.Output.Path = " " },
		"topic sans project": func(c *Config) { c.PubSub.Topic = "events" },
	}
	for name, mutate := range cases {
		cfg := valid()
		mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}
