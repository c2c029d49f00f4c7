// Package config loads and validates crawler configuration via Viper.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"

	collyfetcher "github.com/JakeFAU/event-crawler/internal/fetcher/colly"
)

// EnvPrefix namespaces environment overrides, e.g. EVENTCRAWLER_CRAWLER_MAX_PAGES=5.
const EnvPrefix = "EVENTCRAWLER"

// Config captures all crawler configuration knobs loaded via Viper.
type Config struct {
	Crawler  CrawlerConfig  `mapstructure:"crawler"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Output   OutputConfig   `mapstructure:"output"`
	Rules    RulesConfig    `mapstructure:"rules"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Tracing  TracingConfig  `mapstructure:"tracing"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	PubSub   PubSubConfig   `mapstructure:"pubsub"`
	Schedule ScheduleConfig `mapstructure:"schedule"`
}

// CrawlerConfig governs pagination and politeness.
type CrawlerConfig struct {
	BaseURL      string        `mapstructure:"base_url"`
	ListingPath  string        `mapstructure:"listing_path"`
	MaxPages     int           `mapstructure:"max_pages"`
	ListingDelay time.Duration `mapstructure:"listing_delay"`
	DetailDelay  time.Duration `mapstructure:"detail_delay"`
	UserAgent    string        `mapstructure:"user_agent"`
	Accept       string        `mapstructure:"accept"`
}

// HTTPConfig configures the fetcher's timeout and retry behavior.
type HTTPConfig struct {
	Timeout        time.Duration `mapstructure:"timeout"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryBaseDelay time.Duration `mapstructure:"retry_base_delay"`
}

// OutputConfig selects the file sink.
type OutputConfig struct {
	Path         string `mapstructure:"path"`
	Format       string `mapstructure:"format"`
	CalendarName string `mapstructure:"calendar_name"`
	TimeZone     string `mapstructure:"time_zone"`
}

// RulesConfig points at an optional YAML overlay for the default field rules.
type RulesConfig struct {
	File string `mapstructure:"file"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// MetricsConfig enables the /metrics and /healthz listener when Addr is set.
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// TracingConfig names the service on emitted spans.
type TracingConfig struct {
	ServiceName string `mapstructure:"service_name"`
}

// PostgresConfig enables the Postgres sink when DSN is set.
type PostgresConfig struct {
	DSN      string `mapstructure:"dsn"`
	Table    string `mapstructure:"table"`
	MaxConns int32  `mapstructure:"max_conns"`
}

// PubSubConfig enables the Pub/Sub sink when Topic is set.
type PubSubConfig struct {
	ProjectID string `mapstructure:"project_id"`
	Topic     string `mapstructure:"topic"`
}

// ScheduleConfig drives the schedule command.
type ScheduleConfig struct {
	Spec string `mapstructure:"spec"`
}

// Load builds a Config from defaults, an optional file, and the environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}
	return FromViper(v)
}

// FromViper decodes and validates the settings held by v.
func FromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// SetDefaults registers every key so environment overrides resolve during Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("crawler.base_url", "https://www.outdoorlads.com")
	v.SetDefault("crawler.listing_path", "/events")
	v.SetDefault("crawler.max_pages", 100)
	v.SetDefault("crawler.listing_delay", 7*time.Second)
	v.SetDefault("crawler.detail_delay", 4*time.Second)
	v.SetDefault("crawler.user_agent", collyfetcher.DefaultUserAgent)
	v.SetDefault("crawler.accept", collyfetcher.DefaultAccept)
	v.SetDefault("http.timeout", 25*time.Second)
	v.SetDefault("http.max_retries", 2)
	v.SetDefault("http.retry_base_delay", 2*time.Second)
	v.SetDefault("output.path", "outdoor_events.csv")
	v.SetDefault("output.format", "")
	v.SetDefault("output.calendar_name", "Outdoor events")
	v.SetDefault("output.time_zone", "Europe/London")
	v.SetDefault("rules.file", "")
	v.SetDefault("logging.development", true)
	v.SetDefault("metrics.addr", "")
	v.SetDefault("tracing.service_name", "eventcrawler")
	v.SetDefault("postgres.dsn", "")
	v.SetDefault("postgres.table", "events")
	v.SetDefault("postgres.max_conns", 4)
	v.SetDefault("pubsub.project_id", "")
	v.SetDefault("pubsub.topic", "")
	v.SetDefault("schedule.spec", "@daily")
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	base, err := url.Parse(c.Crawler.BaseURL)
	if err != nil || (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return fmt.Errorf("crawler.base_url must be an absolute http(s) URL, got %q", c.Crawler.BaseURL)
	}
	if c.Crawler.MaxPages <= 0 {
		return fmt.Errorf("crawler.max_pages must be > 0")
	}
	if c.Crawler.ListingDelay < 0 || c.Crawler.DetailDelay < 0 {
		return fmt.Errorf("crawler delays must be >= 0")
	}
	if c.HTTP.Timeout <= 0 {
		return fmt.Errorf("http.timeout must be > 0")
	}
	if c.HTTP.MaxRetries < 0 {
		return fmt.Errorf("http.max_retries must be >= 0")
	}
	if strings.TrimSpace(c.Output.Path) == "" {
		return fmt.Errorf("output.path is required")
	}
	if c.PubSub.Topic != "" && c.PubSub.ProjectID == "" {
		return fmt.Errorf("pubsub.project_id must be set when pubsub.topic is set")
	}
	return nil
}

// Base returns the parsed base URL. Validate guarantees it parses.
func (c Config) Base() *url.URL {
	u, _ := url.Parse(c.Crawler.BaseURL)
	return u
}
