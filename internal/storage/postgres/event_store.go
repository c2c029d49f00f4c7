// Package postgres provides Postgres-backed persistence implementations.
package postgres

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JakeFAU/event-crawler/internal/event"
	"github.com/JakeFAU/event-crawler/internal/hash/sha256"
)

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

const defaultTable = "events"

// EventStoreConfig controls the Postgres connection pool used for event rows.
type EventStoreConfig struct {
	DSN             string
	Table           string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

type execCloser interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Close()
}

// EventStore upserts event rows keyed by source URL.
type EventStore struct {
	pool  execCloser
	table string
}

// NewEventStore creates a Postgres-backed EventStore using the provided config.
func NewEventStore(ctx context.Context, cfg EventStoreConfig) (*EventStore, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("postgres.dsn is required")
	}
	table, err := tableName(cfg.Table)
	if err != nil {
		return nil, err
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &EventStore{pool: pool, table: table}, nil
}

// NewEventStoreWithPool constructs a store from an existing pool (primarily for testing).
func NewEventStoreWithPool(pool execCloser, table string) (*EventStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	table, err := tableName(table)
	if err != nil {
		return nil, err
	}
	return &EventStore{pool: pool, table: table}, nil
}

func tableName(table string) (string, error) {
	if table == "" {
		table = defaultTable
	}
	if !validTableName.MatchString(table) {
		return "", fmt.Errorf("invalid table name %q", table)
	}
	return table, nil
}

// Close releases the underlying pool resources.
func (s *EventStore) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// EnsureTable creates the events table when it does not exist.
func (s *EventStore) EnsureTable(ctx context.Context) error {
	query := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
	source_url   TEXT PRIMARY KEY,
	run_id       TEXT NOT NULL,
	title        TEXT NOT NULL,
	event_date   TEXT NOT NULL,
	start_time   TEXT NOT NULL,
	region       TEXT NOT NULL,
	location     TEXT NOT NULL,
	event_type   TEXT NOT NULL,
	availability INTEGER,
	waitlist     INTEGER,
	attendance   INTEGER,
	summary      TEXT NOT NULL,
	scraped_at   TIMESTAMPTZ NOT NULL,
	content_hash TEXT NOT NULL,
	changed_at   TIMESTAMPTZ NOT NULL
)`, s.table)
	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("create table %s: %w", s.table, err)
	}
	return nil
}

// UpsertEvent inserts rec or refreshes the row already stored for its source URL. changed_at
// only moves when the record's content hash differs from the stored one.
func (s *EventStore) UpsertEvent(ctx context.Context, runID string, rec event.Record) error {
	if s == nil || s.pool == nil {
		return fmt.Errorf("event store is not configured")
	}
	if rec.SourceURL == "" {
		return fmt.Errorf("record source url is required")
	}
	query := fmt.Sprintf(`
INSERT INTO %[1]s (
	source_url,
	run_id,
	title,
	event_date,
	start_time,
	region,
	location,
	event_type,
	availability,
	waitlist,
	attendance,
	summary,
	scraped_at,
	content_hash,
	changed_at
) VALUES (
	$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$13
)
ON CONFLICT (source_url) DO UPDATE SET
	run_id = EXCLUDED.run_id,
	title = EXCLUDED.title,
	event_date = EXCLUDED.event_date,
	start_time = EXCLUDED.start_time,
	region = EXCLUDED.region,
	location = EXCLUDED.location,
	event_type = EXCLUDED.event_type,
	availability = EXCLUDED.availability,
	waitlist = EXCLUDED.waitlist,
	attendance = EXCLUDED.attendance,
	summary = EXCLUDED.summary,
	scraped_at = EXCLUDED.scraped_at,
	content_hash = EXCLUDED.content_hash,
	changed_at = CASE
		WHEN %[1]s.content_hash IS DISTINCT FROM EXCLUDED.content_hash THEN EXCLUDED.scraped_at
		ELSE %[1]s.changed_at
	END`, s.table)

	args := []any{
		rec.SourceURL,
		runID,
		rec.Title,
		rec.Date,
		rec.StartTime,
		rec.Region,
		rec.Location,
		rec.EventType,
		countArg(rec.Availability),
		countArg(rec.Waitlist),
		countArg(rec.Attendance),
		rec.Summary,
		rec.ScrapedAt,
		sha256.RecordDigest(rec),
	}
	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert event: %w", err)
	}
	return nil
}

// countArg maps Unknown onto SQL NULL.
func countArg(c event.Count) any {
	if !c.Known {
		return nil
	}
	return c.Value
}
