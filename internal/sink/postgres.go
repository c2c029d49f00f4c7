package sink

import (
	"context"

	"github.com/JakeFAU/event-crawler/internal/event"
)

// EventUpserter persists one record per source URL.
type EventUpserter interface {
	UpsertEvent(ctx context.Context, runID string, rec event.Record) error
	Close()
}

// Postgres upserts every record so reruns refresh existing rows.
type Postgres struct {
	store EventUpserter
	runID string
}

// NewPostgres wraps store and tags rows with runID.
func NewPostgres(store EventUpserter, runID string) *Postgres {
	return &Postgres{store: store, runID: runID}
}

// Write upserts rec.
func (s *Postgres) Write(ctx context.Context, rec event.Record) error {
	return s.store.UpsertEvent(ctx, s.runID, rec)
}

// Close releases the pool.
func (s *Postgres) Close(context.Context) error {
	s.store.Close()
	return nil
}
