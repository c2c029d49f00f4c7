package crawler

import (
	"context"
	"time"

	"github.com/JakeFAU/event-crawler/internal/event"
	"github.com/JakeFAU/event-crawler/internal/extract"
	"github.com/JakeFAU/event-crawler/internal/paginate"
	"github.com/JakeFAU/event-crawler/internal/politeness"
)

// Pager yields listing pages until it terminates.
type Pager interface {
	Next(ctx context.Context) (paginate.Page, bool)
	Cursor() paginate.Cursor
}

// Extractor builds one record from a detail page.
type Extractor interface {
	Extract(markup []byte, sourceURL string) (event.Record, []extract.ParseError)
}

// Governor spaces requests of one kind.
type Governor interface {
	AwaitReady(ctx context.Context, kind politeness.Kind) error
	Done(kind politeness.Kind)
}

// OutputSink receives records as soon as they are built.
type OutputSink interface {
	Write(ctx context.Context, rec event.Record) error
	Close(ctx context.Context) error
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}
