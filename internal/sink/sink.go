// Package sink writes event records to their destinations. Every sink persists a record as soon
// as Write returns, so an interrupted crawl still leaves usable output.
package sink

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/JakeFAU/event-crawler/internal/event"
)

// Sink receives records in crawl order.
type Sink interface {
	Write(ctx context.Context, rec event.Record) error
	Close(ctx context.Context) error
}

// Format names a file encoding.
type Format string

// Supported file formats.
const (
	FormatCSV   Format = "csv"
	FormatJSONL Format = "jsonl"
	FormatICS   Format = "ics"
)

// ParseFormat resolves an explicit format, falling back to the path's extension and then CSV.
func ParseFormat(explicit, path string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(explicit)) {
	case "":
	case "csv":
		return FormatCSV, nil
	case "jsonl", "ndjson", "json":
		return FormatJSONL, nil
	case "ics", "ical":
		return FormatICS, nil
	default:
		return "", fmt.Errorf("unknown output format %q", explicit)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl", ".ndjson", ".json":
		return FormatJSONL, nil
	case ".ics":
		return FormatICS, nil
	default:
		return FormatCSV, nil
	}
}

// ExpandPath substitutes {date} with now's UTC date so scheduled runs do not overwrite each
// other.
func ExpandPath(path string, now time.Time) string {
	return strings.ReplaceAll(path, "{date}", now.UTC().Format("2006-01-02"))
}

// Multi fans each record out to several sinks. The first failing sink stops the write.
type Multi []Sink

// Write forwards rec to every sink in order.
func (m Multi) Write(ctx context.Context, rec event.Record) error {
	for _, s := range m {
		if err := s.Write(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every sink and joins their errors.
func (m Multi) Close(ctx context.Context) error {
	var errs []error
	for _, s := range m {
		if err := s.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// withClosers releases extra resources after the wrapped sink is closed.
type withClosers struct {
	Sink
	closers []func() error
}

func (w *withClosers) Close(ctx context.Context) error {
	errs := []error{w.Sink.Close(ctx)}
	for i := len(w.closers) - 1; i >= 0; i-- {
		errs = append(errs, w.closers[i]())
	}
	return errors.Join(errs...)
}
