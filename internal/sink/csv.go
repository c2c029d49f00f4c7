package sink

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"sync"

	"github.com/JakeFAU/event-crawler/internal/event"
)

// CSV writes one row per record under a header of event.Columns.
type CSV struct {
	mu  sync.Mutex
	w   io.WriteCloser
	csv *csv.Writer
}

// NewCSV writes the header and flushes it.
func NewCSV(w io.WriteCloser) (*CSV, error) {
	s := &CSV{w: w, csv: csv.NewWriter(w)}
	if err := s.writeRow(event.Columns); err != nil {
		return nil, fmt.Errorf("csv header: %w", err)
	}
	return s, nil
}

// Write appends and flushes one row.
func (s *CSV) Write(_ context.Context, rec event.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.writeRow(rec.Row()); err != nil {
		return fmt.Errorf("csv row %s: %w", rec.SourceURL, err)
	}
	return nil
}

func (s *CSV) writeRow(row []string) error {
	if err := s.csv.Write(row); err != nil {
		return err
	}
	s.csv.Flush()
	return s.csv.Error()
}

// Close flushes and closes the underlying writer.
func (s *CSV) Close(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.csv.Flush()
	if err := s.csv.Error(); err != nil {
		_ = s.w.Close()
		return fmt.Errorf("csv flush: %w", err)
	}
	if err := s.w.Close(); err != nil {
		return fmt.Errorf("csv close: %w", err)
	}
	return nil
}
