package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/JakeFAU/event-crawler/internal/event"
)

// JSONL writes one JSON object per line.
type JSONL struct {
	mu  sync.Mutex
	w   io.WriteCloser
	enc *json.Encoder
}

// NewJSONL wraps w.
func NewJSONL(w io.WriteCloser) *JSONL {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &JSONL{w: w, enc: enc}
}

// Write encodes rec followed by a newline.
func (s *JSONL) Write(_ context.Context, rec event.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enc.Encode(rec); err != nil {
		return fmt.Errorf("jsonl %s: %w", rec.SourceURL, err)
	}
	return nil
}

// Close closes the underlying writer.
func (s *JSONL) Close(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.w.Close(); err != nil {
		return fmt.Errorf("jsonl close: %w", err)
	}
	return nil
}
