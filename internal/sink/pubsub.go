package sink

import (
	"context"
	"fmt"

	"github.com/JakeFAU/event-crawler/internal/event"
)

// Publisher sends a JSON payload with message attributes.
type Publisher interface {
	Publish(ctx context.Context, payload any, attrs map[string]string) (string, error)
	Close() error
}

// Message attribute keys.
const (
	AttrSourceURL = "source_url"
	AttrRunID     = "run_id"
)

// PubSub publishes one message per record and waits for the broker to acknowledge it.
type PubSub struct {
	pub   Publisher
	runID string
}

// NewPubSub wraps pub and tags messages with runID.
func NewPubSub(pub Publisher, runID string) *PubSub {
	return &PubSub{pub: pub, runID: runID}
}

// Write publishes rec.
func (s *PubSub) Write(ctx context.Context, rec event.Record) error {
	attrs := map[string]string{AttrSourceURL: rec.SourceURL, AttrRunID: s.runID}
	if _, err := s.pub.Publish(ctx, rec, attrs); err != nil {
		return fmt.Errorf("publish %s: %w", rec.SourceURL, err)
	}
	return nil
}

// Close flushes and stops the publisher.
func (s *PubSub) Close(context.Context) error {
	return s.pub.Close()
}
