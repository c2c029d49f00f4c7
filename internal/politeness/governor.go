// Package politeness spaces out requests to the origin server. Each request kind has its own
// minimum delay, measured from when the previous request of that kind completed.
package politeness

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/JakeFAU/event-crawler/internal/telemetry"
)

// Kind separates listing fetches from detail fetches.
type Kind string

// Request kinds.
const (
	Listing Kind = "listing"
	Detail  Kind = "detail"
)

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

// Pauser blocks for d or until ctx is done.
type Pauser interface {
	Pause(ctx context.Context, d time.Duration) error
}

// Governor enforces per-kind minimum delays.
type Governor struct {
	mu     sync.Mutex
	delays map[Kind]time.Duration
	last   map[Kind]time.Time
	clock  Clock
	pauser Pauser
}

// New builds a Governor. Kinds missing from delays are not throttled.
func New(delays map[Kind]time.Duration, clock Clock, pauser Pauser) *Governor {
	d := make(map[Kind]time.Duration, len(delays))
	for k, v := range delays {
		d[k] = v
	}
	return &Governor{
		delays: d,
		last:   make(map[Kind]time.Time),
		clock:  clock,
		pauser: pauser,
	}
}

// AwaitReady blocks until the kind's delay has elapsed since its last Done.
func (g *Governor) AwaitReady(ctx context.Context, kind Kind) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("politeness wait: %w", err)
	}
	wait := g.remaining(kind)
	if wait > 0 {
		if err := g.pauser.Pause(ctx, wait); err != nil {
			return fmt.Errorf("politeness wait: %w", err)
		}
	}
	telemetry.ObservePolitenessWait(string(kind), wait)
	return nil
}

// Done marks a request of kind as finished. Call it after failures too.
func (g *Governor) Done(kind Kind) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.last[kind] = g.clock.Now()
}

// Delay returns the configured delay for kind.
func (g *Governor) Delay(kind Kind) time.Duration {
	return g.delays[kind]
}

func (g *Governor) remaining(kind Kind) time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()
	last, ok := g.last[kind]
	if !ok {
		return 0
	}
	return g.delays[kind] - g.clock.Now().Sub(last)
}
