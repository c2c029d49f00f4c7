package system

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestClockNowUTC ensures the clock returns UTC timestamps.
func TestClockNowUTC(t *testing.T) {
	t.Parallel()

	clk := New()
	require.NotNil(t, clk)

	before := time.Now().UTC()
	got := clk.Now()
	after := time.Now().UTC()

	assert.Equal(t, time.UTC, got.Location())
	assert.True(t, !got.Before(before) && !got.After(after), "%v not within [%v, %v]", got, before, after)
}

func TestPauseWaits(t *testing.T) {
	t.Parallel()

	start := time.Now()
	require.NoError(t, New().Pause(context.Background(), 20*time.Millisecond))
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
	require.NoError(t, New().Pause(context.Background(), 0))
}

func TestPauseInterrupted(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := New().Pause(ctx, time.Hour)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}
