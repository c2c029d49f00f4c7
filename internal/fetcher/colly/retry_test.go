package collyfetcher

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/JakeFAU/event-crawler/internal/fetch"
)

func TestShouldRetry(t *testing.T) {
	t.Parallel()

	p := NewExponentialRetryPolicy(3, 100*time.Millisecond)
	tests := []struct {
		name    string
		err     error
		attempt int
		want    bool
	}{
		{"nil error", nil, 1, false},
		{"server error", &fetch.HTTPError{Status: http.StatusBadGateway}, 1, true},
		{"throttled", &fetch.HTTPError{Status: http.StatusTooManyRequests}, 2, true},
		{"not found", &fetch.HTTPError{Status: http.StatusNotFound}, 1, false},
		{"network", &fetch.NetworkError{Err: errors.New("reset")}, 1, true},
		{"canceled", &fetch.NetworkError{Err: context.Canceled}, 1, false},
		{"attempts exhausted", &fetch.HTTPError{Status: http.StatusBadGateway}, 3, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.ShouldRetry(tt.err, tt.attempt))
		})
	}
}

func TestBackoffBounds(t *testing.T) {
	t.Parallel()

	p := NewExponentialRetryPolicy(5, 100*time.Millisecond)
	for attempt := 1; attempt <= 8; attempt++ {
		d := p.Backoff(attempt)
		assert.GreaterOrEqual(t, d, time.Duration(0))
		assert.LessOrEqual(t, d, 10*time.Second)
	}
	first := p.Backoff(1)
	assert.GreaterOrEqual(t, first, 50*time.Millisecond)
	assert.Less(t, first, 100*time.Millisecond)
}

func TestDefaultsApply(t *testing.T) {
	t.Parallel()

	p := NewExponentialRetryPolicy(0, 0)
	assert.False(t, p.ShouldRetry(&fetch.HTTPError{Status: http.StatusBadGateway}, 1))
}
