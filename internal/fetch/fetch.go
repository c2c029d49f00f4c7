// Package fetch defines the page retrieval contract shared by the paginator, the orchestrator
// and the HTTP implementations.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Request names one page to retrieve.
type Request struct {
	URL     string
	Referer string
}

// Fetcher returns the raw markup for a page. Failures are *HTTPError or *NetworkError.
type Fetcher interface {
	Fetch(ctx context.Context, req Request) ([]byte, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, req Request) ([]byte, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, req Request) ([]byte, error) {
	return f(ctx, req)
}

// HTTPError is a response outside the 2xx range.
type HTTPError struct {
	URL    string
	Status int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("GET %s: %d %s", e.URL, e.Status, http.StatusText(e.Status))
}

// Temporary reports whether retrying could succeed.
func (e *HTTPError) Temporary() bool {
	return e.Status == http.StatusTooManyRequests || e.Status >= http.StatusInternalServerError
}

// NetworkError wraps a transport failure.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("GET %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Status extracts the HTTP status behind err, or 0.
func Status(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Status
	}
	return 0
}
