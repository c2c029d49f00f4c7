package crawler

import (
	"errors"
	"fmt"
	"time"

	"github.com/JakeFAU/event-crawler/internal/paginate"
)

// Sentinel errors for runs that did not end cleanly.
var (
	ErrSelectorDrift = errors.New("listing container missing: page structure no longer matches the rules")
	ErrFetchFailed   = errors.New("listing fetch failed")
	ErrCanceled      = errors.New("crawl canceled")
)

// ReasonSinkFailed ends a run whose output could not be written. Pagination itself was still
// live when it happened.
const ReasonSinkFailed paginate.Reason = "sink_failed"

// Config holds the settings for a crawl run. It is decoupled from viper.
type Config struct {
	// RunID tags log lines and exported records. Generated when empty.
	RunID string
}

// Summary describes a finished run.
type Summary struct {
	RunID    string
	Reason   paginate.Reason
	Pages    int
	Records  int
	Skipped  int
	Gaps     int
	Err      error
	Started  time.Time
	Finished time.Time
}

// Clean reports whether the listing ended normally.
func (s Summary) Clean() bool {
	return s.Reason.Clean()
}

// Failure maps an unclean termination to an error for the caller's exit status.
func (s Summary) Failure() error {
	switch s.Reason {
	case paginate.EmptyPage, paginate.MaxPagesReached:
		return nil
	case paginate.SelectorDrift:
		return ErrSelectorDrift
	case paginate.FetchFailed:
		if s.Err != nil {
			return fmt.Errorf("%w: %w", ErrFetchFailed, s.Err)
		}
		return ErrFetchFailed
	case paginate.Canceled:
		return ErrCanceled
	case ReasonSinkFailed:
		if s.Err != nil {
			return s.Err
		}
		return errors.New("crawl stopped: sink write failed")
	default:
		if s.Err != nil {
			return s.Err
		}
		return fmt.Errorf("crawl stopped: %s", s.Reason)
	}
}
