package paginate

// Reason explains why pagination stopped.
type Reason string

// Termination reasons.
const (
	NotTerminated   Reason = "not_terminated"
	EmptyPage       Reason = "empty_page"
	SelectorDrift   Reason = "selector_drift"
	MaxPagesReached Reason = "max_pages_reached"
	FetchFailed     Reason = "fetch_failed"
	Canceled        Reason = "canceled"
)

// Clean reports whether r is a normal end of data.
func (r Reason) Clean() bool {
	return r == EmptyPage || r == MaxPagesReached
}

// Cursor is the paginator's state. It is mutated once per listing page.
type Cursor struct {
	Index  int
	Seen   map[string]struct{}
	Reason Reason
	// Err is the failure behind FetchFailed or Canceled.
	Err error
}

// Terminated reports whether no further pages will be yielded.
func (c Cursor) Terminated() bool {
	return c.Reason != NotTerminated
}
