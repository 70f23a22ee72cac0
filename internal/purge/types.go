package purge

import "time"

// CandidateEvent represents one event known to the client before deletion
// is attempted. Candidates are constructed by the discovery collaborator,
// are immutable once handed to the engine, and are not retained after the
// deletion attempt completes.
type CandidateEvent struct {
	// Ref is an opaque caller-side identifier tying the event back to
	// whatever surfaced it (a list index, a cache key). The engine carries
	// it through to the outcome unchanged.
	Ref string

	// EventID is the remote service's event identifier.
	EventID string

	// CalendarID identifies the calendar owning the event.
	CalendarID string

	// Title is the display label, used only for reporting.
	Title string

	// Start is the event start time. The zero value means the start time
	// is unknown; such events are never excluded by date filters.
	Start time.Time

	// Eligible is precomputed by the caller (e.g. "is this calendar
	// writable"). The engine never attempts deletion on ineligible events.
	Eligible bool
}

// Success records one completed deletion.
type Success struct {
	Ref     string
	EventID string
	Title   string
}

// Failure records one deletion attempt that did not complete.
type Failure struct {
	Ref          string
	EventID      string
	Title        string
	ErrorMessage string

	// Retryable marks the failure as likely transient. The engine does not
	// retry within a run; this is advisory metadata for the caller.
	Retryable bool
}

// DeletionReport is the aggregate result of a bulk deletion run. Every
// eligible input event appears in exactly one of Successful or Failed.
// Both sequences are in completion order, which is not guaranteed to match
// input order.
type DeletionReport struct {
	Successful []Success
	Failed     []Failure
}

// Total returns the number of events the report accounts for.
func (r *DeletionReport) Total() int {
	return len(r.Successful) + len(r.Failed)
}

// RetryableFailures returns the subset of failures marked retryable.
func (r *DeletionReport) RetryableFailures() []Failure {
	var out []Failure
	for _, f := range r.Failed {
		if f.Retryable {
			out = append(out, f)
		}
	}
	return out
}
