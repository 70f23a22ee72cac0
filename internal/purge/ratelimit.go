package purge

import (
	"context"
	"sync"
	"time"

	"github.com/teemow/calsweep/internal/logging"
)

// RateLimiter enforces a maximum number of grants within a sliding
// wall-clock window. Unlike a fixed-bucket limiter the window continuously
// trails "now": a grant counts against capacity until it is a full window
// old.
//
// The limiter is safe for concurrent use; the check-and-record step is a
// single critical section, so two concurrent acquisitions can never both
// claim the last free slot.
type RateLimiter struct {
	mu          sync.Mutex
	window      time.Duration
	maxRequests int
	grants      []time.Time
	logger      logging.Logger

	// now is swappable for tests.
	now func() time.Time
}

// NewRateLimiter creates a limiter allowing at most maxRequests grants per
// trailing window.
func NewRateLimiter(maxRequests int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		window:      window,
		maxRequests: maxRequests,
		logger:      logging.DefaultLogger(),
		now:         time.Now,
	}
}

// SetLogger replaces the limiter's logger. A nil logger is ignored.
func (l *RateLimiter) SetLogger(logger logging.Logger) {
	if logger != nil {
		l.logger = logger
	}
}

// Acquire blocks until issuing one more unit of work would not exceed the
// limiter's capacity within the trailing window, records the grant and
// returns. It only fails when ctx is cancelled while waiting.
func (l *RateLimiter) Acquire(ctx context.Context) error {
	for {
		l.mu.Lock()
		now := l.now()
		l.prune(now)

		if len(l.grants) < l.maxRequests {
			l.grants = append(l.grants, now)
			l.mu.Unlock()
			return nil
		}

		// Capacity frees up when the oldest counted grant ages out.
		wait := l.window - now.Sub(l.grants[0])
		l.mu.Unlock()

		if wait <= 0 {
			continue
		}
		l.logger.Debug("rate limit reached, waiting", logging.KeyWait, wait)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// prune drops grants older than the window. Callers must hold mu.
func (l *RateLimiter) prune(now time.Time) {
	cutoff := now.Add(-l.window)
	idx := 0
	for idx < len(l.grants) && !l.grants[idx].After(cutoff) {
		idx++
	}
	if idx > 0 {
		l.grants = append(l.grants[:0], l.grants[idx:]...)
	}
}

// Pending returns the number of grants currently counted against capacity.
func (l *RateLimiter) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.prune(l.now())
	return len(l.grants)
}
