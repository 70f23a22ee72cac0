package purge

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDeleter records deletion attempts and fails or panics on demand.
type fakeDeleter struct {
	mu          sync.Mutex
	calls       []string
	inFlight    int
	maxInFlight int
	errs        map[string]error
	panicOn     string
	onDelete    func(eventID string)
	delay       time.Duration
}

func (d *fakeDeleter) Delete(ctx context.Context, calendarID, eventID string) error {
	d.mu.Lock()
	d.calls = append(d.calls, eventID)
	d.inFlight++
	if d.inFlight > d.maxInFlight {
		d.maxInFlight = d.inFlight
	}
	err := d.errs[eventID]
	hook := d.onDelete
	d.mu.Unlock()

	if hook != nil {
		hook(eventID)
	}
	if eventID == d.panicOn {
		panic("deleter exploded")
	}
	if d.delay > 0 {
		time.Sleep(d.delay)
	}

	d.mu.Lock()
	d.inFlight--
	d.mu.Unlock()
	return err
}

func (d *fakeDeleter) callCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.calls)
}

func testEvents(n int) []CandidateEvent {
	events := make([]CandidateEvent, 0, n)
	for i := 0; i < n; i++ {
		events = append(events, CandidateEvent{
			Ref:        fmt.Sprintf("%d", i),
			EventID:    fmt.Sprintf("evt-%d", i),
			CalendarID: "primary",
			Title:      fmt.Sprintf("Event %d", i),
			Eligible:   true,
		})
	}
	return events
}

func testEngine(deleter Deleter) *Engine {
	return NewEngine(deleter, NewRateLimiter(1000, time.Minute), EngineConfig{})
}

func TestEngineRunDeletesEverything(t *testing.T) {
	deleter := &fakeDeleter{delay: time.Millisecond}
	engine := testEngine(deleter)

	report, err := engine.Run(context.Background(), testEvents(7), 3)

	require.NoError(t, err)
	assert.Len(t, report.Successful, 7)
	assert.Empty(t, report.Failed)
	assert.Equal(t, 7, deleter.callCount())
	assert.LessOrEqual(t, deleter.maxInFlight, 3,
		"concurrency must never exceed the batch size")
}

func TestEngineRunAccountsForEveryEligibleEvent(t *testing.T) {
	deleter := &fakeDeleter{errs: map[string]error{
		"evt-1": &HTTPError{Status: 403, StatusText: "Forbidden"},
		"evt-4": &HTTPError{Status: 429, StatusText: "Too Many Requests"},
	}}
	engine := testEngine(deleter)
	events := testEvents(6)

	report, err := engine.Run(context.Background(), events, 2)

	require.NoError(t, err)
	assert.Equal(t, len(events), report.Total())
	assert.Len(t, report.Successful, 4)
	assert.Len(t, report.Failed, 2)
}

func TestEngineRunFailureDoesNotAffectSiblings(t *testing.T) {
	deleter := &fakeDeleter{errs: map[string]error{
		"evt-2": &HTTPError{Status: 403, StatusText: "Forbidden"},
	}}
	engine := testEngine(deleter)

	// All three events share one chunk.
	report, err := engine.Run(context.Background(), testEvents(3), 3)

	require.NoError(t, err)
	assert.Len(t, report.Successful, 2)
	require.Len(t, report.Failed, 1)
	failure := report.Failed[0]
	assert.Equal(t, "evt-2", failure.EventID)
	assert.False(t, failure.Retryable)
	assert.Contains(t, failure.ErrorMessage, "403")
}

func TestEngineRunClassifiesRetryableFailures(t *testing.T) {
	deleter := &fakeDeleter{errs: map[string]error{
		"evt-0": &HTTPError{Status: 429, StatusText: "Too Many Requests"},
		"evt-1": &NetworkError{Err: fmt.Errorf("connection reset")},
		"evt-2": &HTTPError{Status: 404, StatusText: "Not Found"},
	}}
	engine := testEngine(deleter)

	report, err := engine.Run(context.Background(), testEvents(3), 3)

	require.NoError(t, err)
	retryables := report.RetryableFailures()
	require.Len(t, retryables, 2)
	assert.Len(t, report.Failed, 3)
	for _, f := range retryables {
		assert.NotEqual(t, "evt-2", f.EventID)
	}
}

func TestEngineRunSkipsIneligibleEvents(t *testing.T) {
	deleter := &fakeDeleter{}
	engine := testEngine(deleter)

	events := testEvents(3)
	events[1].Eligible = false

	report, err := engine.Run(context.Background(), events, 10)

	require.NoError(t, err)
	assert.Equal(t, 2, report.Total())
	assert.Equal(t, 2, deleter.callCount())
	for _, s := range report.Successful {
		assert.NotEqual(t, "evt-1", s.EventID)
	}
}

func TestEngineRunRejectsInvalidBatchSize(t *testing.T) {
	deleter := &fakeDeleter{}
	engine := testEngine(deleter)

	for _, batchSize := range []int{0, -1} {
		report, err := engine.Run(context.Background(), testEvents(2), batchSize)
		assert.Error(t, err)
		assert.Nil(t, report)
	}
	assert.Equal(t, 0, deleter.callCount(), "no deletion may start with an invalid batch size")
}

func TestEngineRunEmptyInput(t *testing.T) {
	engine := testEngine(&fakeDeleter{})

	report, err := engine.Run(context.Background(), nil, 5)

	require.NoError(t, err)
	assert.Equal(t, 0, report.Total())
}

func TestEngineRunCancellationCompletesReport(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	deleter := &fakeDeleter{onDelete: func(eventID string) { cancel() }}
	engine := testEngine(deleter)

	// Cancelling during the first chunk stops the run at the chunk
	// boundary. The remaining events settle as retryable failures.
	report, err := engine.Run(ctx, testEvents(6), 2)

	require.NoError(t, err)
	assert.Equal(t, 6, report.Total())
	assert.Equal(t, 2, deleter.callCount())
	require.Len(t, report.Failed, 4)
	for _, f := range report.Failed {
		assert.True(t, f.Retryable)
		assert.Contains(t, f.ErrorMessage, "context canceled")
	}
}

func TestEngineRunRecoversFromPanic(t *testing.T) {
	deleter := &fakeDeleter{panicOn: "evt-1"}
	engine := testEngine(deleter)

	report, err := engine.Run(context.Background(), testEvents(3), 3)

	require.NoError(t, err)
	assert.Equal(t, 3, report.Total())
	assert.Len(t, report.Successful, 2)
	require.Len(t, report.Failed, 1)
	assert.Equal(t, "evt-1", report.Failed[0].EventID)
	assert.True(t, report.Failed[0].Retryable)
}

func TestEngineRunHonorsRateLimiter(t *testing.T) {
	deleter := &fakeDeleter{}
	limiter := NewRateLimiter(2, 100*time.Millisecond)
	engine := NewEngine(deleter, limiter, EngineConfig{})

	start := time.Now()
	report, err := engine.Run(context.Background(), testEvents(4), 4)
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Len(t, report.Successful, 4)
	// Four deletions at two per 100ms need at least one full window of
	// waiting.
	assert.GreaterOrEqual(t, elapsed, 80*time.Millisecond)
}
