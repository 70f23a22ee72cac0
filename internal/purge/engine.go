package purge

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/teemow/calsweep/internal/instrumentation"
	"github.com/teemow/calsweep/internal/logging"
)

// DefaultBatchSize is the number of deletions dispatched concurrently per
// chunk when the caller does not pick one.
const DefaultBatchSize = 10

// Engine drives rate-limited, batched deletions over a candidate set and
// aggregates per-event outcomes into a DeletionReport.
//
// Chunks are processed strictly sequentially; within a chunk every deletion
// runs concurrently, gated by the shared rate limiter. The engine waits for
// every attempt in a chunk to settle before classifying results, so one
// event's failure never aborts or rolls back its siblings.
type Engine struct {
	deleter Deleter
	limiter *RateLimiter
	logger  logging.Logger
	metrics *instrumentation.Metrics
	tracer  trace.Tracer
}

// EngineConfig holds the optional collaborators of an engine.
type EngineConfig struct {
	// Logger defaults to the slog default logger.
	Logger logging.Logger

	// Metrics defaults to a no-op recorder.
	Metrics *instrumentation.Metrics

	// Tracer defaults to a no-op tracer.
	Tracer trace.Tracer
}

// NewEngine creates an engine. The rate limiter is injected rather than
// owned so that multiple engines can share one limit and tests can run
// without cross-contamination.
func NewEngine(deleter Deleter, limiter *RateLimiter, config EngineConfig) *Engine {
	logger := config.Logger
	if logger == nil {
		logger = logging.DefaultLogger()
	}
	metrics := config.Metrics
	if metrics == nil {
		metrics = &instrumentation.Metrics{}
	}
	tracer := config.Tracer
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("purge")
	}

	return &Engine{
		deleter: deleter,
		limiter: limiter,
		logger:  logger,
		metrics: metrics,
		tracer:  tracer,
	}
}

// settled is one per-event attempt result awaiting classification.
type settled struct {
	event CandidateEvent
	err   error
}

// Run deletes the given events in consecutive chunks of at most batchSize.
// Ineligible events are skipped up front and appear in neither report list.
// Per-event and chunk-level failures are downgraded into Failure entries;
// the only error Run itself returns is an invalid batch size, which fails
// fast before any work starts.
//
// Cancelling ctx stops the run at the next chunk boundary. The returned
// report still accounts for every eligible input event: attempts that never
// started are recorded as retryable failures carrying the cancellation
// message.
func (e *Engine) Run(ctx context.Context, events []CandidateEvent, batchSize int) (*DeletionReport, error) {
	if batchSize <= 0 {
		return nil, fmt.Errorf("batch size must be positive, got %d", batchSize)
	}

	ctx, span := e.tracer.Start(ctx, "purge.run")
	defer span.End()

	eligible := make([]CandidateEvent, 0, len(events))
	for _, event := range events {
		if event.Eligible {
			eligible = append(eligible, event)
		}
	}
	span.SetAttributes(instrumentation.NewSpanAttributeBuilder().
		WithOperation("purge").
		WithEventCount(len(eligible)).
		WithBatchSize(batchSize).
		Build()...)

	report := &DeletionReport{}
	chunks := (len(eligible) + batchSize - 1) / batchSize
	e.logger.Info("starting deletion run",
		logging.KeyEvents, len(eligible),
		logging.KeyChunks, chunks,
		logging.KeyBatchSize, batchSize,
	)

	for start := 0; start < len(eligible); start += batchSize {
		end := min(start+batchSize, len(eligible))

		if err := ctx.Err(); err != nil {
			// User-initiated abort. Everything not yet dispatched settles
			// as a retryable failure so the report stays complete.
			e.failAll(report, eligible[start:], &EngineFault{Err: err})
			e.logger.Warn("deletion run cancelled",
				logging.KeyRemaining, len(eligible)-start,
			)
			break
		}

		e.runChunk(ctx, eligible[start:end], report)
	}

	e.logger.Info("deletion run complete",
		logging.KeySucceeded, len(report.Successful),
		logging.KeyFailed, len(report.Failed),
	)
	return report, nil
}

// runChunk dispatches every event in the chunk concurrently and waits for
// all of them to settle before classifying outcomes.
func (e *Engine) runChunk(ctx context.Context, chunk []CandidateEvent, report *DeletionReport) {
	ctx, span := e.tracer.Start(ctx, "purge.chunk",
		trace.WithAttributes(instrumentation.NewSpanAttributeBuilder().WithEventCount(len(chunk)).Build()...))
	defer span.End()

	results := make(chan settled, len(chunk))
	var wg sync.WaitGroup
	for _, event := range chunk {
		wg.Add(1)
		go func(event CandidateEvent) {
			defer wg.Done()
			results <- settled{event: event, err: e.attempt(ctx, event)}
		}(event)
	}
	wg.Wait()
	close(results)

	// Classification happens in completion order, which the report exposes.
	for result := range results {
		e.classify(report, result)
	}
	e.metrics.RecordChunk(ctx)
}

// attempt acquires the shared rate limiter and performs one deletion. A
// panic in orchestration is downgraded to an EngineFault so a single fault
// cannot abort the run.
func (e *Engine) attempt(ctx context.Context, event CandidateEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &EngineFault{Err: fmt.Errorf("panic during deletion attempt: %v", r)}
		}
	}()

	waitStart := time.Now()
	if acquireErr := e.limiter.Acquire(ctx); acquireErr != nil {
		return &EngineFault{Err: acquireErr}
	}
	e.metrics.RecordRateLimitWait(ctx, time.Since(waitStart))

	deleteStart := time.Now()
	err = e.deleter.Delete(ctx, event.CalendarID, event.EventID)
	e.metrics.RecordDeletion(ctx, time.Since(deleteStart), err == nil, err != nil && retryable(err))
	return err
}

// classify appends one settled attempt to the report.
func (e *Engine) classify(report *DeletionReport, result settled) {
	if result.err == nil {
		report.Successful = append(report.Successful, Success{
			Ref:     result.event.Ref,
			EventID: result.event.EventID,
			Title:   result.event.Title,
		})
		e.logger.Debug("event deleted",
			logging.KeyCalendar, result.event.CalendarID,
			logging.KeyEvent, result.event.EventID,
		)
		return
	}

	report.Failed = append(report.Failed, Failure{
		Ref:          result.event.Ref,
		EventID:      result.event.EventID,
		Title:        result.event.Title,
		ErrorMessage: result.err.Error(),
		Retryable:    retryable(result.err),
	})
	e.logger.Warn("event deletion failed",
		logging.KeyCalendar, result.event.CalendarID,
		logging.KeyEvent, result.event.EventID,
		logging.KeyError, result.err.Error(),
		logging.KeyRetryable, retryable(result.err),
	)
}

// failAll records every remaining event as a retryable failure with the
// engine's error message.
func (e *Engine) failAll(report *DeletionReport, events []CandidateEvent, fault error) {
	for _, event := range events {
		report.Failed = append(report.Failed, Failure{
			Ref:          event.Ref,
			EventID:      event.EventID,
			Title:        event.Title,
			ErrorMessage: fault.Error(),
			Retryable:    true,
		})
	}
}
