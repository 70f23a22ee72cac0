package instrumentation

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys - using constants for consistency and DRY
const (
	// Common attributes (reused across metrics)
	attrStatus    = "status"
	attrOperation = "operation"
	attrResult    = "result"
	attrRetryable = "retryable"
	attrCalendar  = "calendar"
)

// Metrics provides methods for recording observability metrics.
type Metrics struct {
	// Deletion engine metrics
	deletionsTotal   metric.Int64Counter
	deletionDuration metric.Float64Histogram
	chunksTotal      metric.Int64Counter
	rateLimitWait    metric.Float64Histogram

	// Calendar API metrics (discovery collaborator)
	calendarAPIOperationsTotal   metric.Int64Counter
	calendarAPIOperationDuration metric.Float64Histogram

	// OAuth metrics
	oauthAuthTotal         metric.Int64Counter
	credentialRefreshTotal metric.Int64Counter

	// Configuration
	// detailedLabels controls whether high-cardinality labels are included
	detailedLabels bool
}

// NewMetrics creates a new Metrics instance with all metrics initialized.
// The detailedLabels parameter controls whether high-cardinality labels are included.
func NewMetrics(meter metric.Meter, detailedLabels bool) (*Metrics, error) {
	m := &Metrics{
		detailedLabels: detailedLabels,
	}

	var err error

	// Deletion engine metrics
	m.deletionsTotal, err = meter.Int64Counter(
		"calsweep_deletions_total",
		metric.WithDescription("Total number of event deletion attempts"),
		metric.WithUnit("{deletion}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create calsweep_deletions_total counter: %w", err)
	}

	m.deletionDuration, err = meter.Float64Histogram(
		"calsweep_deletion_duration_seconds",
		metric.WithDescription("Single event deletion duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create calsweep_deletion_duration_seconds histogram: %w", err)
	}

	m.chunksTotal, err = meter.Int64Counter(
		"calsweep_chunks_total",
		metric.WithDescription("Total number of deletion chunks processed"),
		metric.WithUnit("{chunk}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create calsweep_chunks_total counter: %w", err)
	}

	m.rateLimitWait, err = meter.Float64Histogram(
		"calsweep_ratelimit_wait_seconds",
		metric.WithDescription("Time spent waiting on the rate limiter before a deletion"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.01, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create calsweep_ratelimit_wait_seconds histogram: %w", err)
	}

	// Calendar API metrics
	m.calendarAPIOperationsTotal, err = meter.Int64Counter(
		"calendar_api_operations_total",
		metric.WithDescription("Total number of Calendar API operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar_api_operations_total counter: %w", err)
	}

	m.calendarAPIOperationDuration, err = meter.Float64Histogram(
		"calendar_api_operation_duration_seconds",
		metric.WithDescription("Calendar API operation duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar_api_operation_duration_seconds histogram: %w", err)
	}

	// OAuth metrics
	m.oauthAuthTotal, err = meter.Int64Counter(
		"oauth_auth_total",
		metric.WithDescription("Total number of OAuth authentication attempts"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create oauth_auth_total counter: %w", err)
	}

	m.credentialRefreshTotal, err = meter.Int64Counter(
		"oauth_credential_refresh_total",
		metric.WithDescription("Total number of credential invalidate-and-refresh cycles"),
		metric.WithUnit("{refresh}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create oauth_credential_refresh_total counter: %w", err)
	}

	return m, nil
}

// RecordDeletion records one deletion attempt with its outcome and duration.
func (m *Metrics) RecordDeletion(ctx context.Context, duration time.Duration, success, retryable bool) {
	if m.deletionsTotal == nil || m.deletionDuration == nil {
		return // Instrumentation not initialized
	}

	status := StatusSuccess
	if !success {
		status = StatusError
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrStatus, status),
		attribute.Bool(attrRetryable, retryable),
	}

	m.deletionsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.deletionDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordChunk records completion of one deletion chunk.
func (m *Metrics) RecordChunk(ctx context.Context) {
	if m.chunksTotal == nil {
		return // Instrumentation not initialized
	}

	m.chunksTotal.Add(ctx, 1)
}

// RecordRateLimitWait records the time a deletion attempt spent blocked on
// the rate limiter.
func (m *Metrics) RecordRateLimitWait(ctx context.Context, duration time.Duration) {
	if m.rateLimitWait == nil {
		return // Instrumentation not initialized
	}

	m.rateLimitWait.Record(ctx, duration.Seconds())
}

// RecordCalendarAPIOperation records a Calendar API operation with operation
// type, status, and duration.
//
// Parameters:
//   - operation: Operation type (list, get, delete, etc.)
//   - status: Result status ("success" or "error")
//   - duration: Time taken for the operation
func (m *Metrics) RecordCalendarAPIOperation(ctx context.Context, operation, status string, duration time.Duration) {
	if m.calendarAPIOperationsTotal == nil || m.calendarAPIOperationDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, status),
	}

	m.calendarAPIOperationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.calendarAPIOperationDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordCalendarAPIOperationWithCalendar records a Calendar API operation
// including the calendar identifier when detailed labels are enabled.
// Calendar IDs are high-cardinality, so the label is opt-in.
func (m *Metrics) RecordCalendarAPIOperationWithCalendar(ctx context.Context, operation, status, calendarID string, duration time.Duration) {
	if m.calendarAPIOperationsTotal == nil || m.calendarAPIOperationDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, status),
	}

	// Only add high-cardinality labels if explicitly enabled
	if m.detailedLabels && calendarID != "" {
		attrs = append(attrs, attribute.String(attrCalendar, calendarID))
	}

	m.calendarAPIOperationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.calendarAPIOperationDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordOAuthAuth records an OAuth authentication attempt with result.
// Result should be one of: "success", "failure"
func (m *Metrics) RecordOAuthAuth(ctx context.Context, result string) {
	if m.oauthAuthTotal == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrResult, result),
	}

	m.oauthAuthTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordCredentialRefresh records a credential invalidate-and-refresh cycle
// with result. Result should be one of: "success", "failure", "expired"
func (m *Metrics) RecordCredentialRefresh(ctx context.Context, result string) {
	if m.credentialRefreshTotal == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrResult, result),
	}

	m.credentialRefreshTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
}
