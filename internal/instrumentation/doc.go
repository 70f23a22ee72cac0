// Package instrumentation provides comprehensive OpenTelemetry instrumentation
// for the calsweep bulk deletion tool.
//
// This package enables production-grade observability through:
//   - OpenTelemetry metrics for the deletion engine, OAuth operations, and Calendar API calls
//   - Distributed tracing for deletion runs and API calls
//   - Prometheus metrics export via /metrics endpoint on dedicated port
//   - OTLP export support for modern observability platforms
//
// # Metrics
//
// The package exposes the following metric categories:
//
// Deletion Engine Metrics:
//   - calsweep_deletions_total: Counter of deletion attempts by status and retryability
//   - calsweep_deletion_duration_seconds: Histogram of single-event deletion durations
//   - calsweep_chunks_total: Counter of processed deletion chunks
//   - calsweep_ratelimit_wait_seconds: Histogram of time spent blocked on the rate limiter
//
// Calendar API Metrics:
//   - calendar_api_operations_total: Counter of Calendar API operations by operation and status
//   - calendar_api_operation_duration_seconds: Histogram of Calendar API operation durations
//
// OAuth Authentication Metrics:
//   - oauth_auth_total: Counter of OAuth authentication events by result
//   - oauth_credential_refresh_total: Counter of invalidate-and-refresh cycles by result
//
// # Tracing
//
// Distributed tracing spans are created for:
//   - Deletion runs (purge.run) and chunk processing (purge.chunk)
//   - Calendar API calls (calendar.<operation>)
//   - OAuth token operations
//
// # Configuration
//
// Instrumentation can be configured via environment variables:
//   - INSTRUMENTATION_ENABLED: Enable/disable instrumentation (default: true)
//   - METRICS_EXPORTER: Metrics exporter type (prometheus, otlp, stdout, default: prometheus)
//   - TRACING_EXPORTER: Tracing exporter type (otlp, stdout, none, default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces/metrics
//   - OTEL_TRACES_SAMPLER_ARG: Sampling rate (0.0 to 1.0, default: 0.1)
//   - OTEL_SERVICE_NAME: Service name (default: calsweep)
//
// # Example Usage
//
//	// Initialize instrumentation
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.Config{
//		ServiceName:    "calsweep",
//		ServiceVersion: "0.1.0",
//		Enabled:        true,
//	})
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	// Get metrics recorder
//	recorder := provider.Metrics()
//
//	// Record a deletion attempt
//	recorder.RecordDeletion(ctx, time.Since(start), true, false)
//
//	// Record a Calendar API operation
//	recorder.RecordCalendarAPIOperation(ctx, "list", "success", time.Since(start))
package instrumentation
