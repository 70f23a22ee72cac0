package instrumentation

import (
	"context"
	"log/slog"
	"time"
)

// RunInvocation captures all information about one bulk deletion run for
// audit logging. Bulk deletion is destructive, so every run leaves a trail
// of who deleted what.
//
// # Privacy Considerations
//
// The UserEmail field contains PII, and event titles may too. When logging,
// consider:
//   - Using UserDomain() to get only the domain for metrics/general logs
//   - Only logging full email and titles in audit-specific log streams
//   - Ensuring audit logs have appropriate access controls
type RunInvocation struct {
	// Operation name (purge, list, auth)
	Operation string

	// User identity (from OAuth)
	UserEmail string

	// Target information
	Account    string // Account name (default, work, personal)
	CalendarID string // Calendar the run targeted

	// Run details
	EventCount int // Eligible events handed to the engine
	Succeeded  int
	Failed     int

	// Execution details
	StartTime time.Time
	Duration  time.Duration
	Success   bool
	Error     string

	// Tracing context
	TraceID string
	SpanID  string
}

// UserDomain returns the domain portion of the user's email for lower-cardinality logging.
func (ri *RunInvocation) UserDomain() string {
	return ExtractUserDomain(ri.UserEmail)
}

// Status returns "success" or "error" based on the Success field.
func (ri *RunInvocation) Status() string {
	if ri.Success {
		return StatusSuccess
	}
	return StatusError
}

// LogAttrs returns slog attributes for structured logging.
// This provides a consistent set of fields for all run logs.
//
// # Cardinality
//
// This function uses cardinality-controlled values (user_domain)
// for metrics-compatible logging. For full audit logging, use LogAuditAttrs.
func (ri *RunInvocation) LogAttrs() []slog.Attr {
	attrs := []slog.Attr{
		slog.String("operation", ri.Operation),
		slog.String("user_domain", ri.UserDomain()),
		slog.Int("events", ri.EventCount),
		slog.Int("succeeded", ri.Succeeded),
		slog.Int("failed", ri.Failed),
		slog.Duration("duration", ri.Duration),
		slog.Bool("success", ri.Success),
	}

	// Add optional fields only if present
	if ri.Account != "" && ri.Account != "default" {
		attrs = append(attrs, slog.String("account", ri.Account))
	}
	if ri.TraceID != "" {
		attrs = append(attrs, slog.String("trace_id", ri.TraceID))
	}
	if ri.Error != "" {
		attrs = append(attrs, slog.String("error", ri.Error))
	}

	return attrs
}

// LogAuditAttrs returns slog attributes for full audit logging.
// This includes the full user email and calendar ID for compliance purposes.
//
// # Security Warning
//
// This method includes PII (full email). Ensure audit logs are:
//   - Stored securely with appropriate access controls
//   - Not exposed to general monitoring dashboards
//   - Retained according to compliance requirements
func (ri *RunInvocation) LogAuditAttrs() []slog.Attr {
	attrs := []slog.Attr{
		slog.String("operation", ri.Operation),
		slog.String("user", ri.UserEmail),
		slog.Int("events", ri.EventCount),
		slog.Int("succeeded", ri.Succeeded),
		slog.Int("failed", ri.Failed),
		slog.Duration("duration", ri.Duration),
		slog.Bool("success", ri.Success),
	}

	// Add all optional fields
	if ri.Account != "" {
		attrs = append(attrs, slog.String("account", ri.Account))
	}
	if ri.CalendarID != "" {
		attrs = append(attrs, slog.String("calendar", ri.CalendarID))
	}
	if ri.TraceID != "" {
		attrs = append(attrs, slog.String("trace_id", ri.TraceID))
	}
	if ri.SpanID != "" {
		attrs = append(attrs, slog.String("span_id", ri.SpanID))
	}
	if ri.Error != "" {
		attrs = append(attrs, slog.String("error", ri.Error))
	}

	return attrs
}

// NewRunInvocation creates a new RunInvocation with timing started.
// Call Complete() when the run finishes.
func NewRunInvocation(operation string) *RunInvocation {
	return &RunInvocation{
		Operation: operation,
		StartTime: time.Now(),
	}
}

// WithUser sets the user identity information.
func (ri *RunInvocation) WithUser(email string) *RunInvocation {
	ri.UserEmail = email
	return ri
}

// WithAccount sets the Google account name.
func (ri *RunInvocation) WithAccount(account string) *RunInvocation {
	ri.Account = account
	return ri
}

// WithCalendar sets the target calendar.
func (ri *RunInvocation) WithCalendar(calendarID string) *RunInvocation {
	ri.CalendarID = calendarID
	return ri
}

// WithCounts sets the run's event accounting.
func (ri *RunInvocation) WithCounts(events, succeeded, failed int) *RunInvocation {
	ri.EventCount = events
	ri.Succeeded = succeeded
	ri.Failed = failed
	return ri
}

// WithSpanContext extracts trace context from the current span.
func (ri *RunInvocation) WithSpanContext(ctx context.Context) *RunInvocation {
	ri.TraceID = GetTraceID(ctx)
	ri.SpanID = GetSpanID(ctx)
	return ri
}

// Complete marks the run as completed and calculates duration.
// Returns the same RunInvocation for method chaining.
func (ri *RunInvocation) Complete(success bool, err error) *RunInvocation {
	ri.Duration = time.Since(ri.StartTime)
	ri.Success = success
	if err != nil {
		ri.Error = err.Error()
	}
	return ri
}

// CompleteWithError marks the run as failed with the given error.
func (ri *RunInvocation) CompleteWithError(err error) *RunInvocation {
	return ri.Complete(false, err)
}

// CompleteSuccess marks the run as successful.
func (ri *RunInvocation) CompleteSuccess() *RunInvocation {
	return ri.Complete(true, nil)
}

// AuditLogger provides structured audit logging for deletion runs.
// It wraps slog.Logger with convenience methods for logging destructive operations.
type AuditLogger struct {
	logger     *slog.Logger
	includePII bool
	enabled    bool
}

// NewAuditLogger creates a new AuditLogger with the given slog.Logger.
// By default, PII is not included in logs (anonymized identifiers are used instead).
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{
		logger:     logger,
		includePII: false,
		enabled:    true,
	}
}

// NewAuditLoggerWithConfig creates a new AuditLogger with the given configuration.
func NewAuditLoggerWithConfig(logger *slog.Logger, config AuditLoggingConfig) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{
		logger:     logger,
		includePII: config.IncludePII,
		enabled:    config.Enabled,
	}
}

// SetIncludePII sets whether to include full email addresses in audit logs.
func (al *AuditLogger) SetIncludePII(include bool) {
	al.includePII = include
}

// SetEnabled sets whether audit logging is enabled.
func (al *AuditLogger) SetEnabled(enabled bool) {
	al.enabled = enabled
}

// LogRun logs a deletion run using the standard log attributes.
// This is suitable for general operational logging with cardinality controls.
// If the logger is configured with IncludePII, full user emails are logged;
// otherwise, only domain-based anonymized identifiers are used.
func (al *AuditLogger) LogRun(ri *RunInvocation) {
	if !al.enabled {
		return
	}

	// Choose between PII and anonymized logging based on configuration
	var attrs []slog.Attr
	if al.includePII {
		attrs = ri.LogAuditAttrs()
	} else {
		attrs = ri.LogAttrs()
	}

	args := make([]any, len(attrs))
	for i, attr := range attrs {
		args[i] = attr
	}

	if ri.Success {
		al.logger.Info("purge_run_completed", args...)
	} else {
		al.logger.Warn("purge_run_failed", args...)
	}
}

// LogRunAudit logs a deletion run with full audit details.
// This includes PII (full email addresses) for compliance/audit purposes.
// SECURITY: Ensure audit logs are routed to secure storage with appropriate access controls.
//
// Note: This method respects the enabled flag but always includes PII when called,
// regardless of the IncludePII configuration. Use LogRun for
// configuration-aware logging.
func (al *AuditLogger) LogRunAudit(ri *RunInvocation) {
	if !al.enabled {
		return
	}

	attrs := ri.LogAuditAttrs()
	args := make([]any, len(attrs))
	for i, attr := range attrs {
		args[i] = attr
	}

	al.logger.Info("purge_run_audit", args...)
}
