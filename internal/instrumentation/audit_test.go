package instrumentation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func invocation() *RunInvocation {
	return NewRunInvocation("purge").
		WithUser("jane@example.com").
		WithAccount("work").
		WithCalendar("team@example.com").
		WithCounts(10, 8, 2)
}

// auditEntries captures everything an AuditLogger writes as decoded JSON.
func auditEntries(t *testing.T, config AuditLoggingConfig, log func(al *AuditLogger)) []map[string]any {
	t.Helper()

	var buf bytes.Buffer
	log(NewAuditLoggerWithConfig(slog.New(slog.NewJSONHandler(&buf, nil)), config))

	var entries []map[string]any
	for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		var entry map[string]any
		require.NoError(t, json.Unmarshal(line, &entry))
		entries = append(entries, entry)
	}
	return entries
}

func TestRunInvocationComplete(t *testing.T) {
	ri := NewRunInvocation("purge")
	assert.Equal(t, "purge", ri.Operation)
	assert.False(t, ri.StartTime.IsZero())

	ri.CompleteSuccess()
	assert.True(t, ri.Success)
	assert.GreaterOrEqual(t, ri.Duration, time.Duration(0))
	assert.Empty(t, ri.Error)
}

func TestRunInvocationCompleteWithError(t *testing.T) {
	ri := NewRunInvocation("purge").CompleteWithError(errors.New("permission denied"))

	assert.False(t, ri.Success)
	assert.Equal(t, "permission denied", ri.Error)
	assert.Equal(t, StatusError, ri.Status())
}

func TestRunInvocationBuilders(t *testing.T) {
	ri := invocation().CompleteSuccess()

	assert.Equal(t, "jane@example.com", ri.UserEmail)
	assert.Equal(t, "example.com", ri.UserDomain())
	assert.Equal(t, "work", ri.Account)
	assert.Equal(t, "team@example.com", ri.CalendarID)
	assert.Equal(t, 10, ri.EventCount)
	assert.Equal(t, 8, ri.Succeeded)
	assert.Equal(t, 2, ri.Failed)
	assert.Equal(t, StatusSuccess, ri.Status())
}

func TestRunInvocationLogAttrsAnonymizesUser(t *testing.T) {
	attrs := invocation().CompleteSuccess().LogAttrs()

	keys := make(map[string]bool)
	for _, attr := range attrs {
		keys[attr.Key] = true
	}

	for _, want := range []string{"operation", "user_domain", "events", "succeeded", "failed", "duration", "success", "account"} {
		assert.True(t, keys[want], "missing key %q", want)
	}
	assert.False(t, keys["user"], "general run log must not carry the raw email")
	assert.False(t, keys["calendar"], "general run log must not carry the calendar ID")
}

func TestRunInvocationLogAttrsOmitsDefaultAccount(t *testing.T) {
	attrs := NewRunInvocation("purge").WithAccount("default").CompleteSuccess().LogAttrs()

	for _, attr := range attrs {
		assert.NotEqual(t, "account", attr.Key, "default account is noise")
	}
}

func TestRunInvocationLogAuditAttrsCarriesPII(t *testing.T) {
	attrs := invocation().CompleteWithError(errors.New("boom")).LogAuditAttrs()

	values := make(map[string]string)
	for _, attr := range attrs {
		values[attr.Key] = attr.Value.String()
	}

	assert.Equal(t, "jane@example.com", values["user"])
	assert.Equal(t, "team@example.com", values["calendar"])
	assert.Equal(t, "boom", values["error"])
}

func TestRunInvocationWithSpanContextNoSpan(t *testing.T) {
	ri := NewRunInvocation("purge").WithSpanContext(context.Background())

	assert.Empty(t, ri.TraceID)
	assert.Empty(t, ri.SpanID)
}

func TestAuditLoggerLogRun(t *testing.T) {
	entries := auditEntries(t, AuditLoggingConfig{Enabled: true}, func(al *AuditLogger) {
		al.LogRun(invocation().CompleteSuccess())
		al.LogRun(invocation().CompleteWithError(errors.New("quota exceeded")))
	})

	require.Len(t, entries, 2)
	assert.Equal(t, "purge_run_completed", entries[0]["msg"])
	assert.Equal(t, "INFO", entries[0]["level"])
	assert.Equal(t, "purge_run_failed", entries[1]["msg"])
	assert.Equal(t, "WARN", entries[1]["level"])
	assert.NotContains(t, entries[0], "user", "PII disabled by default")
}

func TestAuditLoggerLogRunWithPII(t *testing.T) {
	entries := auditEntries(t, AuditLoggingConfig{Enabled: true, IncludePII: true}, func(al *AuditLogger) {
		al.LogRun(invocation().CompleteSuccess())
	})

	require.Len(t, entries, 1)
	assert.Equal(t, "jane@example.com", entries[0]["user"])
}

func TestAuditLoggerDisabled(t *testing.T) {
	entries := auditEntries(t, AuditLoggingConfig{Enabled: false}, func(al *AuditLogger) {
		al.LogRun(invocation().CompleteSuccess())
		al.LogRunAudit(invocation().CompleteSuccess())
	})

	assert.Empty(t, entries)
}

func TestAuditLoggerLogRunAudit(t *testing.T) {
	entries := auditEntries(t, AuditLoggingConfig{Enabled: true}, func(al *AuditLogger) {
		al.LogRunAudit(invocation().CompleteSuccess())
	})

	require.Len(t, entries, 1)
	assert.Equal(t, "purge_run_audit", entries[0]["msg"])
	assert.Equal(t, "jane@example.com", entries[0]["user"], "audit stream always carries the full identity")
	assert.Equal(t, "team@example.com", entries[0]["calendar"])
}
