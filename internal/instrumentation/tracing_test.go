package instrumentation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// recordedSpans installs a recording tracer provider as the global one for
// the duration of the test and returns the recorder.
func recordedSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() {
		otel.SetTracerProvider(previous)
		_ = provider.Shutdown(context.Background())
	})
	return recorder
}

func TestSpanAttributeBuilder(t *testing.T) {
	attrs := NewSpanAttributeBuilder().
		WithOperation("purge").
		WithAccount("work").
		WithCalendar("primary").
		WithEvent("evt-1").
		WithEventCount(42).
		Build()

	require.Len(t, attrs, 5)

	got := make(map[string]any)
	for _, attr := range attrs {
		got[string(attr.Key)] = attr.Value.AsInterface()
	}
	assert.Equal(t, "purge", got[SpanAttrOperation])
	assert.Equal(t, "work", got[SpanAttrAccount])
	assert.Equal(t, "primary", got[SpanAttrCalendar])
	assert.Equal(t, "evt-1", got[SpanAttrEvent])
	assert.Equal(t, int64(42), got[SpanAttrEventCount])
}

func TestSpanAttributeBuilderSkipsEmptyValues(t *testing.T) {
	attrs := NewSpanAttributeBuilder().
		WithOperation("purge").
		WithAccount("").
		WithCalendar("").
		WithEvent("").
		Build()

	assert.Len(t, attrs, 1, "empty account/calendar/event must not produce attributes")
}

func TestStartSpan(t *testing.T) {
	recorder := recordedSpans(t)

	ctx, span := StartSpan(context.Background(), "purge.run",
		attribute.Int(SpanAttrEventCount, 3))
	require.NotNil(t, ctx)
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "purge.run", ended[0].Name())
}

func TestStartCalendarAPISpan(t *testing.T) {
	recorder := recordedSpans(t)

	_, span := StartCalendarAPISpan(context.Background(), OperationDelete)
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "calendar.delete", ended[0].Name())

	var operation string
	for _, attr := range ended[0].Attributes() {
		if string(attr.Key) == SpanAttrOperation {
			operation = attr.Value.AsString()
		}
	}
	assert.Equal(t, OperationDelete, operation)
}

func TestSetSpanErrorAndSuccess(t *testing.T) {
	recorder := recordedSpans(t)

	_, failed := StartSpan(context.Background(), "failed")
	SetSpanError(failed, errors.New("http 503"))
	SetSpanError(failed, nil)
	failed.End()

	_, ok := StartSpan(context.Background(), "ok")
	SetSpanSuccess(ok)
	ok.End()

	ended := recorder.Ended()
	require.Len(t, ended, 2)
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Equal(t, "http 503", ended[0].Status().Description)
	assert.Equal(t, codes.Ok, ended[1].Status().Code)
}

func TestAddSpanEvent(t *testing.T) {
	recorder := recordedSpans(t)

	_, span := StartSpan(context.Background(), "purge.chunk")
	AddSpanEvent(span, "chunk settled", attribute.Int("events", 10))
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	require.Len(t, ended[0].Events(), 1)
	assert.Equal(t, "chunk settled", ended[0].Events()[0].Name)
}

func TestTraceContextAccessors(t *testing.T) {
	recordedSpans(t)

	// Without a span everything is empty.
	assert.Empty(t, GetTraceID(context.Background()))
	assert.Empty(t, GetSpanID(context.Background()))
	assert.Empty(t, SpanContextString(context.Background()))

	ctx, span := StartSpan(context.Background(), "purge.run")
	defer span.End()

	assert.NotEmpty(t, GetTraceID(ctx))
	assert.NotEmpty(t, GetSpanID(ctx))
	assert.Contains(t, SpanContextString(ctx), "trace_id=")
	assert.Contains(t, SpanContextString(ctx), "span_id=")
}
