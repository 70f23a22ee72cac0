package instrumentation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProviderConfig(metricsExporter, tracingExporter string) Config {
	return Config{
		ServiceName:     "calsweep-test",
		ServiceVersion:  "0.0.0",
		Enabled:         true,
		MetricsExporter: metricsExporter,
		TracingExporter: tracingExporter,
	}
}

func TestNewProviderDisabled(t *testing.T) {
	provider, err := NewProvider(context.Background(), Config{Enabled: false})
	require.NoError(t, err)

	assert.False(t, provider.Enabled())
	assert.NotNil(t, provider.Metrics(), "disabled provider still hands out a recorder")
	assert.NotNil(t, provider.Tracer("test"), "disabled provider still hands out a tracer")
	assert.NoError(t, provider.Shutdown(context.Background()))
}

func TestNewProviderPrometheus(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	provider, err := NewProvider(ctx, testProviderConfig(ExporterPrometheus, ExporterNone))
	require.NoError(t, err)
	defer func() { _ = provider.Shutdown(ctx) }()

	assert.True(t, provider.Enabled())
	assert.NotNil(t, provider.Metrics())
	assert.NotNil(t, provider.PrometheusHandler())
	assert.NotNil(t, provider.Tracer("test"))
}

func TestNewProviderStdout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	provider, err := NewProvider(ctx, testProviderConfig(ExporterStdout, ExporterStdout))
	require.NoError(t, err)
	defer func() { _ = provider.Shutdown(ctx) }()

	assert.True(t, provider.Enabled())
	assert.Nil(t, provider.PrometheusHandler(), "no prometheus handler without the prometheus exporter")
}

func TestNewProviderRejectsUnknownExporters(t *testing.T) {
	ctx := context.Background()

	_, err := NewProvider(ctx, testProviderConfig("statsd", ExporterNone))
	assert.Error(t, err)

	_, err = NewProvider(ctx, testProviderConfig(ExporterPrometheus, "jaeger"))
	assert.Error(t, err)
}

func TestNewProviderOTLPRequiresEndpoint(t *testing.T) {
	ctx := context.Background()

	_, err := NewProvider(ctx, testProviderConfig(ExporterOTLP, ExporterNone))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OTLP endpoint")

	_, err = NewProvider(ctx, testProviderConfig(ExporterPrometheus, ExporterOTLP))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OTLP endpoint")
}

func TestProviderShutdown(t *testing.T) {
	ctx := context.Background()
	provider, err := NewProvider(ctx, testProviderConfig(ExporterPrometheus, ExporterNone))
	require.NoError(t, err)

	assert.NoError(t, provider.Shutdown(ctx))
}
