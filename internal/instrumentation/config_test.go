package instrumentation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearInstrumentationEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"OTEL_SERVICE_NAME", "OTEL_SERVICE_INSTANCE_ID",
		"K8S_NAMESPACE", "POD_NAMESPACE", "K8S_POD_NAME", "HOSTNAME",
		"INSTRUMENTATION_ENABLED", "METRICS_EXPORTER", "TRACING_EXPORTER",
		"OTEL_EXPORTER_OTLP_ENDPOINT", "OTEL_EXPORTER_OTLP_INSECURE",
		"OTEL_TRACES_SAMPLER_ARG", "PROMETHEUS_ENDPOINT",
		"METRICS_DETAILED_LABELS", "AUDIT_LOGGING_ENABLED",
		"AUDIT_LOGGING_INCLUDE_PII", "AUDIT_LOGGING_LEVEL",
	} {
		t.Setenv(key, "")
	}
}

func TestDefaultConfig(t *testing.T) {
	clearInstrumentationEnv(t)

	config := DefaultConfig()

	assert.Equal(t, "calsweep", config.ServiceName)
	assert.True(t, config.Enabled)
	assert.Equal(t, ExporterPrometheus, config.MetricsExporter)
	assert.Equal(t, ExporterNone, config.TracingExporter)
	assert.InDelta(t, 0.1, config.TraceSamplingRate, 0.0001)
	assert.Equal(t, "/metrics", config.PrometheusEndpoint)
	assert.False(t, config.DetailedLabels)
	assert.True(t, config.AuditLogging.Enabled)
	assert.False(t, config.AuditLogging.IncludePII)
	assert.Equal(t, "info", config.AuditLogging.LogLevel)
}

func TestDefaultConfigFromEnv(t *testing.T) {
	clearInstrumentationEnv(t)
	t.Setenv("OTEL_SERVICE_NAME", "calsweep-test")
	t.Setenv("INSTRUMENTATION_ENABLED", "false")
	t.Setenv("METRICS_EXPORTER", "otlp")
	t.Setenv("TRACING_EXPORTER", "stdout")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318")
	t.Setenv("OTEL_TRACES_SAMPLER_ARG", "0.5")
	t.Setenv("METRICS_DETAILED_LABELS", "true")
	t.Setenv("AUDIT_LOGGING_INCLUDE_PII", "true")

	config := DefaultConfig()

	assert.Equal(t, "calsweep-test", config.ServiceName)
	assert.False(t, config.Enabled)
	assert.Equal(t, ExporterOTLP, config.MetricsExporter)
	assert.Equal(t, ExporterStdout, config.TracingExporter)
	assert.Equal(t, "localhost:4318", config.OTLPEndpoint)
	assert.InDelta(t, 0.5, config.TraceSamplingRate, 0.0001)
	assert.True(t, config.DetailedLabels)
	assert.True(t, config.AuditLogging.IncludePII)
}

func TestConfigValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			MetricsExporter:   ExporterPrometheus,
			TracingExporter:   ExporterNone,
			TraceSamplingRate: 0.1,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(c *Config) {}, ""},
		{"empty exporters", func(c *Config) {
			c.MetricsExporter = ""
			c.TracingExporter = ""
		}, ""},
		{"sampling rate too low", func(c *Config) { c.TraceSamplingRate = -0.1 }, "sampling rate"},
		{"sampling rate too high", func(c *Config) { c.TraceSamplingRate = 1.5 }, "sampling rate"},
		{"bad metrics exporter", func(c *Config) { c.MetricsExporter = "statsd" }, "invalid metrics exporter"},
		{"bad tracing exporter", func(c *Config) { c.TracingExporter = "jaeger" }, "invalid tracing exporter"},
		{"otlp metrics without endpoint", func(c *Config) { c.MetricsExporter = ExporterOTLP }, "OTLP endpoint"},
		{"otlp tracing without endpoint", func(c *Config) { c.TracingExporter = ExporterOTLP }, "OTLP endpoint"},
		{"otlp with endpoint", func(c *Config) {
			c.MetricsExporter = ExporterOTLP
			c.TracingExporter = ExporterOTLP
			c.OTLPEndpoint = "localhost:4318"
		}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := valid()
			tt.mutate(&config)

			err := config.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestEnvOr(t *testing.T) {
	t.Setenv("CALSWEEP_TEST_VAR", "set")
	assert.Equal(t, "set", envOr("CALSWEEP_TEST_VAR", "fallback"))
	assert.Equal(t, "fallback", envOr("CALSWEEP_TEST_VAR_UNSET", "fallback"))
}

func TestEnvBoolOr(t *testing.T) {
	t.Setenv("CALSWEEP_TEST_BOOL", "true")
	assert.True(t, envBoolOr("CALSWEEP_TEST_BOOL", false))

	t.Setenv("CALSWEEP_TEST_BOOL", "0")
	assert.False(t, envBoolOr("CALSWEEP_TEST_BOOL", true))

	t.Setenv("CALSWEEP_TEST_BOOL", "not-a-bool")
	assert.True(t, envBoolOr("CALSWEEP_TEST_BOOL", true))

	assert.True(t, envBoolOr("CALSWEEP_TEST_BOOL_UNSET", true))
}

func TestEnvFloatOr(t *testing.T) {
	t.Setenv("CALSWEEP_TEST_FLOAT", "0.75")
	assert.InDelta(t, 0.75, envFloatOr("CALSWEEP_TEST_FLOAT", 0.5), 0.0001)

	t.Setenv("CALSWEEP_TEST_FLOAT", "not-a-float")
	assert.InDelta(t, 0.5, envFloatOr("CALSWEEP_TEST_FLOAT", 0.5), 0.0001)

	assert.InDelta(t, 0.5, envFloatOr("CALSWEEP_TEST_FLOAT_UNSET", 0.5), 0.0001)
}
