package instrumentation

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config controls OpenTelemetry instrumentation. The zero value is not
// usable; start from DefaultConfig, which reads the environment.
type Config struct {
	// ServiceName identifies this service in telemetry (default: calsweep).
	ServiceName string

	// ServiceVersion is stamped onto the telemetry resource.
	ServiceVersion string

	// ServiceInstanceID distinguishes instances; defaults to the hostname,
	// which in Kubernetes is the pod name.
	ServiceInstanceID string

	// K8sNamespace and K8sPodName annotate telemetry with Kubernetes
	// metadata when set.
	K8sNamespace string
	K8sPodName   string

	// Enabled turns instrumentation on or off entirely
	// (INSTRUMENTATION_ENABLED, default true).
	Enabled bool

	// MetricsExporter selects "prometheus", "otlp" or "stdout"
	// (METRICS_EXPORTER, default prometheus).
	MetricsExporter string

	// TracingExporter selects "otlp", "stdout" or "none"
	// (TRACING_EXPORTER, default none).
	TracingExporter string

	// OTLPEndpoint is the collector host:port for the OTLP exporters,
	// without a protocol prefix (OTEL_EXPORTER_OTLP_ENDPOINT).
	OTLPEndpoint string

	// OTLPInsecure disables TLS for OTLP export. Only for local
	// development; telemetry carries account and calendar metadata.
	OTLPInsecure bool

	// TraceSamplingRate is the trace sampling ratio in [0,1]
	// (OTEL_TRACES_SAMPLER_ARG, default 0.1).
	TraceSamplingRate float64

	// PrometheusEndpoint is the metrics HTTP path (default /metrics).
	PrometheusEndpoint string

	// DetailedLabels opts into high-cardinality metric labels such as
	// calendar IDs. Keep disabled in production.
	DetailedLabels bool

	// AuditLogging configures the audit trail for deletion runs.
	AuditLogging AuditLoggingConfig
}

// AuditLoggingConfig controls the audit trail written for every deletion
// run. Audit entries may contain full user emails, so route them to
// storage with appropriate access controls.
type AuditLoggingConfig struct {
	// Enabled turns audit logging on (AUDIT_LOGGING_ENABLED, default true).
	Enabled bool

	// IncludePII switches the general run log from anonymized user
	// identifiers to full email addresses (AUDIT_LOGGING_INCLUDE_PII,
	// default false).
	IncludePII bool

	// LogLevel is the slog level for audit messages (AUDIT_LOGGING_LEVEL,
	// default info).
	LogLevel string
}

// DefaultConfig builds a Config from environment variables, falling back
// to defaults suitable for a CLI run with a local Prometheus scrape.
func DefaultConfig() Config {
	return Config{
		ServiceName:        envOr("OTEL_SERVICE_NAME", "calsweep"),
		ServiceVersion:     "unknown",
		ServiceInstanceID:  envOr("OTEL_SERVICE_INSTANCE_ID", ""),
		K8sNamespace:       envOr("K8S_NAMESPACE", envOr("POD_NAMESPACE", "")),
		K8sPodName:         envOr("K8S_POD_NAME", envOr("HOSTNAME", "")),
		Enabled:            envBoolOr("INSTRUMENTATION_ENABLED", true),
		MetricsExporter:    envOr("METRICS_EXPORTER", ExporterPrometheus),
		TracingExporter:    envOr("TRACING_EXPORTER", ExporterNone),
		OTLPEndpoint:       envOr("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OTLPInsecure:       envBoolOr("OTEL_EXPORTER_OTLP_INSECURE", false),
		TraceSamplingRate:  envFloatOr("OTEL_TRACES_SAMPLER_ARG", 0.1),
		PrometheusEndpoint: envOr("PROMETHEUS_ENDPOINT", "/metrics"),
		DetailedLabels:     envBoolOr("METRICS_DETAILED_LABELS", false),
		AuditLogging: AuditLoggingConfig{
			Enabled:    envBoolOr("AUDIT_LOGGING_ENABLED", true),
			IncludePII: envBoolOr("AUDIT_LOGGING_INCLUDE_PII", false),
			LogLevel:   envOr("AUDIT_LOGGING_LEVEL", "info"),
		},
	}
}

// Validate rejects configurations the provider cannot honor.
func (c *Config) Validate() error {
	if c.TraceSamplingRate < 0 || c.TraceSamplingRate > 1 {
		return fmt.Errorf("trace sampling rate must be between 0.0 and 1.0, got %f", c.TraceSamplingRate)
	}

	switch c.MetricsExporter {
	case "", ExporterPrometheus, ExporterOTLP, ExporterStdout:
	default:
		return fmt.Errorf("invalid metrics exporter %q, must be one of: prometheus, otlp, stdout", c.MetricsExporter)
	}

	switch c.TracingExporter {
	case "", ExporterOTLP, ExporterStdout, ExporterNone:
	default:
		return fmt.Errorf("invalid tracing exporter %q, must be one of: otlp, stdout, none", c.TracingExporter)
	}

	if c.OTLPEndpoint == "" {
		if c.MetricsExporter == ExporterOTLP {
			return fmt.Errorf("OTLP endpoint is required when using OTLP metrics exporter")
		}
		if c.TracingExporter == ExporterOTLP {
			return fmt.Errorf("OTLP endpoint is required when using OTLP tracing exporter")
		}
	}

	return nil
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func envFloatOr(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

// Metric label values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
	StatusUnknown = "unknown"

	OAuthResultSuccess = "success"
	OAuthResultFailure = "failure"
	OAuthResultExpired = "expired"

	ExporterPrometheus = "prometheus"
	ExporterOTLP       = "otlp"
	ExporterStdout     = "stdout"
	ExporterNone       = "none"

	DefaultMetricInterval = 10 * time.Second
)
