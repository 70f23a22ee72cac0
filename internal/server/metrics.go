package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/teemow/calsweep/internal/instrumentation"
)

const (
	// DefaultMetricsAddr is the address the metrics server binds to when
	// none is configured.
	DefaultMetricsAddr = ":9090"

	// DefaultShutdownTimeout bounds graceful shutdown of the metrics server
	// and the instrumentation provider.
	DefaultShutdownTimeout = 30 * time.Second

	readHeaderTimeout = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
)

// MetricsServerConfig holds configuration for the metrics server.
type MetricsServerConfig struct {
	// Addr is the listen address, e.g. ":9090". Empty means DefaultMetricsAddr.
	Addr string

	// Enabled determines whether the metrics server should be started.
	Enabled bool

	// InstrumentationProvider supplies the Prometheus registry the server
	// exposes. It must be enabled.
	InstrumentationProvider *instrumentation.Provider
}

// MetricsServer serves /metrics and /healthz on a dedicated listener.
type MetricsServer struct {
	addr       string
	boundAddr  string
	httpServer *http.Server
}

// NewMetricsServer validates the configuration and returns a server that is
// ready to Start.
func NewMetricsServer(config MetricsServerConfig) (*MetricsServer, error) {
	if config.InstrumentationProvider == nil {
		return nil, fmt.Errorf("instrumentation provider is required for metrics server")
	}
	if !config.InstrumentationProvider.Enabled() {
		return nil, fmt.Errorf("instrumentation provider is not enabled")
	}

	addr := config.Addr
	if addr == "" {
		addr = DefaultMetricsAddr
	}
	return &MetricsServer{addr: addr}, nil
}

// Start binds the listener and serves until Shutdown. If ready is non-nil it
// is closed once the listener is bound, so callers can fail fast when the
// port is taken. Pass nil for blocking use without a readiness signal.
func (s *MetricsServer) Start(ready chan<- struct{}) error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to bind metrics listener: %w", err)
	}

	s.httpServer = &http.Server{
		Addr:              s.addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}

	s.boundAddr = listener.Addr().String()
	slog.Info("starting metrics server", "addr", s.boundAddr)
	if ready != nil {
		close(ready)
	}
	return s.httpServer.Serve(listener)
}

func (s *MetricsServer) routes() http.Handler {
	mux := http.NewServeMux()

	// The OpenTelemetry prometheus exporter feeds the global Prometheus
	// registry, which promhttp.Handler exposes.
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

// Shutdown gracefully stops the server. Shutdown before Start is a no-op.
func (s *MetricsServer) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	slog.Info("shutting down metrics server")
	return s.httpServer.Shutdown(ctx)
}

// Addr returns the configured listen address.
func (s *MetricsServer) Addr() string {
	return s.addr
}
