// Package server provides the operational HTTP surface of calsweep.
//
// MetricsServer serves Prometheus metrics on a dedicated port so that
// long-running purge invocations can be scraped while they work. The
// metrics port is separate from any application traffic, preventing
// unauthorized access to operational metrics. A /healthz endpoint on the
// same port supports liveness probes.
package server
