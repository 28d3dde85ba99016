// Package telemetry groups the observability surface of Throttlegate:
// structured logging (logging), Prometheus metrics (metrics), and
// liveness/readiness probes (health). Each sub-package is constructed
// independently and wired into pkg/server; only logging takes its settings
// from config.TelemetryConfig.
package telemetry
