// Package prometheus exposes goSession counters through client_golang.
//
// [Exporter] is a prometheus.Collector. Register it with any registry, or
// mount [Exporter.Handler] which serves a private registry. Counter names
// are prefixed gosession_*_total; the single histogram is
// gosession_request_latency_seconds.
//
// # What this package must NOT do
//
//   - Register in the global Prometheus registry.
//   - Mutate Store state.
package prometheus
