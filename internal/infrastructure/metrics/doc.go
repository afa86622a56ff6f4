// Package metrics exposes the service's Prometheus collectors: the
// coordinator health gauges, firmware and ingest counters, and HTTP
// request metrics.
//
// Collectors are registered on an injected prometheus.Registerer so tests
// can use a private registry.
package metrics
