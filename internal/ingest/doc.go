// Package ingest connects the broker to the firmware tracker and the
// coordinator monitor.
//
// Pipeline handles inbound messages: device snapshots on
// <prefix>/snapshot/<device> feed the snapshot registry and the firmware
// tracker, and coordinator status messages on <prefix>/coordinator/status
// feed the monitor. Firmware changes are fanned out to the broker, the
// WebSocket hub, InfluxDB and Prometheus.
//
// Reporter runs on a ticker. Each tick re-classifies coordinator health,
// publishes it retained on <prefix>/coordinator/health and retries any
// firmware history writes that previously failed.
package ingest
