// Package logging provides structured logging for the ring-extended
// service.
//
// It wraps log/slog with JSON or text output, level filtering, and default
// service and version fields on every entry.
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// Usage:
//
//	logger := logging.New(cfg.Logging, version)
//	logger.Info("firmware change detected", "device_id", id, "version", v)
//
// Never log secrets such as the MQTT password, InfluxDB token or JWT secret.
package logging
