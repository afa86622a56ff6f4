// Package config handles loading and validating the ring-extended
// service configuration.
//
// This package manages:
//   - Loading an optional .env file into the environment (godotenv)
//   - Loading configuration from YAML files
//   - Overriding with RINGEXT_* environment variables
//   - Validation of required fields and coordinator thresholds
//
// Secrets (MQTT password, InfluxDB token, JWT secret) should be supplied
// through the environment rather than the config file.
//
// Usage:
//
//	if err := config.LoadDotEnv(); err != nil {
//	    return err
//	}
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    return err
//	}
package config
