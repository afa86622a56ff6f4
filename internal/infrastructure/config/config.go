package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variable names.
const (
	envPrefix = "RINGEXT_"

	// EnvDotEnv names the .env file loaded before the config file.
	EnvDotEnv = envPrefix + "DOTENV"

	// defaultDotEnv is loaded when EnvDotEnv is unset.
	defaultDotEnv = ".env"
)

// Config is the root configuration structure for the ring-extended service.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Site      SiteConfig      `yaml:"site"`
	Database  DatabaseConfig  `yaml:"database"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	API       APIConfig       `yaml:"api"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb"`
	Logging   LoggingConfig   `yaml:"logging"`
	Monitor   MonitorConfig   `yaml:"monitor"`
	Firmware  FirmwareConfig  `yaml:"firmware"`
	Presenter PresenterConfig `yaml:"presenter"`
	Security  SecurityConfig  `yaml:"security"`
}

// SiteConfig identifies the installation.
type SiteConfig struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Broker      MQTTBrokerConfig    `yaml:"broker"`
	Auth        MQTTAuthConfig      `yaml:"auth"`
	QoS         int                 `yaml:"qos"`
	Reconnect   MQTTReconnectConfig `yaml:"reconnect"`
	TopicPrefix string              `yaml:"topic_prefix"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings (seconds).
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
	MaxAttempts  int `yaml:"max_attempts"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig       `yaml:"cors"`
}

// APITimeoutConfig contains HTTP timeout settings (seconds).
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// WebSocketConfig contains WebSocket hub settings.
type WebSocketConfig struct {
	MaxMessageSize int `yaml:"max_message_size"`
	PingInterval   int `yaml:"ping_interval"`
	PongTimeout    int `yaml:"pong_timeout"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// MonitorConfig contains coordinator health thresholds.
type MonitorConfig struct {
	StaleAfter      time.Duration `yaml:"stale_after"`
	CriticalAfter   time.Duration `yaml:"critical_after"`
	PublishInterval time.Duration `yaml:"publish_interval"`
}

// FirmwareConfig contains firmware tracking settings.
type FirmwareConfig struct {
	// AttributePath is the dotted attribute path holding the firmware version.
	AttributePath string `yaml:"attribute_path"`

	// ChangelogLimit caps the changelog returned by the API.
	ChangelogLimit int `yaml:"changelog_limit"`
}

// PresenterConfig selects the sensor categories exposed by the API.
// An empty list enables every category.
type PresenterConfig struct {
	Categories []string `yaml:"categories"`
}

// SecurityConfig contains security settings.
type SecurityConfig struct {
	JWT JWTConfig `yaml:"jwt"`
}

// JWTConfig contains JWT settings. An empty secret disables authentication
// on destructive endpoints.
type JWTConfig struct {
	Secret string `yaml:"secret"`
}

// LoadDotEnv loads variables from a .env file into the process
// environment without overriding variables that are already set.
//
// The path comes from RINGEXT_DOTENV, defaulting to ".env". A missing file
// is not an error.
func LoadDotEnv() error {
	path := os.Getenv(EnvDotEnv)
	if path == "" {
		path = defaultDotEnv
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: RINGEXT_SECTION_KEY
// For example: RINGEXT_DATABASE_PATH, RINGEXT_MQTT_HOST
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return defaultConfig()
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Site: SiteConfig{
			ID:   "home",
			Name: "Ring Extended",
		},
		Database: DatabaseConfig{
			Path:        "./data/ring-extended.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "ring-extended",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
			TopicPrefix: "ring",
		},
		API: APIConfig{
			Host: "0.0.0.0",
			Port: 8090,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		WebSocket: WebSocketConfig{
			MaxMessageSize: 8192,
			PingInterval:   30,
			PongTimeout:    10,
		},
		InfluxDB: InfluxDBConfig{
			BatchSize:     100,
			FlushInterval: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Monitor: MonitorConfig{
			StaleAfter:      10 * time.Minute,
			CriticalAfter:   30 * time.Minute,
			PublishInterval: time.Minute,
		},
		Firmware: FirmwareConfig{
			AttributePath:  "health.firmware_version",
			ChangelogLimit: 50,
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv(envPrefix + "DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	if v := os.Getenv(envPrefix + "MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv(envPrefix + "MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv(envPrefix + "MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	if v := os.Getenv(envPrefix + "API_HOST"); v != "" {
		cfg.API.Host = v
	}

	if v := os.Getenv(envPrefix + "INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}

	if v := os.Getenv(envPrefix + "JWT_SECRET"); v != "" {
		cfg.Security.JWT.Secret = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of every validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	if c.Site.ID == "" {
		errs = append(errs, "site.id is required")
	}

	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}
	if strings.Trim(c.MQTT.TopicPrefix, "/") == "" {
		errs = append(errs, "mqtt.topic_prefix is required")
	} else if strings.ContainsAny(c.MQTT.TopicPrefix, "+#") {
		errs = append(errs, "mqtt.topic_prefix must not contain wildcards")
	}

	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	if c.InfluxDB.Enabled {
		if c.InfluxDB.URL == "" {
			errs = append(errs, "influxdb.url is required when influxdb is enabled")
		}
		if c.InfluxDB.Bucket == "" {
			errs = append(errs, "influxdb.bucket is required when influxdb is enabled")
		}
	}

	if c.Monitor.StaleAfter <= 0 || c.Monitor.CriticalAfter <= 0 {
		errs = append(errs, "monitor.stale_after and monitor.critical_after must be positive")
	} else if c.Monitor.StaleAfter >= c.Monitor.CriticalAfter {
		errs = append(errs, fmt.Sprintf("monitor.stale_after (%s) must be less than monitor.critical_after (%s)",
			c.Monitor.StaleAfter, c.Monitor.CriticalAfter))
	}
	if c.Monitor.PublishInterval <= 0 {
		errs = append(errs, "monitor.publish_interval must be positive")
	}

	if c.Firmware.AttributePath == "" {
		errs = append(errs, "firmware.attribute_path is required")
	}
	if c.Firmware.ChangelogLimit < 0 {
		errs = append(errs, "firmware.changelog_limit must not be negative")
	}

	if err := validateCategories(c.Presenter.Categories); err != "" {
		errs = append(errs, err)
	}

	const minJWTSecretLength = 32
	if c.Security.JWT.Secret != "" && len(c.Security.JWT.Secret) < minJWTSecretLength {
		errs = append(errs, "security.jwt.secret must be at least 32 characters when set")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// knownCategories mirrors catalog.Categories. The config package sits
// below the domain packages and does not import them.
var knownCategories = map[string]struct{}{
	"health": {}, "power": {}, "firmware": {}, "video": {}, "audio": {},
	"motion": {}, "cv_detection": {}, "cv_paid": {}, "other_paid": {},
	"notifications": {}, "recording": {}, "floodlight": {}, "radar": {},
	"local_processing": {}, "features": {}, "device_status": {},
}

func validateCategories(names []string) string {
	var unknown []string
	for _, n := range names {
		if _, ok := knownCategories[strings.ToLower(strings.TrimSpace(n))]; !ok {
			unknown = append(unknown, n)
		}
	}
	if len(unknown) == 0 {
		return ""
	}
	return "presenter.categories contains unknown categories: " + strings.Join(unknown, ", ")
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Idle) * time.Second
}
