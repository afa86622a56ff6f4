// Ring Extended Core
//
// This is the main entry point for the ring-extended service. It consumes
// device snapshots and coordinator status records from MQTT, keeps a
// persistent firmware changelog per device, classifies coordinator
// liveness and serves both to presenters over HTTP, WebSocket and MQTT.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	_ "github.com/nerrad567/ring-extended-core/migrations"

	"github.com/nerrad567/ring-extended-core/internal/api"
	"github.com/nerrad567/ring-extended-core/internal/catalog"
	"github.com/nerrad567/ring-extended-core/internal/coordinator"
	"github.com/nerrad567/ring-extended-core/internal/firmware"
	"github.com/nerrad567/ring-extended-core/internal/infrastructure/config"
	"github.com/nerrad567/ring-extended-core/internal/infrastructure/database"
	"github.com/nerrad567/ring-extended-core/internal/infrastructure/influxdb"
	"github.com/nerrad567/ring-extended-core/internal/infrastructure/logging"
	"github.com/nerrad567/ring-extended-core/internal/infrastructure/metrics"
	"github.com/nerrad567/ring-extended-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/ring-extended-core/internal/ingest"
	"github.com/nerrad567/ring-extended-core/internal/snapshot"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

// envConfigPath overrides defaultConfigPath.
const envConfigPath = "RINGEXT_CONFIG"

// startupCheckTimeout bounds the initial health checks.
const startupCheckTimeout = 10 * time.Second

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error { //nolint:gocognit,gocyclo // linear startup sequence with one defer per component
	log := logging.Default()
	log.Info("starting ring-extended",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	if err := config.LoadDotEnv(); err != nil {
		return fmt.Errorf("loading environment file: %w", err)
	}

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	log = logging.New(cfg.Logging, version).With("site", cfg.Site.ID)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Domain state
	tracker := firmware.NewTracker(firmware.NewSQLiteStore(db.DB))
	tracker.SetLogger(log.With("component", "firmware"))
	if loadErr := tracker.Load(ctx); loadErr != nil {
		return fmt.Errorf("loading firmware histories: %w", loadErr)
	}
	defer func() {
		// Final retry of writes that failed while running.
		if pending := tracker.Pending(); pending > 0 {
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if flushErr := tracker.Flush(flushCtx); flushErr != nil {
				log.Error("firmware histories not saved", "pending", tracker.Pending(), "error", flushErr)
			}
		}
	}()
	log.Info("firmware histories loaded", "devices", len(tracker.Devices()))

	monitor, err := coordinator.NewMonitor(coordinator.Thresholds{
		StaleAfter:    cfg.Monitor.StaleAfter,
		CriticalAfter: cfg.Monitor.CriticalAfter,
	}, time.Now())
	if err != nil {
		return fmt.Errorf("creating coordinator monitor: %w", err)
	}

	registry := snapshot.NewRegistry()

	categories, err := catalog.ParseCategories(cfg.Presenter.Categories)
	if err != nil {
		return fmt.Errorf("parsing presenter categories: %w", err)
	}

	// Metrics
	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	appMetrics, err := metrics.New(promRegistry)
	if err != nil {
		return fmt.Errorf("registering metrics: %w", err)
	}

	// Connect to MQTT broker
	mqttClient, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()
	mqttClient.SetLogger(log.With("component", "mqtt"))
	mqttClient.SetOnConnect(func() {
		log.Info("MQTT reconnected")
	})
	mqttClient.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
		"topic_prefix", mqttClient.Topics().Prefix(),
	)

	// Connect to InfluxDB (optional)
	var series ingest.SeriesWriter
	var influxClient *influxdb.Client
	influxClient, err = influxdb.Connect(cfg.InfluxDB, cfg.Site.ID)
	switch {
	case errors.Is(err, influxdb.ErrDisabled):
		log.Info("InfluxDB disabled")
	case err != nil:
		return fmt.Errorf("connecting to InfluxDB: %w", err)
	default:
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		series = influxClient
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
	}

	// WebSocket hub, shared by the API and the ingest side
	hub := api.NewHub(cfg.WebSocket, log.With("component", "websocket"))
	hubCtx, stopHub := context.WithCancel(ctx)
	defer stopHub()
	go hub.Run(hubCtx)

	qos := byte(cfg.MQTT.QoS) //nolint:gosec // validated to 0..2 by config.Validate

	pipeline, err := ingest.NewPipeline(ingest.PipelineConfig{
		Topics:       mqttClient.Topics(),
		QoS:          qos,
		FirmwarePath: cfg.Firmware.AttributePath,
		Registry:     registry,
		Tracker:      tracker,
		Monitor:      monitor,
		Publisher:    mqttClient,
		Hub:          hub,
		Series:       series,
		Metrics:      appMetrics,
	})
	if err != nil {
		return fmt.Errorf("creating ingest pipeline: %w", err)
	}
	pipeline.SetLogger(log.With("component", "ingest"))
	if subErr := pipeline.Subscribe(ctx, mqttClient); subErr != nil {
		return fmt.Errorf("subscribing ingest pipeline: %w", subErr)
	}

	reporter, err := ingest.NewReporter(ingest.ReporterConfig{
		Site:      cfg.Site.ID,
		Interval:  cfg.Monitor.PublishInterval,
		Topics:    mqttClient.Topics(),
		QoS:       qos,
		Monitor:   monitor,
		Tracker:   tracker,
		Publisher: mqttClient,
		Hub:       hub,
		Series:    series,
		Metrics:   appMetrics,
	})
	if err != nil {
		return fmt.Errorf("creating health reporter: %w", err)
	}
	reporter.SetLogger(log.With("component", "reporter"))
	reporter.Start(ctx)
	defer func() {
		log.Info("stopping health reporter")
		reporter.Stop()
	}()

	checks := map[string]api.HealthChecker{
		"database": db,
		"mqtt":     mqttClient,
	}
	if series != nil {
		checks["influxdb"] = influxClient
	}

	server, err := api.New(api.Deps{
		Config:         cfg.API,
		WS:             cfg.WebSocket,
		Security:       cfg.Security,
		Logger:         log.With("component", "api"),
		Registry:       registry,
		Tracker:        tracker,
		Monitor:        monitor,
		Categories:     categories,
		ChangelogLimit: cfg.Firmware.ChangelogLimit,
		Metrics:        appMetrics,
		Gatherer:       promRegistry,
		Checks:         checks,
		ExternalHub:    hub,
		Version:        version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if startErr := server.Start(ctx); startErr != nil {
		return fmt.Errorf("starting API server: %w", startErr)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	if err := healthCheck(ctx, checks); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal",
		"api", fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port),
	)

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred calls run in reverse order: API server, reporter, hub,
	// InfluxDB (if enabled), MQTT, firmware flush, database.

	log.Info("ring-extended stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses RINGEXT_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv(envConfigPath); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck runs every component check concurrently.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - checks: Components by name
//
// Returns:
//   - error: First health check failure, or nil if all healthy
func healthCheck(ctx context.Context, checks map[string]api.HealthChecker) error {
	ctx, cancel := context.WithTimeout(ctx, startupCheckTimeout)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	for name, check := range checks {
		name, check := name, check
		g.Go(func() error {
			if err := check.HealthCheck(gctx); err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			return nil
		})
	}
	return g.Wait()
}
