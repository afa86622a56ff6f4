package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/nerrad567/ring-extended-core/internal/catalog"
	"github.com/nerrad567/ring-extended-core/internal/coordinator"
	"github.com/nerrad567/ring-extended-core/internal/firmware"
	"github.com/nerrad567/ring-extended-core/internal/infrastructure/config"
	"github.com/nerrad567/ring-extended-core/internal/infrastructure/logging"
	"github.com/nerrad567/ring-extended-core/internal/infrastructure/metrics"
	"github.com/nerrad567/ring-extended-core/internal/snapshot"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// HealthChecker is implemented by infrastructure clients whose status is
// reported on /api/v1/health.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config   config.APIConfig
	WS       config.WebSocketConfig
	Security config.SecurityConfig
	Logger   *logging.Logger

	Registry *snapshot.Registry
	Tracker  *firmware.Tracker
	Monitor  *coordinator.Monitor

	// Categories limits the sensors exposed per device. Nil enables all.
	Categories catalog.CategorySet

	// ChangelogLimit caps /firmware/changelog. Zero uses the tracker default.
	ChangelogLimit int

	// Metrics and Gatherer are optional; /metrics is only mounted with a
	// Gatherer.
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer

	// Checks are reported by name on the health endpoint.
	Checks map[string]HealthChecker

	ExternalHub *Hub // If set, the server uses this hub instead of creating its own
	Version     string
	Now         func() time.Time
}

// Server is the presenter-facing HTTP API.
//
// It manages the HTTP listener, routes, middleware, and WebSocket hub.
// The server is created with New() and started with Start().
type Server struct {
	cfg            config.APIConfig
	wsCfg          config.WebSocketConfig
	secCfg         config.SecurityConfig
	logger         *logging.Logger
	registry       *snapshot.Registry
	tracker        *firmware.Tracker
	monitor        *coordinator.Monitor
	categories     catalog.CategorySet
	changelogLimit int
	metrics        *metrics.Metrics
	gatherer       prometheus.Gatherer
	checks         map[string]HealthChecker
	version        string
	now            func() time.Time
	server         *http.Server
	hub            *Hub
	cancel         context.CancelFunc // cancels background goroutines on Close()
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
//
// Parameters:
//   - deps: Logger, registry, tracker and monitor are required
//
// Returns:
//   - *Server: Configured server ready to start
//   - error: If required dependencies are missing
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Registry == nil {
		return nil, fmt.Errorf("snapshot registry is required")
	}
	if deps.Tracker == nil {
		return nil, fmt.Errorf("firmware tracker is required")
	}
	if deps.Monitor == nil {
		return nil, fmt.Errorf("coordinator monitor is required")
	}

	s := &Server{
		cfg:            deps.Config,
		wsCfg:          deps.WS,
		secCfg:         deps.Security,
		logger:         deps.Logger,
		registry:       deps.Registry,
		tracker:        deps.Tracker,
		monitor:        deps.Monitor,
		categories:     deps.Categories,
		changelogLimit: deps.ChangelogLimit,
		metrics:        deps.Metrics,
		gatherer:       deps.Gatherer,
		checks:         deps.Checks,
		version:        deps.Version,
		now:            deps.Now,
		hub:            deps.ExternalHub,
	}
	if s.categories == nil {
		s.categories = catalog.AllCategories()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s, nil
}

// Hub returns the WebSocket hub, or nil before Start when none was
// injected.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Handler returns the routed handler without starting a listener.
func (s *Server) Handler() http.Handler {
	return s.buildRouter()
}

// Start begins listening for HTTP connections.
//
// It starts the WebSocket hub (unless one was injected) and launches the
// HTTP listener in a background goroutine. The server can be stopped with
// Close().
//
// Parameters:
//   - ctx: Parent context for background goroutines
//
// Returns:
//   - error: Always nil; listener errors are logged
func (s *Server) Start(ctx context.Context) error {
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	if s.hub == nil {
		s.hub = NewHub(s.wsCfg, s.logger)
		go s.hub.Run(srvCtx)
	}

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		s.logger.Info("API server starting", "address", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
//
// Returns:
//   - error: If shutdown encounters an error
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	if s.cancel != nil {
		s.cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//
// Returns:
//   - error: nil if healthy, error describing the issue otherwise
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}

	return nil
}

// checkNames returns the configured check names in stable order.
func (s *Server) checkNames() []string {
	names := make([]string, 0, len(s.checks))
	for name := range s.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
