package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// healthCheckTimeout bounds each component check on /api/v1/health.
const healthCheckTimeout = 2 * time.Second

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)
	if s.metrics != nil {
		r.Use(s.metrics.Middleware(routePattern))
	}

	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/coordinator", s.handleCoordinator)
		r.Get("/diagnostics", s.handleDiagnostics)

		r.Route("/firmware", func(r chi.Router) {
			r.Get("/", s.handleFirmwareSummary)
			r.Get("/changelog", s.handleFirmwareChangelog)
			r.Get("/{id}", s.handleGetFirmware)
			r.With(s.authMiddleware).Delete("/{id}", s.handlePruneFirmware)
		})

		r.Route("/devices", func(r chi.Router) {
			r.Get("/", s.handleListDevices)
			r.Get("/{id}/sensors", s.handleDeviceSensors)
		})

		r.Get("/ws", s.handleWebSocket)
	})

	return r
}

// routePattern labels request metrics with the matched chi pattern so
// device IDs do not explode label cardinality.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

// handleHealth reports the server version and the status of each
// configured component. Any failing component makes the response 503.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK
	components := make(map[string]string, len(s.checks))

	for _, name := range s.checkNames() {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		err := s.checks[name].HealthCheck(ctx)
		cancel()
		if err != nil {
			components[name] = err.Error()
			status = "degraded"
			code = http.StatusServiceUnavailable
			continue
		}
		components[name] = "ok"
	}

	writeJSON(w, code, map[string]any{
		"status":      status,
		"version":     s.version,
		"devices":     s.registry.Count(),
		"coordinator": s.monitor.Classify(s.now()),
		"components":  components,
	})
}
