package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/nerrad567/ring-extended-core/internal/coordinator"
)

const namespace = "ring_extended"

// Metrics holds the service's Prometheus collectors.
type Metrics struct {
	coordinatorState   *prometheus.GaugeVec
	minutesSinceUpdate prometheus.Gauge
	updateCount        prometheus.Gauge

	firmwareChanges     *prometheus.CounterVec
	persistenceFailures prometheus.Counter
	snapshotsProcessed  *prometheus.CounterVec
	statusesProcessed   *prometheus.CounterVec

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// New creates the collectors and registers them on reg.
//
// Parameters:
//   - reg: Registry to register on; use prometheus.NewRegistry() in tests
//
// Returns:
//   - *Metrics: Ready collectors
//   - error: If any collector is already registered
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		coordinatorState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "coordinator_state",
			Help:      "1 for the current coordinator health state, 0 otherwise.",
		}, []string{"state"}),
		minutesSinceUpdate: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "coordinator_minutes_since_update",
			Help:      "Minutes since the last successful poll cycle.",
		}),
		updateCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "coordinator_update_count",
			Help:      "Poll cycles reported by the coordinator.",
		}),
		firmwareChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "firmware_changes_total",
			Help:      "Firmware events recorded, by kind.",
		}, []string{"kind"}),
		persistenceFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "firmware_persistence_failures_total",
			Help:      "Failed writes of firmware histories to the store.",
		}),
		snapshotsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshots_processed_total",
			Help:      "Device snapshots handled, by result.",
		}, []string{"result"}),
		statusesProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "coordinator_statuses_processed_total",
			Help:      "Coordinator status messages handled, by result.",
		}, []string{"result"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	for _, c := range []prometheus.Collector{
		m.coordinatorState,
		m.minutesSinceUpdate,
		m.updateCount,
		m.firmwareChanges,
		m.persistenceFailures,
		m.snapshotsProcessed,
		m.statusesProcessed,
		m.httpRequests,
		m.httpDuration,
	} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("registering collector: %w", err)
		}
	}

	return m, nil
}

// ObserveCoordinator sets the coordinator gauges from one classification.
// Exactly one state label is 1.
func (m *Metrics) ObserveCoordinator(cm coordinator.Metrics) {
	for _, s := range coordinator.AllStates() {
		v := 0.0
		if s == cm.State {
			v = 1
		}
		m.coordinatorState.WithLabelValues(string(s)).Set(v)
	}
	m.minutesSinceUpdate.Set(cm.MinutesSinceUpdate)
	m.updateCount.Set(float64(cm.UpdateCount))
}

// FirmwareChange counts one recorded firmware event. initial marks the
// first version seen for a device.
func (m *Metrics) FirmwareChange(initial bool) {
	kind := "changed"
	if initial {
		kind = "initialized"
	}
	m.firmwareChanges.WithLabelValues(kind).Inc()
}

// PersistenceFailure counts one failed history write.
func (m *Metrics) PersistenceFailure() {
	m.persistenceFailures.Inc()
}

// Snapshot counts one snapshot with result "ok", "invalid" or "stale".
func (m *Metrics) Snapshot(result string) {
	m.snapshotsProcessed.WithLabelValues(result).Inc()
}

// Status counts one coordinator status with result "ok", "invalid" or
// "replayed".
func (m *Metrics) Status(result string) {
	m.statusesProcessed.WithLabelValues(result).Inc()
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Middleware records every request passing through next. route names the
// label value; it should be the route pattern, not the raw path, to keep
// cardinality bounded.
func (m *Metrics) Middleware(route func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rw, r)

			m.ObserveRequest(r.Method, route(r), rw.status, time.Since(start))
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Hijack lets WebSocket upgrades pass through the middleware.
func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("metrics: response writer does not support hijacking")
	}
	w.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
