package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/nerrad567/ring-extended-core/internal/coordinator"
)

func newTestMetrics(t *testing.T) (*Metrics, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	m, err := New(reg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return m, reg
}

// sample returns the value of the series of family name whose labels
// include every pair in labels.
func sample(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) (float64, bool) {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	series:
		for _, m := range mf.GetMetric() {
			have := make(map[string]string)
			for _, lp := range m.GetLabel() {
				have[lp.GetName()] = lp.GetValue()
			}
			for k, v := range labels {
				if have[k] != v {
					continue series
				}
			}
			switch {
			case m.GetGauge() != nil:
				return m.GetGauge().GetValue(), true
			case m.GetCounter() != nil:
				return m.GetCounter().GetValue(), true
			case m.GetHistogram() != nil:
				return float64(m.GetHistogram().GetSampleCount()), true
			}
		}
	}
	return 0, false
}

func TestNew_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := New(reg); err != nil {
		t.Fatalf("first New() error = %v", err)
	}
	if _, err := New(reg); err == nil {
		t.Error("second New() on the same registry should fail")
	}
}

func TestObserveCoordinator(t *testing.T) {
	m, reg := newTestMetrics(t)

	m.ObserveCoordinator(coordinator.Metrics{State: coordinator.StateStale, MinutesSinceUpdate: 12.3, UpdateCount: 7})
	m.ObserveCoordinator(coordinator.Metrics{State: coordinator.StateCritical, MinutesSinceUpdate: 31, UpdateCount: 7})

	for _, s := range coordinator.AllStates() {
		want := 0.0
		if s == coordinator.StateCritical {
			want = 1
		}
		got, ok := sample(t, reg, "ring_extended_coordinator_state", map[string]string{"state": string(s)})
		if !ok || got != want {
			t.Errorf("coordinator_state{state=%q} = %v, %v; want %v", s, got, ok, want)
		}
	}
	if got, _ := sample(t, reg, "ring_extended_coordinator_minutes_since_update", nil); got != 31 {
		t.Errorf("minutes_since_update = %v, want 31", got)
	}
	if got, _ := sample(t, reg, "ring_extended_coordinator_update_count", nil); got != 7 {
		t.Errorf("update_count = %v, want 7", got)
	}
}

func TestCounters(t *testing.T) {
	m, reg := newTestMetrics(t)

	m.FirmwareChange(true)
	m.FirmwareChange(false)
	m.FirmwareChange(false)
	m.PersistenceFailure()
	m.Snapshot("ok")
	m.Snapshot("invalid")
	m.Status("replayed")

	tests := []struct {
		name   string
		labels map[string]string
		want   float64
	}{
		{"ring_extended_firmware_changes_total", map[string]string{"kind": "initialized"}, 1},
		{"ring_extended_firmware_changes_total", map[string]string{"kind": "changed"}, 2},
		{"ring_extended_firmware_persistence_failures_total", nil, 1},
		{"ring_extended_snapshots_processed_total", map[string]string{"result": "ok"}, 1},
		{"ring_extended_snapshots_processed_total", map[string]string{"result": "invalid"}, 1},
		{"ring_extended_coordinator_statuses_processed_total", map[string]string{"result": "replayed"}, 1},
	}
	for _, tt := range tests {
		got, ok := sample(t, reg, tt.name, tt.labels)
		if !ok || got != tt.want {
			t.Errorf("%s%v = %v, %v; want %v", tt.name, tt.labels, got, ok, tt.want)
		}
	}
}

func TestMiddleware(t *testing.T) {
	m, reg := newTestMetrics(t)

	handler := m.Middleware(func(*http.Request) string { return "/api/v1/firmware/{id}" })(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}),
	)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/firmware/garage", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	labels := map[string]string{"method": "GET", "route": "/api/v1/firmware/{id}", "status": "404"}
	if got, ok := sample(t, reg, "ring_extended_http_requests_total", labels); !ok || got != 1 {
		t.Errorf("http_requests_total = %v, %v; want 1", got, ok)
	}
	if got, _ := sample(t, reg, "ring_extended_http_request_duration_seconds", map[string]string{"route": "/api/v1/firmware/{id}"}); got != 1 {
		t.Errorf("duration sample count = %v, want 1", got)
	}
}
