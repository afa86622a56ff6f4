package coordinator

import (
	"errors"
	"testing"
	"time"
)

var start = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func newTestMonitor(t *testing.T) *Monitor {
	t.Helper()
	m, err := NewMonitor(DefaultThresholds(), start)
	if err != nil {
		t.Fatalf("NewMonitor() error = %v", err)
	}
	return m
}

func TestThresholds_Validate(t *testing.T) {
	tests := []struct {
		name    string
		th      Thresholds
		wantErr bool
	}{
		{name: "defaults", th: DefaultThresholds()},
		{name: "custom", th: Thresholds{StaleAfter: time.Minute, CriticalAfter: 2 * time.Minute}},
		{name: "equal", th: Thresholds{StaleAfter: 10 * time.Minute, CriticalAfter: 10 * time.Minute}, wantErr: true},
		{name: "inverted", th: Thresholds{StaleAfter: 30 * time.Minute, CriticalAfter: 10 * time.Minute}, wantErr: true},
		{name: "zero stale", th: Thresholds{CriticalAfter: 10 * time.Minute}, wantErr: true},
		{name: "negative", th: Thresholds{StaleAfter: -time.Minute, CriticalAfter: time.Minute}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.th.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidThresholds) {
				t.Errorf("Validate() error = %v, want ErrInvalidThresholds", err)
			}
		})
	}
}

func TestNewMonitor_RejectsInvalidThresholds(t *testing.T) {
	_, err := NewMonitor(Thresholds{StaleAfter: time.Hour, CriticalAfter: time.Minute}, start)
	if !errors.Is(err, ErrInvalidThresholds) {
		t.Errorf("NewMonitor() error = %v, want ErrInvalidThresholds", err)
	}
}

func TestClassify_Boundaries(t *testing.T) {
	m := newTestMonitor(t)
	if err := m.Observe(Status{ObservedAt: start, LastSuccessAt: start, Success: true}); err != nil {
		t.Fatalf("Observe() error = %v", err)
	}

	tests := []struct {
		elapsed time.Duration
		want    State
	}{
		{0, StateHealthy},
		{9*time.Minute + 59*time.Second, StateHealthy},
		{10 * time.Minute, StateStale},
		{29*time.Minute + 59*time.Second, StateStale},
		{30 * time.Minute, StateCritical},
		{5 * time.Hour, StateCritical},
		{-time.Minute, StateHealthy},
	}

	for _, tt := range tests {
		t.Run(tt.elapsed.String(), func(t *testing.T) {
			if got := m.Classify(start.Add(tt.elapsed)); got != tt.want {
				t.Errorf("Classify(+%s) = %s, want %s", tt.elapsed, got, tt.want)
			}
		})
	}
}

func TestClassify_FailedRegardlessOfElapsed(t *testing.T) {
	m := newTestMonitor(t)
	_ = m.Observe(Status{ObservedAt: start, LastSuccessAt: start, Success: true})
	_ = m.Observe(Status{ObservedAt: start.Add(time.Minute), Success: false})

	for _, elapsed := range []time.Duration{0, time.Minute, 15 * time.Minute, 2 * time.Hour} {
		if got := m.Classify(start.Add(elapsed)); got != StateFailed {
			t.Errorf("Classify(+%s) = %s, want failed", elapsed, got)
		}
	}

	// A later success clears the failure.
	_ = m.Observe(Status{ObservedAt: start.Add(2 * time.Minute), LastSuccessAt: start.Add(2 * time.Minute), Success: true})
	if got := m.Classify(start.Add(3 * time.Minute)); got != StateHealthy {
		t.Errorf("Classify() after recovery = %s, want healthy", got)
	}
}

func TestClassify_IdleCoordinatorGoesCritical(t *testing.T) {
	m := newTestMonitor(t)
	if err := m.Observe(Status{ObservedAt: start, LastSuccessAt: start, Success: true}); err != nil {
		t.Fatalf("Observe() error = %v", err)
	}
	if got := m.Classify(start.Add(31 * time.Minute)); got != StateCritical {
		t.Errorf("Classify(T+31m) = %s, want critical", got)
	}
}

func TestClassify_NoObservationUsesStart(t *testing.T) {
	m := newTestMonitor(t)
	if got := m.Classify(start.Add(5 * time.Minute)); got != StateHealthy {
		t.Errorf("Classify(+5m) = %s, want healthy", got)
	}
	if got := m.Classify(start.Add(45 * time.Minute)); got != StateCritical {
		t.Errorf("Classify(+45m) = %s, want critical", got)
	}
}

func TestObserve_CounterAndMonotonic(t *testing.T) {
	m := newTestMonitor(t)

	first := Status{ObservedAt: start, LastSuccessAt: start, Success: true, UpdateCounter: 7}
	if err := m.Observe(first); err != nil {
		t.Fatalf("Observe() error = %v", err)
	}

	if err := m.Observe(first); !errors.Is(err, ErrNonMonotonic) {
		t.Errorf("replay error = %v, want ErrNonMonotonic", err)
	}
	earlier := Status{ObservedAt: start.Add(-time.Second), Success: false}
	if err := m.Observe(earlier); !errors.Is(err, ErrNonMonotonic) {
		t.Errorf("earlier error = %v, want ErrNonMonotonic", err)
	}

	metrics := m.Metrics(start)
	if metrics.UpdateCount != 1 {
		t.Errorf("UpdateCount = %d, want 1", metrics.UpdateCount)
	}
	if !metrics.LastUpdateSuccess {
		t.Error("rejected failure status changed LastUpdateSuccess")
	}
	if m.SourceCounter() != 7 {
		t.Errorf("SourceCounter() = %d, want 7", m.SourceCounter())
	}

	if err := m.Observe(Status{ObservedAt: start.Add(time.Minute), Success: false}); err != nil {
		t.Fatalf("Observe() error = %v", err)
	}
	if got := m.Metrics(start.Add(time.Minute)).UpdateCount; got != 2 {
		t.Errorf("UpdateCount after failure = %d, want 2", got)
	}
}

func TestObserve_UpdateCounterReplay(t *testing.T) {
	tests := []struct {
		name    string
		next    Status
		wantErr bool
	}{
		{
			name:    "same counter later receive time",
			next:    Status{ObservedAt: start.Add(time.Minute), LastSuccessAt: start, Success: true, UpdateCounter: 7},
			wantErr: true,
		},
		{
			name:    "lower counter same success",
			next:    Status{ObservedAt: start.Add(time.Minute), LastSuccessAt: start, Success: true, UpdateCounter: 6},
			wantErr: true,
		},
		{
			name: "higher counter",
			next: Status{ObservedAt: start.Add(time.Minute), LastSuccessAt: start, Success: true, UpdateCounter: 8},
		},
		{
			name: "counter reset with newer success",
			next: Status{ObservedAt: start.Add(time.Minute), LastSuccessAt: start.Add(time.Minute), Success: true, UpdateCounter: 1},
		},
		{
			name: "no counter",
			next: Status{ObservedAt: start.Add(time.Minute), Success: false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestMonitor(t)
			first := Status{ObservedAt: start, LastSuccessAt: start, Success: true, UpdateCounter: 7}
			if err := m.Observe(first); err != nil {
				t.Fatalf("Observe(first) error = %v", err)
			}

			err := m.Observe(tt.next)
			if tt.wantErr != errors.Is(err, ErrNonMonotonic) {
				t.Fatalf("Observe() error = %v, wantErr %v", err, tt.wantErr)
			}
			want := int64(2)
			if tt.wantErr {
				want = 1
			}
			if got := m.Metrics(start.Add(time.Minute)).UpdateCount; got != want {
				t.Errorf("UpdateCount = %d, want %d", got, want)
			}
		})
	}
}

func TestObserve_ZeroObservedAt(t *testing.T) {
	m := newTestMonitor(t)
	if err := m.Observe(Status{Success: true}); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("Observe() error = %v, want ErrInvalidStatus", err)
	}
}

func TestObserve_LastUpdateOnlyOnSuccess(t *testing.T) {
	m := newTestMonitor(t)

	success := start.Add(2 * time.Minute)
	_ = m.Observe(Status{ObservedAt: success, LastSuccessAt: success, Success: true})
	_ = m.Observe(Status{ObservedAt: start.Add(5 * time.Minute), LastSuccessAt: start.Add(5 * time.Minute), Success: false})

	if got := m.Metrics(start.Add(6 * time.Minute)).LastUpdate; !got.Equal(success) {
		t.Errorf("LastUpdate = %v, want %v", got, success)
	}

	// Success without an explicit last_success_time falls back to observed_at.
	next := start.Add(7 * time.Minute)
	_ = m.Observe(Status{ObservedAt: next, Success: true})
	if got := m.Metrics(next).LastUpdate; !got.Equal(next) {
		t.Errorf("LastUpdate = %v, want %v", got, next)
	}

	// A stale last_success_time never moves LastUpdate backwards.
	_ = m.Observe(Status{ObservedAt: start.Add(8 * time.Minute), LastSuccessAt: start, Success: true})
	if got := m.Metrics(next).LastUpdate; !got.Equal(next) {
		t.Errorf("LastUpdate moved backwards to %v", got)
	}
}

func TestMetrics(t *testing.T) {
	m := newTestMonitor(t)
	_ = m.Observe(Status{ObservedAt: start, LastSuccessAt: start, Success: true})

	got := m.Metrics(start.Add(12*time.Minute + 20*time.Second))
	want := Metrics{
		State:                StateStale,
		LastUpdate:           start,
		MinutesSinceUpdate:   12.3,
		UpdateCount:          1,
		LastUpdateSuccess:    true,
		StaleAfterMinutes:    10,
		CriticalAfterMinutes: 30,
		StatusDetail:         "Updated 12.3 min ago - updates may be delayed",
	}
	if got != want {
		t.Errorf("Metrics() = %+v\nwant %+v", got, want)
	}
}

func TestStatusDetail(t *testing.T) {
	tests := []struct {
		state   State
		minutes float64
		want    string
	}{
		{StateHealthy, 1, "Updated 1.0 min ago - normal operation"},
		{StateStale, 12.25, "Updated 12.2 min ago - updates may be delayed"},
		{StateCritical, 45, "Updated 45.0 min ago - coordinator may be stuck"},
		{StateFailed, 3.5, "Last update failed - Updated 3.5 min ago"},
	}
	for _, tt := range tests {
		if got := StatusDetail(tt.state, tt.minutes); got != tt.want {
			t.Errorf("StatusDetail(%s, %v) = %q, want %q", tt.state, tt.minutes, got, tt.want)
		}
	}
}

func TestDecodeStatus(t *testing.T) {
	now := start.Add(time.Hour)

	s, err := DecodeStatus([]byte(`{"last_success_time":"2026-03-01T10:30:00Z","success":true,"update_counter":42}`), now)
	if err != nil {
		t.Fatalf("DecodeStatus() error = %v", err)
	}
	if !s.ObservedAt.Equal(now) || !s.Success || s.UpdateCounter != 42 {
		t.Errorf("DecodeStatus() = %+v", s)
	}
	if !s.LastSuccessAt.Equal(start.Add(30 * time.Minute)) {
		t.Errorf("LastSuccessAt = %v", s.LastSuccessAt)
	}

	if _, err := DecodeStatus([]byte(`not json`), now); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("DecodeStatus() error = %v, want ErrInvalidStatus", err)
	}
}

func TestState(t *testing.T) {
	for i, s := range AllStates() {
		if s.Level() != i {
			t.Errorf("%s.Level() = %d, want %d", s, s.Level(), i)
		}
		if s.Title() == "Unknown" {
			t.Errorf("%s.Title() = Unknown", s)
		}
	}
	if State("bogus").Level() != -1 {
		t.Error("unknown state should have level -1")
	}
}
