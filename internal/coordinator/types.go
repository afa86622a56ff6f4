package coordinator

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// Default thresholds.
const (
	DefaultStaleAfter    = 10 * time.Minute
	DefaultCriticalAfter = 30 * time.Minute
)

// State is the liveness classification of the coordinator.
type State string

// Liveness states.
const (
	StateHealthy  State = "healthy"
	StateStale    State = "stale"
	StateCritical State = "critical"
	StateFailed   State = "failed"
)

// Title returns the display form of the state ("Healthy", "Stale", ...).
func (s State) Title() string {
	switch s {
	case StateHealthy:
		return "Healthy"
	case StateStale:
		return "Stale"
	case StateCritical:
		return "Critical"
	case StateFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// Level maps the state to a number for time series and gauges.
// Higher is worse.
func (s State) Level() int {
	switch s {
	case StateHealthy:
		return 0
	case StateStale:
		return 1
	case StateCritical:
		return 2
	case StateFailed:
		return 3
	default:
		return -1
	}
}

// AllStates lists every state in severity order.
func AllStates() []State {
	return []State{StateHealthy, StateStale, StateCritical, StateFailed}
}

// Thresholds bound the Stale and Critical states.
type Thresholds struct {
	StaleAfter    time.Duration `json:"stale_after"`
	CriticalAfter time.Duration `json:"critical_after"`
}

// DefaultThresholds returns 10 minutes stale, 30 minutes critical.
func DefaultThresholds() Thresholds {
	return Thresholds{StaleAfter: DefaultStaleAfter, CriticalAfter: DefaultCriticalAfter}
}

// Validate checks 0 < StaleAfter < CriticalAfter.
func (t Thresholds) Validate() error {
	if t.StaleAfter <= 0 || t.CriticalAfter <= 0 {
		return fmt.Errorf("%w: thresholds must be positive (stale_after=%s, critical_after=%s)",
			ErrInvalidThresholds, t.StaleAfter, t.CriticalAfter)
	}
	if t.StaleAfter >= t.CriticalAfter {
		return fmt.Errorf("%w: stale_after (%s) must be less than critical_after (%s)",
			ErrInvalidThresholds, t.StaleAfter, t.CriticalAfter)
	}
	return nil
}

// Classify derives the state from the time since the last success and the
// most recent success flag.
func (t Thresholds) Classify(elapsed time.Duration, lastSuccess bool) State {
	switch {
	case !lastSuccess:
		return StateFailed
	case elapsed >= t.CriticalAfter:
		return StateCritical
	case elapsed >= t.StaleAfter:
		return StateStale
	default:
		return StateHealthy
	}
}

// Status is one coordinator status record from the snapshot source.
type Status struct {
	ObservedAt    time.Time `json:"observed_at"`
	LastSuccessAt time.Time `json:"last_success_time"`
	Success       bool      `json:"success"`
	UpdateCounter int64     `json:"update_counter"`
}

// DecodeStatus parses a status message. ObservedAt defaults to now.
func DecodeStatus(payload []byte, now time.Time) (Status, error) {
	var s Status
	if err := json.Unmarshal(payload, &s); err != nil {
		return Status{}, fmt.Errorf("%w: %w", ErrInvalidStatus, err)
	}
	if s.ObservedAt.IsZero() {
		s.ObservedAt = now
	}
	s.ObservedAt = s.ObservedAt.UTC()
	if !s.LastSuccessAt.IsZero() {
		s.LastSuccessAt = s.LastSuccessAt.UTC()
	}
	return s, nil
}

// Metrics is the presenter view of the monitor.
type Metrics struct {
	State                State     `json:"state"`
	LastUpdate           time.Time `json:"last_update"`
	MinutesSinceUpdate   float64   `json:"minutes_since_update"`
	UpdateCount          int64     `json:"update_count"`
	LastUpdateSuccess    bool      `json:"last_update_success"`
	StaleAfterMinutes    float64   `json:"healthy_threshold_minutes"`
	CriticalAfterMinutes float64   `json:"stale_threshold_minutes"`
	StatusDetail         string    `json:"status_detail"`
}

// roundTenth rounds to one decimal place.
func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
