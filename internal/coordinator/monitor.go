package coordinator

import (
	"fmt"
	"strconv"
	"sync"
	"time"
)

// Monitor classifies coordinator liveness from the latest status record.
//
// Before the first observation the monitor's start time stands in for the
// last success, so a coordinator that never reports drifts through Stale
// into Critical rather than reading Healthy forever.
//
// All public methods are thread-safe.
type Monitor struct {
	thresholds Thresholds

	mu             sync.RWMutex
	observed       bool
	lastObservedAt time.Time
	lastUpdate     time.Time // advances on successful observations only
	lastSuccess    bool
	updateCount    int64
	sourceCounter  int64
	lastSuccessAt  time.Time // LastSuccessAt of the last accepted status
}

// NewMonitor creates a monitor.
//
// Parameters:
//   - th: Classification thresholds (validated)
//   - start: Baseline last-success time used until the first success
//
// Returns:
//   - *Monitor: Ready to observe
//   - error: ErrInvalidThresholds (wrapped) if th is rejected
func NewMonitor(th Thresholds, start time.Time) (*Monitor, error) {
	if err := th.Validate(); err != nil {
		return nil, err
	}
	return &Monitor{
		thresholds:  th,
		lastUpdate:  start.UTC(),
		lastSuccess: true,
	}, nil
}

// Thresholds returns the configured thresholds.
func (m *Monitor) Thresholds() Thresholds {
	return m.thresholds
}

// Observe accepts the latest coordinator status.
//
// Every accepted status increments the update count, failures included.
// The last update time advances only when Success is true, taken from
// LastSuccessAt (or ObservedAt when the source omits it) and never moved
// backwards.
//
// A status carrying an update counter that is not above the last accepted
// one is a replay unless its LastSuccessAt is newer, which happens when the
// source restarts and its counter resets.
//
// Returns:
//   - error: ErrNonMonotonic if s.ObservedAt is not after the previously
//     accepted status or s is a replay, ErrInvalidStatus if ObservedAt is
//     zero; state is unchanged
func (m *Monitor) Observe(s Status) error {
	if s.ObservedAt.IsZero() {
		return fmt.Errorf("%w: observed_at is required", ErrInvalidStatus)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.observed && !s.ObservedAt.After(m.lastObservedAt) {
		return fmt.Errorf("%w: %s <= %s", ErrNonMonotonic,
			s.ObservedAt.UTC().Format(time.RFC3339Nano),
			m.lastObservedAt.Format(time.RFC3339Nano))
	}
	if m.observed && s.UpdateCounter > 0 && s.UpdateCounter <= m.sourceCounter &&
		!s.LastSuccessAt.After(m.lastSuccessAt) {
		return fmt.Errorf("%w: update counter %d <= %d", ErrNonMonotonic,
			s.UpdateCounter, m.sourceCounter)
	}

	m.observed = true
	m.lastObservedAt = s.ObservedAt.UTC()
	m.lastSuccess = s.Success
	m.updateCount++
	if s.UpdateCounter > 0 {
		m.sourceCounter = s.UpdateCounter
	}
	if s.LastSuccessAt.After(m.lastSuccessAt) {
		m.lastSuccessAt = s.LastSuccessAt.UTC()
	}

	if s.Success {
		success := s.LastSuccessAt
		if success.IsZero() {
			success = s.ObservedAt
		}
		if success.After(m.lastUpdate) {
			m.lastUpdate = success.UTC()
		}
	}
	return nil
}

// Classify returns the liveness state at now. It does not depend on how
// often Observe is called.
func (m *Monitor) Classify(now time.Time) State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.thresholds.Classify(m.elapsedLocked(now), m.lastSuccess)
}

// Metrics returns the full presenter view at now.
func (m *Monitor) Metrics(now time.Time) Metrics {
	m.mu.RLock()
	defer m.mu.RUnlock()

	elapsed := m.elapsedLocked(now)
	minutes := roundTenth(elapsed.Minutes())
	state := m.thresholds.Classify(elapsed, m.lastSuccess)

	return Metrics{
		State:                state,
		LastUpdate:           m.lastUpdate,
		MinutesSinceUpdate:   minutes,
		UpdateCount:          m.updateCount,
		LastUpdateSuccess:    m.lastSuccess,
		StaleAfterMinutes:    m.thresholds.StaleAfter.Minutes(),
		CriticalAfterMinutes: m.thresholds.CriticalAfter.Minutes(),
		StatusDetail:         StatusDetail(state, minutes),
	}
}

// SourceCounter returns the last non-zero update counter reported by the
// coordinator.
func (m *Monitor) SourceCounter() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sourceCounter
}

func (m *Monitor) elapsedLocked(now time.Time) time.Duration {
	elapsed := now.Sub(m.lastUpdate)
	if elapsed < 0 {
		return 0
	}
	return elapsed
}

// StatusDetail explains a state in one line.
func StatusDetail(state State, minutes float64) string {
	ago := "Updated " + strconv.FormatFloat(minutes, 'f', 1, 64) + " min ago"
	switch state {
	case StateFailed:
		return "Last update failed - " + ago
	case StateCritical:
		return ago + " - coordinator may be stuck"
	case StateStale:
		return ago + " - updates may be delayed"
	default:
		return ago + " - normal operation"
	}
}
