package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nerrad567/ring-extended-core/internal/coordinator"
	"github.com/nerrad567/ring-extended-core/internal/firmware"
	"github.com/nerrad567/ring-extended-core/internal/infrastructure/mqtt"
)

// DefaultReportInterval is how often health is re-classified and
// published.
const DefaultReportInterval = time.Minute

// HealthMessage is the retained payload on the coordinator health topic.
type HealthMessage struct {
	coordinator.Metrics
	Site        string    `json:"site,omitempty"`
	PublishedAt time.Time `json:"published_at"`
}

// ReporterConfig wires a Reporter. Monitor is required.
type ReporterConfig struct {
	Site     string
	Interval time.Duration
	Topics   mqtt.Topics
	QoS      byte

	Monitor *coordinator.Monitor

	// Tracker, when set, has its pending writes retried every tick.
	Tracker *firmware.Tracker

	Publisher Publisher
	Hub       Broadcaster
	Series    SeriesWriter
	Metrics   Recorder

	Now func() time.Time
}

// Reporter periodically classifies coordinator health and publishes it.
//
// Classification depends only on the clock, so a coordinator that stops
// reporting still moves from healthy to stale to critical here.
type Reporter struct {
	site     string
	interval time.Duration
	topics   mqtt.Topics
	qos      byte

	monitor   *coordinator.Monitor
	tracker   *firmware.Tracker
	publisher Publisher
	hub       Broadcaster
	series    SeriesWriter
	metrics   Recorder
	now       func() time.Time

	lastState coordinator.State
	stateMu   sync.Mutex

	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once

	logger   Logger
	loggerMu sync.RWMutex
}

// NewReporter validates cfg and fills defaults.
func NewReporter(cfg ReporterConfig) (*Reporter, error) {
	if cfg.Monitor == nil {
		return nil, fmt.Errorf("%w: monitor is required", ErrMissingDependency)
	}

	r := &Reporter{
		site:      cfg.Site,
		interval:  cfg.Interval,
		topics:    cfg.Topics,
		qos:       cfg.QoS,
		monitor:   cfg.Monitor,
		tracker:   cfg.Tracker,
		publisher: cfg.Publisher,
		hub:       cfg.Hub,
		series:    cfg.Series,
		metrics:   cfg.Metrics,
		now:       cfg.Now,
		done:      make(chan struct{}),
		logger:    noopLogger{},
	}
	if r.interval <= 0 {
		r.interval = DefaultReportInterval
	}
	if r.hub == nil {
		r.hub = noopBroadcaster{}
	}
	if r.series == nil {
		r.series = noopSeries{}
	}
	if r.metrics == nil {
		r.metrics = noopRecorder{}
	}
	if r.now == nil {
		r.now = time.Now
	}
	return r, nil
}

// SetLogger sets the logger.
func (r *Reporter) SetLogger(logger Logger) {
	if logger == nil {
		return
	}
	r.loggerMu.Lock()
	r.logger = logger
	r.loggerMu.Unlock()
}

func (r *Reporter) log() Logger {
	r.loggerMu.RLock()
	defer r.loggerMu.RUnlock()
	return r.logger
}

// Start reports once immediately and then every interval until ctx is
// cancelled or Stop is called.
func (r *Reporter) Start(ctx context.Context) {
	r.wg.Add(1)
	go r.loop(ctx)
}

// Stop ends the loop and waits for it. Safe to call more than once.
func (r *Reporter) Stop() {
	r.stopOnce.Do(func() {
		close(r.done)
		r.wg.Wait()
	})
}

func (r *Reporter) loop(ctx context.Context) {
	defer r.wg.Done()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.done:
			return
		case <-ticker.C:
			r.tick(ctx)
		}
	}
}

func (r *Reporter) tick(ctx context.Context) {
	if _, err := r.ReportNow(ctx); err != nil {
		r.log().Warn("coordinator health report failed", "error", err)
	}
}

// ReportNow classifies health, updates gauges and the time series,
// publishes the retained health message and retries pending firmware
// writes.
//
// Returns:
//   - coordinator.Metrics: The classification that was reported
//   - error: Publish failure; firmware retry failures are only logged
func (r *Reporter) ReportNow(ctx context.Context) (coordinator.Metrics, error) {
	now := r.now()
	m := r.monitor.Metrics(now)

	r.noteTransition(m)
	r.metrics.ObserveCoordinator(m)
	r.series.WriteCoordinatorHealth(m, now)
	r.hub.Broadcast(ChannelCoordinator, m)

	if r.tracker != nil && r.tracker.Pending() > 0 {
		if err := r.tracker.Flush(ctx); err != nil {
			r.log().Warn("retrying firmware history writes failed",
				"pending", r.tracker.Pending(),
				"error", err,
			)
		}
	}

	return m, r.publish(m, now)
}

// LastState returns the state from the most recent report, or "" before
// the first one.
func (r *Reporter) LastState() coordinator.State {
	r.stateMu.Lock()
	defer r.stateMu.Unlock()
	return r.lastState
}

func (r *Reporter) noteTransition(m coordinator.Metrics) {
	r.stateMu.Lock()
	prev := r.lastState
	r.lastState = m.State
	r.stateMu.Unlock()

	if prev == m.State {
		return
	}

	args := []any{
		"from", prev,
		"to", m.State,
		"minutes_since_update", m.MinutesSinceUpdate,
		"detail", m.StatusDetail,
	}
	if prev != "" && m.State.Level() > prev.Level() {
		r.log().Warn("coordinator health degraded", args...)
		return
	}
	r.log().Info("coordinator health changed", args...)
}

func (r *Reporter) publish(m coordinator.Metrics, now time.Time) error {
	if r.publisher == nil || !r.publisher.IsConnected() {
		return nil
	}

	payload, err := json.Marshal(HealthMessage{
		Metrics:     m,
		Site:        r.site,
		PublishedAt: now.UTC(),
	})
	if err != nil {
		return fmt.Errorf("encoding health message: %w", err)
	}
	if err := r.publisher.Publish(r.topics.CoordinatorHealth(), payload, r.qos, true); err != nil {
		return fmt.Errorf("publishing coordinator health: %w", err)
	}
	return nil
}
