package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/ring-extended-core/internal/coordinator"
	"github.com/nerrad567/ring-extended-core/internal/firmware"
	"github.com/nerrad567/ring-extended-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/ring-extended-core/internal/snapshot"
)

// DefaultFirmwarePath is where device snapshots carry the firmware version.
const DefaultFirmwarePath = "health.firmware_version"

// ChangeEvent is published when a device reports a new firmware version.
type ChangeEvent struct {
	ID         string    `json:"id"`
	DeviceID   string    `json:"device_id"`
	DeviceName string    `json:"device_name"`
	Previous   string    `json:"previous_version"`
	Version    string    `json:"version"`
	FirstSeen  time.Time `json:"first_seen"`
}

// PipelineConfig wires a Pipeline. Registry, Tracker and Monitor are
// required; the rest are optional and default to no-ops.
type PipelineConfig struct {
	Topics       mqtt.Topics
	QoS          byte
	FirmwarePath string

	Registry *snapshot.Registry
	Tracker  *firmware.Tracker
	Monitor  *coordinator.Monitor

	Publisher Publisher
	Hub       Broadcaster
	Series    SeriesWriter
	Metrics   Recorder

	// Now defaults to time.Now.
	Now func() time.Time
}

// Pipeline turns broker messages into tracker and monitor updates.
type Pipeline struct {
	topics       mqtt.Topics
	qos          byte
	firmwarePath string

	registry *snapshot.Registry
	tracker  *firmware.Tracker
	monitor  *coordinator.Monitor

	publisher Publisher
	hub       Broadcaster
	series    SeriesWriter
	metrics   Recorder
	now       func() time.Time

	logger Logger
}

// NewPipeline validates cfg and fills defaults.
func NewPipeline(cfg PipelineConfig) (*Pipeline, error) {
	if cfg.Registry == nil || cfg.Tracker == nil || cfg.Monitor == nil {
		return nil, fmt.Errorf("%w: registry, tracker and monitor are required", ErrMissingDependency)
	}

	p := &Pipeline{
		topics:       cfg.Topics,
		qos:          cfg.QoS,
		firmwarePath: cfg.FirmwarePath,
		registry:     cfg.Registry,
		tracker:      cfg.Tracker,
		monitor:      cfg.Monitor,
		publisher:    cfg.Publisher,
		hub:          cfg.Hub,
		series:       cfg.Series,
		metrics:      cfg.Metrics,
		now:          cfg.Now,
		logger:       noopLogger{},
	}
	if p.firmwarePath == "" {
		p.firmwarePath = DefaultFirmwarePath
	}
	if p.hub == nil {
		p.hub = noopBroadcaster{}
	}
	if p.series == nil {
		p.series = noopSeries{}
	}
	if p.metrics == nil {
		p.metrics = noopRecorder{}
	}
	if p.now == nil {
		p.now = time.Now
	}
	return p, nil
}

// SetLogger sets the logger.
func (p *Pipeline) SetLogger(logger Logger) {
	if logger != nil {
		p.logger = logger
	}
}

// Subscribe registers the snapshot and status handlers on sub. ctx is
// passed to tracker writes made from the handlers.
func (p *Pipeline) Subscribe(ctx context.Context, sub Subscriber) error {
	err := sub.Subscribe(p.topics.AllSnapshots(), p.qos, func(topic string, payload []byte) error {
		return p.HandleSnapshot(ctx, topic, payload)
	})
	if err != nil {
		return fmt.Errorf("subscribing to snapshots: %w", err)
	}

	err = sub.Subscribe(p.topics.CoordinatorStatus(), p.qos, func(_ string, payload []byte) error {
		return p.HandleStatus(payload)
	})
	if err != nil {
		return fmt.Errorf("subscribing to coordinator status: %w", err)
	}

	p.logger.Info("ingest subscribed",
		"snapshots", p.topics.AllSnapshots(),
		"status", p.topics.CoordinatorStatus(),
	)
	return nil
}

// HandleSnapshot processes one device snapshot.
//
// The snapshot replaces the registry entry unless the one already held
// was captured later, in which case it is dropped. Otherwise the firmware
// version at the configured path is observed; a store failure is logged
// and counted but not returned, since the tracker keeps the change and
// retries it on the next Flush.
//
// Parameters:
//   - ctx: Context for the tracker's store write
//   - topic: Topic the message arrived on; supplies the device ID when
//     the payload has none
//   - payload: Snapshot JSON
//
// Returns:
//   - error: snapshot.ErrInvalidSnapshot (wrapped) for undecodable input
func (p *Pipeline) HandleSnapshot(ctx context.Context, topic string, payload []byte) error {
	topicID, _ := p.topics.SnapshotDevice(topic)

	snap, err := snapshot.Decode(payload, topicID, p.now())
	if err != nil {
		p.metrics.Snapshot(ResultInvalid)
		return err
	}

	if !p.registry.Put(snap) {
		p.metrics.Snapshot(ResultStale)
		p.logger.Debug("dropping out-of-order snapshot",
			"device_id", snap.DeviceID,
			"captured_at", snap.CapturedAt,
		)
		return nil
	}

	if snap.Name != "" {
		p.tracker.SetDeviceName(snap.DeviceID, snap.Name)
	}

	version, _ := snapshot.ResolveText(snap.Attributes, p.firmwarePath)

	obs, err := p.tracker.Observe(ctx, snap.DeviceID, version, snap.CapturedAt)
	switch {
	case errors.Is(err, firmware.ErrPersistence):
		p.metrics.PersistenceFailure()
	case err != nil:
		p.metrics.Snapshot(ResultInvalid)
		return err
	}

	if obs.Recorded() {
		p.recordChange(obs)
	}

	p.metrics.Snapshot(ResultOK)
	return nil
}

// recordChange fans a recorded firmware event out to the time series,
// metrics and, for genuine changes, the broker and WebSocket clients.
func (p *Pipeline) recordChange(obs firmware.Observation) {
	initial := obs.Signal == firmware.SignalInitialized

	p.metrics.FirmwareChange(initial)
	p.series.WriteFirmwareChange(firmware.Change{
		DeviceID:   obs.DeviceID,
		DeviceName: obs.DeviceName,
		Previous:   obs.Previous,
		Version:    obs.Version,
		At:         obs.At,
	})

	if initial {
		return
	}

	event := ChangeEvent{
		ID:         uuid.NewString(),
		DeviceID:   obs.DeviceID,
		DeviceName: obs.DeviceName,
		Previous:   obs.Previous,
		Version:    obs.Version,
		FirstSeen:  obs.At,
	}

	p.hub.Broadcast(ChannelFirmwareChanged, event)

	if p.publisher == nil {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("encoding firmware change event", "error", err)
		return
	}
	if err := p.publisher.Publish(p.topics.FirmwareChanged(obs.DeviceID), payload, p.qos, false); err != nil {
		p.logger.Warn("publishing firmware change event failed",
			"device_id", obs.DeviceID,
			"error", err,
		)
	}
}

// HandleStatus feeds one coordinator status message to the monitor.
// Replayed or out-of-order statuses are logged and dropped.
//
// Returns:
//   - error: coordinator.ErrInvalidStatus (wrapped) for malformed input
func (p *Pipeline) HandleStatus(payload []byte) error {
	status, err := coordinator.DecodeStatus(payload, p.now())
	if err != nil {
		p.metrics.Status(ResultInvalid)
		return err
	}

	if err := p.monitor.Observe(status); err != nil {
		if errors.Is(err, coordinator.ErrNonMonotonic) {
			p.metrics.Status(ResultReplayed)
			p.logger.Warn("ignoring out-of-order coordinator status", "error", err)
			return nil
		}
		p.metrics.Status(ResultInvalid)
		return err
	}

	p.metrics.Status(ResultOK)
	p.logger.Debug("coordinator status accepted",
		"success", status.Success,
		"update_counter", status.UpdateCounter,
	)
	return nil
}
