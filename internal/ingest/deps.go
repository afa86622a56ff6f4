package ingest

import (
	"time"

	"github.com/nerrad567/ring-extended-core/internal/coordinator"
	"github.com/nerrad567/ring-extended-core/internal/firmware"
	"github.com/nerrad567/ring-extended-core/internal/infrastructure/mqtt"
)

// WebSocket channels broadcast by this package.
const (
	ChannelFirmwareChanged = "firmware.changed"
	ChannelCoordinator     = "coordinator.health"
)

// Logger defines the logging interface used by the pipeline and reporter.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Publisher sends messages to the broker. Implemented by *mqtt.Client.
type Publisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
	IsConnected() bool
}

// Subscriber registers topic handlers. Implemented by *mqtt.Client.
type Subscriber interface {
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
}

// Broadcaster fans events out to WebSocket clients. Implemented by
// *api.Hub.
type Broadcaster interface {
	Broadcast(channel string, payload any)
}

// SeriesWriter records time series points. Implemented by
// *influxdb.Client.
type SeriesWriter interface {
	WriteFirmwareChange(change firmware.Change)
	WriteCoordinatorHealth(m coordinator.Metrics, at time.Time)
}

// Recorder updates Prometheus collectors. Implemented by
// *metrics.Metrics.
type Recorder interface {
	FirmwareChange(initial bool)
	PersistenceFailure()
	Snapshot(result string)
	Status(result string)
	ObserveCoordinator(m coordinator.Metrics)
}

// Result labels passed to Recorder.
const (
	ResultOK       = "ok"
	ResultInvalid  = "invalid"
	ResultStale    = "stale"
	ResultReplayed = "replayed"
)

type noopBroadcaster struct{}

func (noopBroadcaster) Broadcast(string, any) {}

type noopSeries struct{}

func (noopSeries) WriteFirmwareChange(firmware.Change)                   {}
func (noopSeries) WriteCoordinatorHealth(coordinator.Metrics, time.Time) {}

type noopRecorder struct{}

func (noopRecorder) FirmwareChange(bool)                    {}
func (noopRecorder) PersistenceFailure()                    {}
func (noopRecorder) Snapshot(string)                        {}
func (noopRecorder) Status(string)                          {}
func (noopRecorder) ObserveCoordinator(coordinator.Metrics) {}
