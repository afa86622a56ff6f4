package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/nerrad567/ring-extended-core/internal/coordinator"
	"github.com/nerrad567/ring-extended-core/internal/firmware"
)

// Measurement names.
const (
	MeasurementFirmwareChange    = "firmware_change"
	MeasurementCoordinatorHealth = "coordinator_health"
)

// FirmwareChangePoint builds the point for one recorded firmware event.
// The point is stamped with the event's first-seen time, not the write
// time.
func FirmwareChangePoint(site string, change firmware.Change) *write.Point {
	previous := change.Previous
	if previous == "" {
		previous = firmware.UnknownVersion
	}
	return write.NewPoint(
		MeasurementFirmwareChange,
		map[string]string{
			"site":      site,
			"device_id": change.DeviceID,
		},
		map[string]any{
			"version":          change.Version,
			"previous_version": previous,
			"initial":          change.Previous == "",
		},
		change.At,
	)
}

// CoordinatorHealthPoint builds the point for one health classification.
// state_level orders the states (healthy 0 through failed 3) so dashboards
// can graph it.
func CoordinatorHealthPoint(site string, m coordinator.Metrics, at time.Time) *write.Point {
	return write.NewPoint(
		MeasurementCoordinatorHealth,
		map[string]string{
			"site":  site,
			"state": string(m.State),
		},
		map[string]any{
			"state_level":          m.State.Level(),
			"minutes_since_update": m.MinutesSinceUpdate,
			"update_count":         m.UpdateCount,
			"last_update_success":  m.LastUpdateSuccess,
		},
		at,
	)
}

// WriteFirmwareChange queues a firmware change point. No-op when
// disconnected.
func (c *Client) WriteFirmwareChange(change firmware.Change) {
	c.writePoint(FirmwareChangePoint(c.site, change))
}

// WriteCoordinatorHealth queues a coordinator health point. No-op when
// disconnected.
func (c *Client) WriteCoordinatorHealth(m coordinator.Metrics, at time.Time) {
	c.writePoint(CoordinatorHealthPoint(c.site, m, at))
}

func (c *Client) writePoint(p *write.Point) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(p)
}
