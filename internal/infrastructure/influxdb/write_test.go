package influxdb

import (
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/nerrad567/ring-extended-core/internal/coordinator"
	"github.com/nerrad567/ring-extended-core/internal/firmware"
)

func pointTags(p *write.Point) map[string]string {
	tags := make(map[string]string)
	for _, tag := range p.TagList() {
		tags[tag.Key] = tag.Value
	}
	return tags
}

func pointFields(p *write.Point) map[string]any {
	fields := make(map[string]any)
	for _, f := range p.FieldList() {
		fields[f.Key] = f.Value
	}
	return fields
}

func TestFirmwareChangePoint(t *testing.T) {
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		change       firmware.Change
		wantPrevious string
		wantInitial  bool
	}{
		{
			name:         "initial",
			change:       firmware.Change{DeviceID: "front_door", Version: "cam-1", At: at},
			wantPrevious: firmware.UnknownVersion,
			wantInitial:  true,
		},
		{
			name:         "upgrade",
			change:       firmware.Change{DeviceID: "front_door", Previous: "cam-1", Version: "cam-2", At: at},
			wantPrevious: "cam-1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := FirmwareChangePoint("home", tt.change)

			if p.Name() != MeasurementFirmwareChange {
				t.Errorf("Name() = %q", p.Name())
			}
			if !p.Time().Equal(at) {
				t.Errorf("Time() = %v, want %v", p.Time(), at)
			}
			tags := pointTags(p)
			if tags["site"] != "home" || tags["device_id"] != "front_door" {
				t.Errorf("tags = %v", tags)
			}
			fields := pointFields(p)
			if fields["previous_version"] != tt.wantPrevious {
				t.Errorf("previous_version = %v, want %v", fields["previous_version"], tt.wantPrevious)
			}
			if fields["initial"] != tt.wantInitial {
				t.Errorf("initial = %v, want %v", fields["initial"], tt.wantInitial)
			}
			if fields["version"] != tt.change.Version {
				t.Errorf("version = %v", fields["version"])
			}
		})
	}
}

func TestCoordinatorHealthPoint(t *testing.T) {
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	m := coordinator.Metrics{
		State:              coordinator.StateCritical,
		MinutesSinceUpdate: 31.5,
		UpdateCount:        12,
		LastUpdateSuccess:  true,
	}

	p := CoordinatorHealthPoint("home", m, at)

	if tags := pointTags(p); tags["state"] != "critical" || tags["site"] != "home" {
		t.Errorf("tags = %v", tags)
	}
	fields := pointFields(p)
	if fields["state_level"] != int64(2) {
		t.Errorf("state_level = %v (%T), want 2", fields["state_level"], fields["state_level"])
	}
	if fields["minutes_since_update"] != 31.5 {
		t.Errorf("minutes_since_update = %v", fields["minutes_since_update"])
	}
	if fields["update_count"] != int64(12) {
		t.Errorf("update_count = %v", fields["update_count"])
	}
	if fields["last_update_success"] != true {
		t.Errorf("last_update_success = %v", fields["last_update_success"])
	}
}
