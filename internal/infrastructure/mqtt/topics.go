package mqtt

import (
	"strings"
)

// DefaultTopicPrefix is used when the configured prefix is empty.
const DefaultTopicPrefix = "ring"

// Topics builds the topic names used by the service. All topics hang off
// a configurable prefix so several installations can share a broker.
//
//	topics := mqtt.NewTopics("ring")
//	topics.Snapshot("front_door")     // ring/snapshot/front_door
//	topics.CoordinatorHealth()        // ring/coordinator/health
type Topics struct {
	prefix string
}

// NewTopics returns builders for prefix. Surrounding slashes are trimmed.
func NewTopics(prefix string) Topics {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		prefix = DefaultTopicPrefix
	}
	return Topics{prefix: prefix}
}

// Prefix returns the normalised topic prefix.
func (t Topics) Prefix() string {
	if t.prefix == "" {
		return DefaultTopicPrefix
	}
	return t.prefix
}

// Snapshot is where the poller publishes one device's attribute snapshot.
func (t Topics) Snapshot(deviceID string) string {
	return t.Prefix() + "/snapshot/" + deviceID
}

// AllSnapshots matches every device snapshot.
func (t Topics) AllSnapshots() string {
	return t.Prefix() + "/snapshot/+"
}

// CoordinatorStatus carries the poller's update status after each cycle.
func (t Topics) CoordinatorStatus() string {
	return t.Prefix() + "/coordinator/status"
}

// CoordinatorHealth is the retained health classification.
func (t Topics) CoordinatorHealth() string {
	return t.Prefix() + "/coordinator/health"
}

// FirmwareChanged is the event topic for one device's firmware change.
func (t Topics) FirmwareChanged(deviceID string) string {
	return t.Prefix() + "/firmware/" + deviceID + "/changed"
}

// AllFirmwareChanges matches every firmware change event.
func (t Topics) AllFirmwareChanges() string {
	return t.Prefix() + "/firmware/+/changed"
}

// ServiceStatus is the retained online/offline topic, also used for LWT.
func (t Topics) ServiceStatus() string {
	return t.Prefix() + "/extended/status"
}

// SnapshotDevice extracts the device ID from a snapshot topic. It reports
// false for any other topic.
func (t Topics) SnapshotDevice(topic string) (string, bool) {
	rest, ok := strings.CutPrefix(topic, t.Prefix()+"/snapshot/")
	if !ok || rest == "" || strings.Contains(rest, "/") {
		return "", false
	}
	return rest, true
}
