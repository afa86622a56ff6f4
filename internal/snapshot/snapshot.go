package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Snapshot is one poll cycle's immutable view of a device.
type Snapshot struct {
	DeviceID   string    `json:"device_id"`
	Name       string    `json:"name,omitempty"`
	Model      string    `json:"model,omitempty"`
	Family     string    `json:"family,omitempty"`
	CapturedAt time.Time `json:"captured_at"`
	Attributes Value     `json:"attributes"`
}

// DisplayName returns the device name, falling back to the device ID.
func (s Snapshot) DisplayName() string {
	if s.Name != "" {
		return s.Name
	}
	return s.DeviceID
}

// wireSnapshot is the JSON document published by the snapshot source.
//
// health_attributes carries the separate health endpoint response and is
// merged into attributes.health on decode.
type wireSnapshot struct {
	DeviceID         string    `json:"device_id"`
	Name             string    `json:"name"`
	Model            string    `json:"model"`
	Family           string    `json:"family"`
	CapturedAt       time.Time `json:"captured_at"`
	Attributes       Value     `json:"attributes"`
	HealthAttributes Value     `json:"health_attributes"`
}

// Decode parses a snapshot message.
//
// Parameters:
//   - payload: JSON document from the snapshot source
//   - fallbackID: device ID to use when the payload omits one (usually
//     taken from the topic)
//   - now: capture time used when the payload omits captured_at
//
// Returns:
//   - Snapshot: decoded snapshot with health attributes merged
//   - error: ErrInvalidSnapshot (wrapped) on malformed input
func Decode(payload []byte, fallbackID string, now time.Time) (Snapshot, error) {
	var w wireSnapshot
	if err := json.Unmarshal(payload, &w); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}

	id := strings.TrimSpace(w.DeviceID)
	if id == "" {
		id = strings.TrimSpace(fallbackID)
	}
	if id == "" {
		return Snapshot{}, fmt.Errorf("%w: device_id is required", ErrInvalidSnapshot)
	}
	if w.Attributes.Kind() != KindMap {
		return Snapshot{}, fmt.Errorf("%w: attributes must be an object", ErrInvalidSnapshot)
	}

	captured := w.CapturedAt
	if captured.IsZero() {
		captured = now
	}

	return Snapshot{
		DeviceID:   id,
		Name:       w.Name,
		Model:      w.Model,
		Family:     w.Family,
		CapturedAt: captured.UTC(),
		Attributes: MergeHealth(w.Attributes, w.HealthAttributes),
	}, nil
}

func marshalAny(v any) ([]byte, error) {
	return json.Marshal(v)
}

func unmarshalAny(data []byte) (any, error) {
	var raw any
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	return raw, nil
}
