package firmware

import (
	"fmt"
	"strings"
	"time"
)

// UnknownVersion is presented whenever a device has no recorded firmware.
const UnknownVersion = "unknown"

// changelogTimeFormat is the timestamp layout used in changelog lines.
const changelogTimeFormat = "2006-01-02 15:04"

// ignoredVersions are placeholder values reported while a device is offline.
// They are never recorded.
var ignoredVersions = map[string]struct{}{
	"unavailable": {},
	"unknown":     {},
}

// Event is one distinct firmware version observed for a device.
type Event struct {
	Version   string    `json:"version"`
	FirstSeen time.Time `json:"first_seen"`
}

// History is the ordered firmware changelog of one device.
//
// Consecutive events never share a version and FirstSeen never decreases.
type History struct {
	DeviceID   string  `json:"device_id"`
	DeviceName string  `json:"device_name,omitempty"`
	Events     []Event `json:"events"`
}

// CurrentVersion returns the version of the last event.
func (h History) CurrentVersion() (string, bool) {
	if len(h.Events) == 0 {
		return "", false
	}
	return h.Events[len(h.Events)-1].Version, true
}

// Updates returns the number of version transitions (events minus one).
func (h History) Updates() int {
	if len(h.Events) == 0 {
		return 0
	}
	return len(h.Events) - 1
}

// Format renders "<current_version> (<N> updates)", or "unknown" for an
// empty history.
func (h History) Format() string {
	current, ok := h.CurrentVersion()
	if !ok {
		return UnknownVersion
	}
	return fmt.Sprintf("%s (%d updates)", current, h.Updates())
}

// DisplayName returns the device name, falling back to the device ID.
func (h History) DisplayName() string {
	if h.DeviceName != "" {
		return h.DeviceName
	}
	return h.DeviceID
}

func (h History) clone() History {
	cp := h
	cp.Events = make([]Event, len(h.Events))
	copy(cp.Events, h.Events)
	return cp
}

// normalize drops consecutive duplicate versions and clamps FirstSeen so
// that it never decreases. Used on data read back from a store.
func (h History) normalize() History {
	out := History{DeviceID: h.DeviceID, DeviceName: h.DeviceName}
	for _, ev := range h.Events {
		ev.Version = strings.TrimSpace(ev.Version)
		if ev.Version == "" {
			continue
		}
		if n := len(out.Events); n > 0 {
			last := out.Events[n-1]
			if last.Version == ev.Version {
				continue
			}
			if ev.FirstSeen.Before(last.FirstSeen) {
				ev.FirstSeen = last.FirstSeen
			}
		}
		out.Events = append(out.Events, ev)
	}
	return out
}

// Signal describes what an observation did to a device history.
type Signal int

// Observation signals.
const (
	// SignalNone means the observation was ignored or repeated the current version.
	SignalNone Signal = iota
	// SignalInitialized means the first version was recorded for the device.
	SignalInitialized
	// SignalChanged means the device reported a new version.
	SignalChanged
)

// String returns the signal name.
func (s Signal) String() string {
	switch s {
	case SignalInitialized:
		return "initialized"
	case SignalChanged:
		return "changed"
	default:
		return "none"
	}
}

// Observation is the outcome of Tracker.Observe.
type Observation struct {
	DeviceID   string    `json:"device_id"`
	DeviceName string    `json:"device_name,omitempty"`
	Signal     Signal    `json:"-"`
	Previous   string    `json:"previous_version,omitempty"`
	Version    string    `json:"version"`
	At         time.Time `json:"first_seen"`
}

// Recorded reports whether the observation appended an event.
func (o Observation) Recorded() bool {
	return o.Signal != SignalNone
}

// Change is one changelog entry across all devices.
type Change struct {
	DeviceID   string    `json:"device_id"`
	DeviceName string    `json:"device_name"`
	Previous   string    `json:"previous_version,omitempty"`
	Version    string    `json:"version"`
	At         time.Time `json:"timestamp"`
}

// Line renders the change as a changelog line.
func (c Change) Line() string {
	ts := c.At.Format(changelogTimeFormat)
	if c.Previous == "" {
		return fmt.Sprintf("%s | %s: %s (initial)", ts, c.DeviceName, c.Version)
	}
	return fmt.Sprintf("%s | %s: %s -> %s", ts, c.DeviceName, c.Previous, c.Version)
}

// Summary aggregates firmware state across devices.
type Summary struct {
	TotalDevices   int                 `json:"total_devices"`
	UniqueVersions int                 `json:"unique_versions"`
	TotalChanges   int                 `json:"total_changes"`
	VersionGroups  map[string][]string `json:"version_groups"`
}

// Attributes is the presenter view of one device history.
type Attributes struct {
	CurrentVersion string   `json:"current_version"`
	FirstSeen      string   `json:"first_seen"`
	TotalUpdates   int      `json:"total_updates"`
	History        []string `json:"history"`
}

func isIgnoredVersion(v string) bool {
	_, ok := ignoredVersions[strings.ToLower(v)]
	return ok
}
