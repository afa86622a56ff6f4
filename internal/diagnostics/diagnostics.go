package diagnostics

import (
	"sort"
	"time"

	"github.com/nerrad567/ring-extended-core/internal/catalog"
	"github.com/nerrad567/ring-extended-core/internal/coordinator"
	"github.com/nerrad567/ring-extended-core/internal/firmware"
	"github.com/nerrad567/ring-extended-core/internal/snapshot"
)

// Redacted replaces the value of every privacy-sensitive key.
const Redacted = "**REDACTED**"

// redactKeys are attribute keys removed from diagnostics output at any depth.
var redactKeys = map[string]struct{}{
	"address":      {},
	"latitude":     {},
	"longitude":    {},
	"email":        {},
	"first_name":   {},
	"last_name":    {},
	"location_id":  {},
	"ring_id":      {},
	"owner":        {},
	"shared_users": {},
	"description":  {},
	"time_zone":    {},
}

// Coverage compares a device's attribute tree with the sensor catalog.
type Coverage struct {
	TotalAttributes     int      `json:"total_api_attributes"`
	TotalDefinitions    int      `json:"total_sensor_definitions"`
	AvailableSensors    int      `json:"available_sensors"`
	UnavailableSensors  int      `json:"unavailable_sensors"`
	UncoveredPaths      []string `json:"uncovered_attribute_paths"`
	StalePaths          []string `json:"stale_sensor_paths"`
	AvailableSensorKeys []string `json:"available_sensor_keys"`
}

// Device is the diagnostics view of one device.
type Device struct {
	DeviceID       string         `json:"device_id"`
	Name           string         `json:"name"`
	Model          string         `json:"model"`
	Family         string         `json:"family"`
	CapturedAt     time.Time      `json:"captured_at"`
	FirmwareFormat string         `json:"firmware"`
	Coverage       Coverage       `json:"sensor_coverage"`
	Attributes     snapshot.Value `json:"attrs"`
}

// Inconsistency lists attributes one device lacks compared with other
// devices of the same model.
type Inconsistency struct {
	Model             string   `json:"model"`
	Device            string   `json:"device"`
	MissingAttributes []string `json:"missing_attributes"`
}

// Report is the full diagnostics document.
type Report struct {
	GeneratedAt     time.Time           `json:"generated_at"`
	TotalDevices    int                 `json:"total_devices"`
	ModelComparison map[string][]string `json:"model_comparison"`
	Inconsistencies []Inconsistency     `json:"inconsistencies"`
	Devices         []Device            `json:"devices"`
	Firmware        firmware.Summary    `json:"firmware"`
	Coordinator     coordinator.Metrics `json:"coordinator"`
}

// Inputs are the read-only sources a report is built from.
type Inputs struct {
	Snapshots   []snapshot.Snapshot
	Firmware    *firmware.Tracker
	Monitor     *coordinator.Monitor
	Descriptors []catalog.Description
}

// Build assembles a diagnostics report at now.
//
// Descriptors defaults to the full catalog. Firmware and Monitor may be
// nil, in which case their sections are left empty.
func Build(in Inputs, now time.Time) Report {
	descs := in.Descriptors
	if descs == nil {
		descs = catalog.All()
	}

	report := Report{
		GeneratedAt:     now.UTC(),
		ModelComparison: make(map[string][]string),
		Inconsistencies: []Inconsistency{},
		Devices:         make([]Device, 0, len(in.Snapshots)),
	}

	snaps := make([]snapshot.Snapshot, len(in.Snapshots))
	copy(snaps, in.Snapshots)
	sort.Slice(snaps, func(i, j int) bool { return snaps[i].DeviceID < snaps[j].DeviceID })

	pathsByDevice := make(map[string][]string, len(snaps))
	for _, s := range snaps {
		if s.Attributes.Len() == 0 {
			continue
		}

		dev := Device{
			DeviceID:       s.DeviceID,
			Name:           s.DisplayName(),
			Model:          modelOrUnknown(s.Model),
			Family:         s.Family,
			CapturedAt:     s.CapturedAt,
			FirmwareFormat: firmware.UnknownVersion,
			Coverage:       SensorCoverage(s.Attributes, descs),
			Attributes:     Redact(s.Attributes),
		}
		if in.Firmware != nil {
			dev.FirmwareFormat = in.Firmware.Format(s.DeviceID)
		}
		report.Devices = append(report.Devices, dev)
		report.ModelComparison[dev.Model] = append(report.ModelComparison[dev.Model], dev.Name)
		pathsByDevice[s.DeviceID] = snapshot.Paths(s.Attributes)
	}
	report.TotalDevices = len(report.Devices)
	report.Inconsistencies = Inconsistencies(report.Devices, pathsByDevice)

	if in.Firmware != nil {
		report.Firmware = in.Firmware.Summary()
	}
	if in.Monitor != nil {
		report.Coordinator = in.Monitor.Metrics(now)
	}
	return report
}

// SensorCoverage compares the leaf paths of attrs with the catalog paths.
//
// Uncovered paths exist on the device but have no sensor; stale paths have
// a sensor but do not exist on the device. A path holding an explicit null
// counts as present for both lists, while the sensor itself is unavailable.
func SensorCoverage(attrs snapshot.Value, descs []catalog.Description) Coverage {
	devicePaths := snapshot.Paths(attrs)
	onDevice := make(map[string]struct{}, len(devicePaths))
	for _, p := range devicePaths {
		onDevice[p] = struct{}{}
	}

	defined := make(map[string]struct{})
	cov := Coverage{
		TotalAttributes:     len(devicePaths),
		TotalDefinitions:    len(descs),
		UncoveredPaths:      []string{},
		StalePaths:          []string{},
		AvailableSensorKeys: []string{},
	}

	for _, d := range descs {
		defined[d.Path] = struct{}{}
		if d.Available(attrs) {
			cov.AvailableSensors++
			cov.AvailableSensorKeys = append(cov.AvailableSensorKeys, d.Key)
		} else {
			cov.UnavailableSensors++
		}
	}

	for _, p := range devicePaths {
		if _, ok := defined[p]; !ok {
			cov.UncoveredPaths = append(cov.UncoveredPaths, p)
		}
	}
	for p := range defined {
		if _, ok := onDevice[p]; !ok {
			cov.StalePaths = append(cov.StalePaths, p)
		}
	}

	sort.Strings(cov.StalePaths)
	sort.Strings(cov.AvailableSensorKeys)
	return cov
}

// Redact returns a copy of v with every privacy-sensitive key replaced by
// Redacted, at any depth and inside lists.
func Redact(v snapshot.Value) snapshot.Value {
	switch v.Kind() {
	case snapshot.KindMap:
		fields := v.Fields()
		for k, child := range fields {
			if _, ok := redactKeys[k]; ok {
				fields[k] = snapshot.String(Redacted)
				continue
			}
			fields[k] = Redact(child)
		}
		return snapshot.Map(fields)
	case snapshot.KindList:
		items := v.Items()
		for i, child := range items {
			items[i] = Redact(child)
		}
		return snapshot.List(items)
	default:
		return v
	}
}

// Inconsistencies compares the attribute paths of devices sharing a model
// and reports what each device lacks relative to the union.
func Inconsistencies(devices []Device, pathsByDevice map[string][]string) []Inconsistency {
	byModel := make(map[string][]Device)
	for _, d := range devices {
		byModel[d.Model] = append(byModel[d.Model], d)
	}

	models := make([]string, 0, len(byModel))
	for m := range byModel {
		models = append(models, m)
	}
	sort.Strings(models)

	out := []Inconsistency{}
	for _, model := range models {
		group := byModel[model]
		if len(group) < 2 {
			continue
		}

		union := make(map[string]struct{})
		for _, d := range group {
			for _, p := range pathsByDevice[d.DeviceID] {
				union[p] = struct{}{}
			}
		}

		for _, d := range group {
			have := make(map[string]struct{}, len(pathsByDevice[d.DeviceID]))
			for _, p := range pathsByDevice[d.DeviceID] {
				have[p] = struct{}{}
			}
			var missing []string
			for p := range union {
				if _, ok := have[p]; !ok {
					missing = append(missing, p)
				}
			}
			if len(missing) == 0 {
				continue
			}
			sort.Strings(missing)
			out = append(out, Inconsistency{Model: model, Device: d.Name, MissingAttributes: missing})
		}
	}
	return out
}

func modelOrUnknown(m string) string {
	if m == "" {
		return "unknown"
	}
	return m
}
