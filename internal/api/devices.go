package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/ring-extended-core/internal/catalog"
	"github.com/nerrad567/ring-extended-core/internal/firmware"
	"github.com/nerrad567/ring-extended-core/internal/snapshot"
)

// deviceSummary is one entry of the device list.
type deviceSummary struct {
	DeviceID   string    `json:"device_id"`
	Name       string    `json:"name"`
	Model      string    `json:"model,omitempty"`
	Family     string    `json:"family,omitempty"`
	CapturedAt time.Time `json:"captured_at"`
	Firmware   string    `json:"firmware"`
}

// sensorValue is one catalog sensor evaluated against a snapshot. Absent
// sensors carry the value "unknown" and Available false.
type sensorValue struct {
	Key       string           `json:"key"`
	Category  catalog.Category `json:"category"`
	Path      string           `json:"path"`
	Value     any              `json:"value"`
	Unit      catalog.Unit     `json:"unit,omitempty"`
	Available bool             `json:"available"`
}

// handleListDevices returns the latest snapshot header of every device.
func (s *Server) handleListDevices(w http.ResponseWriter, _ *http.Request) {
	snaps := s.registry.List()
	devices := make([]deviceSummary, 0, len(snaps))
	for _, snap := range snaps {
		devices = append(devices, deviceSummary{
			DeviceID:   snap.DeviceID,
			Name:       snap.DisplayName(),
			Model:      snap.Model,
			Family:     snap.Family,
			CapturedAt: snap.CapturedAt,
			Firmware:   s.tracker.Format(snap.DeviceID),
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"devices": devices,
		"count":   len(devices),
	})
}

// handleDeviceSensors evaluates the enabled catalog categories against the
// latest snapshot of a device. The category query parameter narrows the
// result further (comma separated).
func (s *Server) handleDeviceSensors(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	snap, err := s.registry.Get(id)
	if errors.Is(err, snapshot.ErrDeviceNotFound) {
		writeNotFound(w, "device not found: "+id)
		return
	}
	if err != nil {
		writeInternalError(w, "loading device snapshot failed")
		return
	}

	set, err := s.requestedCategories(r.URL.Query().Get("category"))
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	descs := catalog.Enabled(set)
	sensors := make([]sensorValue, 0, len(descs))
	for _, d := range descs {
		sv := sensorValue{
			Key:      d.Key,
			Category: d.Category,
			Path:     d.Path,
			Unit:     d.Unit,
			Value:    firmware.UnknownVersion,
		}
		if v, ok := d.Value(snap.Attributes); ok {
			sv.Value = v
			sv.Available = true
		}
		sensors = append(sensors, sv)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"device_id":   snap.DeviceID,
		"name":        snap.DisplayName(),
		"captured_at": snap.CapturedAt,
		"firmware":    s.tracker.Format(snap.DeviceID),
		"sensors":     sensors,
	})
}

// requestedCategories intersects the configured categories with the
// comma-separated query value. An empty query keeps the configured set.
func (s *Server) requestedCategories(query string) (catalog.CategorySet, error) {
	if strings.TrimSpace(query) == "" {
		return s.categories, nil
	}

	requested, err := catalog.ParseCategories(strings.Split(query, ","))
	if err != nil {
		return nil, err
	}

	set := make(catalog.CategorySet, len(requested))
	for c := range requested {
		if s.categories.Contains(c) {
			set[c] = struct{}{}
		}
	}
	return set, nil
}
