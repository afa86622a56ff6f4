package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/ring-extended-core/internal/firmware"
)

// maxChangelogLimit caps the limit query parameter.
const maxChangelogLimit = 500

// firmwareResponse is the presenter view of one device's firmware.
type firmwareResponse struct {
	DeviceID   string              `json:"device_id"`
	Name       string              `json:"name"`
	Version    string              `json:"version"`
	Format     string              `json:"format"`
	Attributes firmware.Attributes `json:"attributes"`
	Events     []firmware.Event    `json:"events"`
}

// handleFirmwareSummary returns devices grouped by current version.
func (s *Server) handleFirmwareSummary(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.tracker.Summary())
}

// handleFirmwareChangelog returns the newest changes across devices.
func (s *Server) handleFirmwareChangelog(w http.ResponseWriter, r *http.Request) {
	limit := s.changelogLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeBadRequest(w, "limit must be a positive integer")
			return
		}
		limit = min(n, maxChangelogLimit)
	}
	if limit <= 0 {
		limit = firmware.DefaultChangelogLimit
	}

	changes := s.tracker.RecentChanges(limit)
	if changes == nil {
		changes = []firmware.Change{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"changes": changes,
		"text":    s.tracker.ChangelogText(limit),
		"count":   len(changes),
	})
}

// handleGetFirmware returns the history of one device.
func (s *Server) handleGetFirmware(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	h, ok := s.tracker.History(id)
	if !ok {
		writeNotFound(w, "no firmware history for device "+id)
		return
	}
	attrs, _ := s.tracker.Attributes(id)
	version, _ := h.CurrentVersion()

	writeJSON(w, http.StatusOK, firmwareResponse{
		DeviceID:   h.DeviceID,
		Name:       h.DisplayName(),
		Version:    version,
		Format:     h.Format(),
		Attributes: attrs,
		Events:     h.Events,
	})
}

// handlePruneFirmware deletes the history of a device that is gone.
func (s *Server) handlePruneFirmware(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	err := s.tracker.Prune(r.Context(), id)
	switch {
	case errors.Is(err, firmware.ErrHistoryNotFound):
		writeNotFound(w, "no firmware history for device "+id)
		return
	case errors.Is(err, firmware.ErrPersistence):
		s.logger.Error("pruning firmware history failed", "device_id", id, "error", err)
		writeUnavailable(w, "firmware store unavailable")
		return
	case err != nil:
		writeInternalError(w, "pruning firmware history failed")
		return
	}

	s.logger.Info("firmware history pruned via API",
		"device_id", id,
		"request_id", r.Context().Value(ctxKeyRequestID),
	)
	w.WriteHeader(http.StatusNoContent)
}
