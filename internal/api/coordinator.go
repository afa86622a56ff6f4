package api

import (
	"net/http"

	"github.com/nerrad567/ring-extended-core/internal/catalog"
	"github.com/nerrad567/ring-extended-core/internal/diagnostics"
)

// handleCoordinator returns the current coordinator health classification.
func (s *Server) handleCoordinator(w http.ResponseWriter, _ *http.Request) {
	m := s.monitor.Metrics(s.now())
	writeJSON(w, http.StatusOK, map[string]any{
		"state":          m.State,
		"title":          m.State.Title(),
		"level":          m.State.Level(),
		"metrics":        m,
		"source_counter": s.monitor.SourceCounter(),
	})
}

// handleDiagnostics returns the redacted diagnostics report for every
// known device.
func (s *Server) handleDiagnostics(w http.ResponseWriter, _ *http.Request) {
	report := diagnostics.Build(diagnostics.Inputs{
		Snapshots:   s.registry.List(),
		Firmware:    s.tracker,
		Monitor:     s.monitor,
		Descriptors: catalog.Enabled(s.categories),
	}, s.now())
	writeJSON(w, http.StatusOK, report)
}
