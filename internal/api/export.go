package api

import (
	"log/slog"
	"net/http"

	"github.com/askcampus/askcampus/internal/export"
	"github.com/askcampus/askcampus/internal/recorder"
)

// exportHandler serves analytics snapshots.
type exportHandler struct {
	recorder *recorder.Recorder
	logger   *slog.Logger
}

// getExport returns a snapshot document. ?include_histories=true embeds
// the raw conversations; the default exports aggregates only.
func (h *exportHandler) getExport(w http.ResponseWriter, r *http.Request) {
	includeHistories := r.URL.Query().Get("include_histories") == "true"

	histories, err := h.recorder.AllHistories(r.Context())
	if err != nil {
		h.logger.Error("loading histories for export", "error", err)
		WriteError(w, http.StatusInternalServerError, "export_failed", "failed to build export", h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, export.New(histories, includeHistories))
}
