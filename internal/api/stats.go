package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/askcampus/askcampus/internal/recorder"
	"github.com/askcampus/askcampus/internal/stats"
)

const (
	defaultActivityLimit = 20
	maxActivityLimit     = 500
)

// statsHandler serves the aggregate dashboard endpoints.
type statsHandler struct {
	recorder *recorder.Recorder
	logger   *slog.Logger
}

// getStats returns the aggregate statistics across all users.
func (h *statsHandler) getStats(w http.ResponseWriter, r *http.Request) {
	histories, err := h.recorder.AllHistories(r.Context())
	if err != nil {
		h.logger.Error("loading histories for stats", "error", err)
		WriteError(w, http.StatusInternalServerError, "stats_failed", "failed to compute statistics", h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, stats.Compute(histories))
}

// getActivity returns the most recent conversation records across all
// users, newest first. ?limit= caps the result (default 20, max 500).
func (h *statsHandler) getActivity(w http.ResponseWriter, r *http.Request) {
	limit := defaultActivityLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			WriteError(w, http.StatusBadRequest, "invalid_limit", "limit must be a positive integer", h.logger)
			return
		}
		limit = min(n, maxActivityLimit)
	}

	histories, err := h.recorder.AllHistories(r.Context())
	if err != nil {
		h.logger.Error("loading histories for activity", "error", err)
		WriteError(w, http.StatusInternalServerError, "activity_failed", "failed to load activity", h.logger)
		return
	}

	entries := stats.RecentActivity(histories, limit)
	WriteJSON(w, http.StatusOK, map[string]any{
		"entries": entries,
		"count":   len(entries),
	})
}
