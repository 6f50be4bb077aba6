package api

import (
	"log/slog"
	"net/http"
	"sort"

	"github.com/askcampus/askcampus/internal/history"
	"github.com/askcampus/askcampus/internal/record"
	"github.com/askcampus/askcampus/internal/recorder"
	"github.com/askcampus/askcampus/internal/stats"
)

// userHandler serves per-user history and statistics.
type userHandler struct {
	recorder *recorder.Recorder
	logger   *slog.Logger
}

// listUsers returns the IDs of all users with recorded conversations.
func (h *userHandler) listUsers(w http.ResponseWriter, r *http.Request) {
	histories, err := h.recorder.AllHistories(r.Context())
	if err != nil {
		h.logger.Error("loading histories for user list", "error", err)
		WriteError(w, http.StatusInternalServerError, "list_failed", "failed to list users", h.logger)
		return
	}

	users := make([]string, 0, len(histories))
	for userID := range histories {
		users = append(users, userID)
	}
	sort.Strings(users)

	WriteJSON(w, http.StatusOK, map[string]any{
		"users": users,
		"count": len(users),
	})
}

// getHistory returns one user's conversation records in order.
func (h *userHandler) getHistory(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	if err := history.ValidateUserID(userID); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_user", "invalid user ID", h.logger)
		return
	}

	records, err := h.recorder.History(r.Context(), userID)
	if err != nil {
		h.logger.Error("loading history", "user_id", userID, "error", err)
		WriteError(w, http.StatusInternalServerError, "history_failed", "failed to load history", h.logger)
		return
	}
	if records == nil {
		records = []record.Record{}
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"user_id": userID,
		"records": records,
		"count":   len(records),
	})
}

// getUserStats returns one user's aggregate statistics.
func (h *userHandler) getUserStats(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	if err := history.ValidateUserID(userID); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_user", "invalid user ID", h.logger)
		return
	}

	records, err := h.recorder.History(r.Context(), userID)
	if err != nil {
		h.logger.Error("loading history for user stats", "user_id", userID, "error", err)
		WriteError(w, http.StatusInternalServerError, "stats_failed", "failed to compute user statistics", h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"user_id": userID,
		"stats":   stats.PerUser(records),
	})
}

// deleteUser removes all of a user's data from both stores.
func (h *userHandler) deleteUser(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	if err := history.ValidateUserID(userID); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_user", "invalid user ID", h.logger)
		return
	}

	if err := h.recorder.DeleteUser(r.Context(), userID); err != nil {
		h.logger.Error("deleting user data", "user_id", userID, "error", err)
		WriteError(w, http.StatusInternalServerError, "delete_failed", "failed to delete user data", h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"user_id": userID, "status": "deleted"})
}
