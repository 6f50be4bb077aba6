package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/askcampus/askcampus/internal/assistant"
	"github.com/askcampus/askcampus/internal/history"
	"github.com/askcampus/askcampus/internal/identity"
	"github.com/askcampus/askcampus/internal/record"
	"github.com/askcampus/askcampus/internal/recorder"
)

const maxChatBodyBytes = 64 * 1024

// chatHandler answers questions over HTTP and records the exchange.
type chatHandler struct {
	assistant *assistant.Assistant // nil when no API key is configured
	recorder  *recorder.Recorder
	logger    *slog.Logger
}

type chatRequest struct {
	UserID   string `json:"user_id"`
	Question string `json:"question"`
	Mode     string `json:"mode"`
	Language string `json:"language"`
}

type chatResponse struct {
	UserID string        `json:"user_id"`
	Record record.Record `json:"record"`
}

// send answers one question and persists the resulting record.
func (h *chatHandler) send(w http.ResponseWriter, r *http.Request) {
	if h.assistant == nil {
		WriteError(w, http.StatusServiceUnavailable, "chat_unavailable", "assistant is not configured", h.logger)
		return
	}

	var req chatRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxChatBodyBytes))
	if err := dec.Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_body", "request body must be valid JSON", h.logger)
		return
	}

	if req.UserID == "" {
		req.UserID = identity.Guest
	}
	if err := history.ValidateUserID(req.UserID); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_user", "invalid user ID", h.logger)
		return
	}
	if req.Question == "" {
		WriteError(w, http.StatusBadRequest, "missing_question", "question is required", h.logger)
		return
	}
	if req.Mode != "" && req.Mode != record.ModeChat && req.Mode != record.ModeQA && req.Mode != record.ModeAnalysis {
		WriteError(w, http.StatusBadRequest, "invalid_mode", "mode must be chat, qa, or analysis", h.logger)
		return
	}

	ctx := r.Context()

	past, err := h.recorder.History(ctx, req.UserID)
	if err != nil {
		h.logger.Error("loading history for chat", "user_id", req.UserID, "error", err)
		WriteError(w, http.StatusInternalServerError, "history_failed", "failed to load history", h.logger)
		return
	}

	rec, err := h.assistant.Ask(ctx, assistant.Request{
		UserID:   req.UserID,
		Question: req.Question,
		Mode:     req.Mode,
		Language: req.Language,
		History:  past,
	})
	if err != nil {
		h.logger.Error("generating answer", "user_id", req.UserID, "error", err)
		WriteError(w, http.StatusBadGateway, "generation_failed", "failed to generate an answer", h.logger)
		return
	}

	if err := h.recorder.Record(ctx, req.UserID, rec); err != nil {
		h.logger.Error("recording conversation", "user_id", req.UserID, "error", err)
		WriteError(w, http.StatusInternalServerError, "record_failed", "failed to record conversation", h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, chatResponse{UserID: req.UserID, Record: rec})
}
