package handler

import (
	"errors"
	"net/http"

	"github.com/craftlist/craftlist/internal/database"
	"github.com/craftlist/craftlist/internal/database/models"
	"github.com/craftlist/craftlist/internal/database/service"
	"github.com/craftlist/craftlist/internal/database/types/enum"
	"github.com/craftlist/craftlist/internal/worker/core"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// pendingListLimit caps the moderation queue page.
const pendingListLimit = 100

// AdminHandler handles moderation and operations REST endpoints.
type AdminHandler struct {
	db      database.Client
	monitor *core.Monitor
	logger  *zap.Logger
}

// NewAdmin creates a new admin handler.
func NewAdmin(db database.Client, monitor *core.Monitor, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		db:      db,
		monitor: monitor,
		logger:  logger,
	}
}

// Pending returns the moderation queue, newest first.
func (h *AdminHandler) Pending(w http.ResponseWriter, r *http.Request) {
	servers, err := h.db.Model().Server().GetByStatus(
		r.Context(), enum.ServerStatusPending, pendingListLimit,
	)
	if err != nil {
		h.logger.Error("Failed to list pending servers", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")

		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"servers": servers})
}

type moderateRequest struct {
	Status string `json:"status"`
}

// Moderate applies a moderation transition to a listing.
func (h *AdminHandler) Moderate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid server id")
		return
	}

	var req moderateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	err := h.db.Service().Server().Moderate(r.Context(), id, enum.ServerStatus(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidTransition):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, models.ErrServerNotFound):
			writeError(w, http.StatusNotFound, "server not found")
		default:
			h.logger.Error("Failed to moderate server", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "internal server error")
		}

		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": req.Status})
}

type banRequest struct {
	Reason string `json:"reason"`
	Banned bool   `json:"banned"`
}

// Ban sets or clears a user's ban.
func (h *AdminHandler) Ban(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req banRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	if err := h.db.Model().User().SetBan(r.Context(), id, req.Reason, req.Banned); err != nil {
		h.logger.Error("Failed to set user ban", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Workers returns the heartbeat status of every running worker.
func (h *AdminHandler) Workers(w http.ResponseWriter, r *http.Request) {
	statuses, err := h.monitor.GetAllStatuses(r.Context())
	if err != nil {
		h.logger.Error("Failed to get worker statuses", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")

		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"workers": statuses})
}
