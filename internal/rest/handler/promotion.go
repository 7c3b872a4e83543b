package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/craftlist/craftlist/internal/database"
	"github.com/craftlist/craftlist/internal/database/models"
	"github.com/craftlist/craftlist/internal/database/types"
	"go.uber.org/zap"
)

// PromotionHandler handles sponsored listing endpoints.
type PromotionHandler struct {
	db     database.Client
	logger *zap.Logger
}

// NewPromotion creates a new promotion handler.
func NewPromotion(db database.Client, logger *zap.Logger) *PromotionHandler {
	return &PromotionHandler{
		db:     db,
		logger: logger,
	}
}

// Active returns the currently running promotions, highest tier first.
func (h *PromotionHandler) Active(w http.ResponseWriter, r *http.Request) {
	promotions, err := h.db.Model().Promotion().GetActive(r.Context(), time.Now().UTC())
	if err != nil {
		h.logger.Error("Failed to get active promotions", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")

		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"promotions": promotions})
}

// createPromotionRequest carries an admin's sponsored slot booking.
type createPromotionRequest struct {
	ServerID int64     `json:"serverId"`
	Tier     int       `json:"tier"`
	StartsAt time.Time `json:"startsAt"`
	EndsAt   time.Time `json:"endsAt"`
}

// Create books a sponsored slot for a server.
func (h *PromotionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createPromotionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	if !req.EndsAt.After(req.StartsAt) {
		writeError(w, http.StatusBadRequest, "promotion must end after it starts")
		return
	}

	if req.Tier < 1 {
		req.Tier = 1
	}

	if _, err := h.db.Model().Server().GetByID(r.Context(), req.ServerID); err != nil {
		if errors.Is(err, models.ErrServerNotFound) {
			writeError(w, http.StatusNotFound, "server not found")
			return
		}

		h.logger.Error("Failed to get server", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")

		return
	}

	promotion := &types.Promotion{
		ServerID: req.ServerID,
		Tier:     req.Tier,
		StartsAt: req.StartsAt,
		EndsAt:   req.EndsAt,
	}

	if err := h.db.Model().Promotion().Create(r.Context(), promotion); err != nil {
		h.logger.Error("Failed to create promotion", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")

		return
	}

	writeJSON(w, http.StatusCreated, promotion)
}
