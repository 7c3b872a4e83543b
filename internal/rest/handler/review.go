package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/craftlist/craftlist/internal/database"
	"github.com/craftlist/craftlist/internal/database/models"
	"github.com/craftlist/craftlist/internal/database/types"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// reviewListLimit caps a single page of reviews.
const reviewListLimit = 50

// ReviewHandler handles review REST endpoints.
type ReviewHandler struct {
	db     database.Client
	logger *zap.Logger
}

// NewReview creates a new review handler.
func NewReview(db database.Client, logger *zap.Logger) *ReviewHandler {
	return &ReviewHandler{
		db:     db,
		logger: logger,
	}
}

type createReviewRequest struct {
	Author string `json:"author"`
	Body   string `json:"body"`
	Rating int    `json:"rating"`
}

// Create appends one review for a server.
func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid server id")
		return
	}

	var req createReviewRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	if _, err := h.db.Model().Server().GetByID(r.Context(), id); err != nil {
		if errors.Is(err, models.ErrServerNotFound) {
			writeError(w, http.StatusNotFound, "server not found")
			return
		}

		h.logger.Error("Failed to get server", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")

		return
	}

	review := &types.Review{
		ServerID:  id,
		Author:    req.Author,
		Body:      req.Body,
		Rating:    req.Rating,
		VoterIP:   clientIP(r),
		CreatedAt: time.Now().UTC(),
	}

	if err := review.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.db.Model().Review().Insert(r.Context(), review); err != nil {
		h.logger.Error("Failed to insert review", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")

		return
	}

	writeJSON(w, http.StatusCreated, review)
}

// List returns a server's reviews, newest first.
func (h *ReviewHandler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid server id")
		return
	}

	reviews, err := h.db.Model().Review().ListForServer(r.Context(), id, reviewListLimit)
	if err != nil {
		h.logger.Error("Failed to list reviews", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")

		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"reviews": reviews})
}
