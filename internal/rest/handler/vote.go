package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/craftlist/craftlist/internal/database"
	"github.com/craftlist/craftlist/internal/database/models"
	"github.com/craftlist/craftlist/internal/database/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// voteListLimit caps the recent-voters listing.
const voteListLimit = 50

// VoteHandler handles vote REST endpoints.
type VoteHandler struct {
	db     database.Client
	logger *zap.Logger
}

// NewVote creates a new vote handler.
func NewVote(db database.Client, logger *zap.Logger) *VoteHandler {
	return &VoteHandler{
		db:     db,
		logger: logger,
	}
}

type castVoteRequest struct {
	Username string `json:"username"`
}

// Cast records one vote for a server. Authenticated callers vote under
// their user ID; anonymous callers vote under their network address.
func (h *VoteHandler) Cast(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid server id")
		return
	}

	var req castVoteRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	voterID := clientIP(r)
	if userID, err := callerID(r); err == nil {
		voterID = "user:" + strconv.FormatInt(userID, 10)
	}

	err := h.db.Service().Vote().CastVote(r.Context(), id, voterID, req.Username)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrVoteCooldown):
			writeError(w, http.StatusTooManyRequests, err.Error())
		case errors.Is(err, models.ErrServerNotFound):
			writeError(w, http.StatusNotFound, "server not found")
		default:
			h.logger.Error("Failed to cast vote", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "internal server error")
		}

		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"status": "recorded"})
}

// List returns the most recent votes for a server.
func (h *VoteHandler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid server id")
		return
	}

	votes, err := h.db.Model().Vote().ListForServer(r.Context(), id, voteListLimit)
	if err != nil {
		h.logger.Error("Failed to list votes", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")

		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"votes": votes})
}
