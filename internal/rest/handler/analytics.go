package handler

import (
	"net/http"

	"github.com/craftlist/craftlist/internal/database"
	"github.com/craftlist/craftlist/internal/database/service"
	"github.com/craftlist/craftlist/internal/database/types/enum"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// AnalyticsHandler handles interaction event REST endpoints.
type AnalyticsHandler struct {
	db          database.Client
	visitorSalt string
	logger      *zap.Logger
}

// NewAnalytics creates a new analytics handler.
func NewAnalytics(db database.Client, visitorSalt string, logger *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		db:          db,
		visitorSalt: visitorSalt,
		logger:      logger,
	}
}

type recordEventRequest struct {
	ServerID  int64          `json:"serverId"`
	Kind      string         `json:"kind"`
	SessionID string         `json:"sessionId"`
	Referrer  string         `json:"referrer"`
	Metadata  map[string]any `json:"metadata"`
}

// Record appends one interaction event. The visitor's address is hashed
// before it is stored; the raw address never reaches the database.
func (h *AnalyticsHandler) Record(w http.ResponseWriter, r *http.Request) {
	var req recordEventRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	kind := enum.EventKind(req.Kind)
	if !kind.Valid() {
		writeError(w, http.StatusBadRequest, "unknown event kind")
		return
	}

	if req.ServerID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid server id")
		return
	}

	visitor := service.Visitor{
		IP:        clientIP(r),
		UserAgent: r.UserAgent(),
		Referrer:  req.Referrer,
		SessionID: req.SessionID,
	}

	err := h.db.Service().Analytics().RecordEvent(
		r.Context(), req.ServerID, kind, visitor, h.visitorSalt, req.Metadata,
	)
	if err != nil {
		h.logger.Error("Failed to record event", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")

		return
	}

	w.WriteHeader(http.StatusAccepted)
}

// Summary returns a server's trailing 30 day analytics totals.
func (h *AnalyticsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid server id")
		return
	}

	summary, err := h.db.Service().Analytics().Summary(r.Context(), id)
	if err != nil {
		h.logger.Error("Failed to get analytics summary", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")

		return
	}

	writeJSON(w, http.StatusOK, summary)
}
