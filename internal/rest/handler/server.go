package handler

import (
	"encoding/base64"
	"errors"
	"net/http"
	"time"

	"github.com/craftlist/craftlist/internal/database"
	"github.com/craftlist/craftlist/internal/database/models"
	"github.com/craftlist/craftlist/internal/database/service"
	"github.com/craftlist/craftlist/internal/database/types"
	"github.com/craftlist/craftlist/internal/database/types/enum"
	"github.com/craftlist/craftlist/internal/status"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// listLimitMax caps the page size of the public listing.
const listLimitMax = 100

// ServerHandler handles listing-related REST endpoints.
type ServerHandler struct {
	db      database.Client
	checker *status.Checker
	logger  *zap.Logger
}

// NewServer creates a new server handler.
func NewServer(db database.Client, checker *status.Checker, logger *zap.Logger) *ServerHandler {
	return &ServerHandler{
		db:      db,
		checker: checker,
		logger:  logger,
	}
}

// List returns the public listing, ordered by votes.
func (h *ServerHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 25)
	if limit > listLimitMax {
		limit = listLimitMax
	}

	filter := models.ListFilter{
		Category: r.URL.Query().Get("category"),
		Family:   enum.ClientFamily(r.URL.Query().Get("family")),
		Search:   r.URL.Query().Get("q"),
		Limit:    limit,
		Offset:   queryInt(r, "offset", 0),
	}

	servers, err := h.db.Model().Server().List(r.Context(), filter)
	if err != nil {
		h.logger.Error("Failed to list servers", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")

		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"servers": servers})
}

// Get returns one listing by slug.
func (h *ServerHandler) Get(w http.ResponseWriter, r *http.Request) {
	server, err := h.db.Model().Server().GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		if errors.Is(err, models.ErrServerNotFound) {
			writeError(w, http.StatusNotFound, "server not found")
			return
		}

		h.logger.Error("Failed to get server", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")

		return
	}

	writeJSON(w, http.StatusOK, server)
}

// LiveStatus returns the cached liveness result for one listing. Repeated
// requests within the cache window do not hit the upstream status APIs.
func (h *ServerHandler) LiveStatus(w http.ResponseWriter, r *http.Request) {
	server, err := h.db.Model().Server().GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		if errors.Is(err, models.ErrServerNotFound) {
			writeError(w, http.StatusNotFound, "server not found")
			return
		}

		h.logger.Error("Failed to get server", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")

		return
	}

	family := server.CheckFamily()

	port := server.JavaPort
	if family == enum.ClientFamilyBedrock {
		port = server.BedrockPort
	}

	result := h.checker.Check(r.Context(), status.Request{
		Host:   server.Host,
		Port:   port,
		Family: family,
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"online":        result.Online,
		"playersOnline": result.PlayersOnline,
		"playersMax":    result.PlayersMax,
		"version":       result.Version,
		"motd":          result.MOTD,
	})
}

// History returns the retained status samples for one listing.
func (h *ServerHandler) History(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid server id")
		return
	}

	days := queryInt(r, "days", 7)
	since := time.Now().UTC().AddDate(0, 0, -days)

	samples, err := h.db.Model().Status().GetSamples(r.Context(), id, since)
	if err != nil {
		h.logger.Error("Failed to get status samples", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")

		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"samples": samples})
}

// Ranks returns the daily rank history for one listing.
func (h *ServerHandler) Ranks(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid server id")
		return
	}

	days := queryInt(r, "days", 30)

	ranks, err := h.db.Service().Rank().History(r.Context(), id, days)
	if err != nil {
		h.logger.Error("Failed to get rank history", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")

		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"ranks": ranks})
}

// Icon serves the cached icon bytes with a sniffed content type.
func (h *ServerHandler) Icon(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid server id")
		return
	}

	icon, err := h.db.Service().Icon().Get(r.Context(), id)
	if err != nil {
		h.logger.Error("Failed to get icon", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")

		return
	}

	if icon == nil {
		writeError(w, http.StatusNotFound, "no icon cached for this server")
		return
	}

	data, err := base64.StdEncoding.DecodeString(icon.Data)
	if err != nil {
		h.logger.Error("Cached icon payload is corrupt", zap.Int64("serverID", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")

		return
	}

	w.Header().Set("Content-Type", http.DetectContentType(data))
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// submitRequest carries an owner's listing submission or edit.
type submitRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Host        string   `json:"host"`
	JavaPort    int      `json:"javaPort"`
	BedrockPort int      `json:"bedrockPort"`
	Family      string   `json:"family"`
	Categories  []string `json:"categories"`
	VersionMin  string   `json:"versionMin"`
	VersionMax  string   `json:"versionMax"`
	Website     string   `json:"website"`
	DiscordURL  string   `json:"discordUrl"`
}

func (req *submitRequest) apply(server *types.Server) {
	server.Name = req.Name
	server.Description = req.Description
	server.Host = req.Host
	server.Family = enum.ClientFamily(req.Family)
	server.Categories = req.Categories
	server.VersionMin = req.VersionMin
	server.VersionMax = req.VersionMax
	server.Website = req.Website
	server.DiscordURL = req.DiscordURL

	if req.JavaPort > 0 {
		server.JavaPort = req.JavaPort
	}

	if req.BedrockPort > 0 {
		server.BedrockPort = req.BedrockPort
	}
}

// Submit stores a new listing in pending state.
func (h *ServerHandler) Submit(w http.ResponseWriter, r *http.Request) {
	ownerID, err := callerID(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	var req submitRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	server := &types.Server{
		OwnerID:     ownerID,
		JavaPort:    25565,
		BedrockPort: 19132,
	}
	req.apply(server)

	if err := h.db.Service().Server().Submit(r.Context(), server); err != nil {
		if errors.Is(err, service.ErrInvalidSubmission) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		if errors.Is(err, models.ErrUserNotFound) {
			writeError(w, http.StatusUnauthorized, "unknown user")
			return
		}

		h.logger.Error("Failed to submit server", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")

		return
	}

	writeJSON(w, http.StatusCreated, server)
}

// Update persists owner edits to a listing.
func (h *ServerHandler) Update(w http.ResponseWriter, r *http.Request) {
	actorID, err := callerID(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	id, ok := pathID(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid server id")
		return
	}

	var req submitRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	server, err := h.db.Model().Server().GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrServerNotFound) {
			writeError(w, http.StatusNotFound, "server not found")
			return
		}

		h.logger.Error("Failed to get server", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")

		return
	}

	req.apply(server)

	if err := h.db.Service().Server().UpdateListing(r.Context(), actorID, server); err != nil {
		if errors.Is(err, service.ErrNotOwner) {
			writeError(w, http.StatusForbidden, err.Error())
			return
		}

		h.logger.Error("Failed to update server", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")

		return
	}

	writeJSON(w, http.StatusOK, server)
}

// Delete removes a listing.
func (h *ServerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actorID, err := callerID(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	id, ok := pathID(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid server id")
		return
	}

	if err := h.db.Service().Server().DeleteListing(r.Context(), actorID, id); err != nil {
		switch {
		case errors.Is(err, service.ErrNotOwner):
			writeError(w, http.StatusForbidden, err.Error())
		case errors.Is(err, models.ErrServerNotFound):
			writeError(w, http.StatusNotFound, "server not found")
		default:
			h.logger.Error("Failed to delete server", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "internal server error")
		}

		return
	}

	w.WriteHeader(http.StatusNoContent)
}
