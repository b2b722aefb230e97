package handler

import (
	"encoding/json"
	"net/http"

	"github.com/huddlehq/workspace-chat/internal/middleware"
	"github.com/huddlehq/workspace-chat/internal/model"
	"github.com/huddlehq/workspace-chat/internal/service"
	"github.com/huddlehq/workspace-chat/pkg/logger"
)

// PresenceHandler handles presence, status, and thread-selection endpoints.
type PresenceHandler struct {
	presence *service.PresenceService
	logger   *logger.Logger
}

// NewPresenceHandler creates a new presence handler.
func NewPresenceHandler(presence *service.PresenceService, log *logger.Logger) *PresenceHandler {
	return &PresenceHandler{
		presence: presence,
		logger:   log,
	}
}

// Me handles GET /api/v1/me/presence
func (h *PresenceHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	writeJSON(w, http.StatusOK, h.presence.Get(userID))
}

// List handles GET /api/v1/presence
func (h *PresenceHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"users": h.presence.List(),
	})
}

// UpdateStatus handles PUT /api/v1/me/status
func (h *PresenceHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req model.UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	writeJSON(w, http.StatusOK, h.presence.UpdateStatus(userID, &req))
}

// UpdatePresence handles PUT /api/v1/me/presence
func (h *PresenceHandler) UpdatePresence(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req model.UpdatePresenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := h.presence.UpdatePresence(userID, req.Presence)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, p)
}

// GetThread handles GET /api/v1/me/thread
func (h *PresenceHandler) GetThread(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	writeJSON(w, http.StatusOK, h.presence.ThreadSelection(userID))
}

// OpenThread handles PUT /api/v1/me/thread
func (h *PresenceHandler) OpenThread(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req model.OpenThreadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ChannelID == "" || req.MessageID == "" {
		writeError(w, http.StatusBadRequest, "channel_id and message_id are required")
		return
	}

	writeJSON(w, http.StatusOK, h.presence.OpenThread(userID, req.ChannelID, req.MessageID))
}

// CloseThread handles DELETE /api/v1/me/thread
func (h *PresenceHandler) CloseThread(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	// Body is optional: a bare DELETE is an explicit close.
	req := model.CloseThreadRequest{Explicit: true}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	writeJSON(w, http.StatusOK, h.presence.CloseThread(userID, req.Explicit, req.Draft))
}
