package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/huddlehq/workspace-chat/internal/middleware"
	"github.com/huddlehq/workspace-chat/internal/model"
	"github.com/huddlehq/workspace-chat/internal/service"
	"github.com/huddlehq/workspace-chat/pkg/logger"
)

// ChannelHandler handles channel endpoints.
type ChannelHandler struct {
	workspaces *service.WorkspaceService
	logger     *logger.Logger
}

// NewChannelHandler creates a new channel handler.
func NewChannelHandler(workspaces *service.WorkspaceService, log *logger.Logger) *ChannelHandler {
	return &ChannelHandler{
		workspaces: workspaces,
		logger:     log,
	}
}

// conversation resolves the conversation service for the request's
// workspace, writing the error response on failure.
func (h *ChannelHandler) conversation(w http.ResponseWriter, r *http.Request) *service.ConversationService {
	workspaceID := chi.URLParam(r, "workspaceID")

	if !authorizedWorkspace(r, workspaceID) {
		writeError(w, http.StatusNotFound, "workspace not found")
		return nil
	}

	conv, err := h.workspaces.Conversation(workspaceID)
	if err != nil {
		writeError(w, http.StatusNotFound, "workspace not found")
		return nil
	}
	return conv
}

// Create handles POST /api/v1/workspaces/:workspaceID/channels
func (h *ChannelHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	conv := h.conversation(w, r)
	if conv == nil {
		return
	}

	var req model.CreateChannelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := middleware.ValidateChannelName(req.Name); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ch, err := conv.CreateChannel(ctx, middleware.GetUserID(ctx), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidChannelName) || errors.Is(err, service.ErrInvalidVisibility) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("failed to create channel")
		writeError(w, http.StatusInternalServerError, "failed to create channel")
		return
	}

	writeJSON(w, http.StatusCreated, ch)
}

// List handles GET /api/v1/workspaces/:workspaceID/channels
func (h *ChannelHandler) List(w http.ResponseWriter, r *http.Request) {
	conv := h.conversation(w, r)
	if conv == nil {
		return
	}

	channels := conv.ListChannels()
	writeJSON(w, http.StatusOK, &model.ListChannelsResponse{
		Channels: channels,
		Total:    len(channels),
	})
}

// Get handles GET /api/v1/workspaces/:workspaceID/channels/:channelID
func (h *ChannelHandler) Get(w http.ResponseWriter, r *http.Request) {
	conv := h.conversation(w, r)
	if conv == nil {
		return
	}

	ch, err := conv.GetChannel(chi.URLParam(r, "channelID"))
	if err != nil {
		writeError(w, http.StatusNotFound, "channel not found")
		return
	}

	writeJSON(w, http.StatusOK, ch)
}

// MarkRead handles POST /api/v1/workspaces/:workspaceID/channels/:channelID/read
func (h *ChannelHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	conv := h.conversation(w, r)
	if conv == nil {
		return
	}

	if err := conv.MarkChannelRead(chi.URLParam(r, "channelID")); err != nil {
		writeError(w, http.StatusNotFound, "channel not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
