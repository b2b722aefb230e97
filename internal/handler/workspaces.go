// Package handler provides HTTP handlers for the API.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/huddlehq/workspace-chat/internal/middleware"
	"github.com/huddlehq/workspace-chat/internal/model"
	"github.com/huddlehq/workspace-chat/internal/service"
	"github.com/huddlehq/workspace-chat/pkg/logger"
)

// WorkspaceHandler handles workspace endpoints.
type WorkspaceHandler struct {
	workspaces *service.WorkspaceService
	logger     *logger.Logger
}

// NewWorkspaceHandler creates a new workspace handler.
func NewWorkspaceHandler(workspaces *service.WorkspaceService, log *logger.Logger) *WorkspaceHandler {
	return &WorkspaceHandler{
		workspaces: workspaces,
		logger:     log,
	}
}

// Create handles POST /api/v1/workspaces
func (h *WorkspaceHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req model.CreateWorkspaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ws, err := h.workspaces.Create(ctx, userID, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, ws)
}

// List handles GET /api/v1/workspaces
func (h *WorkspaceHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"workspaces": h.workspaces.List(),
	})
}

// Get handles GET /api/v1/workspaces/:workspaceID
func (h *WorkspaceHandler) Get(w http.ResponseWriter, r *http.Request) {
	workspaceID := chi.URLParam(r, "workspaceID")

	if !authorizedWorkspace(r, workspaceID) {
		writeError(w, http.StatusNotFound, "workspace not found")
		return
	}

	ws, err := h.workspaces.Get(workspaceID)
	if err != nil {
		writeError(w, http.StatusNotFound, "workspace not found")
		return
	}

	writeJSON(w, http.StatusOK, ws)
}

// authorizedWorkspace checks the path workspace against the token's
// workspace claim. An empty claim means the token is not workspace-scoped.
// Malformed workspace IDs read as not found rather than forbidden.
func authorizedWorkspace(r *http.Request, workspaceID string) bool {
	if middleware.ValidateWorkspaceID(workspaceID) != nil {
		return false
	}
	claim := middleware.GetWorkspaceID(r.Context())
	return claim == "" || claim == workspaceID
}
