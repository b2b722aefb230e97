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

// DocumentHandler handles channel document endpoints.
type DocumentHandler struct {
	workspaces *service.WorkspaceService
	logger     *logger.Logger
}

// NewDocumentHandler creates a new document handler.
func NewDocumentHandler(workspaces *service.WorkspaceService, log *logger.Logger) *DocumentHandler {
	return &DocumentHandler{
		workspaces: workspaces,
		logger:     log,
	}
}

func (h *DocumentHandler) conversation(w http.ResponseWriter, r *http.Request) *service.ConversationService {
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

// Add handles POST .../channels/:channelID/documents
func (h *DocumentHandler) Add(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	conv := h.conversation(w, r)
	if conv == nil {
		return
	}

	var req model.AddDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title == "" || req.ContentRef == "" {
		writeError(w, http.StatusBadRequest, "title and content_ref are required")
		return
	}

	doc, err := conv.AddDocument(ctx, chi.URLParam(r, "channelID"), middleware.GetUserID(ctx), &req)
	if err != nil {
		writeConversationError(w, h.logger, err, "failed to add document")
		return
	}

	writeJSON(w, http.StatusCreated, doc)
}

// List handles GET .../channels/:channelID/documents
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	conv := h.conversation(w, r)
	if conv == nil {
		return
	}

	docs := conv.GetDocuments(chi.URLParam(r, "channelID"))
	writeJSON(w, http.StatusOK, &model.ListDocumentsResponse{
		Documents: docs,
		Total:     len(docs),
	})
}

// ListPinned handles GET .../channels/:channelID/documents/pinned
func (h *DocumentHandler) ListPinned(w http.ResponseWriter, r *http.Request) {
	conv := h.conversation(w, r)
	if conv == nil {
		return
	}

	docs := conv.GetPinnedDocuments(chi.URLParam(r, "channelID"))
	writeJSON(w, http.StatusOK, &model.ListDocumentsResponse{
		Documents: docs,
		Total:     len(docs),
	})
}

// Pin handles PUT .../documents/:documentID/pin
func (h *DocumentHandler) Pin(w http.ResponseWriter, r *http.Request) {
	h.setPin(w, r, true)
}

// Unpin handles DELETE .../documents/:documentID/pin
func (h *DocumentHandler) Unpin(w http.ResponseWriter, r *http.Request) {
	h.setPin(w, r, false)
}

func (h *DocumentHandler) setPin(w http.ResponseWriter, r *http.Request, pinned bool) {
	ctx := r.Context()
	conv := h.conversation(w, r)
	if conv == nil {
		return
	}

	channelID := chi.URLParam(r, "channelID")
	documentID := chi.URLParam(r, "documentID")
	if err := middleware.ValidateID(documentID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var err error
	if pinned {
		err = conv.PinDocument(ctx, channelID, documentID)
	} else {
		err = conv.UnpinDocument(ctx, channelID, documentID)
	}
	if err != nil {
		writeConversationError(w, h.logger, err, "failed to update document pin")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
