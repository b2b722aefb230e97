package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/huddlehq/workspace-chat/internal/assist"
	"github.com/huddlehq/workspace-chat/internal/middleware"
	"github.com/huddlehq/workspace-chat/internal/model"
	"github.com/huddlehq/workspace-chat/internal/service"
	"github.com/huddlehq/workspace-chat/pkg/logger"
)

// AssistHandler handles composition assistance endpoints. All of them are
// best-effort: a degraded upstream shows up as a notice in the response
// body, never as an error status.
type AssistHandler struct {
	assist     *assist.Service
	workspaces *service.WorkspaceService
	logger     *logger.Logger
}

// NewAssistHandler creates a new assist handler.
func NewAssistHandler(assistSvc *assist.Service, workspaces *service.WorkspaceService, log *logger.Logger) *AssistHandler {
	return &AssistHandler{
		assist:     assistSvc,
		workspaces: workspaces,
		logger:     log,
	}
}

// RewriteRequest asks for a context-aware rewrite of a draft.
type RewriteRequest struct {
	ChannelID string `json:"channel_id"`
	Draft     string `json:"draft"`
}

// RewriteResponse carries the rewritten text. Text equals the draft when
// the upstream call failed.
type RewriteResponse struct {
	Text   string `json:"text"`
	Notice string `json:"notice,omitempty"`
}

// ToneRequest asks for a tone analysis of a draft.
type ToneRequest struct {
	ChannelID string `json:"channel_id"`
	Draft     string `json:"draft"`
}

// ToneResponse carries the analysis. Superseded is true when a newer
// request for the same input box arrived first; the client should ignore
// the response.
type ToneResponse struct {
	Analysis   *assist.ToneAnalysis `json:"analysis,omitempty"`
	Superseded bool                 `json:"superseded,omitempty"`
	Notice     string               `json:"notice,omitempty"`
}

// AnswerRequest asks the assistant a question over public workspace context.
type AnswerRequest struct {
	Query string `json:"query"`
}

// AnswerResponse carries the assistant's answer.
type AnswerResponse struct {
	Text   string `json:"text"`
	Notice string `json:"notice,omitempty"`
}

func (h *AssistHandler) conversation(w http.ResponseWriter, r *http.Request) *service.ConversationService {
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

// Rewrite handles POST .../assist/rewrite
func (h *AssistHandler) Rewrite(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	conv := h.conversation(w, r)
	if conv == nil {
		return
	}

	var req RewriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	channelName := req.ChannelID
	if ch, err := conv.GetChannel(req.ChannelID); err == nil {
		channelName = ch.Name
	}

	text, notice := h.assist.Rewrite(ctx, req.Draft, conv.GetMessages(req.ChannelID), channelName)
	writeJSON(w, http.StatusOK, &RewriteResponse{Text: text, Notice: notice})
}

// Tone handles POST .../assist/tone
func (h *AssistHandler) Tone(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	conv := h.conversation(w, r)
	if conv == nil {
		return
	}

	var req ToneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	channelName := req.ChannelID
	if ch, err := conv.GetChannel(req.ChannelID); err == nil {
		channelName = ch.Name
	}

	// One debounce key per input box: the same user typing in the same
	// channel supersedes their earlier keystrokes.
	key := middleware.GetUserID(ctx) + "/" + req.ChannelID

	analysis, ok, notice := h.assist.AnalyzeToneDebounced(ctx, key, req.Draft, conv.GetMessages(req.ChannelID), channelName)
	if !ok {
		writeJSON(w, http.StatusOK, &ToneResponse{Superseded: true})
		return
	}

	writeJSON(w, http.StatusOK, &ToneResponse{Analysis: &analysis, Notice: notice})
}

// Answer handles POST .../assist/answer
func (h *AssistHandler) Answer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	conv := h.conversation(w, r)
	if conv == nil {
		return
	}

	var req AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := middleware.ValidateQuery(req.Query); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Context assembly is the confidentiality boundary: only messages from
	// public channels, only pinned documents.
	publicMessages := conv.GetAllPublicChannelMessages()
	names := conv.ChannelNames()
	var pinnedDocs []model.Document
	for channelID := range names {
		pinnedDocs = append(pinnedDocs, conv.GetPinnedDocuments(channelID)...)
	}

	text, notice := h.assist.AnswerQuery(ctx, req.Query, publicMessages, names, pinnedDocs, conv.IsPrivateChannel)
	writeJSON(w, http.StatusOK, &AnswerResponse{Text: text, Notice: notice})
}
