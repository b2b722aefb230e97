package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/huddlehq/workspace-chat/internal/assist"
	"github.com/huddlehq/workspace-chat/internal/middleware"
	"github.com/huddlehq/workspace-chat/internal/model"
	"github.com/huddlehq/workspace-chat/internal/service"
	"github.com/huddlehq/workspace-chat/pkg/logger"
)

// Identity the assistant posts replies under.
const (
	assistantUserID   = "assistant"
	assistantUserName = "Assistant"
)

// MessageHandler handles message, thread, reaction, and pin endpoints.
type MessageHandler struct {
	workspaces *service.WorkspaceService
	assist     *assist.Service
	logger     *logger.Logger
}

// NewMessageHandler creates a new message handler. assistSvc may be nil,
// which disables assistant mentions.
func NewMessageHandler(workspaces *service.WorkspaceService, assistSvc *assist.Service, log *logger.Logger) *MessageHandler {
	return &MessageHandler{
		workspaces: workspaces,
		assist:     assistSvc,
		logger:     log,
	}
}

func (h *MessageHandler) conversation(w http.ResponseWriter, r *http.Request) *service.ConversationService {
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

// List handles GET .../channels/:channelID/messages
func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	conv := h.conversation(w, r)
	if conv == nil {
		return
	}

	messages := conv.GetMessages(chi.URLParam(r, "channelID"))
	writeJSON(w, http.StatusOK, &model.ListMessagesResponse{
		Messages: messages,
		Total:    len(messages),
	})
}

// Send handles POST .../channels/:channelID/messages
func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	conv := h.conversation(w, r)
	if conv == nil {
		return
	}

	var req model.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := middleware.ValidateMessageBody(req.Body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	msg, err := conv.AddMessage(ctx,
		chi.URLParam(r, "channelID"),
		middleware.GetUserID(ctx),
		middleware.GetUserName(ctx),
		req.Body,
	)
	if err != nil {
		writeConversationError(w, h.logger, err, "failed to send message")
		return
	}

	// Mentioning the assistant gets an answer posted as a thread reply.
	if h.assist != nil && h.assist.Enabled() && assist.ContainsMention(req.Body, assist.DefaultMentionTrigger) {
		go h.answerMention(conv, msg.ChannelID, msg.ID, req.Body)
	}

	writeJSON(w, http.StatusCreated, &model.SendMessageResponse{Message: msg})
}

// answerMention answers an assistant mention in a thread reply under the
// triggering message. Context is restricted to public channels and pinned
// documents regardless of where the mention happened.
func (h *MessageHandler) answerMention(conv *service.ConversationService, channelID, messageID, body string) {
	query := assist.ExtractQuery(body, assist.DefaultMentionTrigger)
	if query == "" {
		return
	}

	ctx := context.Background()
	publicMessages := conv.GetAllPublicChannelMessages()
	names := conv.ChannelNames()
	var pinnedDocs []model.Document
	for id := range names {
		pinnedDocs = append(pinnedDocs, conv.GetPinnedDocuments(id)...)
	}

	answer, _ := h.assist.AnswerQuery(ctx, query, publicMessages, names, pinnedDocs, conv.IsPrivateChannel)
	if _, err := conv.AddReply(ctx, channelID, messageID, assistantUserID, assistantUserName, answer); err != nil {
		h.logger.Warn("failed to post assistant reply",
			zap.String("channel_id", channelID),
			zap.Error(err),
		)
	}
}

// pathMessageID validates the messageID path parameter. Message IDs are
// always service-generated UUIDs, so anything else is rejected up front.
func pathMessageID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "messageID")
	if err := middleware.ValidateID(id); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return "", false
	}
	return id, true
}

// ListReplies handles GET .../messages/:messageID/replies
func (h *MessageHandler) ListReplies(w http.ResponseWriter, r *http.Request) {
	conv := h.conversation(w, r)
	if conv == nil {
		return
	}
	messageID, ok := pathMessageID(w, r)
	if !ok {
		return
	}

	replies := conv.GetThreadReplies(chi.URLParam(r, "channelID"), messageID)
	writeJSON(w, http.StatusOK, &model.ListMessagesResponse{
		Messages: replies,
		Total:    len(replies),
	})
}

// Reply handles POST .../messages/:messageID/replies
func (h *MessageHandler) Reply(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	conv := h.conversation(w, r)
	if conv == nil {
		return
	}
	messageID, ok := pathMessageID(w, r)
	if !ok {
		return
	}

	var req model.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := middleware.ValidateMessageBody(req.Body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	reply, err := conv.AddReply(ctx,
		chi.URLParam(r, "channelID"),
		messageID,
		middleware.GetUserID(ctx),
		middleware.GetUserName(ctx),
		req.Body,
	)
	if err != nil {
		writeConversationError(w, h.logger, err, "failed to send reply")
		return
	}

	writeJSON(w, http.StatusCreated, &model.SendMessageResponse{Message: reply})
}

// AddReaction handles POST .../messages/:messageID/reactions
func (h *MessageHandler) AddReaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	conv := h.conversation(w, r)
	if conv == nil {
		return
	}
	messageID, ok := pathMessageID(w, r)
	if !ok {
		return
	}

	var req model.ReactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Emoji == "" {
		writeError(w, http.StatusBadRequest, "emoji is required")
		return
	}

	err := conv.AddReaction(ctx,
		chi.URLParam(r, "channelID"),
		messageID,
		req.Emoji,
		middleware.GetUserID(ctx),
	)
	if err != nil {
		writeConversationError(w, h.logger, err, "failed to add reaction")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RemoveReaction handles DELETE .../messages/:messageID/reactions/:emoji
func (h *MessageHandler) RemoveReaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	conv := h.conversation(w, r)
	if conv == nil {
		return
	}
	messageID, ok := pathMessageID(w, r)
	if !ok {
		return
	}

	err := conv.RemoveReaction(ctx,
		chi.URLParam(r, "channelID"),
		messageID,
		chi.URLParam(r, "emoji"),
		middleware.GetUserID(ctx),
	)
	if err != nil {
		writeConversationError(w, h.logger, err, "failed to remove reaction")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Pin handles PUT .../messages/:messageID/pin
func (h *MessageHandler) Pin(w http.ResponseWriter, r *http.Request) {
	h.setPin(w, r, true)
}

// Unpin handles DELETE .../messages/:messageID/pin
func (h *MessageHandler) Unpin(w http.ResponseWriter, r *http.Request) {
	h.setPin(w, r, false)
}

func (h *MessageHandler) setPin(w http.ResponseWriter, r *http.Request, pinned bool) {
	ctx := r.Context()
	conv := h.conversation(w, r)
	if conv == nil {
		return
	}

	channelID := chi.URLParam(r, "channelID")
	messageID, ok := pathMessageID(w, r)
	if !ok {
		return
	}

	var err error
	if pinned {
		err = conv.PinMessage(ctx, channelID, messageID)
	} else {
		err = conv.UnpinMessage(ctx, channelID, messageID)
	}
	if err != nil {
		writeConversationError(w, h.logger, err, "failed to update pin")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListPinned handles GET .../channels/:channelID/messages/pinned
func (h *MessageHandler) ListPinned(w http.ResponseWriter, r *http.Request) {
	conv := h.conversation(w, r)
	if conv == nil {
		return
	}

	pinned := conv.GetPinnedMessages(chi.URLParam(r, "channelID"))
	writeJSON(w, http.StatusOK, &model.ListMessagesResponse{
		Messages: pinned,
		Total:    len(pinned),
	})
}

// writeConversationError maps service errors to HTTP responses.
func writeConversationError(w http.ResponseWriter, log *logger.Logger, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrChannelNotFound):
		writeError(w, http.StatusNotFound, "channel not found")
	case errors.Is(err, service.ErrMessageNotFound):
		writeError(w, http.StatusNotFound, "message not found")
	case errors.Is(err, service.ErrDocumentNotFound):
		writeError(w, http.StatusNotFound, "document not found")
	case errors.Is(err, service.ErrEmptyMessageBody):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		log.Error(fallback)
		writeError(w, http.StatusInternalServerError, fallback)
	}
}
