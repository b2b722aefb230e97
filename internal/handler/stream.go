package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/huddlehq/workspace-chat/internal/middleware"
	"github.com/huddlehq/workspace-chat/internal/model"
	natsclient "github.com/huddlehq/workspace-chat/internal/nats"
	"github.com/huddlehq/workspace-chat/internal/service"
	"github.com/huddlehq/workspace-chat/pkg/logger"
	"github.com/huddlehq/workspace-chat/pkg/metrics"
)

// StreamHandler handles the channel SSE stream. A connected client first
// receives the channel's current messages, then a change event whenever
// the channel mutates; it reacts by re-fetching the channel (events carry
// no deltas).
type StreamHandler struct {
	workspaces *service.WorkspaceService
	events     *natsclient.EventBus
	logger     *logger.Logger
}

// NewStreamHandler creates a new stream handler.
func NewStreamHandler(workspaces *service.WorkspaceService, events *natsclient.EventBus, log *logger.Logger) *StreamHandler {
	return &StreamHandler{
		workspaces: workspaces,
		events:     events,
		logger:     log,
	}
}

// Stream handles GET .../channels/:channelID/stream
func (h *StreamHandler) Stream(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	workspaceID := chi.URLParam(r, "workspaceID")
	channelID := chi.URLParam(r, "channelID")

	if !authorizedWorkspace(r, workspaceID) {
		writeError(w, http.StatusNotFound, "workspace not found")
		return
	}

	conv, err := h.workspaces.Conversation(workspaceID)
	if err != nil {
		writeError(w, http.StatusNotFound, "workspace not found")
		return
	}
	if _, err := conv.GetChannel(channelID); err != nil {
		writeError(w, http.StatusNotFound, "channel not found")
		return
	}

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	// The server's write timeout would cut a long-lived stream off;
	// clear the deadline for this connection only.
	if err := http.NewResponseController(w).SetWriteDeadline(time.Time{}); err != nil {
		h.logger.Warn("failed to clear stream write deadline", zap.Error(err))
	}

	metrics.IncrementSSEConnections()
	defer metrics.DecrementSSEConnections()

	// Subscribe before the snapshot so no mutation lands unseen between
	// the two. Duplicate notifications are harmless: clients reload.
	eventCh := make(chan model.ChannelEvent, 16)
	if h.events != nil {
		err := h.events.SubscribeChannel(ctx, workspaceID, channelID, func(event model.ChannelEvent) {
			select {
			case eventCh <- event:
			default:
				// Slow consumer: drop the notification. The next event or
				// the client's own reload covers the gap.
			}
		})
		if err != nil {
			h.logger.Error("failed to subscribe to channel events",
				zap.String("channel_id", channelID), zap.Error(err))
			sendSSEEvent(w, flusher, "error", &model.ErrorEvent{
				Code:    "subscribe_error",
				Message: "live updates unavailable",
			})
		}
	}

	sendSSEEvent(w, flusher, "connected", map[string]string{
		"channel_id": channelID,
	})

	// Initial snapshot
	messages := conv.GetMessages(channelID)
	sendSSEEvent(w, flusher, "snapshot", &model.ListMessagesResponse{
		Messages: messages,
		Total:    len(messages),
	})

	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			h.logger.Info("SSE client disconnected",
				zap.String("channel_id", channelID),
				zap.String("correlation_id", middleware.GetCorrelationID(ctx)))
			return

		case event := <-eventCh:
			sendSSEEvent(w, flusher, "channel_changed", event)

		case <-heartbeat.C:
			sendSSEEvent(w, flusher, "heartbeat", &model.HeartbeatEvent{
				Timestamp: time.Now(),
			})
		}
	}
}

func sendSSEEvent(w http.ResponseWriter, flusher http.Flusher, event string, data interface{}) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "event: %s\n", event)
	fmt.Fprintf(w, "data: %s\n\n", jsonData)
	flusher.Flush()

	return nil
}
