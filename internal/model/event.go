package model

import (
	"time"
)

// EventKind classifies a channel change event.
type EventKind string

const (
	EventMessageAdded   EventKind = "message_added"
	EventReplyAdded     EventKind = "reply_added"
	EventReactionChange EventKind = "reaction_changed"
	EventPinChange      EventKind = "pin_changed"
	EventDocumentAdded  EventKind = "document_added"
)

// ChannelEvent notifies subscribers that a channel's state changed.
// Consumers reload the channel; events carry no payload delta.
type ChannelEvent struct {
	ID          string    `json:"id"`
	Kind        EventKind `json:"kind"`
	WorkspaceID string    `json:"workspace_id"`
	ChannelID   string    `json:"channel_id"`
	MessageID   string    `json:"message_id,omitempty"`
	At          time.Time `json:"at"`
}

// HeartbeatEvent keeps an SSE connection alive.
type HeartbeatEvent struct {
	Timestamp time.Time `json:"timestamp"`
}

// ErrorEvent reports a stream-side failure to an SSE client.
type ErrorEvent struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
