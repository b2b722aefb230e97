package model

import (
	"time"
)

// Document is a file attached to a channel, independent of any message.
// ContentRef points at the stored blob (URL or object key); the platform
// never inlines blob bytes into conversation state.
type Document struct {
	ID         string    `json:"id"`
	ChannelID  string    `json:"channel_id"`
	Title      string    `json:"title"`
	ContentRef string    `json:"content_ref"`
	MimeType   string    `json:"mime_type"`
	Size       int64     `json:"size"`
	UploadedBy string    `json:"uploaded_by"`
	UploadedAt time.Time `json:"uploaded_at"`
	Pinned     bool      `json:"pinned,omitempty"`
}

// AddDocumentRequest is the request to attach a document to a channel.
type AddDocumentRequest struct {
	Title      string `json:"title"`
	ContentRef string `json:"content_ref"`
	MimeType   string `json:"mime_type"`
	Size       int64  `json:"size"`
}

// ListDocumentsResponse is the response for listing channel documents.
type ListDocumentsResponse struct {
	Documents []Document `json:"documents"`
	Total     int        `json:"total"`
}
