// Package model defines data structures for the workspace chat platform.
package model

import (
	"strings"
	"time"
)

// MaxChannelNameLength is the longest allowed normalized channel name.
const MaxChannelNameLength = 21

// Workspace is the root scope for channels and members.
type Workspace struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	OwnerID   string    `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Visibility controls who can read a channel.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// Valid reports whether v is a known visibility.
func (v Visibility) Valid() bool {
	return v == VisibilityPublic || v == VisibilityPrivate
}

// Channel is a named conversation stream inside a workspace. The ID is
// assigned at creation and never changes.
type Channel struct {
	ID          string     `json:"id"`
	WorkspaceID string     `json:"workspace_id"`
	Name        string     `json:"name"`
	Visibility  Visibility `json:"visibility"`
	Description string     `json:"description,omitempty"`
	CreatedBy   string     `json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
	Unread      int        `json:"unread,omitempty"`
}

// Private reports whether the channel is private. The entity flag is the
// authoritative classification.
func (c *Channel) Private() bool {
	return c.Visibility == VisibilityPrivate
}

// NormalizeChannelName lowercases the name, strips every character outside
// [a-z0-9-_], and truncates to MaxChannelNameLength.
func NormalizeChannelName(name string) string {
	lower := strings.ToLower(strings.TrimSpace(name))
	var b strings.Builder
	for _, r := range lower {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}
	normalized := b.String()
	if len(normalized) > MaxChannelNameLength {
		normalized = normalized[:MaxChannelNameLength]
	}
	return normalized
}

// CreateWorkspaceRequest is the request to create a workspace.
type CreateWorkspaceRequest struct {
	Name string `json:"name"`
	Slug string `json:"slug,omitempty"`
}

// CreateChannelRequest is the request to create a channel.
type CreateChannelRequest struct {
	Name        string     `json:"name"`
	Visibility  Visibility `json:"visibility,omitempty"`
	Description string     `json:"description,omitempty"`
}

// ListChannelsResponse is the response for listing channels.
type ListChannelsResponse struct {
	Channels []Channel `json:"channels"`
	Total    int       `json:"total"`
}
