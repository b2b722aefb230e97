package model

import (
	"time"
)

// Presence is a user's manually-set availability state. There is no
// automatic idle detection: the state holds until the next manual change.
type Presence string

const (
	PresenceActive  Presence = "active"
	PresenceAway    Presence = "away"
	PresenceDND     Presence = "dnd"
	PresenceOffline Presence = "offline"
)

// Valid reports whether p is a known presence state.
func (p Presence) Valid() bool {
	switch p {
	case PresenceActive, PresenceAway, PresenceDND, PresenceOffline:
		return true
	}
	return false
}

// Status is the free-text status line shown next to a user.
type Status struct {
	Text      string     `json:"text"`
	Emoji     string     `json:"emoji"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// UserPresence is the ephemeral per-user record. It is never persisted and
// only the owning user mutates it.
type UserPresence struct {
	UserID   string   `json:"user_id"`
	Presence Presence `json:"presence"`
	Status   Status   `json:"status"`
}

// UpdateStatusRequest sets the current user's status line.
type UpdateStatusRequest struct {
	Text      string     `json:"text"`
	Emoji     string     `json:"emoji"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// UpdatePresenceRequest sets the current user's presence state.
type UpdatePresenceRequest struct {
	Presence Presence `json:"presence"`
}
