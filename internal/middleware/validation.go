package middleware

import (
	"errors"
	"unicode/utf8"

	"github.com/google/uuid"
)

// ValidateMessageBody validates a message or reply body.
func ValidateMessageBody(body string) error {
	if len(body) == 0 {
		return errors.New("body cannot be empty")
	}
	if len(body) > 100000 { // ~100KB limit
		return errors.New("body exceeds maximum length")
	}
	if !utf8.ValidString(body) {
		return errors.New("body must be valid UTF-8")
	}
	return nil
}

// ValidateID validates an entity ID (channel, message, document).
func ValidateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errors.New("invalid ID format")
	}
	return nil
}

// ValidateWorkspaceID validates a workspace ID.
func ValidateWorkspaceID(id string) error {
	if len(id) == 0 {
		return errors.New("workspace ID cannot be empty")
	}
	if len(id) > 64 {
		return errors.New("workspace ID exceeds maximum length")
	}
	return nil
}

// ValidateChannelName validates a raw channel name before normalization.
func ValidateChannelName(name string) error {
	if len(name) == 0 {
		return errors.New("channel name cannot be empty")
	}
	if len(name) > 256 {
		return errors.New("channel name exceeds maximum length")
	}
	if !utf8.ValidString(name) {
		return errors.New("channel name must be valid UTF-8")
	}
	return nil
}

// ValidateQuery validates an assistant query.
func ValidateQuery(query string) error {
	if len(query) == 0 {
		return errors.New("query cannot be empty")
	}
	if len(query) > 4000 {
		return errors.New("query exceeds maximum length")
	}
	return nil
}
