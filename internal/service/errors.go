// Package service provides business logic for the workspace chat platform.
package service

import (
	"errors"
)

// Lookup and validation errors. Mutations on a missing target fail with a
// sentinel instead of silently doing nothing, so callers can tell "already
// absent" from "bug".
var (
	ErrWorkspaceNotFound  = errors.New("workspace not found")
	ErrChannelNotFound    = errors.New("channel not found")
	ErrMessageNotFound    = errors.New("message not found")
	ErrDocumentNotFound   = errors.New("document not found")
	ErrInvalidChannelName = errors.New("channel name is empty after normalization")
	ErrInvalidPresence    = errors.New("unknown presence state")
	ErrInvalidVisibility  = errors.New("unknown channel visibility")
	ErrEmptyMessageBody   = errors.New("message body cannot be empty")
	ErrWorkspaceNameEmpty = errors.New("workspace name cannot be empty")
)
