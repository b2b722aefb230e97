// Package store provides the durability layer for conversation state.
//
// State is persisted as whole JSON documents keyed by (workspace scope,
// data kind): every mutation re-serializes the full scope. That is a
// deliberate simplicity tradeoff acceptable at small data volumes.
package store

import (
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/huddlehq/workspace-chat/pkg/logger"
	"github.com/huddlehq/workspace-chat/pkg/metrics"
)

// Store is a key-value blob store. Implementations must tolerate concurrent
// callers.
type Store interface {
	// Get returns the value for key and whether it exists.
	Get(key string) ([]byte, bool, error)

	// Put overwrites the value for key.
	Put(key string, value []byte) error

	// Close releases underlying resources.
	Close() error
}

// Scope keys. One JSON document per (workspace, kind) pair.

// MessagesKey is the scope key for a workspace's channel message map.
func MessagesKey(workspaceID string) string {
	return "messages/" + workspaceID
}

// DocumentsKey is the scope key for a workspace's channel document map.
func DocumentsKey(workspaceID string) string {
	return "documents/" + workspaceID
}

// ChannelsKey is the scope key for a workspace's channel list.
func ChannelsKey(workspaceID string) string {
	return "channels/" + workspaceID
}

// WorkspacesKey is the scope key for the workspace list.
func WorkspacesKey() string {
	return "workspaces"
}

// LoadJSON reads and decodes the document at key into v. It fails soft: a
// missing key leaves v untouched and returns false; a read or decode failure
// is logged and reported as absent, never returned to the caller.
func LoadJSON(s Store, log *logger.Logger, key string, v any) bool {
	data, ok, err := s.Get(key)
	if err != nil {
		log.Warn("store read failed, treating scope as empty",
			zap.String("key", key), zap.Error(err))
		metrics.StoreErrorsTotal.WithLabelValues("read").Inc()
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		log.Warn("corrupt scope document, treating scope as empty",
			zap.String("key", key), zap.Error(err))
		metrics.StoreErrorsTotal.WithLabelValues("decode").Inc()
		return false
	}
	return true
}

// SaveJSON serializes v and overwrites the document at key. It fails soft:
// a write failure is logged and swallowed so the in-memory state stays
// authoritative for the session.
func SaveJSON(s Store, log *logger.Logger, key string, v any) {
	start := time.Now()

	data, err := json.Marshal(v)
	if err != nil {
		log.Error("failed to serialize scope", zap.String("key", key), zap.Error(err))
		metrics.StoreErrorsTotal.WithLabelValues("encode").Inc()
		return
	}

	if err := s.Put(key, data); err != nil {
		log.Error("store write failed, in-memory state retained",
			zap.String("key", key), zap.Error(err))
		metrics.StoreErrorsTotal.WithLabelValues("write").Inc()
		return
	}

	metrics.StoreWriteDuration.WithLabelValues(scopeKind(key)).Observe(time.Since(start).Seconds())
}

// scopeKind strips the workspace component so metric labels stay bounded.
func scopeKind(key string) string {
	for i := 0; i < len(key); i++ {
		if key[i] == '/' {
			return key[:i]
		}
	}
	return key
}
