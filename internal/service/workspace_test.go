package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huddlehq/workspace-chat/internal/model"
	"github.com/huddlehq/workspace-chat/internal/store"
	"github.com/huddlehq/workspace-chat/pkg/logger"
)

func TestCreateWorkspace(t *testing.T) {
	svc := NewWorkspaceService(store.NewMemoryStore(), nil, logger.NewNop())

	ws, err := svc.Create(context.Background(), "alice", &model.CreateWorkspaceRequest{Name: "Acme Corp"})
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", ws.Name)
	assert.Equal(t, "acmecorp", ws.Slug)
	assert.Equal(t, "alice", ws.OwnerID)
	assert.NotEmpty(t, ws.ID)

	_, err = svc.Create(context.Background(), "alice", &model.CreateWorkspaceRequest{Name: "   "})
	assert.ErrorIs(t, err, ErrWorkspaceNameEmpty)

	got, err := svc.Get(ws.ID)
	require.NoError(t, err)
	assert.Equal(t, ws.ID, got.ID)

	_, err = svc.Get("missing")
	assert.ErrorIs(t, err, ErrWorkspaceNotFound)
}

func TestConversationLazyCreation(t *testing.T) {
	svc := NewWorkspaceService(store.NewMemoryStore(), nil, logger.NewNop())
	ws, err := svc.Create(context.Background(), "alice", &model.CreateWorkspaceRequest{Name: "Acme"})
	require.NoError(t, err)

	conv, err := svc.Conversation(ws.ID)
	require.NoError(t, err)
	assert.Equal(t, ws.ID, conv.WorkspaceID())

	// The same instance comes back on repeat calls.
	again, err := svc.Conversation(ws.ID)
	require.NoError(t, err)
	assert.Same(t, conv, again)

	_, err = svc.Conversation("missing")
	assert.ErrorIs(t, err, ErrWorkspaceNotFound)
}

func TestWorkspacePersistenceRoundTrip(t *testing.T) {
	s := store.NewMemoryStore()
	log := logger.NewNop()

	svc := NewWorkspaceService(s, nil, log)
	ws, err := svc.Create(context.Background(), "alice", &model.CreateWorkspaceRequest{Name: "Acme"})
	require.NoError(t, err)

	restored := NewWorkspaceService(s, nil, log)
	list := restored.List()
	require.Len(t, list, 1)
	assert.Equal(t, ws.ID, list[0].ID)
	assert.Equal(t, "Acme", list[0].Name)
}
