package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/huddlehq/workspace-chat/internal/model"
	"github.com/huddlehq/workspace-chat/internal/store"
	"github.com/huddlehq/workspace-chat/pkg/logger"
)

// WorkspaceService manages the workspace list and hands out one
// ConversationService per workspace. Workspaces are never deleted.
type WorkspaceService struct {
	store  store.Store
	events EventPublisher
	logger *logger.Logger

	mu            sync.RWMutex
	workspaces    map[string]*model.Workspace
	conversations map[string]*ConversationService
}

// NewWorkspaceService creates the service and hydrates the workspace list
// from the store.
func NewWorkspaceService(s store.Store, events EventPublisher, log *logger.Logger) *WorkspaceService {
	svc := &WorkspaceService{
		store:         s,
		events:        events,
		logger:        log,
		workspaces:    make(map[string]*model.Workspace),
		conversations: make(map[string]*ConversationService),
	}

	var workspaces []model.Workspace
	if store.LoadJSON(s, log, store.WorkspacesKey(), &workspaces) {
		for i := range workspaces {
			ws := workspaces[i]
			svc.workspaces[ws.ID] = &ws
		}
	}

	return svc
}

// Create creates a workspace owned by ownerID.
func (s *WorkspaceService) Create(ctx context.Context, ownerID string, req *model.CreateWorkspaceRequest) (*model.Workspace, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrWorkspaceNameEmpty
	}

	slug := req.Slug
	if slug == "" {
		slug = model.NormalizeChannelName(name)
	}

	ws := &model.Workspace{
		ID:        uuid.Must(uuid.NewV7()).String(),
		Name:      name,
		Slug:      slug,
		OwnerID:   ownerID,
		CreatedAt: time.Now(),
	}

	s.mu.Lock()
	s.workspaces[ws.ID] = ws
	s.persistLocked()
	s.mu.Unlock()

	s.logger.Info("workspace created",
		zap.String("workspace_id", ws.ID),
		zap.String("slug", slug),
	)

	out := *ws
	return &out, nil
}

// List returns all workspaces, oldest first.
func (s *WorkspaceService) List() []model.Workspace {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Workspace, 0, len(s.workspaces))
	for _, ws := range s.workspaces {
		out = append(out, *ws)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Get returns one workspace by ID.
func (s *WorkspaceService) Get(workspaceID string) (*model.Workspace, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ws, ok := s.workspaces[workspaceID]
	if !ok {
		return nil, ErrWorkspaceNotFound
	}
	out := *ws
	return &out, nil
}

// Conversation returns the workspace's conversation service, creating and
// hydrating it on first use.
func (s *WorkspaceService) Conversation(workspaceID string) (*ConversationService, error) {
	s.mu.RLock()
	conv, ok := s.conversations[workspaceID]
	_, known := s.workspaces[workspaceID]
	s.mu.RUnlock()

	if ok {
		return conv, nil
	}
	if !known {
		return nil, ErrWorkspaceNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if conv, ok := s.conversations[workspaceID]; ok {
		return conv, nil
	}
	conv = NewConversationService(workspaceID, s.store, s.events, s.logger)
	s.conversations[workspaceID] = conv
	return conv, nil
}

func (s *WorkspaceService) persistLocked() {
	workspaces := make([]model.Workspace, 0, len(s.workspaces))
	for _, ws := range s.workspaces {
		workspaces = append(workspaces, *ws)
	}
	store.SaveJSON(s.store, s.logger, store.WorkspacesKey(), workspaces)
}
