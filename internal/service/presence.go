package service

import (
	"sync"

	"github.com/huddlehq/workspace-chat/internal/model"
)

// PresenceService tracks ephemeral per-user session state: presence,
// status line, and the currently open thread panel. Nothing here is
// persisted; records exist only for the lifetime of the process and are
// mutated exclusively through the owning user's requests.
type PresenceService struct {
	mu      sync.RWMutex
	users   map[string]*model.UserPresence
	threads map[string]model.ThreadSelection
}

// NewPresenceService creates an empty presence service.
func NewPresenceService() *PresenceService {
	return &PresenceService{
		users:   make(map[string]*model.UserPresence),
		threads: make(map[string]model.ThreadSelection),
	}
}

// Get returns a user's presence record. An unseen user is active with an
// empty status.
func (s *PresenceService) Get(userID string) model.UserPresence {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if p, ok := s.users[userID]; ok {
		return *p
	}
	return model.UserPresence{UserID: userID, Presence: model.PresenceActive}
}

// List returns every known presence record.
func (s *PresenceService) List() []model.UserPresence {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.UserPresence, 0, len(s.users))
	for _, p := range s.users {
		out = append(out, *p)
	}
	return out
}

// UpdateStatus sets a user's status line. The state holds until the next
// manual change; there is no automatic expiry sweep.
func (s *PresenceService) UpdateStatus(userID string, req *model.UpdateStatusRequest) model.UserPresence {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.recordLocked(userID)
	p.Status = model.Status{
		Text:      req.Text,
		Emoji:     req.Emoji,
		ExpiresAt: req.ExpiresAt,
	}
	return *p
}

// UpdatePresence sets a user's presence state.
func (s *PresenceService) UpdatePresence(userID string, presence model.Presence) (model.UserPresence, error) {
	if !presence.Valid() {
		return model.UserPresence{}, ErrInvalidPresence
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.recordLocked(userID)
	p.Presence = presence
	return *p, nil
}

// ThreadSelection returns the user's current thread selection.
func (s *PresenceService) ThreadSelection(userID string) model.ThreadSelection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.threads[userID]
}

// OpenThread opens the thread panel on a message, replacing any prior
// selection.
func (s *PresenceService) OpenThread(userID, channelID, messageID string) model.ThreadSelection {
	s.mu.Lock()
	defer s.mu.Unlock()

	sel := s.threads[userID].Open(channelID, messageID)
	s.threads[userID] = sel
	return sel
}

// CloseThread closes the thread panel. An implicit close with unsent draft
// text keeps the panel open.
func (s *PresenceService) CloseThread(userID string, explicit bool, draft string) model.ThreadSelection {
	s.mu.Lock()
	defer s.mu.Unlock()

	sel := s.threads[userID].Close(explicit, draft)
	s.threads[userID] = sel
	return sel
}

func (s *PresenceService) recordLocked(userID string) *model.UserPresence {
	p, ok := s.users[userID]
	if !ok {
		p = &model.UserPresence{UserID: userID, Presence: model.PresenceActive}
		s.users[userID] = p
	}
	return p
}
