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
	"github.com/huddlehq/workspace-chat/pkg/metrics"
)

// EventPublisher receives channel change notifications. Publishing is
// best-effort: a failure never fails the mutation that produced the event.
type EventPublisher interface {
	Publish(ctx context.Context, event *model.ChannelEvent) error
}

// ConversationService is the single source of truth for one workspace's
// channels, messages, threads, reactions, pins, and documents. Every
// mutation goes through it: it updates the in-memory state, writes the full
// scope through to the store, and emits a change event.
type ConversationService struct {
	workspaceID string
	store       store.Store
	events      EventPublisher
	logger      *logger.Logger

	mu        sync.RWMutex
	channels  map[string]*model.Channel
	messages  map[string][]model.Message
	documents map[string][]model.Document
}

// NewConversationService creates the service for one workspace and hydrates
// prior state from the store. Corrupt or missing scope documents hydrate as
// empty: startup never fails on bad persisted state.
func NewConversationService(workspaceID string, s store.Store, events EventPublisher, log *logger.Logger) *ConversationService {
	svc := &ConversationService{
		workspaceID: workspaceID,
		store:       s,
		events:      events,
		logger:      log,
		channels:    make(map[string]*model.Channel),
		messages:    make(map[string][]model.Message),
		documents:   make(map[string][]model.Document),
	}

	var channels []model.Channel
	if store.LoadJSON(s, log, store.ChannelsKey(workspaceID), &channels) {
		for i := range channels {
			ch := channels[i]
			svc.channels[ch.ID] = &ch
		}
	}
	store.LoadJSON(s, log, store.MessagesKey(workspaceID), &svc.messages)
	store.LoadJSON(s, log, store.DocumentsKey(workspaceID), &svc.documents)

	return svc
}

// WorkspaceID returns the workspace this service owns.
func (s *ConversationService) WorkspaceID() string {
	return s.workspaceID
}

// CreateChannel creates a channel with a normalized name. The channel ID is
// assigned here and never changes.
func (s *ConversationService) CreateChannel(ctx context.Context, creatorID string, req *model.CreateChannelRequest) (*model.Channel, error) {
	name := model.NormalizeChannelName(req.Name)
	if name == "" {
		return nil, ErrInvalidChannelName
	}

	visibility := req.Visibility
	if visibility == "" {
		visibility = model.VisibilityPublic
	}
	if !visibility.Valid() {
		return nil, ErrInvalidVisibility
	}

	ch := &model.Channel{
		ID:          uuid.Must(uuid.NewV7()).String(),
		WorkspaceID: s.workspaceID,
		Name:        name,
		Visibility:  visibility,
		Description: req.Description,
		CreatedBy:   creatorID,
		CreatedAt:   time.Now(),
	}

	s.mu.Lock()
	s.channels[ch.ID] = ch
	s.persistChannelsLocked()
	s.mu.Unlock()

	metrics.ChannelsTotal.WithLabelValues(s.workspaceID, string(visibility)).Inc()
	s.logger.Info("channel created",
		zap.String("workspace_id", s.workspaceID),
		zap.String("channel_id", ch.ID),
		zap.String("name", name),
	)

	out := *ch
	return &out, nil
}

// ListChannels returns all channels, oldest first.
func (s *ConversationService) ListChannels() []model.Channel {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Channel, 0, len(s.channels))
	for _, ch := range s.channels {
		out = append(out, *ch)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// GetChannel returns one channel by ID.
func (s *ConversationService) GetChannel(channelID string) (*model.Channel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ch, ok := s.channels[channelID]
	if !ok {
		return nil, ErrChannelNotFound
	}
	out := *ch
	return &out, nil
}

// MarkChannelRead resets a channel's unread counter.
func (s *ConversationService) MarkChannelRead(channelID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch, ok := s.channels[channelID]
	if !ok {
		return ErrChannelNotFound
	}
	ch.Unread = 0
	s.persistChannelsLocked()
	return nil
}

// IsPrivateChannel classifies a channel. The entity's visibility flag is
// authoritative. For a channel ID with no entity (legacy persisted state),
// the "@" direct-message naming convention is the fallback heuristic.
func (s *ConversationService) IsPrivateChannel(channelID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isPrivateLocked(channelID)
}

func (s *ConversationService) isPrivateLocked(channelID string) bool {
	if ch, ok := s.channels[channelID]; ok {
		return ch.Private()
	}
	name := channelID
	if i := strings.LastIndex(channelID, "/"); i >= 0 {
		name = channelID[i+1:]
	}
	return strings.HasPrefix(name, "@")
}

// AddMessage appends a message to a channel. Messages are append-only and
// chronological by construction; the body is immutable once sent.
func (s *ConversationService) AddMessage(ctx context.Context, channelID, authorID, authorName, body string) (*model.Message, error) {
	if strings.TrimSpace(body) == "" {
		return nil, ErrEmptyMessageBody
	}

	msg := model.Message{
		ID:                 uuid.Must(uuid.NewV7()).String(),
		ChannelID:          channelID,
		AuthorID:           authorID,
		AuthorName:         authorName,
		Body:               body,
		CreatedAt:          time.Now(),
		Reactions:          []model.Reaction{},
		Replies:            []model.Message{},
		ThreadParticipants: []string{},
	}

	s.mu.Lock()
	ch, ok := s.channels[channelID]
	if !ok {
		s.mu.Unlock()
		return nil, ErrChannelNotFound
	}
	s.messages[channelID] = append(s.messages[channelID], msg)
	ch.Unread++
	s.persistMessagesLocked()
	s.persistChannelsLocked()
	s.mu.Unlock()

	metrics.MessagesTotal.WithLabelValues(s.workspaceID, "message").Inc()
	s.publish(ctx, model.EventMessageAdded, channelID, msg.ID)

	return &msg, nil
}

// AddReply appends a reply under a parent message, keeping the reply count
// and thread participant set in sync. Replies are flat: a reply cannot have
// replies of its own.
func (s *ConversationService) AddReply(ctx context.Context, channelID, parentMessageID, authorID, authorName, body string) (*model.Message, error) {
	if strings.TrimSpace(body) == "" {
		return nil, ErrEmptyMessageBody
	}

	reply := model.Message{
		ID:                 uuid.Must(uuid.NewV7()).String(),
		ChannelID:          channelID,
		AuthorID:           authorID,
		AuthorName:         authorName,
		Body:               body,
		CreatedAt:          time.Now(),
		Reactions:          []model.Reaction{},
		Replies:            []model.Message{},
		ThreadParticipants: []string{},
	}

	s.mu.Lock()
	parent := s.findTopLevelLocked(channelID, parentMessageID)
	if parent == nil {
		s.mu.Unlock()
		return nil, ErrMessageNotFound
	}
	parent.Replies = append(parent.Replies, reply)
	parent.ReplyCount = len(parent.Replies)
	parent.ThreadParticipants = addParticipant(parent.ThreadParticipants, authorID)
	s.persistMessagesLocked()
	s.mu.Unlock()

	metrics.MessagesTotal.WithLabelValues(s.workspaceID, "reply").Inc()
	s.publish(ctx, model.EventReplyAdded, channelID, parentMessageID)

	return &reply, nil
}

// GetMessages returns a channel's top-level messages in send order. A
// channel with no recorded activity yields an empty slice.
func (s *ConversationService) GetMessages(channelID string) []model.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyMessages(s.messages[channelID])
}

// GetThreadReplies returns the replies of one message, empty if the parent
// does not resolve.
func (s *ConversationService) GetThreadReplies(channelID, parentMessageID string) []model.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.messages[channelID] {
		if s.messages[channelID][i].ID == parentMessageID {
			return copyMessages(s.messages[channelID][i].Replies)
		}
	}
	return []model.Message{}
}

// GetAllPublicChannelMessages returns every public channel's messages. This
// is the access-control boundary for composition assistance context: private
// channel content must never cross it.
func (s *ConversationService) GetAllPublicChannelMessages() map[string][]model.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string][]model.Message)
	for channelID, msgs := range s.messages {
		if s.isPrivateLocked(channelID) {
			continue
		}
		if len(msgs) == 0 {
			continue
		}
		out[channelID] = copyMessages(msgs)
	}
	return out
}

// ChannelNames returns a channel-ID-to-name map for public channels.
func (s *ConversationService) ChannelNames() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]string, len(s.channels))
	for id, ch := range s.channels {
		if ch.Private() {
			continue
		}
		out[id] = ch.Name
	}
	return out
}

// AddReaction records a user's emoji reaction on a message or reply. A
// repeat reaction by the same user is a no-op.
func (s *ConversationService) AddReaction(ctx context.Context, channelID, messageID, emoji, userID string) error {
	s.mu.Lock()
	msg := s.findMessageLocked(channelID, messageID)
	if msg == nil {
		s.mu.Unlock()
		return ErrMessageNotFound
	}

	changed := false
	found := false
	for i := range msg.Reactions {
		if msg.Reactions[i].Emoji != emoji {
			continue
		}
		found = true
		if !containsUser(msg.Reactions[i].Users, userID) {
			msg.Reactions[i].Users = append(msg.Reactions[i].Users, userID)
			msg.Reactions[i].Count = len(msg.Reactions[i].Users)
			changed = true
		}
		break
	}
	if !found {
		msg.Reactions = append(msg.Reactions, model.Reaction{
			Emoji: emoji,
			Users: []string{userID},
			Count: 1,
		})
		changed = true
	}

	if changed {
		s.persistMessagesLocked()
	}
	s.mu.Unlock()

	if changed {
		metrics.ReactionsTotal.WithLabelValues(s.workspaceID, "add").Inc()
		s.publish(ctx, model.EventReactionChange, channelID, messageID)
	}
	return nil
}

// RemoveReaction drops a user's reaction. When the last user leaves, the
// reaction entry is removed entirely. Removing a reaction the user never
// made is a no-op.
func (s *ConversationService) RemoveReaction(ctx context.Context, channelID, messageID, emoji, userID string) error {
	s.mu.Lock()
	msg := s.findMessageLocked(channelID, messageID)
	if msg == nil {
		s.mu.Unlock()
		return ErrMessageNotFound
	}

	changed := false
	for i := range msg.Reactions {
		if msg.Reactions[i].Emoji != emoji || !containsUser(msg.Reactions[i].Users, userID) {
			continue
		}
		users := msg.Reactions[i].Users[:0]
		for _, u := range msg.Reactions[i].Users {
			if u != userID {
				users = append(users, u)
			}
		}
		msg.Reactions[i].Users = users
		msg.Reactions[i].Count = len(users)
		if len(users) == 0 {
			msg.Reactions = append(msg.Reactions[:i], msg.Reactions[i+1:]...)
		}
		changed = true
		break
	}

	if changed {
		s.persistMessagesLocked()
	}
	s.mu.Unlock()

	if changed {
		metrics.ReactionsTotal.WithLabelValues(s.workspaceID, "remove").Inc()
		s.publish(ctx, model.EventReactionChange, channelID, messageID)
	}
	return nil
}

// PinMessage marks a message as pinned.
func (s *ConversationService) PinMessage(ctx context.Context, channelID, messageID string) error {
	return s.setMessagePin(ctx, channelID, messageID, true)
}

// UnpinMessage clears a message's pinned flag.
func (s *ConversationService) UnpinMessage(ctx context.Context, channelID, messageID string) error {
	return s.setMessagePin(ctx, channelID, messageID, false)
}

func (s *ConversationService) setMessagePin(ctx context.Context, channelID, messageID string, pinned bool) error {
	s.mu.Lock()
	msg := s.findMessageLocked(channelID, messageID)
	if msg == nil {
		s.mu.Unlock()
		return ErrMessageNotFound
	}
	changed := msg.Pinned != pinned
	msg.Pinned = pinned
	if changed {
		s.persistMessagesLocked()
	}
	s.mu.Unlock()

	if changed {
		s.publish(ctx, model.EventPinChange, channelID, messageID)
	}
	return nil
}

// GetPinnedMessages returns a channel's pinned top-level messages.
func (s *ConversationService) GetPinnedMessages(channelID string) []model.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Message
	for i := range s.messages[channelID] {
		if s.messages[channelID][i].Pinned {
			out = append(out, s.messages[channelID][i])
		}
	}
	return copyMessages(out)
}

// AddDocument attaches a document to a channel. No dedup is attempted.
func (s *ConversationService) AddDocument(ctx context.Context, channelID, uploadedBy string, req *model.AddDocumentRequest) (*model.Document, error) {
	doc := model.Document{
		ID:         uuid.Must(uuid.NewV7()).String(),
		ChannelID:  channelID,
		Title:      req.Title,
		ContentRef: req.ContentRef,
		MimeType:   req.MimeType,
		Size:       req.Size,
		UploadedBy: uploadedBy,
		UploadedAt: time.Now(),
	}

	s.mu.Lock()
	if _, ok := s.channels[channelID]; !ok {
		s.mu.Unlock()
		return nil, ErrChannelNotFound
	}
	s.documents[channelID] = append(s.documents[channelID], doc)
	s.persistDocumentsLocked()
	s.mu.Unlock()

	s.publish(ctx, model.EventDocumentAdded, channelID, "")
	return &doc, nil
}

// GetDocuments returns a channel's documents in upload order.
func (s *ConversationService) GetDocuments(channelID string) []model.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Document, len(s.documents[channelID]))
	copy(out, s.documents[channelID])
	return out
}

// GetPinnedDocuments returns only the pinned documents of a channel. This
// is the second confidentiality filter for assistance context: unpinned
// documents never reach the completion service.
func (s *ConversationService) GetPinnedDocuments(channelID string) []model.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []model.Document{}
	for _, doc := range s.documents[channelID] {
		if doc.Pinned {
			out = append(out, doc)
		}
	}
	return out
}

// PinDocument marks a document as pinned.
func (s *ConversationService) PinDocument(ctx context.Context, channelID, documentID string) error {
	return s.setDocumentPin(ctx, channelID, documentID, true)
}

// UnpinDocument clears a document's pinned flag.
func (s *ConversationService) UnpinDocument(ctx context.Context, channelID, documentID string) error {
	return s.setDocumentPin(ctx, channelID, documentID, false)
}

func (s *ConversationService) setDocumentPin(ctx context.Context, channelID, documentID string, pinned bool) error {
	s.mu.Lock()
	var doc *model.Document
	for i := range s.documents[channelID] {
		if s.documents[channelID][i].ID == documentID {
			doc = &s.documents[channelID][i]
			break
		}
	}
	if doc == nil {
		s.mu.Unlock()
		return ErrDocumentNotFound
	}
	changed := doc.Pinned != pinned
	doc.Pinned = pinned
	if changed {
		s.persistDocumentsLocked()
	}
	s.mu.Unlock()

	if changed {
		s.publish(ctx, model.EventPinChange, channelID, "")
	}
	return nil
}

// findTopLevelLocked returns a pointer into the channel's top-level slice.
func (s *ConversationService) findTopLevelLocked(channelID, messageID string) *model.Message {
	msgs := s.messages[channelID]
	for i := range msgs {
		if msgs[i].ID == messageID {
			return &msgs[i]
		}
	}
	return nil
}

// findMessageLocked resolves a top-level message or a reply one level deep.
func (s *ConversationService) findMessageLocked(channelID, messageID string) *model.Message {
	msgs := s.messages[channelID]
	for i := range msgs {
		if msgs[i].ID == messageID {
			return &msgs[i]
		}
		for j := range msgs[i].Replies {
			if msgs[i].Replies[j].ID == messageID {
				return &msgs[i].Replies[j]
			}
		}
	}
	return nil
}

func (s *ConversationService) persistMessagesLocked() {
	store.SaveJSON(s.store, s.logger, store.MessagesKey(s.workspaceID), s.messages)
}

func (s *ConversationService) persistDocumentsLocked() {
	store.SaveJSON(s.store, s.logger, store.DocumentsKey(s.workspaceID), s.documents)
}

func (s *ConversationService) persistChannelsLocked() {
	channels := make([]model.Channel, 0, len(s.channels))
	for _, ch := range s.channels {
		channels = append(channels, *ch)
	}
	sort.Slice(channels, func(i, j int) bool {
		return channels[i].CreatedAt.Before(channels[j].CreatedAt)
	})
	store.SaveJSON(s.store, s.logger, store.ChannelsKey(s.workspaceID), channels)
}

func (s *ConversationService) publish(ctx context.Context, kind model.EventKind, channelID, messageID string) {
	if s.events == nil {
		return
	}
	event := &model.ChannelEvent{
		ID:          uuid.Must(uuid.NewV7()).String(),
		Kind:        kind,
		WorkspaceID: s.workspaceID,
		ChannelID:   channelID,
		MessageID:   messageID,
		At:          time.Now(),
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish channel event",
			zap.String("channel_id", channelID),
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
	}
}

// copyMessages deep-copies a message slice. Snapshots escape the lock, so
// they must not share Reactions, Replies, or ThreadParticipants backing
// arrays with service state that later mutations rewrite in place.
func copyMessages(msgs []model.Message) []model.Message {
	out := make([]model.Message, len(msgs))
	for i := range msgs {
		out[i] = copyMessage(&msgs[i])
	}
	return out
}

func copyMessage(msg *model.Message) model.Message {
	out := *msg
	if msg.Reactions != nil {
		out.Reactions = make([]model.Reaction, len(msg.Reactions))
		for i, re := range msg.Reactions {
			re.Users = append([]string(nil), re.Users...)
			out.Reactions[i] = re
		}
	}
	if msg.Replies != nil {
		out.Replies = copyMessages(msg.Replies)
	}
	if msg.ThreadParticipants != nil {
		out.ThreadParticipants = append([]string(nil), msg.ThreadParticipants...)
	}
	return out
}

func containsUser(users []string, userID string) bool {
	for _, u := range users {
		if u == userID {
			return true
		}
	}
	return false
}

func addParticipant(participants []string, userID string) []string {
	if containsUser(participants, userID) {
		return participants
	}
	return append(participants, userID)
}
