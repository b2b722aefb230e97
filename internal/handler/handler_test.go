package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huddlehq/workspace-chat/internal/assist"
	"github.com/huddlehq/workspace-chat/internal/llm"
	"github.com/huddlehq/workspace-chat/internal/middleware"
	"github.com/huddlehq/workspace-chat/internal/model"
	"github.com/huddlehq/workspace-chat/internal/service"
	"github.com/huddlehq/workspace-chat/internal/store"
	"github.com/huddlehq/workspace-chat/pkg/logger"
)

type stubLLM struct {
	content string
}

func (s *stubLLM) Complete(ctx context.Context, req *llm.CompletionRequest) (*llm.CompletionResponse, error) {
	return &llm.CompletionResponse{Content: s.content}, nil
}

func (s *stubLLM) Name() string { return "stub" }

// asUser injects an authenticated identity, standing in for the JWT
// middleware.
func asUser(userID, userName, workspaceClaim string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), middleware.UserIDKey, userID)
			ctx = context.WithValue(ctx, middleware.UserNameKey, userName)
			ctx = context.WithValue(ctx, middleware.WorkspaceIDKey, workspaceClaim)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func newTestRouter(t *testing.T, workspaceClaim string) (*chi.Mux, *service.WorkspaceService) {
	t.Helper()
	log := logger.NewNop()
	workspaces := service.NewWorkspaceService(store.NewMemoryStore(), nil, log)

	workspaceHandler := NewWorkspaceHandler(workspaces, log)
	channelHandler := NewChannelHandler(workspaces, log)
	messageHandler := NewMessageHandler(workspaces, nil, log)
	documentHandler := NewDocumentHandler(workspaces, log)

	r := chi.NewRouter()
	r.Use(asUser("alice", "Alice", workspaceClaim))
	r.Route("/workspaces", func(r chi.Router) {
		r.Post("/", workspaceHandler.Create)
		r.Get("/", workspaceHandler.List)
		r.Route("/{workspaceID}", func(r chi.Router) {
			r.Get("/", workspaceHandler.Get)
			r.Route("/channels", func(r chi.Router) {
				r.Post("/", channelHandler.Create)
				r.Get("/", channelHandler.List)
				r.Route("/{channelID}", func(r chi.Router) {
					r.Get("/", channelHandler.Get)
					r.Post("/read", channelHandler.MarkRead)
					r.Get("/messages", messageHandler.List)
					r.Post("/messages", messageHandler.Send)
					r.Get("/messages/pinned", messageHandler.ListPinned)
					r.Route("/messages/{messageID}", func(r chi.Router) {
						r.Post("/replies", messageHandler.Reply)
						r.Get("/replies", messageHandler.ListReplies)
						r.Post("/reactions", messageHandler.AddReaction)
						r.Delete("/reactions/{emoji}", messageHandler.RemoveReaction)
						r.Put("/pin", messageHandler.Pin)
						r.Delete("/pin", messageHandler.Unpin)
					})
					r.Post("/documents", documentHandler.Add)
					r.Get("/documents", documentHandler.List)
				})
			})
		})
	})
	return r, workspaces
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any, out any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if out != nil && rec.Code < 300 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
	}
	return rec
}

func TestWorkspaceChannelMessageFlow(t *testing.T) {
	r, _ := newTestRouter(t, "")

	var ws model.Workspace
	rec := doJSON(t, r, http.MethodPost, "/workspaces", &model.CreateWorkspaceRequest{Name: "Acme"}, &ws)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotEmpty(t, ws.ID)

	var ch model.Channel
	rec = doJSON(t, r, http.MethodPost, "/workspaces/"+ws.ID+"/channels",
		&model.CreateChannelRequest{Name: "General"}, &ch)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "general", ch.Name)

	var sent model.SendMessageResponse
	rec = doJSON(t, r, http.MethodPost, "/workspaces/"+ws.ID+"/channels/"+ch.ID+"/messages",
		&model.SendMessageRequest{Body: "hello"}, &sent)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, sent.Message)
	assert.Equal(t, "alice", sent.Message.AuthorID)
	assert.Equal(t, "Alice", sent.Message.AuthorName)

	var listed model.ListMessagesResponse
	rec = doJSON(t, r, http.MethodGet, "/workspaces/"+ws.ID+"/channels/"+ch.ID+"/messages", nil, &listed)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, listed.Total)
	assert.Equal(t, "hello", listed.Messages[0].Body)

	msgPath := "/workspaces/" + ws.ID + "/channels/" + ch.ID + "/messages/" + sent.Message.ID
	rec = doJSON(t, r, http.MethodPost, msgPath+"/reactions", &model.ReactionRequest{Emoji: "+1"}, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, r, http.MethodPost, msgPath+"/replies", &model.SendMessageRequest{Body: "hi back"}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var replies model.ListMessagesResponse
	rec = doJSON(t, r, http.MethodGet, msgPath+"/replies", nil, &replies)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, replies.Total)

	rec = doJSON(t, r, http.MethodDelete, msgPath+"/reactions/+1", nil, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, r, http.MethodPut, msgPath+"/pin", nil, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	var pinned model.ListMessagesResponse
	rec = doJSON(t, r, http.MethodGet, "/workspaces/"+ws.ID+"/channels/"+ch.ID+"/messages/pinned", nil, &pinned)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, pinned.Total)
}

func TestSendMessageValidation(t *testing.T) {
	r, workspaces := newTestRouter(t, "")
	ws, err := workspaces.Create(context.Background(), "alice", &model.CreateWorkspaceRequest{Name: "Acme"})
	require.NoError(t, err)
	conv, err := workspaces.Conversation(ws.ID)
	require.NoError(t, err)
	ch, err := conv.CreateChannel(context.Background(), "alice", &model.CreateChannelRequest{Name: "general"})
	require.NoError(t, err)

	rec := doJSON(t, r, http.MethodPost, "/workspaces/"+ws.ID+"/channels/"+ch.ID+"/messages",
		&model.SendMessageRequest{Body: ""}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, r, http.MethodPost, "/workspaces/"+ws.ID+"/channels/missing/messages",
		&model.SendMessageRequest{Body: "hi"}, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, r, http.MethodPost, "/workspaces/missing/channels/"+ch.ID+"/messages",
		&model.SendMessageRequest{Body: "hi"}, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Message IDs are UUIDs; anything else is rejected before lookup.
	rec = doJSON(t, r, http.MethodPost, "/workspaces/"+ws.ID+"/channels/"+ch.ID+"/messages/not-a-uuid/replies",
		&model.SendMessageRequest{Body: "hi"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, r, http.MethodPut, "/workspaces/"+ws.ID+"/channels/"+ch.ID+"/messages/not-a-uuid/pin", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAssistantMentionPostsThreadReply(t *testing.T) {
	log := logger.NewNop()
	workspaces := service.NewWorkspaceService(store.NewMemoryStore(), nil, log)
	assistSvc := assist.NewService(&stubLLM{content: "The deploy is at 3pm."}, log, time.Second, time.Millisecond)
	messageHandler := NewMessageHandler(workspaces, assistSvc, log)

	r := chi.NewRouter()
	r.Use(asUser("alice", "Alice", ""))
	r.Post("/workspaces/{workspaceID}/channels/{channelID}/messages", messageHandler.Send)

	ws, err := workspaces.Create(context.Background(), "alice", &model.CreateWorkspaceRequest{Name: "Acme"})
	require.NoError(t, err)
	conv, err := workspaces.Conversation(ws.ID)
	require.NoError(t, err)
	ch, err := conv.CreateChannel(context.Background(), "alice", &model.CreateChannelRequest{Name: "general"})
	require.NoError(t, err)

	var sent model.SendMessageResponse
	rec := doJSON(t, r, http.MethodPost, "/workspaces/"+ws.ID+"/channels/"+ch.ID+"/messages",
		&model.SendMessageRequest{Body: "@assistant when is the deploy?"}, &sent)
	require.Equal(t, http.StatusCreated, rec.Code)

	// The assistant reply is posted asynchronously.
	assert.Eventually(t, func() bool {
		replies := conv.GetThreadReplies(ch.ID, sent.Message.ID)
		return len(replies) == 1 &&
			replies[0].AuthorID == "assistant" &&
			replies[0].Body == "The deploy is at 3pm."
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWorkspaceClaimScopesAccess(t *testing.T) {
	r, workspaces := newTestRouter(t, "some-other-workspace")
	ws, err := workspaces.Create(context.Background(), "alice", &model.CreateWorkspaceRequest{Name: "Acme"})
	require.NoError(t, err)

	// A token scoped to a different workspace sees 404, not 403.
	rec := doJSON(t, r, http.MethodGet, "/workspaces/"+ws.ID, nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, r, http.MethodGet, "/workspaces/"+ws.ID+"/channels", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
