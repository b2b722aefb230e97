package assist

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huddlehq/workspace-chat/internal/llm"
	"github.com/huddlehq/workspace-chat/internal/model"
	"github.com/huddlehq/workspace-chat/pkg/logger"
)

// fakeClient returns a canned response or error and records every prompt it
// was sent.
type fakeClient struct {
	mu      sync.Mutex
	content string
	err     error
	prompts []string
}

func (f *fakeClient) Complete(ctx context.Context, req *llm.CompletionRequest) (*llm.CompletionResponse, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, req.Messages[len(req.Messages)-1].Content)
	f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	return &llm.CompletionResponse{Content: f.content}, nil
}

func (f *fakeClient) Name() string { return "fake" }

func (f *fakeClient) lastPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.prompts) == 0 {
		return ""
	}
	return f.prompts[len(f.prompts)-1]
}

func newTestService(client llm.Client) *Service {
	return NewService(client, logger.NewNop(), time.Second, time.Millisecond)
}

func TestRewriteReturnsEnhancedDraft(t *testing.T) {
	client := &fakeClient{content: "Hello team, quick question about the release."}
	svc := newTestService(client)

	out, notice := svc.Rewrite(context.Background(), "hey when release", nil, "general")
	assert.Equal(t, "Hello team, quick question about the release.", out)
	assert.Empty(t, notice)
	assert.Contains(t, client.lastPrompt(), "hey when release")
	assert.Contains(t, client.lastPrompt(), `"general"`)
}

func TestRewriteFailureReturnsDraftUnchanged(t *testing.T) {
	svc := newTestService(&fakeClient{err: errors.New("boom")})

	out, notice := svc.Rewrite(context.Background(), "hello", nil, "general")
	assert.Equal(t, "hello", out)
	assert.Equal(t, NoticeUnavailable, notice)
}

func TestRewriteNoticePerErrorKind(t *testing.T) {
	out, notice := newTestService(&fakeClient{err: llm.ErrAuth}).
		Rewrite(context.Background(), "hello", nil, "general")
	assert.Equal(t, "hello", out)
	assert.Equal(t, NoticeAuth, notice)

	_, notice = newTestService(&fakeClient{err: llm.ErrRateLimited}).
		Rewrite(context.Background(), "hello", nil, "general")
	assert.Equal(t, NoticeRateLimited, notice)
}

func TestRewriteDisabledWithoutClient(t *testing.T) {
	svc := newTestService(nil)

	out, notice := svc.Rewrite(context.Background(), "hello", nil, "general")
	assert.Equal(t, "hello", out)
	assert.Empty(t, notice)
}

func TestRewriteSkipsEmptyDraft(t *testing.T) {
	client := &fakeClient{content: "should not be called"}
	svc := newTestService(client)

	out, _ := svc.Rewrite(context.Background(), "   ", nil, "general")
	assert.Equal(t, "   ", out)
	assert.Empty(t, client.prompts)
}

func TestRewriteIncludesRecentContext(t *testing.T) {
	client := &fakeClient{content: "ok"}
	svc := newTestService(client)

	recent := []model.Message{
		{AuthorName: "Alice", Body: "deploy is at 3pm"},
		{AuthorName: "Bob", Body: "sounds good"},
	}
	svc.Rewrite(context.Background(), "what time again?", recent, "general")
	assert.Contains(t, client.lastPrompt(), "Alice: deploy is at 3pm")
	assert.Contains(t, client.lastPrompt(), "Bob: sounds good")
}

func TestAnswerQueryFiltersConfidentialContext(t *testing.T) {
	client := &fakeClient{content: "The deploy is at 3pm."}
	svc := newTestService(client)

	messages := map[string][]model.Message{
		"ch-public":  {{AuthorName: "Alice", Body: "deploy is at 3pm"}},
		"ch-private": {{AuthorName: "Alice", Body: "salary numbers"}},
	}
	docs := []model.Document{
		{Title: "Runbook", ContentRef: "s3://docs/runbook.md", Pinned: true},
		{Title: "Secrets", ContentRef: "s3://docs/secrets.md", Pinned: false},
	}
	isPrivate := func(id string) bool { return id == "ch-private" }

	answer, notice := svc.AnswerQuery(context.Background(), "when is the deploy?",
		messages, map[string]string{"ch-public": "general"}, docs, isPrivate)
	assert.Equal(t, "The deploy is at 3pm.", answer)
	assert.Empty(t, notice)

	prompt := client.lastPrompt()
	assert.Contains(t, prompt, "deploy is at 3pm")
	assert.Contains(t, prompt, "#general")
	assert.Contains(t, prompt, "Runbook")
	assert.NotContains(t, prompt, "salary numbers")
	assert.NotContains(t, prompt, "Secrets")
}

func TestAnswerQueryFallbacks(t *testing.T) {
	answer, notice := newTestService(nil).
		AnswerQuery(context.Background(), "anything?", nil, nil, nil, nil)
	assert.Equal(t, "Sorry, I couldn't look that up just now.", answer)
	assert.Equal(t, NoticeUnavailable, notice)

	answer, notice = newTestService(&fakeClient{err: llm.ErrRateLimited}).
		AnswerQuery(context.Background(), "anything?", nil, nil, nil, nil)
	assert.Equal(t, "Sorry, I couldn't look that up just now.", answer)
	assert.Equal(t, NoticeRateLimited, notice)
}

func TestFormatContextWindow(t *testing.T) {
	msgs := []model.Message{
		{AuthorName: "A", Body: "1"},
		{AuthorName: "B", Body: "2"},
		{AuthorName: "C", Body: "3"},
	}
	out := formatContext(msgs, 2)
	assert.Equal(t, "B: 2\nC: 3", out)

	assert.Equal(t, "", formatContext(nil, 5))
}

func TestDebouncerLatestWins(t *testing.T) {
	d := NewDebouncer(time.Millisecond)

	first := d.Issue("alice/ch1")
	assert.True(t, d.Current("alice/ch1", first))

	second := d.Issue("alice/ch1")
	assert.False(t, d.Current("alice/ch1", first))
	assert.True(t, d.Current("alice/ch1", second))

	// Keys are independent.
	other := d.Issue("bob/ch1")
	assert.True(t, d.Current("bob/ch1", other))
	assert.True(t, d.Current("alice/ch1", second))
}

func TestAnalyzeToneDebouncedSupersedes(t *testing.T) {
	client := &fakeClient{content: `{"tone": "clear", "impact": "high", "suggestion": "", "score": 8}`}
	svc := NewService(client, logger.NewNop(), time.Second, 100*time.Millisecond)

	type result struct {
		ok bool
	}
	firstDone := make(chan result, 1)
	go func() {
		_, ok, _ := svc.AnalyzeToneDebounced(context.Background(), "alice/ch1", "draft v1", nil, "general")
		firstDone <- result{ok}
	}()

	// A second keystroke inside the window supersedes the first.
	time.Sleep(20 * time.Millisecond)
	analysis, ok, notice := svc.AnalyzeToneDebounced(context.Background(), "alice/ch1", "draft v2", nil, "general")
	require.True(t, ok)
	assert.Empty(t, notice)
	assert.Equal(t, ToneClear, analysis.Tone)
	assert.Equal(t, 8, analysis.Score)

	first := <-firstDone
	assert.False(t, first.ok)
}

func TestContainsMention(t *testing.T) {
	assert.True(t, ContainsMention("hey @assistant what's up", DefaultMentionTrigger))
	assert.True(t, ContainsMention("hey @Assistant what's up", DefaultMentionTrigger))
	assert.False(t, ContainsMention("hey everyone", DefaultMentionTrigger))
}

func TestExtractQuery(t *testing.T) {
	assert.Equal(t, "when is the deploy?",
		ExtractQuery("@assistant when is the deploy?", DefaultMentionTrigger))
	assert.Equal(t, "when is the deploy?",
		ExtractQuery("hey @Assistant   when is the deploy?", DefaultMentionTrigger))
	assert.Equal(t, "", ExtractQuery("@assistant", DefaultMentionTrigger))
	assert.Equal(t, "", ExtractQuery("no mention here", DefaultMentionTrigger))
}
