// Package assist implements composition assistance: message rewriting, tone
// analysis, and contextual question answering backed by an external
// text-completion service.
//
// Every operation is best-effort. Upstream failures degrade to safe
// fallbacks and a user-facing notice; they are never surfaced as errors to
// the caller, so a broken or unconfigured provider can never block sending
// a message.
package assist

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/huddlehq/workspace-chat/internal/llm"
	"github.com/huddlehq/workspace-chat/internal/model"
	"github.com/huddlehq/workspace-chat/pkg/logger"
	"github.com/huddlehq/workspace-chat/pkg/metrics"
)

// Notices shown when the upstream provider fails. The 401/429/other split
// follows the upstream error taxonomy.
const (
	NoticeAuth        = "Assistant is not configured correctly. Check the API key."
	NoticeRateLimited = "Assistant is busy right now. Try again in a minute."
	NoticeUnavailable = "Assistant is unavailable right now. Try again later."
)

const (
	rewriteContextMessages = 10
	answerContextMessages  = 5
)

// Service wraps a completion client with the three assistance operations.
// A nil client disables assistance: every operation returns its fallback
// immediately.
type Service struct {
	client   llm.Client
	logger   *logger.Logger
	timeout  time.Duration
	debounce *Debouncer
}

// NewService creates the assistance service. window is the tone-analysis
// debounce window.
func NewService(client llm.Client, log *logger.Logger, timeout, window time.Duration) *Service {
	return &Service{
		client:   client,
		logger:   log,
		timeout:  timeout,
		debounce: NewDebouncer(window),
	}
}

// Enabled reports whether a completion client is configured.
func (s *Service) Enabled() bool {
	return s.client != nil
}

// Rewrite returns the draft rewritten against recent channel context. On
// any failure the original draft comes back unchanged, with a notice
// describing the degradation.
func (s *Service) Rewrite(ctx context.Context, draft string, recent []model.Message, channelName string) (string, string) {
	if s.client == nil || strings.TrimSpace(draft) == "" {
		return draft, ""
	}

	prompt := fmt.Sprintf(`You are an AI assistant in a team chat application, specifically in the %q channel.
Recent conversation in this channel:
%s

The user is typing a message: %q

Based on the context of this channel, enhance or rewrite the user's message to make it more relevant,
clear, or engaging. Keep the same intent but improve it based on the ongoing conversation.
Only return the enhanced message text, nothing else.`, channelName, formatContext(recent, rewriteContextMessages), draft)

	content, err := s.complete(ctx, "rewrite", prompt, 0.7)
	if err != nil {
		metrics.RecordAssist("rewrite", "fallback")
		s.logger.Warn("rewrite failed, returning draft unchanged", zap.Error(err))
		return draft, noticeFor(err)
	}
	if content == "" {
		metrics.RecordAssist("rewrite", "fallback")
		return draft, ""
	}

	metrics.RecordAssist("rewrite", "ok")
	return content, ""
}

// AnswerQuery answers a question using public-channel context and pinned
// documents. The caller is expected to pass context already filtered by the
// conversation service; the private-channel and pinned-document filters are
// re-applied here because this is the last boundary before the external
// service sees the data.
func (s *Service) AnswerQuery(
	ctx context.Context,
	query string,
	publicMessages map[string][]model.Message,
	channelNames map[string]string,
	pinnedDocs []model.Document,
	isPrivate func(channelID string) bool,
) (string, string) {
	const fallback = "Sorry, I couldn't look that up just now."

	if s.client == nil {
		return fallback, NoticeUnavailable
	}

	var b strings.Builder
	for channelID, msgs := range publicMessages {
		if isPrivate != nil && isPrivate(channelID) {
			continue
		}
		if len(msgs) == 0 {
			continue
		}
		name := channelNames[channelID]
		if name == "" {
			name = channelID
		}
		fmt.Fprintf(&b, "\n--- Channel: #%s ---\n%s\n", name, formatContext(msgs, answerContextMessages))
	}

	var docs strings.Builder
	for _, doc := range pinnedDocs {
		if !doc.Pinned {
			continue
		}
		fmt.Fprintf(&docs, "Title: %s\nReference: %s\n\n", doc.Title, doc.ContentRef)
	}
	if docs.Len() > 0 {
		b.WriteString("\n--- Pinned Documents ---\n")
		b.WriteString(docs.String())
	}

	prompt := fmt.Sprintf(`You are an AI assistant in a team chat application with access to all public channels and pinned documents.
%s

User query: %q

Provide a helpful, informative response based on the information available in the channels and documents.
Your response should be conversational and friendly. If the query is about specific channel content, reference it.
If you don't have enough information to answer accurately, acknowledge that limitation.`, b.String(), query)

	content, err := s.complete(ctx, "answer", prompt, 0.7)
	if err != nil {
		metrics.RecordAssist("answer", "fallback")
		s.logger.Warn("query answering failed", zap.Error(err))
		return fallback, noticeFor(err)
	}
	if content == "" {
		metrics.RecordAssist("answer", "fallback")
		return fallback, ""
	}

	metrics.RecordAssist("answer", "ok")
	return content, ""
}

func (s *Service) complete(ctx context.Context, op, prompt string, temperature float64) (string, error) {
	callCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := s.client.Complete(callCtx, &llm.CompletionRequest{
		Messages:    []llm.ChatMessage{{Role: "user", Content: prompt}},
		MaxTokens:   500,
		Temperature: temperature,
	})
	if err != nil {
		return "", err
	}
	metrics.AssistDuration.WithLabelValues(op, s.client.Name()).Observe(time.Since(start).Seconds())

	return strings.TrimSpace(resp.Content), nil
}

// formatContext renders the last n messages as "Author: body" lines.
func formatContext(msgs []model.Message, n int) string {
	if len(msgs) > n {
		msgs = msgs[len(msgs)-n:]
	}
	lines := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		if msg.AuthorName == "" && msg.Body == "" {
			continue
		}
		lines = append(lines, msg.AuthorName+": "+msg.Body)
	}
	return strings.Join(lines, "\n")
}

func noticeFor(err error) string {
	switch {
	case errors.Is(err, llm.ErrAuth):
		return NoticeAuth
	case errors.Is(err, llm.ErrRateLimited):
		return NoticeRateLimited
	default:
		return NoticeUnavailable
	}
}
