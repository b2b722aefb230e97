package assist

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/huddlehq/workspace-chat/internal/model"
	"github.com/huddlehq/workspace-chat/pkg/metrics"
)

// Tone categorizes a draft message.
type Tone string

const (
	ToneAggressive Tone = "aggressive"
	ToneNeutral    Tone = "neutral"
	ToneWeak       Tone = "weak"
	ToneConfusing  Tone = "confusing"
	ToneClear      Tone = "clear"
)

// Valid reports whether t is a known tone.
func (t Tone) Valid() bool {
	switch t {
	case ToneAggressive, ToneNeutral, ToneWeak, ToneConfusing, ToneClear:
		return true
	}
	return false
}

// Impact rates how likely a draft is to land.
type Impact string

const (
	ImpactHigh   Impact = "high"
	ImpactMedium Impact = "medium"
	ImpactLow    Impact = "low"
)

// Valid reports whether i is a known impact.
func (i Impact) Valid() bool {
	switch i {
	case ImpactHigh, ImpactMedium, ImpactLow:
		return true
	}
	return false
}

// ToneAnalysis is the structured result of analyzing a draft. Callers
// always receive a structurally valid value, never a partial one.
type ToneAnalysis struct {
	Tone       Tone   `json:"tone"`
	Impact     Impact `json:"impact"`
	Suggestion string `json:"suggestion,omitempty"`
	Score      int    `json:"score"`
}

// DefaultToneAnalysis is the fixed result used whenever the upstream call
// fails or returns something unparseable.
func DefaultToneAnalysis() ToneAnalysis {
	return ToneAnalysis{Tone: ToneNeutral, Impact: ImpactMedium, Score: 5}
}

// emptyToneAnalysis covers a blank draft without an upstream call.
func emptyToneAnalysis() ToneAnalysis {
	return ToneAnalysis{
		Tone:       ToneNeutral,
		Impact:     ImpactLow,
		Suggestion: "Message is empty.",
		Score:      3,
	}
}

// AnalyzeTone scores a draft against recent channel context. Failures and
// malformed upstream responses degrade to DefaultToneAnalysis with a notice.
func (s *Service) AnalyzeTone(ctx context.Context, draft string, recent []model.Message, channelName string) (ToneAnalysis, string) {
	if strings.TrimSpace(draft) == "" {
		return emptyToneAnalysis(), ""
	}
	if s.client == nil {
		return DefaultToneAnalysis(), ""
	}

	prompt := fmt.Sprintf(`You are an AI assistant that analyzes the tone and impact of messages in a professional chat environment.

Channel context: %s
Recent conversation:
%s

Message to analyze: %q

Be very critical and precise in your analysis. Pay close attention to language, word choice, punctuation, and context.

Analyze the tone of this message and categorize it as ONE of the following:
- aggressive (forceful, demanding, confrontational, rude, or using strong language)
- neutral (balanced, standard, and professional)
- weak (uncertain, overly apologetic, or lacking confidence)
- confusing (unclear, ambiguous, or difficult to understand)
- clear (well-articulated, direct, and easy to understand)

If the message contains profanity, insults, or aggressive language, it MUST be categorized as 'aggressive'.
If the message is very short but clear, it should be 'clear' not 'neutral'.
Only use 'neutral' when the message doesn't fit clearly into other categories.

Also rate the impact of this message as ONE of the following:
- high (compelling, likely to get immediate attention and response)
- medium (adequate but not exceptional)
- low (likely to be overlooked or ignored)

Rate the overall effectiveness on a scale of 1-10.

Provide brief, specific suggestions for improvement.

Return your analysis in this exact JSON format:
{"tone": "...", "impact": "...", "suggestion": "...", "score": 5}`,
		channelName, formatContext(recent, 3), draft)

	content, err := s.complete(ctx, "tone", prompt, 0.2)
	if err != nil {
		metrics.RecordAssist("tone", "fallback")
		s.logger.Warn("tone analysis failed", zap.Error(err))
		return DefaultToneAnalysis(), noticeFor(err)
	}

	analysis, ok := parseToneAnalysis(content)
	if !ok {
		metrics.RecordAssist("tone", "fallback")
		s.logger.Warn("tone analysis response unparseable", zap.String("content", content))
		return DefaultToneAnalysis(), ""
	}

	metrics.RecordAssist("tone", "ok")
	return analysis, ""
}

// AnalyzeToneDebounced is AnalyzeTone behind the debounce window. key
// identifies one input box (user plus channel). The call waits out the
// window; if a newer request for the same key arrives meanwhile, this
// result is discarded and ok is false. The latest keystroke always wins.
func (s *Service) AnalyzeToneDebounced(ctx context.Context, key, draft string, recent []model.Message, channelName string) (ToneAnalysis, bool, string) {
	seq := s.debounce.Issue(key)

	select {
	case <-ctx.Done():
		return DefaultToneAnalysis(), false, ""
	case <-s.debounce.Wait():
	}

	if !s.debounce.Current(key, seq) {
		metrics.AssistSuperseded.Inc()
		return DefaultToneAnalysis(), false, ""
	}

	analysis, notice := s.AnalyzeTone(ctx, draft, recent, channelName)

	// The upstream call takes real time; a newer keystroke may have been
	// issued while it was in flight. Stale results are discarded, not
	// applied.
	if !s.debounce.Current(key, seq) {
		metrics.AssistSuperseded.Inc()
		return DefaultToneAnalysis(), false, ""
	}

	return analysis, true, notice
}

// parseToneAnalysis extracts the JSON object from an upstream response that
// may wrap it in prose, then validates every field.
func parseToneAnalysis(content string) (ToneAnalysis, bool) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return ToneAnalysis{}, false
	}

	var raw struct {
		Tone       string  `json:"tone"`
		Impact     string  `json:"impact"`
		Suggestion string  `json:"suggestion"`
		Score      float64 `json:"score"`
	}
	if err := json.Unmarshal([]byte(content[start:end+1]), &raw); err != nil {
		return ToneAnalysis{}, false
	}

	analysis := ToneAnalysis{
		Tone:       Tone(strings.ToLower(raw.Tone)),
		Impact:     Impact(strings.ToLower(raw.Impact)),
		Suggestion: raw.Suggestion,
		Score:      int(raw.Score),
	}
	if !analysis.Tone.Valid() || !analysis.Impact.Valid() {
		return ToneAnalysis{}, false
	}
	if analysis.Score < 1 {
		analysis.Score = 1
	}
	if analysis.Score > 10 {
		analysis.Score = 10
	}
	return analysis, true
}
