package assist

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/huddlehq/workspace-chat/internal/llm"
)

func TestAnalyzeToneEmptyDraft(t *testing.T) {
	client := &fakeClient{content: "should not be called"}
	svc := newTestService(client)

	analysis, notice := svc.AnalyzeTone(context.Background(), "  ", nil, "general")
	assert.Equal(t, ToneNeutral, analysis.Tone)
	assert.Equal(t, ImpactLow, analysis.Impact)
	assert.Equal(t, 3, analysis.Score)
	assert.Equal(t, "Message is empty.", analysis.Suggestion)
	assert.Empty(t, notice)
	assert.Empty(t, client.prompts)
}

func TestAnalyzeToneParsesResponse(t *testing.T) {
	client := &fakeClient{content: `{"tone": "aggressive", "impact": "high", "suggestion": "Soften the opening.", "score": 7}`}
	svc := newTestService(client)

	analysis, notice := svc.AnalyzeTone(context.Background(), "DO IT NOW", nil, "general")
	assert.Equal(t, ToneAggressive, analysis.Tone)
	assert.Equal(t, ImpactHigh, analysis.Impact)
	assert.Equal(t, "Soften the opening.", analysis.Suggestion)
	assert.Equal(t, 7, analysis.Score)
	assert.Empty(t, notice)
}

func TestAnalyzeToneFallsBackOnFailure(t *testing.T) {
	svc := newTestService(&fakeClient{err: llm.ErrRateLimited})

	analysis, notice := svc.AnalyzeTone(context.Background(), "hello", nil, "general")
	assert.Equal(t, DefaultToneAnalysis(), analysis)
	assert.Equal(t, NoticeRateLimited, notice)
}

func TestAnalyzeToneFallsBackOnGarbage(t *testing.T) {
	svc := newTestService(&fakeClient{content: "I cannot analyze that."})

	analysis, notice := svc.AnalyzeTone(context.Background(), "hello", nil, "general")
	assert.Equal(t, DefaultToneAnalysis(), analysis)
	assert.Empty(t, notice)
}

func TestParseToneAnalysisExtractsEmbeddedJSON(t *testing.T) {
	content := `Here is my analysis:
{"tone": "Clear", "impact": "MEDIUM", "suggestion": "Good as is.", "score": 9}
Hope that helps!`

	analysis, ok := parseToneAnalysis(content)
	assert.True(t, ok)
	assert.Equal(t, ToneClear, analysis.Tone)
	assert.Equal(t, ImpactMedium, analysis.Impact)
	assert.Equal(t, 9, analysis.Score)
}

func TestParseToneAnalysisClampsScore(t *testing.T) {
	analysis, ok := parseToneAnalysis(`{"tone": "neutral", "impact": "low", "score": 42}`)
	assert.True(t, ok)
	assert.Equal(t, 10, analysis.Score)

	analysis, ok = parseToneAnalysis(`{"tone": "neutral", "impact": "low", "score": 0}`)
	assert.True(t, ok)
	assert.Equal(t, 1, analysis.Score)
}

func TestParseToneAnalysisRejectsInvalid(t *testing.T) {
	_, ok := parseToneAnalysis("no json here")
	assert.False(t, ok)

	_, ok = parseToneAnalysis(`{"tone": "sarcastic", "impact": "high", "score": 5}`)
	assert.False(t, ok)

	_, ok = parseToneAnalysis(`{"tone": "neutral", "impact": "extreme", "score": 5}`)
	assert.False(t, ok)

	_, ok = parseToneAnalysis(`{broken`)
	assert.False(t, ok)
}
