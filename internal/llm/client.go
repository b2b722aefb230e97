// Package llm provides text-completion client interfaces and implementations.
package llm

import (
	"context"
	"errors"
)

// Completion errors, normalized across providers so callers can pick a
// user-facing notice without knowing which SDK produced the failure.
var (
	// ErrAuth indicates a missing or rejected API key.
	ErrAuth = errors.New("llm: authentication failed")

	// ErrRateLimited indicates the provider refused the request for quota.
	ErrRateLimited = errors.New("llm: rate limited")

	// ErrUnavailable covers timeouts and transient upstream failures.
	ErrUnavailable = errors.New("llm: upstream unavailable")
)

// ChatMessage is one turn of context sent to the provider.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest is a provider-agnostic completion request.
type CompletionRequest struct {
	Model       string
	Messages    []ChatMessage
	MaxTokens   int
	Temperature float64
}

// CompletionResponse is a provider-agnostic completion response.
type CompletionResponse struct {
	Content    string
	Model      string
	TokensIn   int
	TokensOut  int
	StopReason string
	LatencyMs  int64
}

// Client is the interface for text-completion providers.
type Client interface {
	// Complete sends a completion request and returns the response.
	Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)

	// Name returns the provider name.
	Name() string
}

// Provider is the type of completion provider.
type Provider string

const (
	ProviderAnthropic Provider = "anthropic"
	ProviderOpenAI    Provider = "openai"
)

// NewClient creates a completion client for the given provider.
func NewClient(provider Provider, apiKey string) (Client, error) {
	switch provider {
	case ProviderAnthropic:
		return NewAnthropicClient(apiKey)
	case ProviderOpenAI:
		return NewOpenAIClient(apiKey)
	default:
		return NewOpenAIClient(apiKey)
	}
}
